package render

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrUnknownLayout is returned when a layout id is not registered.
var ErrUnknownLayout = errors.New("unknown layout")

// Variant is a registered tag style: an id plus its theme constants.
type Variant struct {
	ID           string
	ReferenceURL string
	Theme        Theme
}

var (
	registry   = make(map[string]Variant)
	registryMu sync.RWMutex
)

// Register adds a variant to the registry.
// Panics if a variant with the same id is already registered.
func Register(v Variant) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[v.ID]; exists {
		panic(fmt.Sprintf("layout already registered: %s", v.ID))
	}
	registry[v.ID] = v
}

// Lookup returns a registered variant by id.
func Lookup(id string) (Variant, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	v, ok := registry[id]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q", ErrUnknownLayout, id)
	}
	return v, nil
}

// IDs returns the registered ids, sorted.
func IDs() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Catalog is a validated, read-only set of variants for one run.
type Catalog map[string]Variant

// LoadCatalog snapshots the registry, merges the theme overrides in path
// (skipped when path is empty) and validates every theme.
//
// The override file maps layout ids to partial themes:
//
//	idcard:
//	  palette:
//	    exceptional: "#ffe0a0"
//	  highlight: {color: "#ffffff", alpha: 0.6}
func LoadCatalog(path string) (Catalog, error) {
	registryMu.RLock()
	cat := make(Catalog, len(registry))
	for id, v := range registry {
		cat[id] = v
	}
	registryMu.RUnlock()

	if path != "" {
		if err := cat.override(path); err != nil {
			return nil, err
		}
	}

	for _, id := range cat.IDs() {
		if err := cat[id].Theme.Validate(); err != nil {
			return nil, fmt.Errorf("layout %s: %w", id, err)
		}
	}
	return cat, nil
}

func (c Catalog) override(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read theme overrides: %w", err)
	}

	var overrides map[string]yaml.Node
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse theme overrides %s: %w", path, err)
	}

	for id, node := range overrides {
		v, ok := c[id]
		if !ok {
			return fmt.Errorf("theme overrides %s: %w: %q", path, ErrUnknownLayout, id)
		}
		theme := v.Theme
		if v.Theme.ExceptionalBorder != nil {
			b := *v.Theme.ExceptionalBorder
			theme.ExceptionalBorder = &b
		}
		if err := node.Decode(&theme); err != nil {
			return fmt.Errorf("theme overrides %s: layout %s: %w", path, id, err)
		}
		v.Theme = theme
		c[id] = v
	}
	return nil
}

// Get returns the variant with id.
func (c Catalog) Get(id string) (Variant, error) {
	v, ok := c[id]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q", ErrUnknownLayout, id)
	}
	return v, nil
}

// IDs returns the catalog ids, sorted.
func (c Catalog) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
