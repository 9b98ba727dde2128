package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// descriptorExts lists descriptor extensions in lookup order.
var descriptorExts = []string{".json", ".yaml", ".yml"}

// Descriptor is the on-disk description of an organization.
//
//	{"name": "Clube", "tag": "CLB",
//	 "courses": {"regular": ["sub-15"], "exceptional": ["convidado"]},
//	 "csvFile": "atletas.csv", "outputFile": "out/clube.pdf"}
type Descriptor struct {
	Name       string  `json:"name" yaml:"name"`
	Tag        string  `json:"tag" yaml:"tag"`
	Courses    Courses `json:"courses" yaml:"courses"`
	CSVFile    string  `json:"csvFile,omitempty" yaml:"csvFile,omitempty"`
	OutputFile string  `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

// DescriptorError reports a descriptor that exists but cannot be used.
type DescriptorError struct {
	Path string
	Err  error
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("descriptor %s: %v", e.Path, e.Err)
}

func (e *DescriptorError) Unwrap() error {
	return e.Err
}

// Code implements Coded.
func (e *DescriptorError) Code() string { return "DESC001" }

// IsDescriptor reports whether path has a descriptor extension.
func IsDescriptor(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range descriptorExts {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadDescriptor reads a JSON or YAML descriptor.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Err: err}
	}

	var d Descriptor
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &d)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &d)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, &DescriptorError{Path: path, Err: err}
	}
	return &d, nil
}

// Input is one resolved batch input: the organization and the roster file
// that belongs to it.
type Input struct {
	Source     string // path matched by the batch pattern
	Descriptor string // descriptor path
	Roster     string // roster path
	Org        *Organization
}

// ResolveInput resolves a matched path into an Input.
//
// A descriptor path points at its roster through csvFile, or by default at
// the sibling file with the same basename and a .csv extension. A roster
// path (.csv, .xlsx) looks for a sibling descriptor. Relative paths in a
// descriptor are resolved against the descriptor's directory.
func ResolveInput(path string) (Input, error) {
	descPath := path
	rosterPath := ""

	if !IsDescriptor(path) {
		if _, err := ReaderFor(path); err != nil {
			return Input{}, &FileError{Op: "resolve", Path: path, Err: err}
		}
		found, err := findDescriptor(path)
		if err != nil {
			return Input{}, err
		}
		descPath = found
		rosterPath = path
	}

	d, err := LoadDescriptor(descPath)
	if err != nil {
		return Input{}, err
	}

	dir := filepath.Dir(descPath)
	if d.CSVFile != "" {
		rosterPath = resolveRelative(dir, d.CSVFile)
	} else if rosterPath == "" {
		rosterPath = trimExt(descPath) + ".csv"
	}

	org, err := NewOrganization(d.Name, d.Tag, d.Courses)
	if err != nil {
		return Input{}, &DescriptorError{Path: descPath, Err: err}
	}
	org.RosterFile = rosterPath
	if d.OutputFile != "" {
		org.OutputFile = resolveRelative(dir, d.OutputFile)
	}

	return Input{Source: path, Descriptor: descPath, Roster: rosterPath, Org: org}, nil
}

func findDescriptor(rosterPath string) (string, error) {
	base := trimExt(rosterPath)
	for _, ext := range descriptorExts {
		candidate := base + ext
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", &FileError{Op: "resolve", Path: candidate, Err: err}
		}
	}
	return "", fmt.Errorf("%s: %w", rosterPath, ErrNoDescriptor)
}

func trimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

func resolveRelative(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
