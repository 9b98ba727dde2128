package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Defaults returns a Config populated only from the struct tag defaults,
// ignoring the environment. Useful for tests and for tools that want the
// stock settings.
func Defaults() Config {
	cfg := Config{}
	_ = loadDefaults(reflect.ValueOf(&cfg).Elem())
	return cfg
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	return walk(v, func(field reflect.StructField) string {
		value := os.Getenv(field.Tag.Get("env"))
		if value == "" {
			value = field.Tag.Get("default")
		}
		return value
	})
}

func loadDefaults(v reflect.Value) error {
	return walk(v, func(field reflect.StructField) string {
		return field.Tag.Get("default")
	})
}

// walk visits every tagged leaf field and assigns the value chosen by pick.
func walk(v reflect.Value, pick func(reflect.StructField) string) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := walk(fieldVal, pick); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		value := pick(field)
		if value == "" {
			if field.Tag.Get("required") == "true" {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			continue
		}

		if field.Tag.Get("escape") == "true" {
			value = unescape(value)
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			field.Set(reflect.ValueOf(SplitList(value)))
		} else {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// SplitList splits comma-separated values and trims whitespace, dropping
// empty entries.
func SplitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// unescape turns the two-character sequences \n and \t into their control
// characters so separators can be written in a .env file.
func unescape(value string) string {
	if !strings.Contains(value, `\`) {
		return value
	}
	r := strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\\`, `\`)
	return r.Replace(value)
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Roster validation
	if len(c.Roster.Headers) == 0 {
		errs = append(errs, "ROSTER_HEADERS must list at least one column")
	}
	if !containsFold(c.Roster.Headers, "name") {
		errs = append(errs, "ROSTER_HEADERS must include a name column")
	}
	if !containsFold(c.Roster.Headers, "id") {
		errs = append(errs, "ROSTER_HEADERS must include an id column")
	}
	if c.Roster.SkipLines < 0 {
		errs = append(errs, "ROSTER_SKIP_LINES must be non-negative")
	}
	if c.Roster.MaskWidth <= 0 || c.Roster.MaskWidth > 18 {
		errs = append(errs, fmt.Sprintf("ROSTER_MASK_WIDTH (%d) must be 1-18", c.Roster.MaskWidth))
	}
	if c.Roster.HashSeparator == "" {
		errs = append(errs, "ROSTER_HASH_SEPARATOR must not be empty")
	}
	if c.Roster.QRSeparator == "" {
		errs = append(errs, "ROSTER_QR_SEPARATOR must not be empty")
	}

	// Render validation
	if strings.TrimSpace(c.Render.Layout) == "" {
		errs = append(errs, "RENDER_LAYOUT is required")
	}
	if strings.TrimSpace(c.Render.OutputDir) == "" {
		errs = append(errs, "RENDER_OUTPUT_DIR is required")
	}

	// Batch validation
	if c.Batch.MaxConcurrent <= 0 {
		errs = append(errs, "BATCH_MAX_CONCURRENT must be positive")
	}
	if c.Batch.Timeout < 0 {
		errs = append(errs, "BATCH_TIMEOUT must be non-negative")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func containsFold(list []string, want string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), want) {
			return true
		}
	}
	return false
}

// String returns a single-line summary of the configuration for logging.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Roster: {Headers: %d, SkipLines: %d, IncludeMissing: %v, ValidateCourses: %v, MaskWidth: %d}, ",
		len(c.Roster.Headers), c.Roster.SkipLines, c.Roster.IncludeMissing, c.Roster.ValidateCourses, c.Roster.MaskWidth))
	b.WriteString(fmt.Sprintf("Render: {Layout: %q, OutputDir: %q, FontsDir: %q, ImagesDir: %q, ThemeFile: %q}, ",
		c.Render.Layout, c.Render.OutputDir, c.Render.FontsDir, c.Render.ImagesDir, c.Render.ThemeFile))
	b.WriteString(fmt.Sprintf("Batch: {MaxConcurrent: %d, Timeout: %s}, ",
		c.Batch.MaxConcurrent, c.Batch.Timeout))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
