// Package config provides centralized configuration management for credgrid.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
//
// The resulting Config is an immutable value: it is built once in main,
// adjusted by command-line flags, validated, and then handed by value to the
// components that need a slice of it.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Roster  RosterConfig
	Render  RenderConfig
	Batch   BatchConfig
	Logging LoggingConfig
}

// RosterConfig holds roster parsing and validation settings.
type RosterConfig struct {
	// Headers names the columns of header-less roster files, in order.
	Headers []string `env:"ROSTER_HEADERS" default:"id,name,birthdate,rg,cpf,ra,entity,course,graduated"`

	// SkipLines is the number of leading rows (banners, headers) to drop (default: 1)
	SkipLines int `env:"ROSTER_SKIP_LINES" default:"1"`

	// IncludeMissing keeps members with missing course/ra and unknown courses (default: false)
	IncludeMissing bool `env:"ROSTER_INCLUDE_MISSING" default:"false"`

	// ValidateCourses flags members whose course is not registered (default: true)
	ValidateCourses bool `env:"ROSTER_VALIDATE_COURSES" default:"true"`

	// ShowWarnings logs every dropped row and exclusion at warn level (default: true)
	ShowWarnings bool `env:"ROSTER_SHOW_WARNINGS" default:"true"`

	// MaskWidth is the number of id digits in the masked id (default: 3)
	MaskWidth int `env:"ROSTER_MASK_WIDTH" default:"3"`

	// HashSeparator joins member fields before checksumming (default: ",")
	HashSeparator string `env:"ROSTER_HASH_SEPARATOR" default:"," escape:"true"`

	// QRSeparator joins the QR payload fields (default: newline)
	QRSeparator string `env:"ROSTER_QR_SEPARATOR" default:"\\n" escape:"true"`
}

// RenderConfig holds document rendering settings.
type RenderConfig struct {
	// Layout is the id of the credential layout to use (default: idcard)
	Layout string `env:"RENDER_LAYOUT" default:"idcard"`

	// OutputDir is where generated documents are written (default: output)
	OutputDir string `env:"RENDER_OUTPUT_DIR" default:"output"`

	// FontsDir is scanned for font files, registered by filename stem
	FontsDir string `env:"RENDER_FONTS_DIR" default:"resources/fonts"`

	// ImagesDir holds theme artwork (backgrounds, logos)
	ImagesDir string `env:"RENDER_IMAGES_DIR" default:"resources/images"`

	// ThemeFile is an optional YAML file with per-layout theme overrides
	ThemeFile string `env:"THEME_FILE"`

	// ReportFile is an optional path for the HTML run report
	ReportFile string `env:"RENDER_REPORT_FILE"`
}

// BatchConfig holds batch orchestration settings.
type BatchConfig struct {
	// MaxConcurrent is the maximum number of documents generated at once (default: 4).
	// Documents beyond it queue until a slot frees up or the run ends.
	MaxConcurrent int `env:"BATCH_MAX_CONCURRENT" default:"4"`

	// Timeout bounds a whole run; 0 disables it (default: 0s)
	Timeout time.Duration `env:"BATCH_TIMEOUT" default:"0s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}
