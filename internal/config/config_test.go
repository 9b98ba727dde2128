package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Roster.SkipLines != 1 {
		t.Errorf("Roster.SkipLines = %d, want %d", cfg.Roster.SkipLines, 1)
	}
	if cfg.Roster.MaskWidth != 3 {
		t.Errorf("Roster.MaskWidth = %d, want %d", cfg.Roster.MaskWidth, 3)
	}
	if !cfg.Roster.ValidateCourses {
		t.Error("Roster.ValidateCourses = false, want true")
	}
	if cfg.Roster.IncludeMissing {
		t.Error("Roster.IncludeMissing = true, want false")
	}
	if cfg.Roster.HashSeparator != "," {
		t.Errorf("Roster.HashSeparator = %q, want %q", cfg.Roster.HashSeparator, ",")
	}
	if cfg.Roster.QRSeparator != "\n" {
		t.Errorf("Roster.QRSeparator = %q, want newline", cfg.Roster.QRSeparator)
	}
	if cfg.Render.Layout != "idcard" {
		t.Errorf("Render.Layout = %q, want %q", cfg.Render.Layout, "idcard")
	}
	if cfg.Batch.MaxConcurrent != 4 {
		t.Errorf("Batch.MaxConcurrent = %d, want %d", cfg.Batch.MaxConcurrent, 4)
	}
	if cfg.Render.ThemeFile != "" {
		t.Errorf("Render.ThemeFile = %q, want empty", cfg.Render.ThemeFile)
	}

	wantHeaders := []string{"id", "name", "birthdate", "rg", "cpf", "ra", "entity", "course", "graduated"}
	if len(cfg.Roster.Headers) != len(wantHeaders) {
		t.Fatalf("Roster.Headers length = %d, want %d", len(cfg.Roster.Headers), len(wantHeaders))
	}
	for i, h := range wantHeaders {
		if cfg.Roster.Headers[i] != h {
			t.Errorf("Roster.Headers[%d] = %q, want %q", i, cfg.Roster.Headers[i], h)
		}
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("ROSTER_SKIP_LINES", "0")
	t.Setenv("ROSTER_INCLUDE_MISSING", "true")
	t.Setenv("RENDER_LAYOUT", "pimaco-6180")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BATCH_TIMEOUT", "1m30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Roster.SkipLines != 0 {
		t.Errorf("Roster.SkipLines = %d, want 0", cfg.Roster.SkipLines)
	}
	if !cfg.Roster.IncludeMissing {
		t.Error("Roster.IncludeMissing = false, want true")
	}
	if cfg.Render.Layout != "pimaco-6180" {
		t.Errorf("Render.Layout = %q, want %q", cfg.Render.Layout, "pimaco-6180")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Batch.Timeout != 90*time.Second {
		t.Errorf("Batch.Timeout = %v, want %v", cfg.Batch.Timeout, 90*time.Second)
	}
}

func TestLoad_EscapedSeparator(t *testing.T) {
	t.Setenv("ROSTER_QR_SEPARATOR", `\t`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Roster.QRSeparator != "\t" {
		t.Errorf("Roster.QRSeparator = %q, want tab", cfg.Roster.QRSeparator)
	}
}

func TestLoad_CommaSeparatedHeaders(t *testing.T) {
	t.Setenv("ROSTER_HEADERS", "id, name ,course,, ra")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := []string{"id", "name", "course", "ra"}
	if len(cfg.Roster.Headers) != len(expected) {
		t.Fatalf("Headers length = %d, want %d", len(cfg.Roster.Headers), len(expected))
	}
	for i, v := range expected {
		if cfg.Roster.Headers[i] != v {
			t.Errorf("Headers[%d] = %q, want %q", i, cfg.Roster.Headers[i], v)
		}
	}
}

func TestLoad_InvalidInteger(t *testing.T) {
	t.Setenv("ROSTER_MASK_WIDTH", "three")

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for non-numeric ROSTER_MASK_WIDTH")
	}
}

func TestDefaults_IgnoresEnvironment(t *testing.T) {
	t.Setenv("RENDER_LAYOUT", "pimaco-6180")

	cfg := Defaults()
	if cfg.Render.Layout != "idcard" {
		t.Errorf("Defaults().Render.Layout = %q, want idcard", cfg.Render.Layout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults() should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero mask width",
			mutate:  func(c *Config) { c.Roster.MaskWidth = 0 },
			wantErr: "ROSTER_MASK_WIDTH",
		},
		{
			name:    "headers without name",
			mutate:  func(c *Config) { c.Roster.Headers = []string{"id", "course"} },
			wantErr: "name column",
		},
		{
			name:    "negative skip",
			mutate:  func(c *Config) { c.Roster.SkipLines = -1 },
			wantErr: "ROSTER_SKIP_LINES",
		},
		{
			name:    "no concurrency",
			mutate:  func(c *Config) { c.Batch.MaxConcurrent = 0 },
			wantErr: "BATCH_MAX_CONCURRENT",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "empty layout",
			mutate:  func(c *Config) { c.Render.Layout = " " },
			wantErr: "RENDER_LAYOUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() expected error mentioning %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error should mention %s: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_ReportsAllFailures(t *testing.T) {
	cfg := Defaults()
	cfg.Roster.MaskWidth = 0
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"ROSTER_MASK_WIDTH", "LOG_FORMAT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestString(t *testing.T) {
	cfg := Defaults()
	s := cfg.String()
	for _, want := range []string{`Layout: "idcard"`, "MaxConcurrent: 4", "Timeout: 0s", `Level: "info"`, "Headers: 9"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
