package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "BOOKC_API_KEY", "WORKER_COUNT", "DEFAULT_BUILDERS", "JOB_TTL", "REFERENCE_SEPARATOR"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.WorkerCount)
	}
	if len(cfg.DefaultBuilders) != 2 || cfg.DefaultBuilders[0] != "text" || cfg.DefaultBuilders[1] != "html" {
		t.Errorf("expected default builders [text html], got %v", cfg.DefaultBuilders)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected 1h job TTL, got %s", cfg.JobTTL)
	}
	if cfg.ReferenceSeparator != "|" {
		t.Errorf("expected separator |, got %q", cfg.ReferenceSeparator)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error without BOOKC_API_KEY")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BOOKC_API_KEY", "secret")
	t.Setenv("WORKER_COUNT", "-2")
	t.Setenv("DEFAULT_BUILDERS", " docx, ,text ")
	t.Setenv("JOB_TTL", "90s")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")

	cfg := Load()
	if cfg.WorkerCount != 4 {
		t.Errorf("expected non-positive worker count to fall back to 4, got %d", cfg.WorkerCount)
	}
	if len(cfg.DefaultBuilders) != 2 || cfg.DefaultBuilders[0] != "docx" || cfg.DefaultBuilders[1] != "text" {
		t.Errorf("expected builders [docx text], got %v", cfg.DefaultBuilders)
	}
	if cfg.JobTTL != 90*time.Second {
		t.Errorf("expected 90s job TTL, got %s", cfg.JobTTL)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback to be disabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}
