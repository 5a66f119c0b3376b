package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetupLogger(t *testing.T) {
	// Save original globals.
	origLevel := logLevel
	origFormat := logFormat
	t.Cleanup(func() {
		logLevel = origLevel
		logFormat = origFormat
	})

	for _, tc := range []struct {
		name      string
		logLevel  string
		logFormat string
	}{
		{name: "debug/text", logLevel: "debug", logFormat: "text"},
		{name: "info/json", logLevel: "info", logFormat: "json"},
		{name: "warn/text", logLevel: "warn", logFormat: "text"},
		{name: "error/text", logLevel: "error", logFormat: "text"},
		{name: "unknown/text", logLevel: "unknown", logFormat: "text"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			logLevel = tc.logLevel
			logFormat = tc.logFormat

			logger := setupLogger()
			if logger == nil {
				t.Fatal("setupLogger returned nil")
			}
		})
	}
}

func TestNewEngine_WithExplicitManifest(t *testing.T) {
	origManifestFile := manifestFile
	t.Cleanup(func() { manifestFile = origManifestFile })

	tmpDir := t.TempDir()
	manifestPath := filepath.Join(tmpDir, "project.yaml")
	content := []byte(`name: demo
language: go
source_dir: src
`)
	if err := os.WriteFile(manifestPath, content, 0o600); err != nil {
		t.Fatalf("failed to write temp manifest: %v", err)
	}

	manifestFile = manifestPath
	logger := setupLogger()

	engine, err := newEngine(tidyCmd, logger, false)
	if err != nil {
		t.Fatalf("newEngine returned error: %v", err)
	}
	if engine == nil {
		t.Fatal("newEngine returned nil engine")
	}
}

func TestNewEngine_MissingManifest(t *testing.T) {
	origManifestFile := manifestFile
	t.Cleanup(func() { manifestFile = origManifestFile })

	manifestFile = filepath.Join(t.TempDir(), "nonexistent.yaml")
	logger := setupLogger()

	_, err := newEngine(tidyCmd, logger, false)
	if err == nil {
		t.Fatal("expected error for missing manifest, got nil")
	}
}

func TestNewEngine_InvalidSettings(t *testing.T) {
	origManifestFile := manifestFile
	t.Cleanup(func() { manifestFile = origManifestFile })

	tmpDir := t.TempDir()
	manifestPath := filepath.Join(tmpDir, "project.yaml")
	if err := os.WriteFile(manifestPath, []byte("language: cobol\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	manifestFile = manifestPath
	logger := setupLogger()

	_, err := newEngine(tidyCmd, logger, false)
	if err == nil {
		t.Fatal("expected error for unsupported language, got nil")
	}
}

func TestVersionCmd(t *testing.T) {
	// versionCmd.Run simply prints version info; should not panic.
	versionCmd.Run(versionCmd, []string{})
}
