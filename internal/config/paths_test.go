package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDefaultPaths(t *testing.T) {
	paths := DefaultPaths()

	if paths.ConfigDir == "" {
		t.Error("ConfigDir is empty")
	}
	if paths.DataDir == "" {
		t.Error("DataDir is empty")
	}
	if !filepath.IsAbs(paths.ConfigDir) {
		t.Errorf("ConfigDir should be absolute: %s", paths.ConfigDir)
	}
	if !filepath.IsAbs(paths.DataDir) {
		t.Errorf("DataDir should be absolute: %s", paths.DataDir)
	}
}

func TestDefaultPaths_XDG(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG test not applicable on Windows")
	}

	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	t.Setenv("XDG_DATA_HOME", "/custom/data")

	paths := DefaultPaths()

	if paths.ConfigDir != "/custom/config/cmdvault" {
		t.Errorf("ConfigDir should respect XDG_CONFIG_HOME: %s", paths.ConfigDir)
	}
	if paths.DataDir != "/custom/data/cmdvault" {
		t.Errorf("DataDir should respect XDG_DATA_HOME: %s", paths.DataDir)
	}
}

func TestPaths_ConfigFile(t *testing.T) {
	configFile := DefaultPaths().ConfigFile()

	if !strings.HasSuffix(configFile, "config.yaml") {
		t.Errorf("ConfigFile should end with config.yaml: %s", configFile)
	}
	if !strings.Contains(configFile, "cmdvault") {
		t.Errorf("ConfigFile should contain 'cmdvault': %s", configFile)
	}
}

func TestPaths_DatabaseFile(t *testing.T) {
	t.Setenv("CMDVAULT_DB", "")
	if dbFile := DefaultPaths().DatabaseFile(); !strings.HasSuffix(dbFile, "commands.db") {
		t.Errorf("DatabaseFile should end with commands.db: %s", dbFile)
	}

	t.Setenv("CMDVAULT_DB", "/tmp/other.db")
	if dbFile := DefaultPaths().DatabaseFile(); dbFile != "/tmp/other.db" {
		t.Errorf("CMDVAULT_DB should override DatabaseFile: %s", dbFile)
	}
}

func TestPaths_LogFile(t *testing.T) {
	paths := DefaultPaths()

	if !strings.HasPrefix(paths.LogFile(), paths.LogDir()) {
		t.Errorf("LogFile should live in LogDir: %s", paths.LogFile())
	}
	if !strings.HasSuffix(paths.LogFile(), "cmdvault.log") {
		t.Errorf("LogFile should end with cmdvault.log: %s", paths.LogFile())
	}
}

func TestPaths_EnsureDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	paths := &Paths{
		ConfigDir: filepath.Join(tmpDir, "config", "cmdvault"),
		DataDir:   filepath.Join(tmpDir, "data", "cmdvault"),
	}

	if err := paths.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{paths.ConfigDir, paths.DataDir, paths.LogDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Errorf("Directory should exist: %s", dir)
		} else if !info.IsDir() {
			t.Errorf("Should be a directory: %s", dir)
		}
	}
}

func TestHomeDir(t *testing.T) {
	home := homeDir()

	if home == "" {
		t.Error("homeDir returned empty string")
	}
	if !filepath.IsAbs(home) {
		t.Errorf("homeDir should return absolute path: %s", home)
	}
}
