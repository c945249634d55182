package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestRecordsDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	dir, err := recordsDir()
	if err != nil {
		t.Fatalf("recordsDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".local", "share", appName, "records"); dir != want {
		t.Errorf("recordsDir() = %q, want %q", dir, want)
	}

	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	dir, _ = recordsDir()
	if want := filepath.Join("/tmp/data", appName, "records"); dir != want {
		t.Errorf("recordsDir() with XDG_DATA_HOME = %q, want %q", dir, want)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("AUGMENT_TEST_VALUE", "")
	if got := getEnv("AUGMENT_TEST_VALUE", "fallback"); got != "fallback" {
		t.Errorf("unset: got %q", got)
	}
	t.Setenv("AUGMENT_TEST_VALUE", "set")
	if got := getEnv("AUGMENT_TEST_VALUE", "fallback"); got != "set" {
		t.Errorf("set: got %q", got)
	}
}
