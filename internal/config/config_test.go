package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), FilePermissions); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_PartialFile(t *testing.T) {
	path := writeConfig(t, "proxy:\n  https: http://proxy.local:3128\nlog_level: debug\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := Config{
		Proxy:            ProxyConfig{HTTPS: "http://proxy.local:3128"},
		LogLevel:         "debug",
		DefaultTimeoutMs: 30000,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.DefaultTimeout(); got != 30*time.Second {
		t.Errorf("Expected 30s default timeout, got %v", got)
	}

	httpProxy, httpsProxy, err := cfg.ProxyURLs()
	if err != nil {
		t.Fatalf("ProxyURLs failed: %v", err)
	}
	if httpProxy != nil {
		t.Errorf("Expected no http proxy, got %v", httpProxy)
	}
	if httpsProxy == nil || httpsProxy.Host != "proxy.local:3128" {
		t.Errorf("Unexpected https proxy %v", httpsProxy)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "proxy: [unclosed\n"},
		{"bad level", "log_level: loud\n"},
		{"bad timeout", "default_timeout_ms: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestProxyURLs_Invalid(t *testing.T) {
	cfg := Config{Proxy: ProxyConfig{HTTP: "proxy.local"}}
	if _, _, err := cfg.ProxyURLs(); err == nil {
		t.Error("Expected error for proxy without scheme")
	}
}

func TestEnvironmentPath(t *testing.T) {
	EnvironmentsDir = t.TempDir()
	named := filepath.Join(EnvironmentsDir, "dev.json")
	if err := os.WriteFile(named, []byte(`{}`), FilePermissions); err != nil {
		t.Fatalf("Failed to write environment: %v", err)
	}

	got, err := EnvironmentPath("dev")
	if err != nil || got != named {
		t.Errorf("Expected %s, got %s (%v)", named, got, err)
	}

	got, err = EnvironmentPath(named)
	if err != nil || got != named {
		t.Errorf("Expected direct path %s, got %s (%v)", named, got, err)
	}

	if _, err := EnvironmentPath("prod"); err == nil {
		t.Error("Expected error for unknown environment")
	}
	if _, err := EnvironmentPath(filepath.Join(EnvironmentsDir, "nope.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestCollectionPath(t *testing.T) {
	prev := CollectionsDir
	CollectionsDir = t.TempDir()
	t.Cleanup(func() { CollectionsDir = prev })

	named := filepath.Join(CollectionsDir, "api.yaml")
	if err := os.WriteFile(named, []byte("requests: []\n"), FilePermissions); err != nil {
		t.Fatalf("Failed to write collection: %v", err)
	}

	got, err := CollectionPath("api")
	if err != nil || got != named {
		t.Errorf("Expected %s, got %s (%v)", named, got, err)
	}
	if _, err := CollectionPath("api.json"); err == nil {
		t.Error("Expected error for a name with a different extension")
	}
	if _, err := CollectionPath(""); err == nil {
		t.Error("Expected error for empty name")
	}
}

func TestInitialize(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	for _, dir := range []string{ConfigDir, EnvironmentsDir, CollectionsDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("Expected directory %s", dir)
		}
	}

	cfg, err := Load(ConfigFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("default file mismatch (-want +got):\n%s", diff)
	}
}
