package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/studiowebux/restcore/internal/types"
)

// TestSettings_Show tests listing the settings of a request
func TestSettings_Show(t *testing.T) {
	noColor(t)
	path := saveCollection(t, types.NewRequest("one", "https://x/1"))

	var out bytes.Buffer
	if err := Settings(SettingsOptions{CollectionPath: path}, &out); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	for _, want := range []string{
		"Settings for one:",
		"use_config_proxy               true",
		"timeout                        30000",
		"accept_invalid_hostnames       false",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out.String())
		}
	}
}

// TestSettings_Assign tests that assignments are applied and saved
func TestSettings_Assign(t *testing.T) {
	path := saveCollection(t,
		types.NewRequest("one", "https://x/1"),
		types.NewRequest("two", "https://x/2"),
	)

	var out bytes.Buffer
	err := Settings(SettingsOptions{
		CollectionPath: path,
		Name:           "two",
		Assignments:    []string{"timeout=5000", "allow_redirects = false"},
	}, &out)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	c, err := LoadCollection(path)
	if err != nil {
		t.Fatalf("Failed to reload collection: %v", err)
	}
	got := c.Requests[1].Settings
	if got.Timeout.AsU32() != 5000 {
		t.Errorf("Expected timeout 5000, got %d", got.Timeout.AsU32())
	}
	if got.AllowRedirects.AsBool() {
		t.Error("Expected redirects disabled")
	}
	if c.Requests[0].Settings.Timeout.AsU32() != types.DefaultTimeoutMillis {
		t.Error("Expected other request untouched")
	}
}

// TestSettings_InvalidAssignments tests rejected assignments
func TestSettings_InvalidAssignments(t *testing.T) {
	tests := []struct {
		name       string
		assignment string
		wantErr    string
	}{
		{"missing equals", "timeout", "expected key=value"},
		{"unknown key", "retries=3", "unknown setting"},
		{"bool kind", "allow_redirects=maybe", "expects true or false"},
		{"negative number", "timeout=-1", "expects an unsigned integer"},
		{"number too large", "timeout=4294967296", "expects an unsigned integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := types.DefaultRequestSettings()
			err := applySetting(&settings, tt.assignment)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
			if settings != types.DefaultRequestSettings() {
				t.Error("Expected settings untouched")
			}
		})
	}
}
