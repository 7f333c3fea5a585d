package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
	}
	return root
}

func names(t *testing.T, dir string, depth int) []string {
	t.Helper()
	handles, err := ParseHTTPFilesRecursively(dir, depth)
	if err != nil {
		t.Fatalf("ParseHTTPFilesRecursively failed: %v", err)
	}
	var out []string
	for _, r := range snapshots(handles) {
		out = append(out, r.Name)
	}
	return out
}

func TestParseHTTPFilesRecursively_DepthAndOrder(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.http":              "### A1\nGET https://x/a1\n### A2\nGET https://x/a2\n",
		"notes.txt":           "GET https://x/ignored\n",
		"sub/b.http":          "### B\nGET https://x/b\n",
		"sub/deep/c.http":     "### C\nGET https://x/c\n",
		".hidden/d.http":      "### D\nGET https://x/d\n",
		"sub/.skip.http":      "### E\nGET https://x/e\n",
		"sub/deep/upper.HTTP": "### F\nGET https://x/f\n",
	})

	tests := []struct {
		depth int
		want  []string
	}{
		{0, []string{"A1", "A2"}},
		{1, []string{"A1", "A2", "B"}},
		{-1, []string{"A1", "A2", "B", "C", "F"}},
	}

	for _, tt := range tests {
		got := names(t, root, tt.depth)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("depth %d mismatch (-want +got):\n%s", tt.depth, diff)
		}
	}
}

func TestParseHTTPFilesRecursively_FirstErrorAborts(t *testing.T) {
	root := writeTree(t, map[string]string{
		"good.http": "GET https://x/ok\n",
		"bad.http":  "FETCH https://x/nope\n",
	})

	handles, err := ParseHTTPFilesRecursively(root, -1)
	if !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("Expected ErrUnknownMethod, got %v", err)
	}
	if handles != nil {
		t.Errorf("Expected no partial results, got %d", len(handles))
	}

	var ie *ImportError
	if !errors.As(err, &ie) || filepath.Base(ie.Path) != "bad.http" {
		t.Errorf("Expected error to name bad.http, got %v", err)
	}
}

func TestParseHTTPFilesRecursively_ReportsFirstFailingFile(t *testing.T) {
	files := map[string]string{"a_bad.http": "FETCH https://x/first\n"}
	for i := 0; i < 20; i++ {
		files[fmt.Sprintf("z_bad_%02d.http", i)] = "FETCH https://x/later\n"
	}
	root := writeTree(t, files)

	for run := 0; run < 5; run++ {
		_, err := ParseHTTPFilesRecursively(root, -1)
		var ie *ImportError
		if !errors.As(err, &ie) {
			t.Fatalf("Expected ImportError, got %v", err)
		}
		if got := filepath.Base(ie.Path); got != "a_bad.http" {
			t.Errorf("run %d: expected a_bad.http to be reported, got %s", run, got)
		}
	}
}

func TestParseHTTPFilesRecursively_Empty(t *testing.T) {
	root := writeTree(t, map[string]string{"readme.md": "nothing"})
	if _, err := ParseHTTPFilesRecursively(root, -1); !errors.Is(err, ErrNoRequestsFound) {
		t.Errorf("Expected ErrNoRequestsFound, got %v", err)
	}
}

func TestParseHTTPFilesRecursively_MissingDir(t *testing.T) {
	_, err := ParseHTTPFilesRecursively(filepath.Join(t.TempDir(), "nope"), -1)
	if !errors.Is(err, ErrReadFile) {
		t.Errorf("Expected ErrReadFile, got %v", err)
	}
}

func TestParseCurlFilesRecursively(t *testing.T) {
	root := writeTree(t, map[string]string{
		"list.sh":          "curl https://x/items\n",
		"nested/create.sh": "curl -X POST https://x/items\n",
	})

	handles, err := ParseCurlFilesRecursively(root, 2)
	if err != nil {
		t.Fatalf("ParseCurlFilesRecursively failed: %v", err)
	}
	var got []string
	for _, r := range snapshots(handles) {
		got = append(got, r.Name)
	}
	if diff := cmp.Diff([]string{"list", "create"}, got); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}
