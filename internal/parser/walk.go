package parser

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/studiowebux/restcore/internal/types"
	"golang.org/x/sync/errgroup"
)

// ParseCurlFilesRecursively imports every file under dir as one cURL
// invocation, descending at most maxDepth directory levels (negative means
// unlimited). The first failure aborts the walk; an empty tree is
// ErrNoRequestsFound.
func ParseCurlFilesRecursively(dir string, maxDepth int) ([]*types.Handle, error) {
	files, err := collectFiles(dir, maxDepth, func(string) bool { return true })
	if err != nil {
		return nil, err
	}
	return parseFiles(files, func(path string) ([]*types.Handle, error) {
		h, err := ParseCurlFile(path)
		if err != nil {
			return nil, err
		}
		return []*types.Handle{h}, nil
	})
}

// ParseHTTPFilesRecursively imports every *.http file under dir
func ParseHTTPFilesRecursively(dir string, maxDepth int) ([]*types.Handle, error) {
	files, err := collectFiles(dir, maxDepth, func(path string) bool {
		return strings.EqualFold(filepath.Ext(path), ".http")
	})
	if err != nil {
		return nil, err
	}
	return parseFiles(files, ParseHTTPFile)
}

// collectFiles lists matching regular files in lexical order. Hidden files
// and directories are skipped.
func collectFiles(root string, maxDepth int, match func(string) bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if maxDepth >= 0 && path != root && depth(root, path) > maxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && match(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &ImportError{Path: root, Err: fmt.Errorf("%w: %v", ErrReadFile, err)}
	}
	return files, nil
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

// parseFiles parses files concurrently and concatenates the results in
// file order. When several files fail, the error of the first one in file
// order is returned.
func parseFiles(files []string, parse func(string) ([]*types.Handle, error)) ([]*types.Handle, error) {
	results := make([][]*types.Handle, len(files))
	errs := make([]error, len(files))

	var mu sync.Mutex
	firstFailed := len(files)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range files {
		g.Go(func() error {
			mu.Lock()
			skip := i > firstFailed
			mu.Unlock()
			if skip {
				return nil
			}

			handles, err := parse(path)
			if err != nil {
				errs[i] = err
				mu.Lock()
				firstFailed = min(firstFailed, i)
				mu.Unlock()
				return nil
			}
			results[i] = handles
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var all []*types.Handle
	for _, r := range results {
		all = append(all, r...)
	}
	if len(all) == 0 {
		return nil, ErrNoRequestsFound
	}
	return all, nil
}
