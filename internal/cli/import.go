package cli

import (
	"fmt"
	"io"

	"github.com/studiowebux/restcore/internal/parser"
	"github.com/studiowebux/restcore/internal/types"
)

// Import kinds
const (
	KindCurl = "curl"
	KindHTTP = "http"
)

// ImportOptions contains options for importing requests into a collection
type ImportOptions struct {
	Kind       string // curl or http
	Path       string
	Recursive  bool
	Depth      int // -1 for unlimited, only used with Recursive
	OutputPath string
	Stdin      io.Reader // read when Path is "-"
}

// Import parses opts.Path and writes the resulting collection as YAML to w,
// or to opts.OutputPath when set.
func Import(opts ImportOptions, w io.Writer) (*Collection, error) {
	handles, err := importHandles(opts)
	if err != nil {
		return nil, err
	}

	c := NewCollection(handles)
	if opts.OutputPath != "" {
		if err := c.Save(opts.OutputPath); err != nil {
			return nil, err
		}
		return c, nil
	}

	data, err := c.Marshal()
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write collection: %w", err)
	}
	return c, nil
}

func importHandles(opts ImportOptions) ([]*types.Handle, error) {
	if opts.Path == "-" {
		return importStdin(opts)
	}

	switch opts.Kind {
	case KindCurl:
		if opts.Recursive {
			return parser.ParseCurlFilesRecursively(opts.Path, opts.Depth)
		}
		h, err := parser.ParseCurlFile(opts.Path)
		if err != nil {
			return nil, err
		}
		return []*types.Handle{h}, nil
	case KindHTTP:
		if opts.Recursive {
			return parser.ParseHTTPFilesRecursively(opts.Path, opts.Depth)
		}
		return parser.ParseHTTPFile(opts.Path)
	}
	return nil, fmt.Errorf("unknown import kind %q (expected %s or %s)", opts.Kind, KindCurl, KindHTTP)
}

func importStdin(opts ImportOptions) ([]*types.Handle, error) {
	if opts.Stdin == nil {
		return nil, fmt.Errorf("no input to read")
	}
	data, err := io.ReadAll(opts.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read from stdin: %w", err)
	}

	switch opts.Kind {
	case KindCurl:
		h, err := parser.ParseCurlContent("stdin", string(data))
		if err != nil {
			return nil, err
		}
		return []*types.Handle{h}, nil
	case KindHTTP:
		return parser.ParseHTTPContent(string(data))
	}
	return nil, fmt.Errorf("unknown import kind %q (expected %s or %s)", opts.Kind, KindCurl, KindHTTP)
}
