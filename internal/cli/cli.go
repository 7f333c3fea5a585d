package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/studiowebux/restcore/internal/config"
	"github.com/studiowebux/restcore/internal/executor"
	"github.com/studiowebux/restcore/internal/types"
)

// ErrRequestFailed is returned by Run when the send produced no 2xx or 3xx status
var ErrRequestFailed = errors.New("request failed")

// isInteractive checks if stdin is a terminal (not piped)
var isInteractive = func() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// pickRequest is the interactive selector, replaced in tests
var pickRequest = promptForRequest

// RunOptions contains options for sending a request from a collection
type RunOptions struct {
	CollectionPath string // collection name under the collections dir, or a file path
	Name           string
	Env            string // environment name under the environments dir, or a file path
	OutputFormat   string // text, json, yaml, body
	ShowFull       bool
	Save           bool   // write the response back into the collection
	SavePath       string // write the formatted output to a file instead of w
}

// Run sends one request of a collection and writes the formatted response to w
func Run(ctx context.Context, exec *executor.Executor, opts RunOptions, w io.Writer) error {
	path, err := config.CollectionPath(opts.CollectionPath)
	if err != nil {
		return err
	}
	c, err := LoadCollection(path)
	if err != nil {
		return err
	}
	if len(c.Requests) == 0 {
		return fmt.Errorf("no requests in collection: %s", path)
	}

	idx, err := selectRequest(c, opts.Name)
	if err != nil {
		return err
	}

	env, err := loadEnvironment(opts.Env)
	if err != nil {
		return err
	}

	h := types.NewHandle(c.Requests[idx])

	// Handle Ctrl+C by cancelling the in-flight send
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nRequest cancelled by user")
			h.Cancel()
		case <-done:
		}
	}()

	resp, err := exec.Send(ctx, h, env)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	sent := h.Snapshot()

	if opts.Save {
		c.Requests[idx] = sent
		if err := c.Save(path); err != nil {
			return err
		}
	}

	output, err := formatOutput(sent, opts.OutputFormat, opts.ShowFull)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if opts.SavePath != "" {
		if err := os.WriteFile(opts.SavePath, []byte(output), config.FilePermissions); err != nil {
			return fmt.Errorf("failed to save response: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Response saved to %s\n", opts.SavePath)
	} else if _, err := io.WriteString(w, output); err != nil {
		return err
	}

	if !succeeded(resp) {
		status := resp.StatusText()
		if status == "" {
			status = "no response"
		}
		return fmt.Errorf("%w: %s", ErrRequestFailed, status)
	}
	return nil
}

// selectRequest picks by name, falls back to the only request, then to the
// interactive selector.
func selectRequest(c *Collection, name string) (int, error) {
	if name != "" {
		return c.Find(name)
	}
	if len(c.Requests) == 1 {
		return 0, nil
	}
	if !isInteractive() {
		return -1, fmt.Errorf("collection has %d requests, use --name to pick one (available: %s)",
			len(c.Requests), strings.Join(c.Names(), ", "))
	}
	return pickRequest(c.Requests)
}

func loadEnvironment(nameOrPath string) (*types.Environment, error) {
	if nameOrPath == "" {
		return nil, nil
	}
	path, err := config.EnvironmentPath(nameOrPath)
	if err != nil {
		return nil, err
	}
	env, err := types.LoadEnvironment(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	return env, nil
}

func succeeded(resp types.RequestResponse) bool {
	code := executor.StatusCode(resp.StatusText())
	return code >= 200 && code < 400
}
