package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/studiowebux/restcore/internal/config"
	"github.com/studiowebux/restcore/internal/types"
	"gopkg.in/yaml.v3"
)

// ErrRequestNotFound is returned when no request in a collection has the given name
var ErrRequestNotFound = errors.New("request not found")

// Collection is a YAML file holding a list of requests
type Collection struct {
	Requests []types.Request `yaml:"requests"`
}

// NewCollection snapshots the given handles into a collection
func NewCollection(handles []*types.Handle) *Collection {
	c := &Collection{Requests: make([]types.Request, 0, len(handles))}
	for _, h := range handles {
		c.Requests = append(c.Requests, h.Snapshot())
	}
	return c
}

// LoadCollection reads a collection file
func LoadCollection(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}

	var c Collection
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse collection %s: %w", path, err)
	}
	return &c, nil
}

// Marshal encodes the collection as YAML
func (c *Collection) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode collection: %w", err)
	}
	return data, nil
}

// Save writes the collection to path
func (c *Collection) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write collection: %w", err)
	}
	return nil
}

// Find returns the index of the first request called name
func (c *Collection) Find(name string) (int, error) {
	for i, r := range c.Requests {
		if r.Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q (available: %s)", ErrRequestNotFound, name, strings.Join(c.Names(), ", "))
}

// Names lists request names in collection order
func (c *Collection) Names() []string {
	names := make([]string, len(c.Requests))
	for i, r := range c.Requests {
		names[i] = r.Name
	}
	return names
}
