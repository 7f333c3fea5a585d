package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/studiowebux/restcore/internal/config"
	"github.com/studiowebux/restcore/internal/types"
)

// SettingsOptions contains options for viewing or editing request settings
type SettingsOptions struct {
	CollectionPath string
	Name           string
	Assignments    []string // key=value pairs, e.g. timeout=5000
}

// Settings prints the settings of one request. When assignments are given
// they are applied first and the collection is saved.
func Settings(opts SettingsOptions, w io.Writer) error {
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
	req := &c.Requests[idx]

	for _, a := range opts.Assignments {
		if err := applySetting(&req.Settings, a); err != nil {
			return err
		}
	}
	if len(opts.Assignments) > 0 {
		if err := c.Save(path); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "Settings for %s:\n", req.Name)
	for _, s := range req.Settings.All() {
		fmt.Fprintf(w, "  %s %s\n", headerColor.Sprintf("%-30s", s.Name), s.Value)
	}
	return nil
}

func applySetting(settings *types.RequestSettings, assignment string) error {
	key, value, ok := strings.Cut(assignment, "=")
	if !ok {
		return fmt.Errorf("invalid setting %q (expected key=value)", assignment)
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	var names []string
	for _, s := range settings.All() {
		names = append(names, s.Name)
		if s.Name != key {
			continue
		}
		switch s.Value.Kind() {
		case types.SettingBool:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("setting %s expects true or false, got %q", key, value)
			}
			*s.Value = types.BoolSetting(b)
		case types.SettingU32:
			n, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return fmt.Errorf("setting %s expects an unsigned integer, got %q", key, value)
			}
			*s.Value = types.U32Setting(uint32(n))
		}
		return nil
	}
	return fmt.Errorf("unknown setting %q (available: %s)", key, strings.Join(names, ", "))
}
