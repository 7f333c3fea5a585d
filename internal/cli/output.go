package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/studiowebux/restcore/internal/executor"
	"github.com/studiowebux/restcore/internal/types"
	"gopkg.in/yaml.v3"
)

var (
	successColor  = color.New(color.FgGreen, color.Bold)
	redirectColor = color.New(color.FgYellow, color.Bold)
	errorColor    = color.New(color.FgRed, color.Bold)
	headerColor   = color.New(color.FgCyan)
	dimColor      = color.New(color.Faint)
)

// formatOutput formats a sent request's response in the given format
func formatOutput(req types.Request, format string, showFull bool) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(req, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil

	case "yaml":
		data, err := yaml.Marshal(req)
		if err != nil {
			return "", err
		}
		return string(data), nil

	case "body":
		switch c := req.Response.Content.(type) {
		case types.BodyContent:
			return c.Text, nil
		case types.ImageContent:
			return string(c.Data), nil
		}
		return "", nil

	case "text", "":
		return formatText(req, showFull), nil
	}
	return "", fmt.Errorf("unknown output format %q (expected text, json, yaml or body)", format)
}

func formatText(req types.Request, showFull bool) string {
	resp := req.Response
	var sb strings.Builder

	// Status line
	status := resp.StatusText()
	if status == "" {
		sb.WriteString(errorColor.Sprint("No response"))
	} else {
		sb.WriteString(statusColor(status).Sprint(status))
	}
	fmt.Fprintf(&sb, " %s %s\n", dimColor.Sprint(types.MethodLabel(req.Protocol)), req.URL)

	// Duration and size
	fmt.Fprintf(&sb, "Duration: %s | Size: %s\n", formatDuration(resp.Duration), executor.FormatSize(contentSize(resp.Content)))

	if showFull {
		if len(resp.Headers) > 0 {
			sb.WriteString("\nHeaders:\n")
			for _, h := range resp.Headers {
				fmt.Fprintf(&sb, "  %s: %s\n", headerColor.Sprint(h.Name), escapeControl(h.Value))
			}
		}
		if resp.Cookies != nil {
			fmt.Fprintf(&sb, "\nCookies: %s\n", *resp.Cookies)
		}
	}

	switch c := resp.Content.(type) {
	case types.BodyContent:
		if c.Text == "" {
			break
		}
		text := escapeControl(c.Text)
		if status == "" {
			fmt.Fprintf(&sb, "\n%s\n", errorColor.Sprintf("Error: %s", text))
			break
		}
		if showFull {
			sb.WriteString("\nBody:\n")
		} else {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			sb.WriteString("\n")
		}
	case types.ImageContent:
		if c.Image == nil {
			fmt.Fprintf(&sb, "\n[image, %s, could not be decoded]\n", executor.FormatSize(len(c.Data)))
		} else {
			b := c.Image.Bounds()
			fmt.Fprintf(&sb, "\n[image %dx%d, %s]\n", b.Dx(), b.Dy(), executor.FormatSize(len(c.Data)))
		}
	}

	return sb.String()
}

func statusColor(status string) *color.Color {
	code := executor.StatusCode(status)
	switch {
	case executor.IsSuccessStatus(code):
		return successColor
	case executor.IsClientErrorStatus(code), executor.IsServerErrorStatus(code), code == 0:
		return errorColor
	}
	return redirectColor
}

func formatDuration(d *string) string {
	if d == nil {
		return "-"
	}
	parsed, err := time.ParseDuration(*d)
	if err != nil {
		return *d
	}
	return executor.FormatDuration(parsed)
}

func contentSize(c types.ResponseContent) int {
	switch v := c.(type) {
	case types.BodyContent:
		return len(v.Text)
	case types.ImageContent:
		return len(v.Data)
	}
	return 0
}

// escapeControl rewrites control characters other than newlines and tabs as \xNN
func escapeControl(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			sb.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&sb, "\\x%02x", r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
