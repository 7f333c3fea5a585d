package cli

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/studiowebux/restcore/internal/types"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func sentRequest(resp types.RequestResponse) types.Request {
	r := types.NewRequest("get", "https://api.example.com/users")
	r.Response = resp
	return r
}

// TestFormatOutput_Text tests the human readable rendering
func TestFormatOutput_Text(t *testing.T) {
	noColor(t)
	img := pngBytes(t, 3, 2)

	tests := []struct {
		name     string
		resp     types.RequestResponse
		showFull bool
		want     []string
		notWant  []string
	}{
		{
			name: "success",
			resp: types.RequestResponse{
				StatusCode: types.Ptr("200 OK"),
				Duration:   types.Ptr("1.5s"),
				Content:    types.BodyContent{Text: "hello"},
				Headers:    []types.HeaderPair{{Name: "content-type", Value: "text/plain"}},
			},
			want:    []string{"200 OK GET https://api.example.com/users", "Duration: 1.50s | Size: 5B", "\nhello\n"},
			notWant: []string{"Headers:", "Body:"},
		},
		{
			name: "full",
			resp: types.RequestResponse{
				StatusCode: types.Ptr("200 OK"),
				Duration:   types.Ptr("12ms"),
				Content:    types.BodyContent{Text: "hello\n"},
				Cookies:    types.Ptr("a=b"),
				Headers: []types.HeaderPair{
					{Name: "set-cookie", Value: "a=b"},
					{Name: "x-trace", Value: "1"},
				},
			},
			showFull: true,
			want:     []string{"Duration: 12ms", "Headers:\n  set-cookie: a=b\n  x-trace: 1\n", "Cookies: a=b", "Body:\nhello\n"},
		},
		{
			name: "transport failure",
			resp: types.RequestResponse{
				Duration: types.Ptr("3ms"),
				Content:  types.BodyContent{Text: "dial tcp: connection refused"},
			},
			want: []string{"No response GET", "Error: dial tcp: connection refused"},
		},
		{
			name: "timeout",
			resp: types.RequestResponse{StatusCode: types.Ptr(types.StatusTimeout), Duration: types.Ptr("30s")},
			want: []string{"TIMEOUT GET", "Duration: 30.00s | Size: 0B"},
		},
		{
			name: "control characters escaped",
			resp: types.RequestResponse{
				StatusCode: types.Ptr("200 OK"),
				Content:    types.BodyContent{Text: "\x1b[2Jgone\tok"},
			},
			want:    []string{`\x1b[2Jgone` + "\tok"},
			notWant: []string{"\x1b"},
		},
		{
			name: "image",
			resp: types.RequestResponse{StatusCode: types.Ptr("200 OK"), Content: types.NewImageContent(img)},
			want: []string{"Duration: - ", "[image 3x2, "},
		},
		{
			name: "broken image",
			resp: types.RequestResponse{StatusCode: types.Ptr("200 OK"), Content: types.NewImageContent([]byte("nope"))},
			want: []string{"[image, 4B, could not be decoded]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatOutput(sentRequest(tt.resp), "text", tt.showFull)
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Expected %q in output, got:\n%s", w, got)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("Did not expect %q in output, got:\n%s", w, got)
				}
			}
		})
	}
}

// TestFormatOutput_Structured tests the json, yaml and body formats
func TestFormatOutput_Structured(t *testing.T) {
	req := sentRequest(types.RequestResponse{
		StatusCode: types.Ptr("201 Created"),
		Duration:   types.Ptr("5ms"),
		Content:    types.BodyContent{Text: `{"id":1}`},
	})

	tests := []struct {
		format string
		want   string
	}{
		{"json", `"status_code": "201 Created"`},
		{"yaml", "status_code: 201 Created"},
		{"body", `{"id":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := formatOutput(req, tt.format, false)
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("Expected %q in output, got:\n%s", tt.want, got)
			}
		})
	}

	if _, err := formatOutput(req, "xml", false); err == nil {
		t.Error("Expected error for unknown format")
	}
}

// TestStatusColor tests the colour picked per status class
func TestStatusColor(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"200 OK", "success"},
		{"302 Found", "redirect"},
		{"404 Not Found", "error"},
		{"503 Service Unavailable", "error"},
		{types.StatusCanceled, "error"},
	}

	named := map[string]interface{}{
		"success":  successColor,
		"redirect": redirectColor,
		"error":    errorColor,
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := statusColor(tt.status); got != named[tt.want] {
				t.Errorf("Expected %s colour for %s", tt.want, tt.status)
			}
		})
	}
}
