package executor

import (
	"bytes"
	"compress/zlib"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/studiowebux/restcore/internal/types"
)

func compress(t *testing.T, coding string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	switch coding {
	case "gzip":
		w := gzip.NewWriter(&buf)
		_, _ = w.Write(data)
		_ = w.Close()
	case "deflate":
		w := zlib.NewWriter(&buf)
		_, _ = w.Write(data)
		_ = w.Close()
	case "raw-deflate":
		w, err := flate.NewWriter(&buf, flate.DefaultCompression)
		if err != nil {
			t.Fatalf("flate writer: %v", err)
		}
		_, _ = w.Write(data)
		_ = w.Close()
	case "br":
		w := brotli.NewWriter(&buf)
		_, _ = w.Write(data)
		_ = w.Close()
	case "zstd":
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			t.Fatalf("zstd writer: %v", err)
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil)
	default:
		t.Fatalf("unknown coding %s", coding)
	}
	return buf.Bytes()
}

func TestDecodeContent(t *testing.T) {
	plain := []byte(`{"hello":"world"}`)

	tests := []struct {
		name     string
		encoding string
		data     []byte
	}{
		{"identity", "identity", plain},
		{"gzip", "gzip", compress(t, "gzip", plain)},
		{"zlib deflate", "deflate", compress(t, "deflate", plain)},
		{"raw deflate", "deflate", compress(t, "raw-deflate", plain)},
		{"brotli", "br", compress(t, "br", plain)},
		{"zstd", "zstd", compress(t, "zstd", plain)},
		{"stacked", "gzip, br", compress(t, "br", compress(t, "gzip", plain))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeContent(tt.encoding, tt.data)
			if err != nil {
				t.Fatalf("decodeContent failed: %v", err)
			}
			if !bytes.Equal(got, plain) {
				t.Errorf("Expected %q, got %q", plain, got)
			}
		})
	}
}

func TestDecodeContent_Unsupported(t *testing.T) {
	if _, err := decodeContent("compress", []byte("x")); err == nil {
		t.Error("Expected error for unsupported encoding")
	}
}

// longUTF8 is ASCII for well past the first kilobyte, then multi-byte
var longUTF8 = `{"pad":"` + strings.Repeat("a", 1100) + `","name":"café"}`

func TestClassifyContent(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		data        []byte
		pretty      bool
		want        types.ResponseContent
	}{
		{"json pretty", "application/json", []byte(`{"a":[]}`), true, types.BodyContent{Text: "{\n  \"a\": []\n}"}},
		{"json suffix", "application/problem+json", []byte(`{"a":1}`), true, types.BodyContent{Text: "{\n  \"a\": 1\n}"}},
		{"invalid json kept", "application/json", []byte(`{"a":`), true, types.BodyContent{Text: `{"a":`}},
		{"text not indented", "text/plain", []byte(`{"a":1}`), true, types.BodyContent{Text: `{"a":1}`}},
		{"latin1", "text/plain; charset=iso-8859-1", []byte("caf\xe9"), false, types.BodyContent{Text: "café"}},
		{"no content type", "", []byte("plain"), true, types.BodyContent{Text: "plain"}},
		{"utf-8 after sniff window", "application/json", []byte(longUTF8), false, types.BodyContent{Text: longUTF8}},
		{"undeclared latin1", "text/plain", []byte("caf\xe9"), false, types.BodyContent{Text: "café"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyContent(tt.contentType, tt.data, tt.pretty)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("content mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStatusLine(t *testing.T) {
	tests := []struct {
		resp *http.Response
		want string
	}{
		{&http.Response{StatusCode: 200, Status: "200 OK"}, "200 OK"},
		{&http.Response{StatusCode: 404, Status: ""}, "404 Not Found"},
		{&http.Response{StatusCode: 299, Status: "299 Custom Thing"}, "299 Custom Thing"},
		{&http.Response{StatusCode: 299, Status: "299"}, "299"},
	}

	for _, tt := range tests {
		if got := statusLine(tt.resp); got != tt.want {
			t.Errorf("statusLine(%q) = %q, want %q", tt.resp.Status, got, tt.want)
		}
	}
}

// TestSend_CompressedResponse tests decoding of encodings the transport leaves alone
func TestSend_CompressedResponse(t *testing.T) {
	plain := []byte(`{"ok":true}`)
	body := compress(t, "br", plain)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "br")
		_, _ = w.Write(body)
	}))
	defer server.Close()

	h := newHandle("br", server.URL, func(r *types.Request) {
		r.Headers = []types.KeyValue{types.NewKeyValue("Accept-Encoding", "br")}
		r.Settings.PrettyPrintResponseContent = types.BoolSetting(false)
	})
	resp := mustSend(t, New(), h, nil)

	if diff := cmp.Diff(types.BodyContent{Text: string(plain)}, resp.Content); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}
}

// TestSend_LongUTF8BodyVerbatim tests that UTF-8 late in a large body survives
func TestSend_LongUTF8BodyVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(longUTF8))
	}))
	defer server.Close()

	h := newHandle("utf8", server.URL, func(r *types.Request) {
		r.Settings.PrettyPrintResponseContent = types.BoolSetting(false)
	})
	resp := mustSend(t, New(), h, nil)

	if diff := cmp.Diff(types.BodyContent{Text: longUTF8}, resp.Content); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := StatusCode("404 Not Found"); got != 404 {
		t.Errorf("Expected 404, got %d", got)
	}
	if got := StatusCode(types.StatusTimeout); got != 0 {
		t.Errorf("Expected 0 for TIMEOUT, got %d", got)
	}
	if !IsSuccessStatus(204) || IsClientErrorStatus(500) || !IsServerErrorStatus(503) {
		t.Error("Unexpected status class")
	}
	if got := FormatSize(2048); got != "2.00KB" {
		t.Errorf("Expected 2.00KB, got %s", got)
	}
}
