package executor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/studiowebux/restcore/internal/auth"
	"github.com/studiowebux/restcore/internal/types"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// readResponse converts a received HTTP response into a RequestResponse
func (e *Executor) readResponse(resp *http.Response, s types.RequestSettings) outcome {
	var out outcome
	r := &out.response

	r.StatusCode = types.Ptr(statusLine(resp))
	r.Headers = responseHeaders(resp.Header)

	if s.StoreReceivedCookies.AsBool() && resp.Request != nil {
		r.Cookies = formatCookies(e.jar.Cookies(resp.Request.URL))
	}
	if resp.StatusCode == http.StatusUnauthorized {
		out.challenge = digestChallenge(resp.Header)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		r.Content = types.BodyContent{Text: fmt.Sprintf("failed to read response body: %v", err)}
		return out
	}

	if encoding := resp.Header.Get("Content-Encoding"); encoding != "" {
		decoded, err := decodeContent(encoding, data)
		if err != nil {
			e.logger.Warn("keeping encoded response body", zap.String("encoding", encoding), zap.Error(err))
		} else {
			data = decoded
		}
	}

	r.Content = classifyContent(resp.Header.Get("Content-Type"), data, s.PrettyPrintResponseContent.AsBool())
	return out
}

// statusLine formats "<code> <reason phrase>"
func statusLine(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, code))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return strings.TrimSpace(code + " " + reason)
}

// responseHeaders flattens h into lower-cased pairs. Names are sorted;
// repeated values keep the order they were received in.
func responseHeaders(h http.Header) []types.HeaderPair {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := []types.HeaderPair{}
	for _, name := range names {
		for _, v := range h[name] {
			pairs = append(pairs, types.HeaderPair{Name: strings.ToLower(name), Value: v})
		}
	}
	return pairs
}

func formatCookies(cookies []*http.Cookie) *string {
	if len(cookies) == 0 {
		return nil
	}
	parts := make([]string, len(cookies))
	for i, c := range cookies {
		parts[i] = c.Name + "=" + c.Value
	}
	return types.Ptr(strings.Join(parts, "; "))
}

func digestChallenge(h http.Header) string {
	for _, v := range h.Values("WWW-Authenticate") {
		if auth.IsDigestChallenge(v) {
			return v
		}
	}
	return ""
}

// classifyContent decodes images and reads everything else as text,
// indenting JSON when pretty is set.
func classifyContent(contentType string, data []byte, pretty bool) types.ResponseContent {
	mediaType := contentType
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = mt
	} else if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	if strings.HasPrefix(mediaType, "image/") {
		return types.NewImageContent(data)
	}

	text := decodeText(data, contentType)
	if pretty && isJSON(mediaType) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(text), "", "  "); err == nil {
			text = buf.String()
		}
	}
	return types.BodyContent{Text: text}
}

func isJSON(mediaType string) bool {
	return strings.HasSuffix(mediaType, "/json") || strings.HasSuffix(mediaType, "+json")
}

// decodeText converts data to UTF-8 using the declared or sniffed charset.
// Valid UTF-8 is returned byte for byte unless another charset was declared.
func decodeText(data []byte, contentType string) string {
	if len(data) == 0 {
		return ""
	}
	enc, name, certain := charset.DetermineEncoding(data, contentType)
	if name == "utf-8" || (!certain && utf8.Valid(data)) {
		return string(data)
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}
