package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/studiowebux/restcore/internal/types"
)

// buildRequest turns a substituted request into an *http.Request. The
// encoded body is returned as well for digest auth-int hashing.
func buildRequest(ctx context.Context, r *types.Request) (*http.Request, []byte, error) {
	target, err := requestURL(r)
	if err != nil {
		return nil, nil, err
	}

	var method string
	var body []byte
	var contentType string

	switch p := r.Protocol.(type) {
	case types.HTTPProtocol:
		method = string(p.Method)
		body, contentType, err = encodeBody(p.Body)
	case types.GraphQLProtocol:
		method = http.MethodPost
		body, err = encodeGraphQL(p)
		contentType = "application/json"
	case types.WebSocketProtocol:
		return nil, nil, fmt.Errorf("websocket requests are not sent over http")
	default:
		return nil, nil, fmt.Errorf("unsupported protocol %T", r.Protocol)
	}
	if err != nil {
		return nil, nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	setHeaders(httpReq, r.Headers)
	// a multipart boundary is only known here
	if contentType != "" && (httpReq.Header.Get("Content-Type") == "" || strings.HasPrefix(contentType, "multipart/")) {
		httpReq.Header.Set("Content-Type", contentType)
	}

	return httpReq, body, nil
}

// requestURL appends the enabled params to the URL, in order
func requestURL(r *types.Request) (string, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", r.URL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid url %q: scheme and host are required", r.URL)
	}

	query := encodePairs(types.EnabledPairs(r.Params))
	if query != "" {
		if u.RawQuery != "" {
			u.RawQuery += "&" + query
		} else {
			u.RawQuery = query
		}
	}
	return u.String(), nil
}

func setHeaders(r *http.Request, headers []types.KeyValue) {
	for _, kv := range types.EnabledPairs(headers) {
		if strings.EqualFold(kv.Name, "Host") {
			r.Host = kv.Value
			continue
		}
		r.Header.Add(kv.Name, kv.Value)
	}
}

// encodePairs is url.Values.Encode without the key sorting
func encodePairs(kvs []types.KeyValue) string {
	parts := make([]string, 0, len(kvs))
	for _, kv := range kvs {
		parts = append(parts, url.QueryEscape(kv.Name)+"="+url.QueryEscape(kv.Value))
	}
	return strings.Join(parts, "&")
}

// encodeBody returns the body bytes and the default Content-Type for it
func encodeBody(c types.ContentType) ([]byte, string, error) {
	switch b := c.(type) {
	case types.NoBody, nil:
		return nil, "", nil
	case types.FileBody:
		data, err := os.ReadFile(b.Path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read body file: %w", err)
		}
		contentType := mime.TypeByExtension(filepath.Ext(b.Path))
		if contentType == "" {
			contentType = b.MediaType()
		}
		return data, contentType, nil
	case types.Form:
		return []byte(encodePairs(types.EnabledPairs(b.Fields))), b.MediaType(), nil
	case types.Multipart:
		return encodeMultipart(b)
	case types.Raw, types.Json, types.Xml, types.Html, types.Javascript:
		text, _ := types.BodyText(b)
		return []byte(text), c.MediaType(), nil
	}
	return nil, "", fmt.Errorf("unsupported body %T", c)
}

// encodeMultipart sends "@path" values as file parts
func encodeMultipart(m types.Multipart) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range types.EnabledPairs(m.Fields) {
		path, isFile := strings.CutPrefix(field.Value, "@")
		if !isFile {
			if err := w.WriteField(field.Name, field.Value); err != nil {
				return nil, "", err
			}
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read multipart file %q: %w", field.Name, err)
		}
		part, err := w.CreateFormFile(field.Name, filepath.Base(path))
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func encodeGraphQL(p types.GraphQLProtocol) ([]byte, error) {
	payload := map[string]any{"query": p.Query}
	if vars := strings.TrimSpace(p.Variables); vars != "" {
		if !json.Valid([]byte(vars)) {
			return nil, fmt.Errorf("graphql variables are not valid JSON")
		}
		payload["variables"] = json.RawMessage(vars)
	}
	return json.Marshal(payload)
}
