package parser

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/studiowebux/restcore/internal/types"
)

const websocketMethod = "WEBSOCKET"

// ParseHTTPFile parses a .http file with ### separators
func ParseHTTPFile(filePath string) ([]*types.Handle, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &ImportError{Path: filePath, Err: fmt.Errorf("%w: %v", ErrReadFile, err)}
	}

	handles, err := ParseHTTPContent(string(data))
	if err != nil {
		return nil, &ImportError{Path: filePath, Err: err}
	}
	return handles, nil
}

// ParseHTTPContent parses .http text. Each block is an optional "### name"
// line, a request line, headers, one blank line and a body.
func ParseHTTPContent(content string) ([]*types.Handle, error) {
	lines, err := splitLines(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFile, err)
	}

	var handles []*types.Handle
	name := ""

	for i := 0; i < len(lines); {
		line := strings.TrimSpace(lines[i])

		// New request separator
		if isSeparator(line) {
			name = strings.TrimSpace(strings.TrimLeft(line, "#"))
			i++
			continue
		}

		if line == "" || isComment(line) {
			i++
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			i++
			continue
		}

		req, next, err := parseBlock(lines, i, parts, name)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		handles = append(handles, types.NewHandle(req))
		name = ""
		i = next
	}

	if len(handles) == 0 {
		return nil, ErrNoRequestsFound
	}
	return handles, nil
}

// parseBlock reads one request starting at its request line and returns the
// index of the first line after the block.
func parseBlock(lines []string, start int, requestLine []string, name string) (types.Request, int, error) {
	methodToken, rawURL := requestLine[0], requestLine[1]

	isWebSocket := methodToken == websocketMethod
	var method types.Method
	if !isWebSocket {
		m, err := types.ParseMethod(methodToken)
		if err != nil {
			return types.Request{}, 0, err
		}
		method = m
	}

	base, params, err := splitURL(rawURL)
	if err != nil {
		return types.Request{}, 0, err
	}

	i := start + 1

	// Headers run until the first blank line or separator
	headers := []types.KeyValue{}
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || isSeparator(line) {
			break
		}
		if isComment(line) {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers = append(headers, types.NewKeyValue(strings.TrimSpace(key), strings.TrimSpace(value)))
	}

	if i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}

	var bodyLines []string
	for ; i < len(lines) && !isSeparator(strings.TrimSpace(lines[i])); i++ {
		bodyLines = append(bodyLines, lines[i])
	}
	for len(bodyLines) > 0 && strings.TrimSpace(bodyLines[len(bodyLines)-1]) == "" {
		bodyLines = bodyLines[:len(bodyLines)-1]
	}
	body := strings.Join(bodyLines, "\n")

	if name == "" {
		label := string(method)
		if isWebSocket {
			label = websocketMethod
		}
		name = label + " " + urlPath(base)
	}

	req := types.NewRequest(name, base)
	req.Params = params

	authValue, hasAuth := findHeader(headers, "authorization")
	if hasAuth {
		req.Auth = authFromHeader(authValue)
	}
	req.Headers = withoutHeader(headers, "authorization")

	if isWebSocket {
		req.Protocol = types.WebSocketProtocol{}
	} else {
		req.Protocol = types.HTTPProtocol{Method: method, Body: httpBody(headers, body)}
	}

	return req, i, nil
}

// httpBody falls back to Raw when a body has no Content-Type header
func httpBody(headers []types.KeyValue, body string) types.ContentType {
	if body == "" {
		return types.NoBody{}
	}
	if ct, ok := findHeader(headers, "content-type"); ok {
		return types.ContentTypeFromHeader(ct, body)
	}
	return types.Raw{Text: body}
}

// authFromHeader maps an Authorization header value to Bearer or Basic auth
func authFromHeader(value string) types.Auth {
	scheme, credentials, _ := strings.Cut(strings.TrimSpace(value), " ")
	credentials = strings.TrimSpace(credentials)

	switch {
	case strings.EqualFold(scheme, "Bearer"):
		return types.BearerToken{Token: credentials}
	case strings.EqualFold(scheme, "Basic"):
		decoded, err := base64.StdEncoding.DecodeString(credentials)
		if err != nil {
			return types.NoAuth{}
		}
		username, password, _ := strings.Cut(string(decoded), ":")
		return types.BasicAuth{Username: username, Password: password}
	}
	return types.NoAuth{}
}

func isSeparator(trimmed string) bool {
	return strings.HasPrefix(trimmed, "###")
}

// isComment never matches a ### separator
func isComment(trimmed string) bool {
	if isSeparator(trimmed) {
		return false
	}
	return strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//")
}

func splitLines(content string) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	return lines, scanner.Err()
}
