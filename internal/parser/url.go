package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/studiowebux/restcore/internal/types"
)

// splitURL validates raw and splits its query string into ordered, enabled
// params. The returned base keeps {{variables}} untouched.
func splitURL(raw string) (string, []types.KeyValue, error) {
	// {{host}} is not a valid host, so validate with placeholders filled in
	if _, err := url.Parse(varPattern.ReplaceAllString(raw, "placeholder")); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrURLParse, err)
	}

	base, query, _ := strings.Cut(raw, "?")
	if i := strings.Index(query, "#"); i >= 0 {
		query = query[:i]
	}
	return base, splitQuery(query), nil
}

// splitQuery keeps the source order, which url.Values cannot
func splitQuery(query string) []types.KeyValue {
	params := []types.KeyValue{}
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		params = append(params, types.NewKeyValue(unescapeQuery(name), unescapeQuery(value)))
	}
	return params
}

func unescapeQuery(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

// urlPath returns the path of a request URL for display names. Leading
// scheme and host, or a leading {{variable}}, are dropped.
func urlPath(base string) string {
	rest := base
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			rest = rest[j:]
		} else {
			rest = ""
		}
	} else if strings.HasPrefix(rest, "{{") {
		if j := strings.Index(rest, "}}"); j >= 0 {
			rest = rest[j+2:]
		}
	}
	if rest == "" {
		return "/"
	}
	return rest
}

// findHeader returns the value of the first header named name, ignoring case
func findHeader(headers []types.KeyValue, name string) (string, bool) {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// withoutHeader drops every header named name, ignoring case
func withoutHeader(headers []types.KeyValue, name string) []types.KeyValue {
	out := make([]types.KeyValue, 0, len(headers))
	for _, h := range headers {
		if !strings.EqualFold(h.Name, name) {
			out = append(out, h)
		}
	}
	return out
}
