package types

import (
	"regexp"
	"strings"
)

// ContentType is the request body. The active variant carries the body and
// decides the outgoing Content-Type header.
type ContentType interface {
	// MediaType is the Content-Type sent with this body, "" for NoBody
	MediaType() string
	isContentType()
}

// NoBody sends nothing
type NoBody struct{}

// FileBody streams the file at Path
type FileBody struct {
	Path string
}

// Multipart is a multipart/form-data body
type Multipart struct {
	Fields []KeyValue
}

// Form is an application/x-www-form-urlencoded body
type Form struct {
	Fields []KeyValue
}

// Raw is a text/plain body
type Raw struct{ Text string }

// Json is an application/json body
type Json struct{ Text string }

// Xml is an application/xml body
type Xml struct{ Text string }

// Html is a text/html body
type Html struct{ Text string }

// Javascript is an application/javascript body
type Javascript struct{ Text string }

func (NoBody) MediaType() string     { return "" }
func (FileBody) MediaType() string   { return "application/octet-stream" }
func (Multipart) MediaType() string  { return "multipart/form-data" }
func (Form) MediaType() string       { return "application/x-www-form-urlencoded" }
func (Raw) MediaType() string        { return "text/plain" }
func (Json) MediaType() string       { return "application/json" }
func (Xml) MediaType() string        { return "application/xml" }
func (Html) MediaType() string       { return "text/html" }
func (Javascript) MediaType() string { return "application/javascript" }

func (NoBody) isContentType()     {}
func (FileBody) isContentType()   {}
func (Multipart) isContentType()  {}
func (Form) isContentType()       {}
func (Raw) isContentType()        {}
func (Json) isContentType()       {}
func (Xml) isContentType()        {}
func (Html) isContentType()       {}
func (Javascript) isContentType() {}

// BodyText returns the text of the text variants and "" for the others
func BodyText(c ContentType) (string, bool) {
	switch v := c.(type) {
	case Raw:
		return v.Text, true
	case Json:
		return v.Text, true
	case Xml:
		return v.Text, true
	case Html:
		return v.Text, true
	case Javascript:
		return v.Text, true
	case NoBody, FileBody, Multipart, Form:
		return "", false
	}
	return "", false
}

// WithBodyText returns c with its text replaced, for text variants only
func WithBodyText(c ContentType, text string) ContentType {
	switch c.(type) {
	case Raw:
		return Raw{Text: text}
	case Json:
		return Json{Text: text}
	case Xml:
		return Xml{Text: text}
	case Html:
		return Html{Text: text}
	case Javascript:
		return Javascript{Text: text}
	}
	return c
}

// ContentTypeFromHeader picks the body variant for a Content-Type header
// value by looking at its media subtype.
func ContentTypeFromHeader(headerValue, body string) ContentType {
	if body == "" {
		return NoBody{}
	}

	subtype := headerValue
	if i := strings.Index(headerValue, "/"); i >= 0 {
		subtype = headerValue[i+1:]
	}
	subtype = strings.ToLower(subtype)

	switch {
	case strings.Contains(subtype, "json"):
		return Json{Text: body}
	case strings.Contains(subtype, "xml"):
		return Xml{Text: body}
	case strings.Contains(subtype, "html"):
		return Html{Text: body}
	case strings.Contains(subtype, "javascript"), strings.Contains(subtype, "js"):
		return Javascript{Text: body}
	default:
		return Raw{Text: body}
	}
}

var fileFormatPattern = regexp.MustCompile(`\w+/(\w+)`)

// FindFileFormatInContentType returns the media subtype token of the header
// named exactly "content-type".
func FindFileFormatInContentType(headers []HeaderPair) (string, bool) {
	for _, h := range headers {
		if h.Name != "content-type" {
			continue
		}
		m := fileFormatPattern.FindStringSubmatch(h.Value)
		if len(m) < 2 {
			return "", false
		}
		return m[1], true
	}
	return "", false
}

func cloneContentType(c ContentType) ContentType {
	switch v := c.(type) {
	case Multipart:
		return Multipart{Fields: append([]KeyValue(nil), v.Fields...)}
	case Form:
		return Form{Fields: append([]KeyValue(nil), v.Fields...)}
	case nil:
		return NoBody{}
	}
	return c
}
