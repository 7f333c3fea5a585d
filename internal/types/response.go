package types

import (
	"bytes"
	"image"
	// Decoders for the image formats recognised in responses
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Sentinel status values for sends that got no HTTP response
const (
	StatusTimeout  = "TIMEOUT"
	StatusCanceled = "CANCELED"
)

// ResponseContent is the body of a response: BodyContent or ImageContent
type ResponseContent interface {
	isResponseContent()
}

// BodyContent is a textual response body
type BodyContent struct {
	Text string
}

// ImageContent is an image response. Image is nil when Data could not be
// decoded.
type ImageContent struct {
	Data  []byte
	Image image.Image
}

func (BodyContent) isResponseContent()  {}
func (ImageContent) isResponseContent() {}

// NewImageContent decodes data, keeping the raw bytes when decoding fails
func NewImageContent(data []byte) ImageContent {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return ImageContent{Data: data}
	}
	return ImageContent{Data: data, Image: img}
}

// RequestResponse is the result of the last send attempt
type RequestResponse struct {
	Duration   *string
	StatusCode *string
	Content    ResponseContent
	Cookies    *string
	// Headers holds lower-cased names sorted by name. Repeated values of a
	// name keep their received order; the order across names is not the
	// order they arrived in.
	Headers []HeaderPair
}

// StatusText returns the status code or "" when there is none
func (r RequestResponse) StatusText() string {
	if r.StatusCode == nil {
		return ""
	}
	return *r.StatusCode
}

// Ptr returns a pointer to s
func Ptr(s string) *string {
	return &s
}
