package parser

import (
	"errors"
	"fmt"

	"github.com/studiowebux/restcore/internal/types"
)

var (
	// ErrReadFile is returned when an import source cannot be read
	ErrReadFile = errors.New("could not read file")

	// ErrURLParse is returned when a request URL is not a valid URL
	ErrURLParse = errors.New("could not parse url")

	// ErrCouldNotParseCurl is returned when a cURL invocation is malformed
	ErrCouldNotParseCurl = errors.New("could not parse curl command")

	// ErrNoRequestsFound is returned when a .http source holds no request
	ErrNoRequestsFound = errors.New("no requests found")

	// ErrUnknownMethod is returned when a method token is not an HTTP method
	ErrUnknownMethod = types.ErrUnknownMethod
)

// ImportError attaches the source path to an import failure
type ImportError struct {
	Path string
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
