package types

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// KeyValue is one entry of an ordered params or headers list.
// Disabled entries are kept but never sent.
type KeyValue struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Name    string `json:"name" yaml:"name"`
	Value   string `json:"value" yaml:"value"`
}

// NewKeyValue returns an enabled entry
func NewKeyValue(name, value string) KeyValue {
	return KeyValue{Enabled: true, Name: name, Value: value}
}

// EnabledPairs returns the enabled entries of kvs, order preserved
func EnabledPairs(kvs []KeyValue) []KeyValue {
	out := make([]KeyValue, 0, len(kvs))
	for _, kv := range kvs {
		if kv.Enabled {
			out = append(out, kv)
		}
	}
	return out
}

// HeaderPair is a response header as received. Duplicates are kept.
type HeaderPair struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Method is an HTTP method
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
	MethodConnect Method = "CONNECT"
)

var methods = []Method{
	MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete,
	MethodHead, MethodOptions, MethodTrace, MethodConnect,
}

// ErrUnknownMethod is returned when a method token is not a known HTTP method
var ErrUnknownMethod = errors.New("unknown method")

// ParseMethod maps a method token to a Method, ignoring case
func ParseMethod(token string) (Method, error) {
	upper := strings.ToUpper(strings.TrimSpace(token))
	for _, m := range methods {
		if string(m) == upper {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, token)
}

// Request is one saved API call.
//
// IsPending and the cancellation signal are runtime state: they are never
// persisted and are reset whenever a request is created or loaded.
type Request struct {
	Name     string
	URL      string
	Params   []KeyValue
	Headers  []KeyValue
	Auth     Auth
	Protocol Protocol
	Settings RequestSettings
	Response RequestResponse

	IsPending bool

	cancel *CancelSignal
}

// NewRequest returns an HTTP GET request with default settings
func NewRequest(name, url string) Request {
	return Request{
		Name:     name,
		URL:      url,
		Params:   []KeyValue{},
		Headers:  []KeyValue{},
		Auth:     NoAuth{},
		Protocol: HTTPProtocol{Method: MethodGet, Body: NoBody{}},
		Settings: DefaultRequestSettings(),
		cancel:   NewCancelSignal(),
	}
}

// CancelSignal returns the signal observed by the in-flight send
func (r *Request) CancelSignal() *CancelSignal {
	if r.cancel == nil {
		r.cancel = NewCancelSignal()
	}
	return r.cancel
}

// ResetCancel installs a fresh, untriggered cancellation signal
func (r *Request) ResetCancel() {
	r.cancel = NewCancelSignal()
}

// GetDigestMut returns the active Digest auth for in-place updates.
// The caller must already know Auth is a Digest; anything else panics.
func (r *Request) GetDigestMut() *Digest {
	d, ok := r.Auth.(*Digest)
	if !ok {
		panic(fmt.Sprintf("GetDigestMut called on %T auth", r.Auth))
	}
	return d
}

// Clone returns a deep copy of the persisted fields of r.
// The copy shares r's cancellation signal.
func (r *Request) Clone() Request {
	c := *r
	c.Params = append([]KeyValue(nil), r.Params...)
	c.Headers = append([]KeyValue(nil), r.Headers...)
	c.Auth = cloneAuth(r.Auth)
	c.Protocol = cloneProtocol(r.Protocol)
	c.Response.Headers = append([]HeaderPair(nil), r.Response.Headers...)
	return c
}

// Handle is a request shared between the executor and its observers.
// Every access takes the lock once; multi-field reads are consistent only
// within one View or Update call.
type Handle struct {
	mu  sync.RWMutex
	req Request
}

// NewHandle wraps req in a Handle
func NewHandle(req Request) *Handle {
	if req.cancel == nil {
		req.cancel = NewCancelSignal()
	}
	return &Handle{req: req}
}

// View runs fn under the read lock
func (h *Handle) View(fn func(r *Request)) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn(&h.req)
}

// Update runs fn under the write lock
func (h *Handle) Update(fn func(r *Request)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(&h.req)
}

// Snapshot returns a deep copy of the request
func (h *Handle) Snapshot() Request {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.req.Clone()
}

// Cancel triggers the current cancellation signal
func (h *Handle) Cancel() {
	h.mu.RLock()
	sig := h.req.cancel
	h.mu.RUnlock()
	if sig != nil {
		sig.Cancel()
	}
}
