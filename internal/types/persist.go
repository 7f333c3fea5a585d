package types

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Wire representation shared by the JSON and YAML encodings of a Request.
// Runtime state (IsPending, the cancellation signal, Digest.NonceCount and
// decoded images) has no field here and is rebuilt on load.

type requestWire struct {
	Name     string          `json:"name" yaml:"name"`
	URL      string          `json:"url" yaml:"url"`
	Params   []KeyValue      `json:"params" yaml:"params"`
	Headers  []KeyValue      `json:"headers" yaml:"headers"`
	Auth     authWire        `json:"auth" yaml:"auth"`
	Protocol protocolWire    `json:"protocol" yaml:"protocol"`
	Settings RequestSettings `json:"settings" yaml:"settings"`
	Response *responseWire   `json:"response,omitempty" yaml:"response,omitempty"`
}

type authWire struct {
	Type      string `json:"type" yaml:"type"`
	Username  string `json:"username,omitempty" yaml:"username,omitempty"`
	Password  string `json:"password,omitempty" yaml:"password,omitempty"`
	Token     string `json:"token,omitempty" yaml:"token,omitempty"`
	Algorithm string `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
	Secret    string `json:"secret,omitempty" yaml:"secret,omitempty"`
	Payload   string `json:"payload,omitempty" yaml:"payload,omitempty"`
	Domains   string `json:"domains,omitempty" yaml:"domains,omitempty"`
	Realm     string `json:"realm,omitempty" yaml:"realm,omitempty"`
	Nonce     string `json:"nonce,omitempty" yaml:"nonce,omitempty"`
	Opaque    string `json:"opaque,omitempty" yaml:"opaque,omitempty"`
	Stale     bool   `json:"stale,omitempty" yaml:"stale,omitempty"`
	Qop       string `json:"qop,omitempty" yaml:"qop,omitempty"`
	UserHash  bool   `json:"user_hash,omitempty" yaml:"user_hash,omitempty"`
	Charset   string `json:"charset,omitempty" yaml:"charset,omitempty"`
}

type bodyWire struct {
	Type   string     `json:"type" yaml:"type"`
	Text   string     `json:"text,omitempty" yaml:"text,omitempty"`
	Path   string     `json:"path,omitempty" yaml:"path,omitempty"`
	Fields []KeyValue `json:"fields,omitempty" yaml:"fields,omitempty"`
}

type protocolWire struct {
	Type      string    `json:"type" yaml:"type"`
	Method    string    `json:"method,omitempty" yaml:"method,omitempty"`
	Body      *bodyWire `json:"body,omitempty" yaml:"body,omitempty"`
	Query     string    `json:"query,omitempty" yaml:"query,omitempty"`
	Variables string    `json:"variables,omitempty" yaml:"variables,omitempty"`
}

type responseWire struct {
	Duration   *string      `json:"duration,omitempty" yaml:"duration,omitempty"`
	StatusCode *string      `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Body       *string      `json:"body,omitempty" yaml:"body,omitempty"`
	Image      string       `json:"image,omitempty" yaml:"image,omitempty"`
	Cookies    *string      `json:"cookies,omitempty" yaml:"cookies,omitempty"`
	Headers    []HeaderPair `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// MarshalJSON encodes the persisted fields of r
func (r Request) MarshalJSON() ([]byte, error) {
	w, err := r.toWire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a request and resets its runtime state
func (r *Request) UnmarshalJSON(data []byte) error {
	w := requestWire{Settings: DefaultRequestSettings()}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	return r.fromWire(w)
}

// MarshalYAML encodes the persisted fields of r
func (r Request) MarshalYAML() (interface{}, error) {
	return r.toWire()
}

// UnmarshalYAML decodes a request and resets its runtime state
func (r *Request) UnmarshalYAML(node *yaml.Node) error {
	w := requestWire{Settings: DefaultRequestSettings()}
	if err := node.Decode(&w); err != nil {
		return err
	}
	return r.fromWire(w)
}

func (r Request) toWire() (requestWire, error) {
	w := requestWire{
		Name:     r.Name,
		URL:      r.URL,
		Params:   r.Params,
		Headers:  r.Headers,
		Settings: r.Settings,
	}

	switch a := r.Auth.(type) {
	case NoAuth, nil:
		w.Auth = authWire{Type: "no_auth"}
	case BasicAuth:
		w.Auth = authWire{Type: "basic_auth", Username: a.Username, Password: a.Password}
	case BearerToken:
		w.Auth = authWire{Type: "bearer_token", Token: a.Token}
	case JwtToken:
		w.Auth = authWire{Type: "jwt_token", Algorithm: string(a.Algorithm), Secret: a.Secret, Payload: a.Payload}
	case *Digest:
		w.Auth = authWire{
			Type:      "digest",
			Username:  a.Username,
			Password:  a.Password,
			Domains:   a.Domains,
			Realm:     a.Realm,
			Nonce:     a.Nonce,
			Opaque:    a.Opaque,
			Stale:     a.Stale,
			Algorithm: string(a.Algorithm),
			Qop:       string(a.Qop),
			UserHash:  a.UserHash,
			Charset:   string(a.Charset),
		}
	}

	switch p := r.Protocol.(type) {
	case HTTPProtocol, nil:
		hp, _ := p.(HTTPProtocol)
		if hp.Method == "" {
			hp.Method = MethodGet
		}
		body := bodyToWire(hp.Body)
		w.Protocol = protocolWire{Type: "http", Method: string(hp.Method), Body: &body}
	case WebSocketProtocol:
		w.Protocol = protocolWire{Type: "websocket"}
	case GraphQLProtocol:
		w.Protocol = protocolWire{Type: "graphql", Query: p.Query, Variables: p.Variables}
	}

	if resp := responseToWire(r.Response); resp != nil {
		w.Response = resp
	}
	return w, nil
}

func (r *Request) fromWire(w requestWire) error {
	auth, err := authFromWire(w.Auth)
	if err != nil {
		return err
	}
	protocol, err := protocolFromWire(w.Protocol)
	if err != nil {
		return err
	}

	w.Settings.fillDefaults()

	*r = Request{
		Name:     w.Name,
		URL:      w.URL,
		Params:   w.Params,
		Headers:  w.Headers,
		Auth:     auth,
		Protocol: protocol,
		Settings: w.Settings,
		cancel:   NewCancelSignal(),
	}
	if r.Params == nil {
		r.Params = []KeyValue{}
	}
	if r.Headers == nil {
		r.Headers = []KeyValue{}
	}
	if w.Response != nil {
		r.Response = responseFromWire(*w.Response)
	}
	return nil
}

func authFromWire(w authWire) (Auth, error) {
	switch w.Type {
	case "", "no_auth":
		return NoAuth{}, nil
	case "basic_auth":
		return BasicAuth{Username: w.Username, Password: w.Password}, nil
	case "bearer_token":
		return BearerToken{Token: w.Token}, nil
	case "jwt_token":
		alg := JwtAlgorithm(w.Algorithm)
		if alg == "" {
			alg = JwtHS256
		}
		return JwtToken{Algorithm: alg, Secret: w.Secret, Payload: w.Payload}, nil
	case "digest":
		d := NewDigest(w.Username, w.Password)
		d.Domains = w.Domains
		d.Realm = w.Realm
		d.Nonce = w.Nonce
		d.Opaque = w.Opaque
		d.Stale = w.Stale
		d.Qop = DigestQop(w.Qop)
		d.UserHash = w.UserHash
		if w.Algorithm != "" {
			d.Algorithm = DigestAlgorithm(w.Algorithm)
		}
		if w.Charset != "" {
			d.Charset = DigestCharset(w.Charset)
		}
		return d, nil
	}
	return nil, fmt.Errorf("unknown auth type %q", w.Type)
}

func bodyToWire(c ContentType) bodyWire {
	switch v := c.(type) {
	case FileBody:
		return bodyWire{Type: "file", Path: v.Path}
	case Multipart:
		return bodyWire{Type: "multipart", Fields: v.Fields}
	case Form:
		return bodyWire{Type: "form", Fields: v.Fields}
	case Raw:
		return bodyWire{Type: "raw", Text: v.Text}
	case Json:
		return bodyWire{Type: "json", Text: v.Text}
	case Xml:
		return bodyWire{Type: "xml", Text: v.Text}
	case Html:
		return bodyWire{Type: "html", Text: v.Text}
	case Javascript:
		return bodyWire{Type: "javascript", Text: v.Text}
	}
	return bodyWire{Type: "no_body"}
}

func bodyFromWire(w *bodyWire) (ContentType, error) {
	if w == nil {
		return NoBody{}, nil
	}
	switch w.Type {
	case "", "no_body":
		return NoBody{}, nil
	case "file":
		return FileBody{Path: w.Path}, nil
	case "multipart":
		return Multipart{Fields: w.Fields}, nil
	case "form":
		return Form{Fields: w.Fields}, nil
	case "raw":
		return Raw{Text: w.Text}, nil
	case "json":
		return Json{Text: w.Text}, nil
	case "xml":
		return Xml{Text: w.Text}, nil
	case "html":
		return Html{Text: w.Text}, nil
	case "javascript":
		return Javascript{Text: w.Text}, nil
	}
	return nil, fmt.Errorf("unknown body type %q", w.Type)
}

func protocolFromWire(w protocolWire) (Protocol, error) {
	switch w.Type {
	case "", "http":
		method := MethodGet
		if w.Method != "" {
			m, err := ParseMethod(w.Method)
			if err != nil {
				return nil, err
			}
			method = m
		}
		body, err := bodyFromWire(w.Body)
		if err != nil {
			return nil, err
		}
		return HTTPProtocol{Method: method, Body: body}, nil
	case "websocket":
		return WebSocketProtocol{}, nil
	case "graphql":
		return GraphQLProtocol{Query: w.Query, Variables: w.Variables}, nil
	}
	return nil, fmt.Errorf("unknown protocol type %q", w.Type)
}

func responseToWire(r RequestResponse) *responseWire {
	if r.Duration == nil && r.StatusCode == nil && r.Content == nil && r.Cookies == nil && len(r.Headers) == 0 {
		return nil
	}
	w := &responseWire{
		Duration:   r.Duration,
		StatusCode: r.StatusCode,
		Cookies:    r.Cookies,
		Headers:    r.Headers,
	}
	switch c := r.Content.(type) {
	case BodyContent:
		w.Body = Ptr(c.Text)
	case ImageContent:
		w.Image = base64.StdEncoding.EncodeToString(c.Data)
	}
	return w
}

func responseFromWire(w responseWire) RequestResponse {
	r := RequestResponse{
		Duration:   w.Duration,
		StatusCode: w.StatusCode,
		Cookies:    w.Cookies,
		Headers:    w.Headers,
	}
	switch {
	case w.Image != "":
		if data, err := base64.StdEncoding.DecodeString(w.Image); err == nil {
			r.Content = NewImageContent(data)
		}
	case w.Body != nil:
		r.Content = BodyContent{Text: *w.Body}
	}
	return r
}
