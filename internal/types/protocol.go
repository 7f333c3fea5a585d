package types

// Protocol is the transport payload of a request. Exactly one variant is
// active: HTTPProtocol, WebSocketProtocol or GraphQLProtocol.
type Protocol interface {
	isProtocol()
}

// HTTPProtocol is a plain HTTP call
type HTTPProtocol struct {
	Method Method
	Body   ContentType
}

// WebSocketProtocol opens a WebSocket connection to the request URL
type WebSocketProtocol struct{}

// GraphQLProtocol posts Query and Variables (a JSON object) as JSON
type GraphQLProtocol struct {
	Query     string
	Variables string
}

func (HTTPProtocol) isProtocol()      {}
func (WebSocketProtocol) isProtocol() {}
func (GraphQLProtocol) isProtocol()   {}

// MethodLabel names the protocol the way request lists display it
func MethodLabel(p Protocol) string {
	switch v := p.(type) {
	case HTTPProtocol:
		return string(v.Method)
	case WebSocketProtocol:
		return "WEBSOCKET"
	case GraphQLProtocol:
		return "GRAPHQL"
	}
	return ""
}

func cloneProtocol(p Protocol) Protocol {
	switch v := p.(type) {
	case HTTPProtocol:
		return HTTPProtocol{Method: v.Method, Body: cloneContentType(v.Body)}
	case nil:
		return HTTPProtocol{Method: MethodGet, Body: NoBody{}}
	}
	return p
}
