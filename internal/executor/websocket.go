package executor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/studiowebux/restcore/internal/types"
	"go.uber.org/zap"
)

// Headers the dialer writes itself and refuses to duplicate
var websocketManagedHeaders = map[string]bool{
	"Upgrade":                  true,
	"Connection":               true,
	"Sec-Websocket-Key":        true,
	"Sec-Websocket-Version":    true,
	"Sec-Websocket-Extensions": true,
}

// prepareWebSocket builds the opening handshake. The exchange dials,
// reports the handshake response and closes the connection.
func (e *Executor) prepareWebSocket(h *types.Handle, req *types.Request) (exchange, error) {
	target, err := websocketURL(req)
	if err != nil {
		return nil, err
	}

	dialer := &websocket.Dialer{
		Proxy:            e.proxyFunc(req.Settings),
		TLSClientConfig:  e.tlsConfig(req.Settings),
		HandshakeTimeout: 45 * time.Second,
	}
	if req.Settings.StoreReceivedCookies.AsBool() {
		dialer.Jar = e.jar
	}

	headers := http.Header{}
	for _, kv := range types.EnabledPairs(req.Headers) {
		if websocketManagedHeaders[http.CanonicalHeaderKey(kv.Name)] {
			continue
		}
		headers.Add(kv.Name, kv.Value)
	}

	// the handshake is a GET of the request URI
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", target, err)
	}
	authReq := &http.Request{Method: http.MethodGet, URL: u, Header: headers}
	if err := e.authorize(h, req, authReq, nil); err != nil {
		return nil, err
	}

	return func(ctx context.Context) outcome {
		e.logger.Debug("opening websocket", zap.String("name", req.Name), zap.String("url", target))

		conn, resp, err := dialer.DialContext(ctx, target, headers)
		if err != nil {
			if resp != nil {
				defer resp.Body.Close()
				return e.readResponse(resp, req.Settings)
			}
			e.logger.Warn("websocket handshake failed", zap.String("name", req.Name), zap.Error(err))
			return transportFailure(fmt.Errorf("connection failed: %w", err))
		}
		defer conn.Close()

		out := e.readResponse(resp, req.Settings)

		// Graceful close
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)

		return out
	}, nil
}

// websocketURL maps http(s) URLs to ws(s) and appends the enabled params
func websocketURL(req *types.Request) (string, error) {
	target, err := requestURL(req)
	if err != nil {
		return "", err
	}
	switch {
	case strings.HasPrefix(target, "http://"):
		target = "ws://" + strings.TrimPrefix(target, "http://")
	case strings.HasPrefix(target, "https://"):
		target = "wss://" + strings.TrimPrefix(target, "https://")
	}
	return target, nil
}
