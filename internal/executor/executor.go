package executor

import (
	"context"
	"crypto/x509"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/studiowebux/restcore/internal/auth"
	"github.com/studiowebux/restcore/internal/parser"
	"github.com/studiowebux/restcore/internal/types"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// Executor sends requests. One Executor may run any number of sends
// concurrently; each send only touches the Handle it was given.
type Executor struct {
	logger         *zap.Logger
	httpProxy      *url.URL
	httpsProxy     *url.URL
	rootCAs        *x509.CertPool
	jar            http.CookieJar
	defaultTimeout time.Duration
}

// Option configures an Executor
type Option func(*Executor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithProxy sets the proxies used by requests with use_config_proxy enabled.
// Either may be nil.
func WithProxy(httpProxy, httpsProxy *url.URL) Option {
	return func(e *Executor) {
		e.httpProxy = httpProxy
		e.httpsProxy = httpsProxy
	}
}

// WithRootCAs replaces the system roots used to verify servers
func WithRootCAs(pool *x509.CertPool) Option {
	return func(e *Executor) { e.rootCAs = pool }
}

// WithCookieJar replaces the shared cookie jar
func WithCookieJar(jar http.CookieJar) Option {
	return func(e *Executor) { e.jar = jar }
}

// WithDefaultTimeout is used for requests whose timeout setting is 0
func WithDefaultTimeout(d time.Duration) Option {
	return func(e *Executor) { e.defaultTimeout = d }
}

// New creates an Executor
func New(opts ...Option) *Executor {
	e := &Executor{
		logger:         zap.NewNop(),
		defaultTimeout: types.DefaultTimeoutMillis * time.Millisecond,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.jar == nil {
		// cookiejar.New never returns an error
		e.jar, _ = cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	}
	return e
}

// outcome is what the in-flight call produced
type outcome struct {
	response  types.RequestResponse
	challenge string
}

// exchange performs the network part of a prepared send
type exchange func(ctx context.Context) outcome

// Send executes the request held by h and stores the response on it.
//
// The request is built before anything on h changes. A request that cannot
// be built (bad URL, unreadable body file, invalid JWT or GraphQL
// variables) is returned as an error and h keeps its previous response.
//
// Once built, whichever comes first of the response, the timeout or the
// request's cancel signal decides the result; the others are ignored.
// Network failures are not errors: they are described by the response.
func (e *Executor) Send(ctx context.Context, h *types.Handle, env *types.Environment) (types.RequestResponse, error) {
	var req types.Request
	h.View(func(r *types.Request) {
		req = parser.ApplyEnvironment(r, env)
	})

	do, err := e.prepare(h, &req)
	if err != nil {
		e.logger.Warn("failed to build request", zap.String("name", req.Name), zap.Error(err))
		return types.RequestResponse{}, err
	}

	var cancel *types.CancelSignal
	h.Update(func(r *types.Request) {
		r.IsPending = true
		r.ResetCancel()
		r.Response = types.RequestResponse{}
		cancel = r.CancelSignal()
	})

	start := time.Now()
	out := e.race(ctx, &req, cancel, do)
	out.response.Duration = types.Ptr(time.Since(start).String())

	e.logger.Debug("request finished",
		zap.String("name", req.Name),
		zap.String("status", out.response.StatusText()),
		zap.Stringp("duration", out.response.Duration),
	)

	h.Update(func(r *types.Request) {
		r.Response = out.response
		r.IsPending = false
		if out.challenge == "" {
			return
		}
		if _, ok := r.Auth.(*types.Digest); !ok {
			return
		}
		challenge, err := auth.ExtractChallenge(out.challenge)
		if err != nil {
			e.logger.Warn("ignoring malformed digest challenge", zap.String("name", r.Name), zap.Error(err))
			return
		}
		auth.ApplyChallenge(r.GetDigestMut(), challenge)
	})

	return out.response, nil
}

func (e *Executor) race(ctx context.Context, req *types.Request, cancel *types.CancelSignal, do exchange) outcome {
	callCtx, stop := context.WithCancel(ctx)
	defer stop()

	timeout := e.defaultTimeout
	if ms := req.Settings.Timeout.AsU32(); ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}

	results := make(chan outcome, 1)
	go func() {
		results <- do(callCtx)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case out := <-results:
		return out
	case <-timer.C:
		e.logger.Debug("request timed out", zap.String("name", req.Name), zap.Duration("timeout", timeout))
		return outcome{response: types.RequestResponse{StatusCode: types.Ptr(types.StatusTimeout)}}
	case <-cancel.Done():
		e.logger.Debug("request canceled", zap.String("name", req.Name))
		return outcome{response: types.RequestResponse{StatusCode: types.Ptr(types.StatusCanceled)}}
	case <-ctx.Done():
		e.logger.Debug("request context done", zap.String("name", req.Name), zap.Error(ctx.Err()))
		return outcome{response: types.RequestResponse{StatusCode: types.Ptr(types.StatusCanceled)}}
	}
}

// prepare builds the request for its protocol and returns the network
// exchange. The only write to h is the digest nonce count, made once the
// request is fully built.
func (e *Executor) prepare(h *types.Handle, req *types.Request) (exchange, error) {
	if _, ok := req.Protocol.(types.WebSocketProtocol); ok {
		return e.prepareWebSocket(h, req)
	}

	httpReq, body, err := buildRequest(context.Background(), req)
	if err != nil {
		return nil, err
	}
	if err := e.authorize(h, req, httpReq, body); err != nil {
		return nil, err
	}

	client := e.buildHTTPClient(req.Settings)

	return func(ctx context.Context) outcome {
		defer client.CloseIdleConnections()

		e.logger.Debug("sending request",
			zap.String("name", req.Name),
			zap.String("method", httpReq.Method),
			zap.String("url", httpReq.URL.String()),
		)

		resp, err := client.Do(httpReq.WithContext(ctx))
		if err != nil {
			e.logger.Warn("request failed", zap.String("name", req.Name), zap.Error(err))
			return transportFailure(err)
		}
		defer resp.Body.Close()

		return e.readResponse(resp, req.Settings)
	}, nil
}

// authorize sets the Authorization header. A Digest counts the request
// against the live nonce count stored on h.
func (e *Executor) authorize(h *types.Handle, req *types.Request, httpReq *http.Request, body []byte) error {
	value, err := auth.Authorization(req.Auth, httpReq.Method, httpReq.URL.RequestURI(), body)
	if err != nil {
		return err
	}
	if d, ok := req.Auth.(*types.Digest); ok && d.Nonce != "" {
		h.Update(func(r *types.Request) {
			if live, ok := r.Auth.(*types.Digest); ok {
				live.NonceCount = d.NonceCount
			}
		})
	}
	if value != "" {
		httpReq.Header.Set("Authorization", value)
	}
	return nil
}

func transportFailure(err error) outcome {
	return outcome{response: types.RequestResponse{Content: types.BodyContent{Text: err.Error()}}}
}
