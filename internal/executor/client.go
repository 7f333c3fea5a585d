package executor

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net/http"
	"net/url"

	"github.com/studiowebux/restcore/internal/types"
)

// buildHTTPClient creates an HTTP client honouring the request settings
func (e *Executor) buildHTTPClient(s types.RequestSettings) *http.Client {
	transport := &http.Transport{
		Proxy:             e.proxyFunc(s),
		TLSClientConfig:   e.tlsConfig(s),
		ForceAttemptHTTP2: true,
	}

	client := &http.Client{Transport: transport}

	if !s.AllowRedirects.AsBool() {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	if s.StoreReceivedCookies.AsBool() {
		client.Jar = e.jar
	}

	return client
}

// proxyFunc uses the configured proxy for the request scheme, falling back
// to the environment. Requests with use_config_proxy disabled go direct.
func (e *Executor) proxyFunc(s types.RequestSettings) func(*http.Request) (*url.URL, error) {
	if !s.UseConfigProxy.AsBool() {
		return nil
	}
	if e.httpProxy == nil && e.httpsProxy == nil {
		return http.ProxyFromEnvironment
	}
	return func(r *http.Request) (*url.URL, error) {
		switch r.URL.Scheme {
		case "https", "wss":
			return e.httpsProxy, nil
		default:
			return e.httpProxy, nil
		}
	}
}

// tlsConfig applies the certificate bypass settings. Accepting invalid
// hostnames still verifies the certificate chain.
func (e *Executor) tlsConfig(s types.RequestSettings) *tls.Config {
	cfg := &tls.Config{RootCAs: e.rootCAs}

	switch {
	case s.AcceptInvalidCerts.AsBool():
		cfg.InsecureSkipVerify = true
	case s.AcceptInvalidHostnames.AsBool():
		cfg.InsecureSkipVerify = true
		cfg.VerifyConnection = func(cs tls.ConnectionState) error {
			return verifyChain(cs, e.rootCAs)
		}
	}

	return cfg
}

func verifyChain(cs tls.ConnectionState, roots *x509.CertPool) error {
	if len(cs.PeerCertificates) == 0 {
		return errors.New("tls: server sent no certificate")
	}
	opts := x509.VerifyOptions{
		Roots:         roots,
		Intermediates: x509.NewCertPool(),
	}
	for _, cert := range cs.PeerCertificates[1:] {
		opts.Intermediates.AddCert(cert)
	}
	_, err := cs.PeerCertificates[0].Verify(opts)
	return err
}
