package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/studiowebux/restcore/internal/types"
)

// Authorization returns the Authorization header value for a request, or
// "" when none should be sent. A Digest without a nonce sends nothing so
// the server answers with a challenge.
func Authorization(a types.Auth, method, uri string, body []byte) (string, error) {
	switch v := a.(type) {
	case types.NoAuth, nil:
		return "", nil
	case types.BasicAuth:
		return "Basic " + BasicCredentials(v.Username, v.Password), nil
	case types.BearerToken:
		return "Bearer " + v.Token, nil
	case types.JwtToken:
		token, err := SignJWT(v)
		if err != nil {
			return "", err
		}
		return "Bearer " + token, nil
	case *types.Digest:
		if v.Nonce == "" {
			return "", nil
		}
		return DigestAuthorization(v, method, uri, body)
	}
	return "", fmt.Errorf("unsupported auth %T", a)
}

// BasicCredentials base64 encodes "username:password"
func BasicCredentials(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}

// SignJWT signs the JSON object in t.Payload with t.Secret
func SignJWT(t types.JwtToken) (string, error) {
	alg := t.Algorithm
	if alg == "" {
		alg = types.JwtHS256
	}
	method := jwt.GetSigningMethod(string(alg))
	if method == nil {
		return "", fmt.Errorf("unsupported jwt algorithm %q", alg)
	}

	claims := jwt.MapClaims{}
	if strings.TrimSpace(t.Payload) != "" {
		if err := json.Unmarshal([]byte(t.Payload), &claims); err != nil {
			return "", fmt.Errorf("invalid jwt payload: %w", err)
		}
	}

	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(t.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign jwt: %w", err)
	}
	return signed, nil
}
