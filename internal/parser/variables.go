package parser

import (
	"os"
	"regexp"
	"strings"

	"github.com/studiowebux/restcore/internal/types"
)

// Variable placeholder pattern: {{varName}}
var varPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Substitute replaces {{name}} placeholders with values from env.
// {{env.NAME}} reads the process environment instead. Unknown names are
// left as written.
func Substitute(text string, env *types.Environment) string {
	if !strings.Contains(text, "{{") {
		return text
	}
	return varPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.TrimSpace(varPattern.FindStringSubmatch(match)[1])
		if osName, ok := strings.CutPrefix(name, "env."); ok {
			if v, found := os.LookupEnv(osName); found {
				return v
			}
			return match
		}
		if v, ok := env.Lookup(name); ok {
			return v
		}
		return match
	})
}

// ApplyEnvironment returns a copy of req with every user-editable string
// field substituted. req itself is not modified.
func ApplyEnvironment(req *types.Request, env *types.Environment) types.Request {
	out := req.Clone()
	sub := func(s string) string { return Substitute(s, env) }

	out.URL = sub(out.URL)
	out.Params = substitutePairs(out.Params, sub)
	out.Headers = substitutePairs(out.Headers, sub)

	switch a := out.Auth.(type) {
	case types.BasicAuth:
		out.Auth = types.BasicAuth{Username: sub(a.Username), Password: sub(a.Password)}
	case types.BearerToken:
		out.Auth = types.BearerToken{Token: sub(a.Token)}
	case types.JwtToken:
		out.Auth = types.JwtToken{Algorithm: a.Algorithm, Secret: sub(a.Secret), Payload: sub(a.Payload)}
	case *types.Digest:
		a.Username = sub(a.Username)
		a.Password = sub(a.Password)
	case types.NoAuth:
	}

	switch p := out.Protocol.(type) {
	case types.HTTPProtocol:
		out.Protocol = types.HTTPProtocol{Method: p.Method, Body: substituteBody(p.Body, sub)}
	case types.GraphQLProtocol:
		out.Protocol = types.GraphQLProtocol{Query: sub(p.Query), Variables: sub(p.Variables)}
	case types.WebSocketProtocol:
	}

	return out
}

func substitutePairs(kvs []types.KeyValue, sub func(string) string) []types.KeyValue {
	for i := range kvs {
		kvs[i].Name = sub(kvs[i].Name)
		kvs[i].Value = sub(kvs[i].Value)
	}
	return kvs
}

func substituteBody(body types.ContentType, sub func(string) string) types.ContentType {
	switch b := body.(type) {
	case types.FileBody:
		return types.FileBody{Path: sub(b.Path)}
	case types.Form:
		return types.Form{Fields: substitutePairs(b.Fields, sub)}
	case types.Multipart:
		return types.Multipart{Fields: substitutePairs(b.Fields, sub)}
	case types.NoBody:
		return b
	}
	if text, ok := types.BodyText(body); ok {
		return types.WithBodyText(body, sub(text))
	}
	return body
}
