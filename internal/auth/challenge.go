package auth

import (
	"fmt"
	"strings"

	"github.com/studiowebux/restcore/internal/types"
)

// Challenge is the parameter set of a "WWW-Authenticate: Digest" header
type Challenge struct {
	Domains   string
	Realm     string
	Nonce     string
	Opaque    string
	Stale     bool
	Algorithm types.DigestAlgorithm
	Qop       types.DigestQop
	UserHash  bool
	Charset   types.DigestCharset
}

// ChallengeError reports a malformed challenge parameter
type ChallengeError struct {
	Field  string
	Reason string
}

func (e *ChallengeError) Error() string {
	return fmt.Sprintf("invalid digest challenge field %q: %s", e.Field, e.Reason)
}

var algorithms = []types.DigestAlgorithm{
	types.DigestMD5,
	types.DigestMD5Sess,
	types.DigestSHA256,
	types.DigestSHA256Sess,
	types.DigestSHA512_256,
	types.DigestSHA512_256Sess,
}

// ExtractChallenge parses a Digest challenge. The leading "Digest" scheme
// token is optional. Absent parameters take their defaults; malformed ones
// fail with a *ChallengeError naming the parameter.
func ExtractChallenge(headerValue string) (Challenge, error) {
	c := Challenge{
		Algorithm: types.DigestMD5,
		Qop:       types.QopNone,
		Charset:   types.CharsetASCII,
	}

	params, err := splitParams(stripScheme(headerValue))
	if err != nil {
		return Challenge{}, err
	}

	for _, p := range params {
		switch p.key {
		case "realm":
			c.Realm = p.value
		case "nonce":
			c.Nonce = p.value
		case "opaque":
			c.Opaque = p.value
		case "domain":
			c.Domains = p.value
		case "stale":
			v, err := parseFlag("stale", p.value)
			if err != nil {
				return Challenge{}, err
			}
			c.Stale = v
		case "userhash":
			v, err := parseFlag("userhash", p.value)
			if err != nil {
				return Challenge{}, err
			}
			c.UserHash = v
		case "algorithm":
			alg, err := parseAlgorithm(p.value)
			if err != nil {
				return Challenge{}, err
			}
			c.Algorithm = alg
		case "qop":
			qop, err := parseQop(p.value)
			if err != nil {
				return Challenge{}, err
			}
			c.Qop = qop
		case "charset":
			switch strings.ToUpper(p.value) {
			case "UTF-8":
				c.Charset = types.CharsetUTF8
			case "ASCII", "US-ASCII":
				c.Charset = types.CharsetASCII
			default:
				return Challenge{}, &ChallengeError{Field: "charset", Reason: fmt.Sprintf("unsupported charset %q", p.value)}
			}
		}
	}

	return c, nil
}

// ApplyChallenge stores c into d and restarts its nonce count
func ApplyChallenge(d *types.Digest, c Challenge) {
	d.Domains = c.Domains
	d.Realm = c.Realm
	d.Nonce = c.Nonce
	d.Opaque = c.Opaque
	d.Stale = c.Stale
	d.Algorithm = c.Algorithm
	d.Qop = c.Qop
	d.UserHash = c.UserHash
	d.Charset = c.Charset
	d.NonceCount = 0
}

// IsDigestChallenge reports whether a WWW-Authenticate value uses the Digest scheme
func IsDigestChallenge(headerValue string) bool {
	v := strings.TrimSpace(headerValue)
	return len(v) >= 6 && strings.EqualFold(v[:6], "Digest") && (len(v) == 6 || v[6] == ' ')
}

func stripScheme(v string) string {
	v = strings.TrimSpace(v)
	if IsDigestChallenge(v) {
		return strings.TrimSpace(v[6:])
	}
	return v
}

type param struct {
	key   string
	value string
}

// splitParams reads comma separated key=value and key="value" pairs.
// Quoted values may contain backslash escapes and commas.
func splitParams(s string) ([]param, error) {
	var params []param
	i := 0
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == ',') {
			i++
		}
		if i >= len(s) {
			break
		}

		start := i
		for i < len(s) && s[i] != '=' && s[i] != ',' {
			i++
		}
		key := strings.ToLower(strings.TrimSpace(s[start:i]))
		if i >= len(s) || s[i] != '=' {
			return nil, &ChallengeError{Field: key, Reason: "missing '='"}
		}
		if key == "" {
			return nil, &ChallengeError{Field: key, Reason: "empty parameter name"}
		}
		i++

		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}

		var value strings.Builder
		if i < len(s) && s[i] == '"' {
			i++
			closed := false
			for i < len(s) {
				ch := s[i]
				if ch == '\\' && i+1 < len(s) {
					value.WriteByte(s[i+1])
					i += 2
					continue
				}
				if ch == '"' {
					closed = true
					i++
					break
				}
				value.WriteByte(ch)
				i++
			}
			if !closed {
				return nil, &ChallengeError{Field: key, Reason: "unterminated quoted value"}
			}
			for i < len(s) && s[i] != ',' {
				if s[i] != ' ' && s[i] != '\t' {
					return nil, &ChallengeError{Field: key, Reason: "unexpected text after quoted value"}
				}
				i++
			}
		} else {
			start := i
			for i < len(s) && s[i] != ',' {
				i++
			}
			value.WriteString(strings.TrimSpace(s[start:i]))
		}

		params = append(params, param{key: key, value: value.String()})
	}
	return params, nil
}

func parseFlag(field, v string) (bool, error) {
	switch strings.ToLower(v) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, &ChallengeError{Field: field, Reason: fmt.Sprintf("expected true or false, got %q", v)}
}

func parseAlgorithm(v string) (types.DigestAlgorithm, error) {
	for _, alg := range algorithms {
		if strings.EqualFold(string(alg), v) {
			return alg, nil
		}
	}
	return "", &ChallengeError{Field: "algorithm", Reason: fmt.Sprintf("unsupported algorithm %q", v)}
}

// parseQop picks auth over auth-int when the server offers both
func parseQop(v string) (types.DigestQop, error) {
	var hasAuth, hasAuthInt bool
	for _, opt := range strings.Split(v, ",") {
		switch strings.ToLower(strings.TrimSpace(opt)) {
		case "auth":
			hasAuth = true
		case "auth-int":
			hasAuthInt = true
		}
	}
	switch {
	case hasAuth:
		return types.QopAuth, nil
	case hasAuthInt:
		return types.QopAuthInt, nil
	case strings.TrimSpace(v) == "":
		return types.QopNone, nil
	}
	return "", &ChallengeError{Field: "qop", Reason: fmt.Sprintf("unsupported qop %q", v)}
}
