package auth

import (
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"

	"github.com/studiowebux/restcore/internal/types"
)

// ErrNoChallenge is returned when a Digest has not seen a server nonce yet
var ErrNoChallenge = errors.New("digest auth has no challenge yet")

// newCnonce is replaced in tests
var newCnonce = func() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// DigestAuthorization builds the RFC 7616 Authorization value for one
// request and advances d.NonceCount. uri is the request target (path and
// query) and body is only hashed for qop=auth-int.
func DigestAuthorization(d *types.Digest, method, uri string, body []byte) (string, error) {
	if d.Nonce == "" {
		return "", ErrNoChallenge
	}

	newHash, sess, err := digestHash(d.Algorithm)
	if err != nil {
		return "", err
	}
	h := func(parts ...string) string {
		hh := newHash()
		hh.Write([]byte(strings.Join(parts, ":")))
		return hex.EncodeToString(hh.Sum(nil))
	}

	d.NonceCount++
	nc := fmt.Sprintf("%08x", d.NonceCount)
	cnonce := newCnonce()

	ha1 := h(d.Username, d.Realm, d.Password)
	if sess {
		ha1 = h(ha1, d.Nonce, cnonce)
	}

	var ha2 string
	if d.Qop == types.QopAuthInt {
		ha2 = h(method, uri, h(string(body)))
	} else {
		ha2 = h(method, uri)
	}

	var response string
	if d.Qop == types.QopNone {
		response = h(ha1, d.Nonce, ha2)
	} else {
		response = h(ha1, d.Nonce, nc, cnonce, string(d.Qop), ha2)
	}

	username := d.Username
	if d.UserHash {
		username = h(d.Username, d.Realm)
	}

	var sb strings.Builder
	sb.WriteString("Digest ")
	fmt.Fprintf(&sb, `username="%s", realm="%s", nonce="%s", uri="%s", algorithm=%s, response="%s"`,
		quote(username), quote(d.Realm), quote(d.Nonce), quote(uri), d.Algorithm, response)
	if d.Opaque != "" {
		fmt.Fprintf(&sb, `, opaque="%s"`, quote(d.Opaque))
	}
	if d.Qop != types.QopNone {
		fmt.Fprintf(&sb, `, qop=%s, nc=%s, cnonce="%s"`, d.Qop, nc, cnonce)
	}
	if d.UserHash {
		sb.WriteString(", userhash=true")
	}
	return sb.String(), nil
}

func digestHash(alg types.DigestAlgorithm) (func() hash.Hash, bool, error) {
	switch alg {
	case types.DigestMD5, "":
		return md5.New, false, nil
	case types.DigestMD5Sess:
		return md5.New, true, nil
	case types.DigestSHA256:
		return sha256.New, false, nil
	case types.DigestSHA256Sess:
		return sha256.New, true, nil
	case types.DigestSHA512_256:
		return sha512.New512_256, false, nil
	case types.DigestSHA512_256Sess:
		return sha512.New512_256, true, nil
	}
	return nil, false, fmt.Errorf("unsupported digest algorithm %q", alg)
}

func quote(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
