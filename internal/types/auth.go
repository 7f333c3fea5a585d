package types

// Auth is the authentication scheme of a request. Exactly one variant is
// active: NoAuth, BasicAuth, BearerToken, JwtToken or *Digest.
type Auth interface {
	isAuth()
}

// NoAuth sends no credentials
type NoAuth struct{}

// BasicAuth is RFC 7617 username/password auth
type BasicAuth struct {
	Username string
	Password string
}

// BearerToken sends "Authorization: Bearer <token>"
type BearerToken struct {
	Token string
}

// JwtAlgorithm is the HMAC algorithm used to sign a JwtToken
type JwtAlgorithm string

const (
	JwtHS256 JwtAlgorithm = "HS256"
	JwtHS384 JwtAlgorithm = "HS384"
	JwtHS512 JwtAlgorithm = "HS512"
)

// JwtToken signs Payload (a JSON object) with Secret at send time and
// sends the result as a bearer token
type JwtToken struct {
	Algorithm JwtAlgorithm
	Secret    string
	Payload   string
}

// DigestAlgorithm is the hash named by the challenge "algorithm" parameter
type DigestAlgorithm string

const (
	DigestMD5            DigestAlgorithm = "MD5"
	DigestMD5Sess        DigestAlgorithm = "MD5-sess"
	DigestSHA256         DigestAlgorithm = "SHA-256"
	DigestSHA256Sess     DigestAlgorithm = "SHA-256-sess"
	DigestSHA512_256     DigestAlgorithm = "SHA-512-256"
	DigestSHA512_256Sess DigestAlgorithm = "SHA-512-256-sess"
)

// DigestQop is the quality of protection selected from the challenge
type DigestQop string

const (
	QopNone    DigestQop = ""
	QopAuth    DigestQop = "auth"
	QopAuthInt DigestQop = "auth-int"
)

// DigestCharset is the challenge "charset" parameter
type DigestCharset string

const (
	CharsetASCII DigestCharset = "ASCII"
	CharsetUTF8  DigestCharset = "UTF-8"
)

// Digest holds credentials plus the last server challenge.
// NonceCount counts requests made under the current nonce; it is runtime
// state and is never persisted.
type Digest struct {
	Username  string
	Password  string
	Domains   string
	Realm     string
	Nonce     string
	Opaque    string
	Stale     bool
	Algorithm DigestAlgorithm
	Qop       DigestQop
	UserHash  bool
	Charset   DigestCharset

	NonceCount uint32
}

// NewDigest returns a Digest with the challenge defaults
func NewDigest(username, password string) *Digest {
	return &Digest{
		Username:  username,
		Password:  password,
		Algorithm: DigestMD5,
		Qop:       QopNone,
		Charset:   CharsetASCII,
	}
}

func (NoAuth) isAuth()      {}
func (BasicAuth) isAuth()   {}
func (BearerToken) isAuth() {}
func (JwtToken) isAuth()    {}
func (*Digest) isAuth()     {}

func cloneAuth(a Auth) Auth {
	switch v := a.(type) {
	case *Digest:
		c := *v
		return &c
	case nil:
		return NoAuth{}
	default:
		return v
	}
}
