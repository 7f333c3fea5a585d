package parser

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/studiowebux/restcore/internal/auth"
	"github.com/studiowebux/restcore/internal/types"
)

// curlCommand is a tokenized cURL invocation before it becomes a Request
type curlCommand struct {
	method   string
	head     bool
	url      string
	headers  []types.KeyValue
	data     []string
	form     bool
	get      bool
	user     string
	hasUser  bool
	digest   bool
	insecure bool
	maxTime  string
}

// Flags whose value is consumed but not used
var skippedValueFlags = map[string]bool{
	"-o": true, "--output": true,
	"-x": true, "--proxy": true,
	"-U": true, "--proxy-user": true,
	"-c": true, "--cookie-jar": true,
	"-w": true, "--write-out": true,
	"-T": true, "--upload-file": true,
	"-E": true, "--cert": true,
	"--key": true, "--cacert": true, "--capath": true,
	"--connect-timeout": true, "--max-redirs": true,
	"--retry": true, "--retry-delay": true, "--retry-max-time": true,
	"--resolve": true, "--connect-to": true, "--interface": true,
	"--limit-rate": true, "--oauth2-bearer": true,
}

// Short flags that take a value and may have it attached, e.g. -XPOST
const shortValueFlags = "XHduAebmxFoUcwTE"

// ParseCurlFile reads a file holding one cURL invocation. The request is
// named after the file without its extension.
func ParseCurlFile(filePath string) (*types.Handle, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &ImportError{Path: filePath, Err: fmt.Errorf("%w: %v", ErrReadFile, err)}
	}

	base := filepath.Base(filePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	h, err := ParseCurlContent(name, string(data))
	if err != nil {
		return nil, &ImportError{Path: filePath, Err: err}
	}
	return h, nil
}

// ParseCurlContent converts one cURL invocation into a request called name
func ParseCurlContent(name, content string) (*types.Handle, error) {
	cmd, err := tokenizeCurl(content)
	if err != nil {
		return nil, err
	}

	req, err := cmd.toRequest(name)
	if err != nil {
		return nil, err
	}
	return types.NewHandle(req), nil
}

func tokenizeCurl(content string) (*curlCommand, error) {
	// Clean up the command - handle multiline with backslashes
	content = strings.ReplaceAll(content, "\\\r\n", " ")
	content = strings.ReplaceAll(content, "\\\n", " ")
	content = strings.TrimSpace(content)

	tokens, err := shlex.Split(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCouldNotParseCurl, err)
	}
	if len(tokens) == 0 || filepath.Base(tokens[0]) != "curl" {
		return nil, fmt.Errorf("%w: command does not start with curl", ErrCouldNotParseCurl)
	}

	cmd := &curlCommand{headers: []types.KeyValue{}}
	args := expandShortFlags(tokens[1:])

	for i := 0; i < len(args); i++ {
		flag, value, hasValue := splitFlag(args[i])

		next := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("%w: option %s needs a value", ErrCouldNotParseCurl, flag)
			}
			i++
			return args[i], nil
		}

		switch flag {
		case "-X", "--request":
			v, err := next()
			if err != nil {
				return nil, err
			}
			cmd.method = v
		case "-H", "--header":
			v, err := next()
			if err != nil {
				return nil, err
			}
			if key, val, ok := strings.Cut(v, ":"); ok {
				cmd.headers = append(cmd.headers, types.NewKeyValue(strings.TrimSpace(key), strings.TrimSpace(val)))
			}
		case "-d", "--data", "--data-raw", "--data-binary", "--data-ascii", "--json":
			v, err := next()
			if err != nil {
				return nil, err
			}
			cmd.data = append(cmd.data, v)
			if flag == "--json" {
				cmd.headers = append(cmd.headers, types.NewKeyValue("Content-Type", "application/json"))
			}
		case "--data-urlencode":
			v, err := next()
			if err != nil {
				return nil, err
			}
			cmd.data = append(cmd.data, urlencodeData(v))
		case "-F", "--form", "--form-string":
			if _, err := next(); err != nil {
				return nil, err
			}
			cmd.form = true
		case "-u", "--user":
			v, err := next()
			if err != nil {
				return nil, err
			}
			cmd.user = v
			cmd.hasUser = true
		case "--digest":
			cmd.digest = true
		case "--url":
			v, err := next()
			if err != nil {
				return nil, err
			}
			cmd.url = v
		case "-A", "--user-agent":
			v, err := next()
			if err != nil {
				return nil, err
			}
			cmd.headers = append(cmd.headers, types.NewKeyValue("User-Agent", v))
		case "-e", "--referer":
			v, err := next()
			if err != nil {
				return nil, err
			}
			cmd.headers = append(cmd.headers, types.NewKeyValue("Referer", v))
		case "-b", "--cookie":
			v, err := next()
			if err != nil {
				return nil, err
			}
			// without '=' the value names a cookie file
			if strings.Contains(v, "=") {
				cmd.headers = append(cmd.headers, types.NewKeyValue("Cookie", v))
			}
		case "-m", "--max-time":
			v, err := next()
			if err != nil {
				return nil, err
			}
			cmd.maxTime = v
		case "-I", "--head":
			cmd.head = true
		case "-G", "--get":
			cmd.get = true
		case "-k", "--insecure":
			cmd.insecure = true
		default:
			if skippedValueFlags[flag] {
				if _, err := next(); err != nil {
					return nil, err
				}
				continue
			}
			if strings.HasPrefix(args[i], "-") && len(args[i]) > 1 {
				// unsupported switch
				continue
			}
			if cmd.url == "" {
				cmd.url = args[i]
			}
		}
	}

	if cmd.url == "" {
		return nil, fmt.Errorf("%w: could not find URL in cURL command", ErrCouldNotParseCurl)
	}
	return cmd, nil
}

// splitFlag separates "--flag=value" and "-Xvalue" into flag and value
func splitFlag(arg string) (string, string, bool) {
	if strings.HasPrefix(arg, "--") {
		if flag, value, ok := strings.Cut(arg, "="); ok {
			return flag, value, true
		}
		return arg, "", false
	}
	if len(arg) > 2 && arg[0] == '-' && strings.IndexByte(shortValueFlags, arg[1]) >= 0 {
		return arg[:2], arg[2:], true
	}
	return arg, "", false
}

// expandShortFlags splits bundles such as -sSLk or -sXPOST into single
// switches. Expansion stops at the first value-taking flag, which keeps the
// rest of the bundle as its attached value.
func expandShortFlags(args []string) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if len(arg) <= 2 || arg[0] != '-' || arg[1] == '-' || strings.IndexByte(shortValueFlags, arg[1]) >= 0 {
			out = append(out, arg)
			continue
		}
		for j := 1; j < len(arg); j++ {
			if strings.IndexByte(shortValueFlags, arg[j]) >= 0 {
				out = append(out, "-"+arg[j:])
				break
			}
			out = append(out, "-"+string(arg[j]))
		}
	}
	return out
}

func urlencodeData(v string) string {
	name, content, ok := strings.Cut(v, "=")
	if !ok {
		return url.QueryEscape(v)
	}
	if name == "" {
		return url.QueryEscape(content)
	}
	return name + "=" + url.QueryEscape(content)
}

func (c *curlCommand) toRequest(name string) (types.Request, error) {
	base, params, err := splitURL(c.url)
	if err != nil {
		return types.Request{}, err
	}

	payload := strings.Join(c.data, "&")
	if c.get && payload != "" {
		params = append(params, splitQuery(payload)...)
		payload = ""
	}

	methodToken := c.method
	switch {
	case methodToken != "":
	case c.head:
		methodToken = string(types.MethodHead)
	case payload != "" || c.form:
		methodToken = string(types.MethodPost)
	default:
		methodToken = string(types.MethodGet)
	}
	method, err := types.ParseMethod(methodToken)
	if err != nil {
		return types.Request{}, err
	}

	req := types.NewRequest(name, base)
	req.Params = params
	req.Headers = withoutHeader(c.headers, "authorization")

	a, err := c.resolveAuth()
	if err != nil {
		return types.Request{}, err
	}
	req.Auth = a

	// Payloads without a Content-Type header, and forms, are not imported
	var body types.ContentType = types.NoBody{}
	if payload != "" {
		if ct, ok := findHeader(c.headers, "content-type"); ok {
			body = types.ContentTypeFromHeader(ct, payload)
		}
	}
	req.Protocol = types.HTTPProtocol{Method: method, Body: body}

	if c.insecure {
		req.Settings.AcceptInvalidCerts = types.BoolSetting(true)
	}
	if c.maxTime != "" {
		secs, err := strconv.ParseFloat(c.maxTime, 64)
		if err != nil || secs < 0 || math.IsNaN(secs) {
			return types.Request{}, fmt.Errorf("%w: invalid --max-time %q", ErrCouldNotParseCurl, c.maxTime)
		}
		ms := math.Round(secs * 1000)
		if ms > math.MaxUint32 {
			return types.Request{}, fmt.Errorf("%w: --max-time %q is out of range", ErrCouldNotParseCurl, c.maxTime)
		}
		req.Settings.Timeout = types.U32Setting(uint32(ms))
	}

	return req, nil
}

// resolveAuth applies the -u flag before any Authorization header
func (c *curlCommand) resolveAuth() (types.Auth, error) {
	username, password, _ := strings.Cut(c.user, ":")

	if c.hasUser && !c.digest {
		return types.BasicAuth{Username: username, Password: password}, nil
	}

	value, ok := findHeader(c.headers, "authorization")
	if !ok {
		return types.NoAuth{}, nil
	}
	scheme, rest, _ := strings.Cut(strings.TrimSpace(value), " ")

	switch {
	case strings.EqualFold(scheme, "Bearer"):
		return types.BearerToken{Token: strings.TrimSpace(rest)}, nil
	case auth.IsDigestChallenge(value):
		challenge, err := auth.ExtractChallenge(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCouldNotParseCurl, err)
		}
		d := types.NewDigest("", "")
		if c.digest && c.hasUser {
			d.Username, d.Password = username, password
		}
		auth.ApplyChallenge(d, challenge)
		return d, nil
	}
	return types.NoAuth{}, nil
}
