package types

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// SettingKind is the value kind of a Setting
type SettingKind int

const (
	SettingBool SettingKind = iota
	SettingU32
)

// Setting is a boolean or unsigned integer request option
type Setting struct {
	kind SettingKind
	b    bool
	u    uint32
}

// BoolSetting returns a boolean setting
func BoolSetting(v bool) Setting { return Setting{kind: SettingBool, b: v} }

// U32Setting returns an unsigned integer setting
func U32Setting(v uint32) Setting { return Setting{kind: SettingU32, u: v} }

// Kind reports whether s holds a bool or a number
func (s Setting) Kind() SettingKind { return s.kind }

// AsBool returns the value of a boolean setting. It panics on a number.
func (s Setting) AsBool() bool {
	if s.kind != SettingBool {
		panic("setting is not a bool")
	}
	return s.b
}

// AsU32 returns the value of a number setting. It panics on a bool.
func (s Setting) AsU32() uint32 {
	if s.kind != SettingU32 {
		panic("setting is not a u32")
	}
	return s.u
}

func (s Setting) String() string {
	if s.kind == SettingBool {
		return fmt.Sprintf("%t", s.b)
	}
	return fmt.Sprintf("%d", s.u)
}

// MarshalJSON writes the bare bool or number
func (s Setting) MarshalJSON() ([]byte, error) {
	if s.kind == SettingBool {
		return json.Marshal(s.b)
	}
	return json.Marshal(s.u)
}

// UnmarshalJSON accepts a bare bool or number
func (s *Setting) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*s = BoolSetting(b)
		return nil
	}
	var u uint32
	if err := json.Unmarshal(data, &u); err == nil {
		*s = U32Setting(u)
		return nil
	}
	return errors.New("setting must be a bool or an unsigned integer")
}

// MarshalYAML writes the bare bool or number
func (s Setting) MarshalYAML() (interface{}, error) {
	if s.kind == SettingBool {
		return s.b, nil
	}
	return s.u, nil
}

// UnmarshalYAML accepts a bare bool or number
func (s *Setting) UnmarshalYAML(node *yaml.Node) error {
	var b bool
	if err := node.Decode(&b); err == nil {
		*s = BoolSetting(b)
		return nil
	}
	var u uint32
	if err := node.Decode(&u); err == nil {
		*s = U32Setting(u)
		return nil
	}
	return errors.New("setting must be a bool or an unsigned integer")
}

// DefaultTimeoutMillis is the default per-request timeout
const DefaultTimeoutMillis = 30000

// RequestSettings are the per-request execution options
type RequestSettings struct {
	UseConfigProxy             Setting `json:"use_config_proxy" yaml:"use_config_proxy"`
	AllowRedirects             Setting `json:"allow_redirects" yaml:"allow_redirects"`
	Timeout                    Setting `json:"timeout" yaml:"timeout"`
	StoreReceivedCookies       Setting `json:"store_received_cookies" yaml:"store_received_cookies"`
	PrettyPrintResponseContent Setting `json:"pretty_print_response_content" yaml:"pretty_print_response_content"`
	AcceptInvalidCerts         Setting `json:"accept_invalid_certs" yaml:"accept_invalid_certs"`
	AcceptInvalidHostnames     Setting `json:"accept_invalid_hostnames" yaml:"accept_invalid_hostnames"`
}

// DefaultRequestSettings enables everything except the certificate bypasses
func DefaultRequestSettings() RequestSettings {
	return RequestSettings{
		UseConfigProxy:             BoolSetting(true),
		AllowRedirects:             BoolSetting(true),
		Timeout:                    U32Setting(DefaultTimeoutMillis),
		StoreReceivedCookies:       BoolSetting(true),
		PrettyPrintResponseContent: BoolSetting(true),
		AcceptInvalidCerts:         BoolSetting(false),
		AcceptInvalidHostnames:     BoolSetting(false),
	}
}

// NamedSetting pairs a settings key with its value
type NamedSetting struct {
	Name  string
	Value *Setting
}

// All lists the settings in display order, by pointer for editing
func (s *RequestSettings) All() []NamedSetting {
	return []NamedSetting{
		{"use_config_proxy", &s.UseConfigProxy},
		{"allow_redirects", &s.AllowRedirects},
		{"timeout", &s.Timeout},
		{"store_received_cookies", &s.StoreReceivedCookies},
		{"pretty_print_response_content", &s.PrettyPrintResponseContent},
		{"accept_invalid_certs", &s.AcceptInvalidCerts},
		{"accept_invalid_hostnames", &s.AcceptInvalidHostnames},
	}
}

// fillDefaults replaces persisted settings whose kind does not match the
// default, e.g. a timeout written as a bool
func (s *RequestSettings) fillDefaults() {
	def := DefaultRequestSettings()
	cur := s.All()
	for i, d := range def.All() {
		if cur[i].Value.kind != d.Value.kind {
			*cur[i].Value = *d.Value
		}
	}
}
