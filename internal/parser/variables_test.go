package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/studiowebux/restcore/internal/types"
)

func TestSubstitute(t *testing.T) {
	t.Setenv("RESTCORE_TEST_TOKEN", "from-os")
	env := &types.Environment{Name: "dev", Values: map[string]string{"host": "api.dev", "id": "42"}}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "no variables", "no variables"},
		{"known", "https://{{host}}/users/{{ id }}", "https://api.dev/users/42"},
		{"unknown kept", "{{missing}}/x", "{{missing}}/x"},
		{"process env", "Bearer {{env.RESTCORE_TEST_TOKEN}}", "Bearer from-os"},
		{"process env missing", "{{env.RESTCORE_TEST_UNSET}}", "{{env.RESTCORE_TEST_UNSET}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Substitute(tt.in, env); got != tt.want {
				t.Errorf("Substitute(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSubstitute_NilEnvironment(t *testing.T) {
	if got := Substitute("{{host}}", nil); got != "{{host}}" {
		t.Errorf("Expected placeholder kept, got %q", got)
	}
}

func TestApplyEnvironment(t *testing.T) {
	env := &types.Environment{Values: map[string]string{"base": "https://x", "tok": "T", "user": "bob", "name": "ada"}}

	req := types.NewRequest("r", "{{base}}/users")
	req.Params = []types.KeyValue{types.NewKeyValue("q", "{{name}}")}
	req.Headers = []types.KeyValue{types.NewKeyValue("X-Token", "{{tok}}")}
	req.Auth = types.NewDigest("{{user}}", "pw")
	req.Protocol = types.HTTPProtocol{Method: types.MethodPost, Body: types.Json{Text: `{"name":"{{name}}"}`}}

	got := ApplyEnvironment(&req, env)

	if got.URL != "https://x/users" {
		t.Errorf("Unexpected URL %s", got.URL)
	}
	if diff := cmp.Diff([]types.KeyValue{types.NewKeyValue("q", "ada")}, got.Params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]types.KeyValue{types.NewKeyValue("X-Token", "T")}, got.Headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
	if u := got.Auth.(*types.Digest).Username; u != "bob" {
		t.Errorf("Expected digest username substituted, got %q", u)
	}
	wantProto := types.HTTPProtocol{Method: types.MethodPost, Body: types.Json{Text: `{"name":"ada"}`}}
	if diff := cmp.Diff(wantProto, got.Protocol); diff != "" {
		t.Errorf("protocol mismatch (-want +got):\n%s", diff)
	}

	// the source request is left untouched
	if req.URL != "{{base}}/users" || req.Params[0].Value != "{{name}}" || req.Headers[0].Value != "{{tok}}" {
		t.Errorf("Source request was modified: %+v", req)
	}
	if u := req.Auth.(*types.Digest).Username; u != "{{user}}" {
		t.Errorf("Source digest was modified: %q", u)
	}
}

func TestApplyEnvironment_FormAndGraphQL(t *testing.T) {
	env := &types.Environment{Values: map[string]string{"v": "1"}}

	form := types.NewRequest("f", "https://x")
	form.Protocol = types.HTTPProtocol{Method: types.MethodPost, Body: types.Form{Fields: []types.KeyValue{types.NewKeyValue("a", "{{v}}")}}}
	got := ApplyEnvironment(&form, env)
	wantForm := types.Form{Fields: []types.KeyValue{types.NewKeyValue("a", "1")}}
	if diff := cmp.Diff(wantForm, got.Protocol.(types.HTTPProtocol).Body); diff != "" {
		t.Errorf("form mismatch (-want +got):\n%s", diff)
	}
	if v := form.Protocol.(types.HTTPProtocol).Body.(types.Form).Fields[0].Value; v != "{{v}}" {
		t.Errorf("Source form was modified: %q", v)
	}

	gql := types.NewRequest("g", "https://x/graphql")
	gql.Protocol = types.GraphQLProtocol{Query: "query { item(id: {{v}}) }", Variables: `{"v": {{v}}}`}
	got = ApplyEnvironment(&gql, env)
	wantGQL := types.GraphQLProtocol{Query: "query { item(id: 1) }", Variables: `{"v": 1}`}
	if diff := cmp.Diff(wantGQL, got.Protocol); diff != "" {
		t.Errorf("graphql mismatch (-want +got):\n%s", diff)
	}
}
