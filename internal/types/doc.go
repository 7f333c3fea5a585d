/*
Package types defines the canonical request and response model shared by the
importers and the executor.

# Overview

Every importer converges on Request. A Request is created by an importer (or
by hand with NewRequest), shared through a Handle, mutated in place by the
executor and persisted by whoever owns the collection.

# Tagged Unions

Auth, ContentType, Protocol and ResponseContent are closed sum types: an
interface with an unexported marker method and one struct per variant.
Consumers match them with a type switch that lists every variant.

Auth:
  - NoAuth, BasicAuth, BearerToken, JwtToken
  - *Digest (pointer so the challenge and nonce count can be updated in
    place through Request.GetDigestMut)

ContentType:
  - NoBody, FileBody, Multipart, Form
  - Raw, Json, Xml, Html, Javascript (text bodies)

Protocol:
  - HTTPProtocol (method + body), WebSocketProtocol, GraphQLProtocol

# Settings

RequestSettings holds seven Setting values. A Setting is either a bool or a
uint32; reading it as the other kind panics.

# Runtime State

IsPending, the cancellation signal and Digest.NonceCount are never
persisted. Loading a request (JSON or YAML) always yields IsPending=false, a
fresh CancelSignal and a zero nonce count.

# Example Structure

	name: GET /users
	url: https://api.example.com/users
	params:
	  - {enabled: true, name: page, value: "2"}
	headers:
	  - {enabled: true, name: Accept, value: application/json}
	auth:
	  type: bearer_token
	  token: abc
	protocol:
	  type: http
	  method: GET
	  body: {type: no_body}
	settings:
	  use_config_proxy: true
	  allow_redirects: true
	  timeout: 30000
	  store_received_cookies: true
	  pretty_print_response_content: true
	  accept_invalid_certs: false
	  accept_invalid_hostnames: false

# Thread Safety

Request itself is not synchronised. Share it through a Handle and read or
write it inside View and Update.
*/
package types
