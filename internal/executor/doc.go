/*
Package executor sends requests and records their responses.

# Overview

Executor.Send takes a shared request (types.Handle) and an optional
environment and produces a types.RequestResponse:
  - HTTP requests (any method, every body variant)
  - GraphQL requests, posted as {"query", "variables"} JSON
  - WebSocket requests, reduced to the opening handshake

# Send Lifecycle

 1. {{variables}} are substituted into a copy of the request.
 2. The HTTP request, its Authorization header and the client are built.
    A failure here is returned as an error and the Handle is left as it
    was.
 3. IsPending is set, a fresh cancel signal installed and the previous
    response cleared.
 4. The call runs in its own goroutine and races the timeout timer, the
    request's cancel signal and the caller's context.
 5. The response (or TIMEOUT / CANCELED marker) is stored and IsPending
    cleared.

# Outcomes

  - Real response: "<code> <reason>" status, headers, cookies, content
  - Timeout: status TIMEOUT, no content
  - Cancellation: status CANCELED, no content
  - Transport failure: no status, the error text as body content

Every outcome records the elapsed duration. None of them is returned as an
error; only requests that cannot be built are.

# Response Content

Content-Encoding gzip, deflate, br and zstd is decoded. image/* bodies are
decoded into an image when possible; everything else is read as text,
transcoded to UTF-8 and, for JSON with pretty printing enabled, indented.

# Digest Authentication

A Digest without a nonce is sent without credentials. When the server
answers 401 with a Digest challenge, the challenge is stored on the request
so the next send authenticates. Sends are never retried automatically.

# Example Usage

	exec := executor.New(executor.WithLogger(logger))

	handle := types.NewHandle(types.NewRequest("users", "https://api.example.com/users"))
	resp, err := exec.Send(ctx, handle, env)
	if err != nil {
		return err
	}

	fmt.Println(resp.StatusText())

# Thread Safety

Send is safe to call concurrently. Each send builds its own client and only
touches the Handle it was given; observers read progress through the same
Handle.
*/
package executor
