// Package shared holds the pieces every handler and middleware needs: the
// response envelope, request body decoding and the request context keys for
// the caller, the session and the trace ID.
package shared
