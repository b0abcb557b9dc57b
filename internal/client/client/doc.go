// Package client talks to the metakeeper server.
//
// # Overview
//
// Client is the transport-agnostic contract used by the CLI. GRPCClient
// implements it over the metakeeper gRPC service: it owns the connection,
// attaches the access token to every call through a unary interceptor and
// applies a per-request timeout.
//
// # Error Handling
//
// gRPC status codes are mapped to sentinel errors that callers can match
// with errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound,
// ErrAlreadyExists and ErrInvalidRequest. The server's message is kept in
// the wrapped error text.
package client
