// Package cli provides omctl, the interactive metakeeper command-line client.
//
// It wires configuration and the gRPC client into a REPL. Properties are
// given as key=value pairs, or key:=<json> for non-string values. When no
// access token is configured the CLI asks for one without echoing it.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
