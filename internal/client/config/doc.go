// Package config loads runtime configuration for the omctl CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c/-config or OMCTL_CONFIG.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the metakeeper gRPC endpoint
//	-k string   access token
//	-r int      request timeout (seconds)
//	-n int      page size for listing commands
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "access_token": "eyJ...",
//	  "request_timeout": "10s",
//	  "page_size": 20
//	}
package config
