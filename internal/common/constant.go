// Package common contains shared constants and sentinel errors used across
// metakeeper components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultMaxPageSize caps search results when the caller asks for page size 0.
const DefaultMaxPageSize = 100
