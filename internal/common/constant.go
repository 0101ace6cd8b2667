// Package common contains shared constants, sentinel errors and identifier
// helpers used across the sync core.
package common

// AuthorizationHeaderName is the HTTP header carrying the session token on
// outbound requests to the remote API.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in AuthorizationHeaderName.
const BearerPrefix = "Bearer "
