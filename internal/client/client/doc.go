// Package client is a gRPC client for gophauth.v1.IdentityService. It keeps
// the current token pair in memory and refreshes an expired access token
// transparently before retrying a profile call once.
package client
