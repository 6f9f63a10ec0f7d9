// Package config loads runtime configuration for the gophauth CLI.
//
// Sources, lowest precedence first:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given with -c or -config.
//  3. Command-line flags.
//
// Flags:
//
//	-a string   address:port of the identity gRPC endpoint
//	-t int      per-request timeout (seconds)
//
// JSON file:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "5s"
//	}
package config
