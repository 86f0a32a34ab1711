// Package server holds the HTTP server configuration.
//
// The Config struct defines the HTTP port and the API key protecting the reconciliation API.
// It is embedded by core/config and read by the start command.
package server
