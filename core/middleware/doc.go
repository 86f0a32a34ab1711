// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting the reconciliation API (X-API-Key header).
//   - rayid: a request id (ray id) for every incoming request, stored in the context and
//     echoed in the X-Ray-ID response header for tracing.
//
// These middleware components are registered globally in the start command.
package middleware
