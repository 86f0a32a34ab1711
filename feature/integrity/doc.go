// Package integrity provides operational health checks for a reconciliation day.
//
// Unlike the 'reconciliation' package which compares positions, this package validates
// that the inputs and the infrastructure a run depends on are in place.
//
// # Checks Provided
//
//   - Exports: Extracts the export of every configured provider for a date and reports it
//     as ok (with row and account counts), missing or error.
//   - History: Validates that the run history table carries every column the store writes.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks (supports ?date=YYYY-MM-DD).
//   - GET /integrity/exports : Runs the export check (supports ?date=YYYY-MM-DD).
//   - GET /integrity/history : Runs the history schema check.
package integrity
