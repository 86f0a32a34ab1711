// Package reconcile provides the canonical position schema and the engine that
// reconciles position snapshots reported by two independent providers.
//
// The reconcile system is built around three pieces:
//   - Adapter: provider-specific normalization of a raw export into a canonical Table
//   - Position: binds an adapter to a date and account filter and memoizes its Table
//   - Reconcile: a pure two-tier match over two Tables
//
// # Canonical Schema
//
// Every adapter produces CanonicalPosition rows. After aggregation a table holds at
// most one row per (account_id, description) and at most one row per
// (account_id, bbg_yellow) among rows with a non-null bbg_yellow. Validate enforces
// this together with the non-null columns (account_id, local_ccy, price).
//
// # Matching
//
// Reconcile namespaces each side (LeftRow, RightRow), drops rows whose identifier is
// null, joins the rest 1:1 on (account_id, identifier) and reports:
//
//   - Diff: matched pairs flagged by the DiffPolicy
//   - LeftOnly: left rows with no counterpart
//   - RightOnly: right rows with no counterpart
//
// With a fallback identifier the unmatched rows of the first pass are matched again,
// and the final unmatched relations come from the second pass.
//
// # Usage Example
//
//	broker := reconcile.NewPosition(ibAdapter, date, "ib", accounts)
//	admin := reconcile.NewPosition(formidiumAdapter, date, "formidium", accounts)
//
//	result, err := broker.ReconcileWith(ctx, admin, reconcile.Description,
//	    reconcile.WithFallback(reconcile.BBGYellow))
//
// # Errors
//
// Failures are classified by the sentinels ErrConfiguration, ErrSchemaViolation,
// ErrJoinIntegrity, ErrTransport and ErrUnknownProvider; use errors.Is to test them.
package reconcile
