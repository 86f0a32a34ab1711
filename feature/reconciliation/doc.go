// Package reconciliation runs position reconciliations between providers and
// exposes them over HTTP.
//
// The Service loads the left position and every counterparty concurrently,
// reconciles the left side against each, optionally exports the three relations
// through a report.Sink and records the run in the history store.
//
// # Routes
//
//   - GET  /positions/:provider        canonical positions of one provider
//   - POST /reconciliations            run one provider against one or more others
//   - GET  /reconciliations            stored runs (history enabled only)
//   - GET  /reconciliations/:id        one stored run with its breaks
package reconciliation
