// Package logger builds the application's zap logger.
//
// New selects zap's development preset for the debug level and the production preset
// otherwise, with json or console encoding. Unknown levels and formats are rejected.
//
// Request handlers derive a child logger with WithRayID, which adds the ray_id set by
// the rayid middleware so every line of a request can be correlated:
//
//	l := logger.WithRayID(h.service.logger, c)
//	l.Error("Reconciliation failed", zap.Error(err))
package logger
