// Package database handles database connections and schema inspection for run history.
//
// Connect opens MySQL or sqlite through GORM with bounded timeouts and a verifying ping.
// The inspector helpers read a table's columns so callers can check that a shared schema
// carries the columns they write.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logg.Warn("Run history disabled", zap.Error(err))
//	}
//
//	missing, err := database.MissingColumns(db, "reconciliation_runs", []string{"id", "left_provider"})
package database
