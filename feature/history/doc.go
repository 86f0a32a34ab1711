// Package history persists reconciliation runs with GORM.
//
// A Run stores the summary counts of one reconciliation and its Breaks, one per row of the
// diff, left-only and right-only relations, so earlier runs can be reviewed after the CSV
// exports are gone. Tables are reconciliation_runs and reconciliation_breaks.
package history
