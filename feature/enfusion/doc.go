// Package enfusion adapts the Enfusion daily position report to the canonical schema.
//
// Enfusion books one row per deal. Rows are grouped on the PMS yellow key and the account
// label is reduced to the broker account number with ParseAccount, so the result lines up
// with the broker files.
package enfusion
