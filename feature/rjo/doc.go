// Package rjo adapts RJO' Brien futures clearing position files to the canonical schema.
//
// The daily csvnpos export is headerless; PositionHeader names its columns. Only "P" records
// of futures are kept (rows with a security subtype are options). Lots of one contract are
// netted with the buy/sell code and the Bloomberg yellow key is derived from the exported
// root, market sector and contract month, after a table of manual symbol corrections.
package rjo
