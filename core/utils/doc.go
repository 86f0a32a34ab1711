// Package utils provides common utility functions for the position-tally application.
// It includes helpers for parsing provider cells (numbers, flags), reading CSV and
// XLSX exports into header-keyed records, formatting date-stamped source paths,
// and business-day arithmetic that doesn't fit into a provider-specific package.
package utils
