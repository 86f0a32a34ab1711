// Package formidium adapts the Formidium fund administrator reporting package to the
// canonical schema.
//
// The package is an XLSX workbook whose position sheet has its header on the fourth row.
// Administrator accounts are labeled "<broker> - <account>"; ParseAccount maps them to the
// broker account numbers. Symbols are only standard yellow keys for RJO futures accounts.
package formidium
