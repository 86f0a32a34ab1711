// Package providers wires provider labels from configuration to adapters.
//
// A provider section names the adapter, the connection it reads from and the object key
// pattern:
//
//	[provider.ib]
//	connection = "novi_s3"
//	path = "IB/F5678557_Position_%Y%m%d.csv"
//
// Several labels may share an adapter, e.g. two IB sub-accounts reported in different files.
// The label, not the adapter name, namespaces reconciliation columns.
package providers
