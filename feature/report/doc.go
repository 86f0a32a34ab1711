// Package report exports reconciliation results as CSV files.
//
// Each run produces one file per relation, named
// "<stamp>_<left>_<right>_{diff,left_only,right_only}_<date>.csv", with the column order of
// reconcile.Result tables. Files go to a local directory (DirSink) or an S3 bucket (ObjectSink).
package report
