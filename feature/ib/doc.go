// Package ib adapts Interactive Brokers flex position files to the canonical schema.
//
// The export starts with a one-line preamble followed by a headed CSV. Detail rows ("D") of
// holdings are kept; cash and accrual lines are not positions. Yellow keys are resolved from
// the BBGlobalID column through a Mapper, normally an openfigi.Client.
package ib
