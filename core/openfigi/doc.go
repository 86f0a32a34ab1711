// Package openfigi is a client for the OpenFIGI identifier mapping API.
//
// Client.MapBatch posts ID_BB_GLOBAL jobs to {base}/{version}/mapping and returns the first
// instrument found for each identifier. Identifiers are de-duplicated, split into requests of
// at most Config.BatchSize jobs, paced by a token-bucket limiter and memoized in a TTL cache
// shared by every caller of the same Client.
//
// YellowKey turns a Mapping into the Bloomberg yellow key used as a matching identifier.
package openfigi
