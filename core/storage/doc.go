// Package storage provides the raw byte sources provider exports are read from.
//
// It wraps the MinIO Go client for S3-compatible object storage, an SFTP client for
// broker drop boxes, and the local filesystem behind one Source interface:
//
//	type Source interface {
//	    ReadBytes(ctx context.Context, path string) ([]byte, error)
//	}
//
// A missing object is reported as ErrNotFound on every implementation.
//
// # Client Interface
//
// The Client interface abstracts the MinIO client, making it easier to mock storage
// interactions for unit testing (as seen in core/storage/mocks).
//
// # Caching
//
// CachedSource memoizes ReadBytes per path and collapses concurrent reads of the same
// path into one request, so one export reconciled against several counterparties in a
// run is fetched once.
//
// # Usage
//
//	src, err := storage.NewSource(cfg)
//	src = storage.NewCachedSource(src)
//	data, err := src.ReadBytes(ctx, "IB/F5678557_Position_20241231.csv")
package storage
