package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
)

// ErrNotFound is returned when the requested path does not exist in the source.
var ErrNotFound = errors.New("object not found")

// Source reads raw export bytes by path.
type Source interface {
	ReadBytes(ctx context.Context, path string) ([]byte, error)
}

// NewSource creates the source selected by cfg.Type.
func NewSource(cfg Config) (Source, error) {
	switch strings.ToLower(cfg.Type) {
	case TypeS3, "":
		client, err := NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return NewObjectSource(client, cfg.Bucket), nil
	case TypeSFTP:
		return NewSFTPSource(cfg)
	case TypeLocal:
		return NewLocalSource(cfg.Root), nil
	default:
		return nil, fmt.Errorf("unsupported connection type %q", cfg.Type)
	}
}

// ObjectSource reads objects from an S3-compatible bucket.
type ObjectSource struct {
	client Client
	bucket string
}

// NewObjectSource creates a source over bucket.
func NewObjectSource(client Client, bucket string) *ObjectSource {
	return &ObjectSource{client: client, bucket: bucket}
}

// ReadBytes downloads the whole object at path.
func (s *ObjectSource) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, objectError(s.bucket, path, err)
	}
	defer obj.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj); err != nil {
		return nil, objectError(s.bucket, path, err)
	}
	return buf.Bytes(), nil
}

func objectError(bucket, path string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: s3://%s/%s", ErrNotFound, bucket, path)
	}
	return fmt.Errorf("failed to get object s3://%s/%s: %w", bucket, path, err)
}

// LocalSource reads files below a root directory.
type LocalSource struct {
	root string
}

// NewLocalSource creates a source rooted at root.
func NewLocalSource(root string) *LocalSource {
	return &LocalSource{root: root}
}

// ReadBytes reads the file at root/path.
func (s *LocalSource) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full := filepath.Join(s.root, filepath.FromSlash(path))
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, full)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", full, err)
	}
	return data, nil
}
