package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"position-tally/core/reconcile"
	"position-tally/core/storage"

	"github.com/minio/minio-go/v7"
)

// Relation names used in exported file names.
const (
	RelationDiff      = "diff"
	RelationLeftOnly  = "left_only"
	RelationRightOnly = "right_only"
)

// StampFormat is the layout of the run timestamp prefix.
const StampFormat = "20060102T150405"

// Sink stores one exported file.
type Sink interface {
	Write(ctx context.Context, name string, data []byte) error
}

// FileName returns "<stamp>_<left>_<right>_<relation>_<date>.csv".
func FileName(stamp time.Time, left, right, relation string, date time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%s_%s.csv",
		stamp.UTC().Format(StampFormat), left, right, relation, date.Format("20060102"))
}

// Export writes the three relations of res as CSV files and returns their names.
func Export(ctx context.Context, sink Sink, res *reconcile.Result, date, stamp time.Time) ([]string, error) {
	relations := []struct {
		name  string
		table func() ([]string, [][]string)
	}{
		{RelationDiff, res.DiffTable},
		{RelationLeftOnly, res.LeftOnlyTable},
		{RelationRightOnly, res.RightOnlyTable},
	}

	names := make([]string, 0, len(relations))
	for _, rel := range relations {
		header, records := rel.table()
		data, err := encode(header, records)
		if err != nil {
			return nil, err
		}
		name := FileName(stamp, res.Left, res.Right, rel.name, date)
		if err := sink.Write(ctx, name, data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
		names = append(names, name)
	}
	return names, nil
}

func encode(header []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DirSink writes files into a local directory, creating it when needed.
type DirSink struct {
	Dir string
}

// Write stores data as Dir/name.
func (s DirSink) Write(ctx context.Context, name string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.Dir, name), data, 0o644)
}

// ObjectSink uploads files to a bucket under a key prefix.
type ObjectSink struct {
	client storage.Client
	bucket string
	prefix string
}

// NewObjectSink creates a sink for bucket/prefix.
func NewObjectSink(client storage.Client, bucket, prefix string) *ObjectSink {
	return &ObjectSink{client: client, bucket: bucket, prefix: prefix}
}

// EnsureBucket creates the bucket if it does not exist.
func (s *ObjectSink) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Write uploads data as prefix/name.
func (s *ObjectSink) Write(ctx context.Context, name string, data []byte) error {
	key := path.Join(s.prefix, name)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "text/csv"})
	return err
}
