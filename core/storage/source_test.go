package storage_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"position-tally/core/storage"
	"position-tally/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestObjectSource(t *testing.T) {
	ctx := context.Background()

	t.Run("ReadsObject", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", ctx, "positions", "IB/pos.csv", minio.GetObjectOptions{}).
			Return(io.NopCloser(strings.NewReader("a,b\n1,2\n")), nil)

		data, err := storage.NewObjectSource(client, "positions").ReadBytes(ctx, "IB/pos.csv")
		require.NoError(t, err)
		assert.Equal(t, "a,b\n1,2\n", string(data))
		client.AssertExpectations(t)
	})

	t.Run("MissingKey", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", ctx, "positions", "nope.csv", minio.GetObjectOptions{}).
			Return(nil, minio.ErrorResponse{Code: "NoSuchKey"})

		_, err := storage.NewObjectSource(client, "positions").ReadBytes(ctx, "nope.csv")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("OtherFailure", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", ctx, "positions", "x.csv", minio.GetObjectOptions{}).
			Return(nil, errors.New("connection reset"))

		_, err := storage.NewObjectSource(client, "positions").ReadBytes(ctx, "x.csv")
		require.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrNotFound)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestLocalSource(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "daily_positions"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "daily_positions", "p.csv"), []byte("x"), 0o644))

	src := storage.NewLocalSource(root)

	data, err := src.ReadBytes(context.Background(), "daily_positions/p.csv")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	_, err = src.ReadBytes(context.Background(), "daily_positions/missing.csv")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNewSource(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr bool
	}{
		{name: "S3", cfg: storage.Config{Type: "s3", Endpoint: "localhost:9000", Bucket: "b"}},
		{name: "DefaultIsS3", cfg: storage.Config{Endpoint: "localhost:9000"}},
		{name: "Local", cfg: storage.Config{Type: "LOCAL", Root: "/tmp"}},
		{name: "SFTP", cfg: storage.Config{Type: "sftp", Host: "sftp.example.com", User: "u"}},
		{name: "SFTPWithoutHost", cfg: storage.Config{Type: "sftp"}, wantErr: true},
		{name: "SFTPBadHostKey", cfg: storage.Config{Type: "sftp", Host: "h", HostKey: "garbage"}, wantErr: true},
		{name: "Unsupported", cfg: storage.Config{Type: "ftp"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := storage.NewSource(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, src)
		})
	}
}

func TestCachedSource(t *testing.T) {
	ctx := context.Background()

	t.Run("SingleReadPerPath", func(t *testing.T) {
		next := new(mocks.Source)
		next.On("ReadBytes", mock.Anything, "a.csv").Return([]byte("A"), nil).Once()

		src := storage.NewCachedSource(next)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				data, err := src.ReadBytes(ctx, "a.csv")
				assert.NoError(t, err)
				assert.Equal(t, "A", string(data))
			}()
		}
		wg.Wait()

		data, err := src.ReadBytes(ctx, "a.csv")
		require.NoError(t, err)
		assert.Equal(t, "A", string(data))
		next.AssertNumberOfCalls(t, "ReadBytes", 1)
	})

	t.Run("CancelledCallerDoesNotFailOthers", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		var readCtx context.Context

		next := new(mocks.Source)
		next.On("ReadBytes", mock.Anything, "c.csv").Run(func(args mock.Arguments) {
			readCtx = args.Get(0).(context.Context)
			close(started)
			<-release
		}).Return([]byte("C"), nil).Once()

		src := storage.NewCachedSource(next)

		first, cancel := context.WithCancel(ctx)
		firstErr := make(chan error, 1)
		go func() {
			_, err := src.ReadBytes(first, "c.csv")
			firstErr <- err
		}()

		<-started
		cancel()
		assert.ErrorIs(t, <-firstErr, context.Canceled)
		assert.NoError(t, readCtx.Err())

		second := make(chan []byte, 1)
		go func() {
			data, err := src.ReadBytes(ctx, "c.csv")
			assert.NoError(t, err)
			second <- data
		}()
		close(release)

		assert.Equal(t, "C", string(<-second))
		next.AssertNumberOfCalls(t, "ReadBytes", 1)
	})

	t.Run("FailuresNotCached", func(t *testing.T) {
		next := new(mocks.Source)
		next.On("ReadBytes", mock.Anything, "b.csv").Return(nil, storage.ErrNotFound).Once()
		next.On("ReadBytes", mock.Anything, "b.csv").Return([]byte("B"), nil).Once()

		src := storage.NewCachedSource(next)

		_, err := src.ReadBytes(ctx, "b.csv")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		data, err := src.ReadBytes(ctx, "b.csv")
		require.NoError(t, err)
		assert.Equal(t, "B", string(data))
	})

	t.Run("Invalidate", func(t *testing.T) {
		next := new(mocks.Source)
		next.On("ReadBytes", mock.Anything, "c.csv").Return([]byte("C"), nil).Twice()

		src := storage.NewCachedSource(next)
		_, _ = src.ReadBytes(ctx, "c.csv")
		src.Invalidate("c.csv")
		_, _ = src.ReadBytes(ctx, "c.csv")

		next.AssertNumberOfCalls(t, "ReadBytes", 2)
	})
}
