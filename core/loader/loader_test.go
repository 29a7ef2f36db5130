package loader

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"manifest-reconciler/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLoader_LocalFiles(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	l := New(nil, "")

	target := filepath.Join(dir, "out", "manifest.json")
	exists, err := l.Exists(ctx, target)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, l.Write(ctx, target, []byte(`{"manifest": {"h": {"a": 1}}}`)))

	exists, err = l.Exists(ctx, target)
	require.NoError(t, err)
	assert.True(t, exists)

	m, err := l.LoadManifest(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, []string{"h"}, m.Keys())

	_, err = l.Load(ctx, filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "working.yaml")
	require.NoError(t, os.WriteFile(path, []byte("manifest:\n  h2: {}\n  h1: {}\n"), 0o644))

	m, err := New(nil, "").LoadManifest(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"h2", "h1"}, m.Keys())
}

func TestLoader_StdinIsReadOnce(t *testing.T) {
	l := New(nil, "")
	l.Stdin = strings.NewReader(`{"h": {}}`)
	ctx := context.Background()

	first, err := l.LoadManifest(ctx, StdIO)
	require.NoError(t, err)
	second, err := l.LoadManifest(ctx, StdIO)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}

func TestLoader_Stdout(t *testing.T) {
	var out bytes.Buffer
	l := New(nil, "")
	l.Stdout = &out

	require.NoError(t, l.Write(context.Background(), StdIO, []byte("data")))
	assert.Equal(t, "data", out.String())

	exists, err := l.Exists(context.Background(), StdIO)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLoader_ObjectStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("Read", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "manifests", "master.json", mock.Anything).
			Return(io.NopCloser(strings.NewReader(`{"manifest": {"h": {}}}`)), nil).Once()

		m, err := New(client, "default").LoadManifest(ctx, "s3://manifests/master.json")
		require.NoError(t, err)
		assert.True(t, m.Has("h"))
		client.AssertExpectations(t)
	})

	t.Run("DefaultBucket", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "default", "master.json", mock.Anything).
			Return(io.NopCloser(strings.NewReader(`{}`)), nil)

		_, err := New(client, "default").Read(ctx, "s3:///master.json")
		require.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("ReadError", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "b", "k.json", mock.Anything).Return(nil, errors.New("denied"))

		_, err := New(client, "").Read(ctx, "s3://b/k.json")
		assert.ErrorContains(t, err, "denied")
	})

	t.Run("Write", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "b").Return(true, nil)
		client.On("PutObject", mock.Anything, "b", "out.yaml", mock.Anything, int64(4),
			mock.MatchedBy(func(o minio.PutObjectOptions) bool { return o.ContentType == "application/yaml" })).
			Return(minio.UploadInfo{}, nil)

		require.NoError(t, New(client, "").Write(ctx, "s3://b/out.yaml", []byte("a: 1")))
		client.AssertExpectations(t)
	})

	t.Run("WriteMissingBucket", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "nope").Return(false, nil)

		err := New(client, "").Write(ctx, "s3://nope/out.json", []byte("{}"))
		assert.ErrorContains(t, err, `bucket "nope" does not exist`)
		client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("StatObject", mock.Anything, "b", "there.json", mock.Anything).Return(minio.ObjectInfo{Key: "there.json"}, nil)
		client.On("StatObject", mock.Anything, "b", "gone.json", mock.Anything).Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})

		l := New(client, "")
		ok, err := l.Exists(ctx, "s3://b/there.json")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = l.Exists(ctx, "s3://b/gone.json")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("NoClient", func(t *testing.T) {
		_, err := New(nil, "").Read(ctx, "s3://b/k.json")
		assert.ErrorContains(t, err, "not configured")
	})
}
