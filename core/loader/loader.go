package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"manifest-reconciler/core/storage"
	"manifest-reconciler/core/tree"

	"github.com/minio/minio-go/v7"
	"golang.org/x/sync/singleflight"
)

// StdIO is the location naming stdin for reads and stdout for writes.
const StdIO = "-"

// Loader reads and writes documents at file, stdio or object storage
// locations.
type Loader struct {
	client storage.Client
	bucket string

	// Stdin and Stdout back the "-" location.
	Stdin  io.Reader
	Stdout io.Writer

	group singleflight.Group

	stdinOnce sync.Once
	stdinData []byte
	stdinErr  error
}

// New creates a loader. client may be nil when no s3:// locations are used;
// bucket is applied to s3:// locations that omit it.
func New(client storage.Client, bucket string) *Loader {
	return &Loader{
		client: client,
		bucket: bucket,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	}
}

// Read returns the raw content at location. Concurrent reads of the same
// location share a single fetch. Stdin is read once and replayed, so master
// and working may both be "-".
func (l *Loader) Read(ctx context.Context, location string) ([]byte, error) {
	v, err, _ := l.group.Do(location, func() (any, error) {
		return l.read(ctx, location)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (l *Loader) read(ctx context.Context, location string) ([]byte, error) {
	if location == StdIO {
		l.stdinOnce.Do(func() {
			l.stdinData, l.stdinErr = io.ReadAll(l.Stdin)
		})
		if l.stdinErr != nil {
			return nil, fmt.Errorf("read stdin: %w", l.stdinErr)
		}
		return l.stdinData, nil
	}

	if bucket, key, ok := l.object(location); ok {
		if l.client == nil {
			return nil, fmt.Errorf("read %s: object storage is not configured", location)
		}
		obj, err := l.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", location, err)
		}
		defer obj.Close()

		data, err := io.ReadAll(obj)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", location, err)
		}
		return data, nil
	}

	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	return data, nil
}

// Load reads and decodes the document at location.
func (l *Loader) Load(ctx context.Context, location string) (*tree.Node, error) {
	data, err := l.Read(ctx, location)
	if err != nil {
		return nil, err
	}
	n, err := Decode(data, FormatFor(location, data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", location, err)
	}
	return n, nil
}

// LoadManifest loads a document and returns its header mapping.
func (l *Loader) LoadManifest(ctx context.Context, location string) (*tree.Node, error) {
	doc, err := l.Load(ctx, location)
	if err != nil {
		return nil, err
	}
	manifest, err := UnwrapManifest(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return manifest, nil
}

// Write stores data at location, replacing any existing content.
func (l *Loader) Write(ctx context.Context, location string, data []byte) error {
	if location == StdIO {
		if _, err := l.Stdout.Write(data); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
		return nil
	}

	if bucket, key, ok := l.object(location); ok {
		if l.client == nil {
			return fmt.Errorf("write %s: object storage is not configured", location)
		}
		exists, err := l.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("check bucket %s: %w", bucket, err)
		}
		if !exists {
			return fmt.Errorf("write %s: bucket %q does not exist", location, bucket)
		}
		_, err = l.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: FormatFor(location, data).ContentType(),
		})
		if err != nil {
			return fmt.Errorf("put %s: %w", location, err)
		}
		return nil
	}

	if dir := filepath.Dir(location); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(location, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", location, err)
	}
	return nil
}

// Exists reports whether location already holds content. Stdio never does.
func (l *Loader) Exists(ctx context.Context, location string) (bool, error) {
	if location == StdIO {
		return false, nil
	}

	if bucket, key, ok := l.object(location); ok {
		if l.client == nil {
			return false, fmt.Errorf("stat %s: object storage is not configured", location)
		}
		_, err := l.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
		if storage.IsNotFound(err) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("stat %s: %w", location, err)
		}
		return true, nil
	}

	_, err := os.Stat(location)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", location, err)
	}
	return true, nil
}

func (l *Loader) object(location string) (bucket, key string, ok bool) {
	bucket, key, ok = storage.ParseURI(location)
	if ok && bucket == "" {
		bucket = l.bucket
	}
	return bucket, key, ok
}
