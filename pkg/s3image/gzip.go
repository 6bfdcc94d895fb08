package s3image

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
)

// GzipObjectStore compresses objects on the way in and decompresses them on
// the way out. Images are mostly zero blocks, so they shrink a lot.
type GzipObjectStore struct {
	ObjectStore
}

func (os *GzipObjectStore) PutObject(
	ctx context.Context,
	bucket string,
	key string,
	data io.ReadSeeker,
) error {
	var b bytes.Buffer
	w, err := gzip.NewWriterLevel(&b, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("creating gzip writer: %w", err)
	}
	if _, err := io.Copy(w, data); err != nil {
		return fmt.Errorf("compressing data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing gzip writer: %w", err)
	}
	return os.ObjectStore.PutObject(ctx, bucket, key, bytes.NewReader(b.Bytes()))
}

type gzipReadCloser struct {
	body io.ReadCloser
	r    *gzip.Reader
}

func (grc *gzipReadCloser) Read(data []byte) (int, error) {
	return grc.r.Read(data)
}

func (grc *gzipReadCloser) Close() error {
	if err := grc.r.Close(); err != nil {
		grc.body.Close()
		return err
	}
	return grc.body.Close()
}

func (os *GzipObjectStore) GetObject(
	ctx context.Context,
	bucket string,
	key string,
) (io.ReadCloser, error) {
	body, err := os.ObjectStore.GetObject(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("getting object from storage: %w", err)
	}
	r, err := gzip.NewReader(body)
	if err != nil {
		body.Close()
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	return &gzipReadCloser{body: body, r: r}, nil
}
