package s3image

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	. "github.com/weberc2/ecsfs/pkg/types"
)

const BadImageErr ConstError = "object is not a whole number of blocks"

// Store maps image names onto keys under `Prefix` in `Bucket`.
type Store struct {
	ObjectStore ObjectStore
	Bucket      string
	Prefix      string
}

func (s *Store) key(name string) string {
	return path.Join(s.Prefix, name)
}

// Pull downloads the image `name` to the local file at `dst`. The file is
// replaced only after the whole image has arrived.
func (s *Store) Pull(ctx context.Context, name, dst string) error {
	key := s.key(name)
	body, err := s.ObjectStore.GetObject(ctx, s.Bucket, key)
	if err != nil {
		return fmt.Errorf("pulling image `%s`: %w", name, err)
	}
	defer body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".pull-*")
	if err != nil {
		return fmt.Errorf("pulling image `%s`: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, body)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("pulling image `%s`: copying body: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("pulling image `%s`: %w", name, err)
	}
	if n%int64(BlockSize) != 0 {
		return fmt.Errorf(
			"pulling image `%s`: `%d` bytes: %w",
			name,
			n,
			BadImageErr,
		)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("pulling image `%s`: %w", name, err)
	}

	log.WithFields(log.Fields{
		"bucket": s.Bucket,
		"key":    key,
		"bytes":  n,
	}).Debug("pulled image")
	return nil
}

// Push uploads the local image at `src` as `name`.
func (s *Store) Push(ctx context.Context, src, name string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("pushing image `%s`: %w", name, err)
	}
	defer f.Close()

	key := s.key(name)
	if err := s.ObjectStore.PutObject(ctx, s.Bucket, key, f); err != nil {
		return fmt.Errorf("pushing image `%s`: %w", name, err)
	}
	log.WithFields(log.Fields{"bucket": s.Bucket, "key": key}).
		Debug("pushed image")
	return nil
}

// List returns the names of the images under the prefix.
func (s *Store) List(ctx context.Context) ([]string, error) {
	prefix := s.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	keys, err := s.ObjectStore.ListObjects(ctx, s.Bucket, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = strings.TrimPrefix(key, prefix)
	}
	return names, nil
}
