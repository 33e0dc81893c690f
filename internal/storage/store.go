// Package storage provides bucket-addressed object storage for uploaded files.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrObjectExists is returned when an upload would overwrite an existing object.
var ErrObjectExists = errors.New("object already exists")

// ErrInvalidKey is returned for bucket names or object paths that escape their bucket.
var ErrInvalidKey = errors.New("invalid bucket or object path")

var bucketRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{1,62}$`)

// Store uploads objects into named buckets and resolves their public URLs.
type Store interface {
	Upload(ctx context.Context, bucket, objectPath string, content []byte) error
	PublicURL(bucket, objectPath string) string
}

// LocalStore keeps buckets as directories under Root and serves them from BaseURL.
type LocalStore struct {
	Root    string
	BaseURL string
}

// NewLocalStore creates a LocalStore rooted at dir.
func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{Root: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Upload writes content to bucket/objectPath. Existing objects are never overwritten.
func (s *LocalStore) Upload(ctx context.Context, bucket, objectPath string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(bucket, objectPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create bucket directory: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrObjectExists
		}
		return fmt.Errorf("open object: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return fmt.Errorf("write object: %w", err)
	}
	return f.Close()
}

// PublicURL returns the URL the object is served from.
func (s *LocalStore) PublicURL(bucket, objectPath string) string {
	return s.BaseURL + "/" + bucket + "/" + strings.TrimLeft(path.Clean("/"+objectPath), "/")
}

func (s *LocalStore) resolve(bucket, objectPath string) (string, error) {
	if !ValidBucket(bucket) {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + objectPath)
	if cleaned == "/" || strings.Contains(objectPath, "..") {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.Root, bucket, filepath.FromSlash(strings.TrimPrefix(cleaned, "/"))), nil
}

// ValidBucket reports whether name is an acceptable bucket name.
func ValidBucket(name string) bool {
	return bucketRegex.MatchString(name)
}
