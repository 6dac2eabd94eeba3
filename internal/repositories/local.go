package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalStore keeps blobs under a data directory:
//
//	<root>/Modlists   modlist packages
//	<root>/Downloads  mod archives
//	<root>/tmp        staged uploads
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	for _, dir := range []string{string(BucketModlists), string(BucketMods), "tmp"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			return nil, fmt.Errorf("create %s directory: %w", dir, err)
		}
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) TempDir() string {
	return filepath.Join(s.root, "tmp")
}

// Path returns where a blob lives on disk.
func (s *LocalStore) Path(bucket Bucket, name string) (string, error) {
	if err := CheckName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.root, string(bucket), name), nil
}

func (s *LocalStore) Exists(_ context.Context, bucket Bucket, name string) (bool, error) {
	path, err := s.Path(bucket, name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Commit hard-links the staged file into place, so the name only ever
// appears with its full content and an existing blob is never replaced.
func (s *LocalStore) Commit(_ context.Context, bucket Bucket, name, srcPath string) error {
	path, err := s.Path(bucket, name)
	if err != nil {
		return err
	}
	if err := os.Link(srcPath, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrBlobExists
		}
		return fmt.Errorf("move %s into place: %w", name, err)
	}
	if err := os.Remove(srcPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove staged %s: %w", name, err)
	}
	return nil
}

// Open returns an *os.File, so callers may seek.
func (s *LocalStore) Open(_ context.Context, bucket Bucket, name string) (io.ReadCloser, error) {
	path, err := s.Path(bucket, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	return f, err
}

// List returns the names of regular files in the bucket, sorted.
func (s *LocalStore) List(_ context.Context, bucket Bucket) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, string(bucket)))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *LocalStore) Remove(_ context.Context, bucket Bucket, name string) error {
	path, err := s.Path(bucket, name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// CheckName rejects names that would escape their bucket.
func CheckName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("invalid filename %q", name)
	}
	return nil
}
