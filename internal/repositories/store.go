package repositories

import (
	"context"
	"errors"
	"io"
)

// Bucket separates modlist packages from mod archives in the blob store.
type Bucket string

const (
	BucketModlists Bucket = "Modlists"
	BucketMods     Bucket = "Downloads"
)

var (
	ErrBlobExists   = errors.New("blob already exists")
	ErrBlobNotFound = errors.New("blob not found")
)

// BlobStore holds the physical bytes of modlists and mods. Uploads are
// staged in a local temp directory and committed by name.
type BlobStore interface {
	// TempDir is the local directory uploads are staged in.
	TempDir() string
	Exists(ctx context.Context, bucket Bucket, name string) (bool, error)
	// Commit moves the staged file at srcPath to name. It never overwrites:
	// an occupied name yields ErrBlobExists and leaves srcPath in place.
	Commit(ctx context.Context, bucket Bucket, name, srcPath string) error
	Open(ctx context.Context, bucket Bucket, name string) (io.ReadCloser, error)
	List(ctx context.Context, bucket Bucket) ([]string, error)
	Remove(ctx context.Context, bucket Bucket, name string) error
}
