package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrIntegrity means a hash is already known with a different size.
	ErrIntegrity = errors.New("integrity error")
	// ErrModHasDiskFilename rejects lost-forever toggles on available mods.
	ErrModHasDiskFilename = errors.New("mod has a disk filename")
	// ErrDuplicateContent means the content is already stored under another
	// name that still exists, usually because a concurrent upload won.
	ErrDuplicateContent = errors.New("content already cataloged")
	// ErrNotFound means the requested mod or modlist is not cataloged.
	ErrNotFound = errors.New("not found")
	// ErrManifest means a modlist package has no readable manifest.
	ErrManifest = errors.New("invalid modlist manifest")
)

// StorageError wraps a failure of the catalog database or the blob store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) || errors.Is(err, ErrIntegrity) || errors.Is(err, ErrDuplicateContent) ||
		errors.Is(err, ErrModHasDiskFilename) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrManifest) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorage reports whether err came from persistence.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
