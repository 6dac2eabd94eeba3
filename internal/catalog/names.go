package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rohits-web03/modvault/internal/hash"
	"github.com/rohits-web03/modvault/internal/repositories"
)

// maxNameAttempts bounds the _N counter used when names collide.
const maxNameAttempts = 1000

func extension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[i:]
	}
	return ""
}

// candidateName returns the n-th storage name tried for filename:
// the name itself, then <stem>-<hash>.<ext>, then <stem>-<hash>_<n>.<ext>.
func candidateName(filename, contentHash string, n int) string {
	if n == 0 {
		return filename
	}
	ext := extension(filename)
	stem := strings.TrimSuffix(filename, ext)
	suffix := "-" + hash.ToBase64URL(contentHash)
	if n > 1 {
		suffix += fmt.Sprintf("_%d", n-1)
	}
	return stem + suffix + ext
}

// CommitUnique moves the staged file into bucket under the first free
// candidate name and returns the name used.
func CommitUnique(ctx context.Context, store repositories.BlobStore, bucket repositories.Bucket, filename, contentHash, srcPath string) (string, error) {
	for n := 0; n < maxNameAttempts; n++ {
		name := candidateName(filename, contentHash, n)
		err := store.Commit(ctx, bucket, name, srcPath)
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, repositories.ErrBlobExists) {
			return "", storageErr("commit "+name, err)
		}
	}
	return "", storageErr("commit "+filename, fmt.Errorf("no free name after %d attempts", maxNameAttempts))
}
