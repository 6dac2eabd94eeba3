package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/rohits-web03/modvault/internal/models"
	"github.com/rohits-web03/modvault/internal/repositories"
	"github.com/rohits-web03/modvault/internal/wabbajack"
)

// Decision is the verdict on an upload request.
type Decision int

const (
	NotModified Decision = iota
	AcceptUpload
	RejectUserError
	RejectCorruptedState
	RejectNeedsBootstrap
)

func (d Decision) String() string {
	switch d {
	case NotModified:
		return "not modified"
	case AcceptUpload:
		return "accept"
	case RejectUserError:
		return "user error"
	case RejectCorruptedState:
		return "corrupted state"
	case RejectNeedsBootstrap:
		return "needs bootstrap"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

type Outcome struct {
	Decision Decision
	Reason   string
}

func (o Outcome) String() string {
	if o.Reason == "" {
		return o.Decision.String()
	}
	return o.Decision.String() + ": " + o.Reason
}

func reject(d Decision, format string, args ...any) Outcome {
	return Outcome{Decision: d, Reason: fmt.Sprintf(format, args...)}
}

// Entry is what the catalog records for a file.
type Entry struct {
	Hash string
	// Filename is nil when the catalog holds the content without a stored
	// file, i.e. a mod that was only ever referenced by a manifest.
	Filename  *string
	Available bool
}

type ValidationInput struct {
	ClaimedHash  string
	Filename     string
	ExistsOnDisk bool
	ByFilename   *Entry
	ByHash       *Entry
}

// Validate decides whether an upload may proceed. It has no side effects.
func Validate(in ValidationInput) Outcome {
	if in.ClaimedHash == "" {
		return reject(RejectUserError, "hash header required")
	}

	if in.ByFilename != nil && in.ByFilename.Hash != in.ClaimedHash {
		return reject(RejectUserError,
			"%s is already cataloged with hash %s, refusing to replace it with %s",
			in.Filename, in.ByFilename.Hash, in.ClaimedHash)
	}

	if e := in.ByHash; e != nil {
		sameName := e.Filename == nil || *e.Filename == in.Filename
		if e.Available {
			if sameName {
				return Outcome{Decision: NotModified}
			}
			return reject(RejectCorruptedState,
				"hash %s is already stored as %s", in.ClaimedHash, *e.Filename)
		}
		if in.ExistsOnDisk {
			return reject(RejectNeedsBootstrap,
				"%s exists on disk but hash %s is cataloged as missing", in.Filename, in.ClaimedHash)
		}
		if !sameName {
			return reject(RejectCorruptedState,
				"hash %s is cataloged as %s, not %s", in.ClaimedHash, *e.Filename, in.Filename)
		}
		return Outcome{Decision: AcceptUpload}
	}

	if in.ExistsOnDisk {
		return reject(RejectNeedsBootstrap, "%s exists on disk but is not cataloged", in.Filename)
	}
	return Outcome{Decision: AcceptUpload}
}

// Kind selects the catalog an upload belongs to.
type Kind string

const (
	KindModlist Kind = "modlist"
	KindMod     Kind = "mod"
)

// KindOf picks the catalog by file extension.
func KindOf(filename string) Kind {
	if strings.EqualFold(extension(filename), wabbajack.Extension) {
		return KindModlist
	}
	return KindMod
}

func (k Kind) Bucket() repositories.Bucket {
	if k == KindModlist {
		return repositories.BucketModlists
	}
	return repositories.BucketMods
}

// Lookup answers the two catalog questions Validate needs.
type Lookup interface {
	ByFilename(ctx context.Context, filename string) (*Entry, error)
	ByHash(ctx context.Context, hash string) (*Entry, error)
}

type modlistLookup struct {
	repo repositories.ModlistRepository
}

func (l modlistLookup) ByFilename(ctx context.Context, filename string) (*Entry, error) {
	ml, err := l.repo.FindByFilename(ctx, filename)
	if err != nil || ml == nil {
		return nil, err
	}
	return modlistEntry(ml), nil
}

func (l modlistLookup) ByHash(ctx context.Context, hash string) (*Entry, error) {
	ml, err := l.repo.FindByHash(ctx, hash)
	if err != nil || ml == nil {
		return nil, err
	}
	return modlistEntry(ml), nil
}

func modlistEntry(ml *models.Modlist) *Entry {
	name := ml.Filename
	return &Entry{Hash: ml.ContentHash, Filename: &name, Available: ml.Available}
}

type modLookup struct {
	repo repositories.ModRepository
}

func (l modLookup) ByFilename(ctx context.Context, filename string) (*Entry, error) {
	m, err := l.repo.FindByPhysicalName(ctx, filename)
	if err != nil || m == nil {
		return nil, err
	}
	return modEntry(m), nil
}

func (l modLookup) ByHash(ctx context.Context, hash string) (*Entry, error) {
	m, err := l.repo.FindByHash(ctx, hash)
	if err != nil || m == nil {
		return nil, err
	}
	return modEntry(m), nil
}

func modEntry(m *models.Mod) *Entry {
	return &Entry{Hash: m.ContentHash, Filename: m.PhysicalName, Available: m.Available()}
}

// Validator gathers the inputs for Validate from the catalog and the blob
// store. It never mutates either.
type Validator struct {
	lookups map[Kind]Lookup
	store   repositories.BlobStore
}

func NewValidator(cat *repositories.Catalog, store repositories.BlobStore) *Validator {
	return &Validator{
		lookups: map[Kind]Lookup{
			KindModlist: modlistLookup{repo: cat.Modlists},
			KindMod:     modLookup{repo: cat.Mods},
		},
		store: store,
	}
}

// Check validates an upload of filename claiming claimedHash.
func (v *Validator) Check(ctx context.Context, kind Kind, filename, claimedHash string) (Outcome, error) {
	if claimedHash == "" {
		return reject(RejectUserError, "hash header required"), nil
	}
	if err := repositories.CheckName(filename); err != nil {
		return reject(RejectUserError, "%v", err), nil
	}
	if kind == KindModlist && !strings.EqualFold(extension(filename), wabbajack.Extension) {
		return reject(RejectUserError, "modlist filenames must end in %s", wabbajack.Extension), nil
	}

	lookup, ok := v.lookups[kind]
	if !ok {
		return Outcome{}, fmt.Errorf("unknown upload kind %q", kind)
	}

	byName, err := lookup.ByFilename(ctx, filename)
	if err != nil {
		return Outcome{}, storageErr("lookup by filename", err)
	}
	byHash, err := lookup.ByHash(ctx, claimedHash)
	if err != nil {
		return Outcome{}, storageErr("lookup by hash", err)
	}
	exists, err := v.store.Exists(ctx, kind.Bucket(), filename)
	if err != nil {
		return Outcome{}, storageErr("check file presence", err)
	}

	return Validate(ValidationInput{
		ClaimedHash:  claimedHash,
		Filename:     filename,
		ExistsOnDisk: exists,
		ByFilename:   byName,
		ByHash:       byHash,
	}), nil
}
