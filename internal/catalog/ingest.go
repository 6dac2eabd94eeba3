package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rohits-web03/modvault/internal/models"
	"github.com/rohits-web03/modvault/internal/repositories"
	"github.com/rohits-web03/modvault/internal/wabbajack"
)

// Engine merges verified files into the catalog. Every ingest runs in a
// single database transaction. The store is only read, to tell a moved file
// from a second copy.
type Engine struct {
	cat   *repositories.Catalog
	store repositories.BlobStore
	log   *zap.SugaredLogger
}

func NewEngine(cat *repositories.Catalog, store repositories.BlobStore, log *zap.SugaredLogger) *Engine {
	return &Engine{cat: cat, store: store, log: log}
}

func (e *Engine) Catalog() *repositories.Catalog {
	return e.cat
}

// IngestContent records that the mod (hash, size) is stored as name. A mod
// whose previous file is gone from storage moves to name; one whose previous
// file is still stored makes name a second copy and fails with
// ErrDuplicateContent. Any other mod still claiming name is released, since
// the file under name now holds this content.
func (e *Engine) IngestContent(ctx context.Context, name, contentHash string, size int64) (*models.Mod, error) {
	var mod *models.Mod
	err := e.cat.Transaction(ctx, func(tx *repositories.Catalog) error {
		m, err := resolveMod(ctx, tx, contentHash, size)
		if err != nil {
			return err
		}
		mod = m
		if m.PhysicalName != nil && *m.PhysicalName == name {
			return nil
		}

		if m.PhysicalName != nil {
			previous := *m.PhysicalName
			stored, err := e.store.Exists(ctx, repositories.BucketMods, previous)
			if err != nil {
				return storageErr("check "+previous, err)
			}
			if stored {
				return fmt.Errorf("%w: hash %s is stored as %s", ErrDuplicateContent, contentHash, previous)
			}
			e.log.Infow("Mod moved in storage", "from", previous, "to", name, "hash", contentHash)
		}

		released, err := tx.Mods.ReleaseName(ctx, name, m.ID)
		if err != nil {
			return storageErr("release physical name", err)
		}
		if released > 0 {
			e.log.Warnw("Stored file was replaced, previous content is unavailable", "file", name, "released", released)
		}
		if err := tx.Mods.SetPhysicalName(ctx, m.ID, name); err != nil {
			return storageErr("set physical name", err)
		}
		m.PhysicalName = &name
		m.LostForever = false
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Infow("Ingested mod", "file", name, "hash", contentHash, "size", size)
	return mod, nil
}

// IngestPackage records the modlist stored as name and every archive its
// manifest declares.
func (e *Engine) IngestPackage(ctx context.Context, name, contentHash string, size int64, manifest *wabbajack.Manifest) (*models.Modlist, error) {
	if manifest == nil {
		return nil, fmt.Errorf("%w: %s has no manifest", ErrManifest, name)
	}

	var modlist *models.Modlist
	err := e.cat.Transaction(ctx, func(tx *repositories.Catalog) error {
		ml, err := upsertModlist(ctx, tx, name, contentHash, size, manifest)
		if err != nil {
			return err
		}

		for i, a := range manifest.Archives {
			mod, err := resolveMod(ctx, tx, a.Hash, a.Size)
			if err != nil {
				return fmt.Errorf("archive %d (%s): %w", i, a.Filename, err)
			}

			assoc := &models.ModAssociation{
				ModlistID: ml.ID,
				ModID:     mod.ID,
				Filename:  a.Filename,
				Source:    a.State,
			}
			if v, ok := a.Name(); ok {
				assoc.Name = &v
			}
			if v, ok := a.Version(); ok {
				assoc.Version = &v
			}
			if err := tx.Associations.Upsert(ctx, assoc); err != nil {
				return storageErr("upsert association", err)
			}
		}
		modlist = ml
		return nil
	})
	if err != nil {
		return nil, err
	}

	if unknown := manifest.FilesFromUnknownDownloaders(); len(unknown) > 0 {
		e.log.Warnw("Modlist references files from unrecognized sources, required files may be inaccurate",
			"modlist", name, "files", unknown)
	}
	e.log.Infow("Ingested modlist", "file", name, "name", modlist.Name, "version", modlist.Version,
		"archives", len(manifest.Archives))
	return modlist, nil
}

func upsertModlist(ctx context.Context, tx *repositories.Catalog, name, contentHash string, size int64, manifest *wabbajack.Manifest) (*models.Modlist, error) {
	ml := &models.Modlist{
		Filename:    name,
		ContentHash: contentHash,
		Size:        size,
		Name:        manifest.Name,
		Version:     manifest.Version,
		Available:   true,
	}
	if ml.Name == "" {
		ml.Name = strings.TrimSuffix(name, extension(name))
	}

	existing, err := tx.Modlists.FindByFilename(ctx, name)
	if err != nil {
		return nil, storageErr("find modlist", err)
	}
	if existing == nil {
		created, err := tx.Modlists.Insert(ctx, ml)
		if err != nil {
			return nil, storageErr("create modlist", err)
		}
		if created {
			return ml, nil
		}
		// Lost a race for the filename; update the winner in place.
		if existing, err = tx.Modlists.FindByFilename(ctx, name); err != nil || existing == nil {
			return nil, storageErr("find modlist", fmt.Errorf("modlist %s vanished: %v", name, err))
		}
	}

	ml.ID = existing.ID
	ml.Muted = existing.Muted
	ml.CreatedAt = existing.CreatedAt
	if err := tx.Modlists.UpdateIngested(ctx, ml); err != nil {
		return nil, storageErr("update modlist", err)
	}
	return ml, nil
}

// resolveMod finds the mod with identity (hash, size), creating it
// unavailable when absent. A known hash with a different size is an
// integrity error.
func resolveMod(ctx context.Context, tx *repositories.Catalog, contentHash string, size int64) (*models.Mod, error) {
	known, err := tx.Mods.ListByHash(ctx, contentHash)
	if err != nil {
		return nil, storageErr("find mod by hash", err)
	}
	for i := range known {
		if known[i].Size != size {
			return nil, fmt.Errorf("%w: hash %s is recorded with size %d, got %d",
				ErrIntegrity, contentHash, known[i].Size, size)
		}
	}
	if len(known) > 0 {
		return &known[0], nil
	}

	mod := &models.Mod{ContentHash: contentHash, Size: size}
	created, err := tx.Mods.Insert(ctx, mod)
	if err != nil {
		return nil, storageErr("create mod", err)
	}
	if created {
		return mod, nil
	}
	existing, err := tx.Mods.FindByIdentity(ctx, contentHash, size)
	if err != nil {
		return nil, storageErr("find mod", err)
	}
	if existing == nil {
		return nil, storageErr("find mod", fmt.Errorf("mod %s/%d vanished after conflict", contentHash, size))
	}
	return existing, nil
}

// ReleaseMissing marks cataloged files of bucket that are gone from storage
// as unavailable and returns their names. present is a listing taken
// earlier; every name outside it is checked against the store again inside
// the transaction, so a file committed since the listing keeps its entry.
func (e *Engine) ReleaseMissing(ctx context.Context, bucket repositories.Bucket, present map[string]bool) ([]string, error) {
	var candidates []string
	ids := map[string]uint{}
	if bucket == repositories.BucketModlists {
		modlists, err := e.cat.Modlists.ListAvailable(ctx)
		if err != nil {
			return nil, storageErr("list modlists", err)
		}
		for _, ml := range modlists {
			if !present[ml.Filename] {
				candidates = append(candidates, ml.Filename)
				ids[ml.Filename] = ml.ID
			}
		}
	} else {
		mods, err := e.cat.Mods.ListStored(ctx)
		if err != nil {
			return nil, storageErr("list mods", err)
		}
		for _, m := range mods {
			if !present[*m.PhysicalName] {
				candidates = append(candidates, *m.PhysicalName)
				ids[*m.PhysicalName] = m.ID
			}
		}
	}

	var released []string
	for _, name := range candidates {
		var gone bool
		err := e.cat.Transaction(ctx, func(tx *repositories.Catalog) error {
			stored, err := e.store.Exists(ctx, bucket, name)
			if err != nil {
				return storageErr("check "+name, err)
			}
			if stored {
				return nil
			}
			if bucket == repositories.BucketModlists {
				gone = true
				return storageErr("mark modlist unavailable", tx.Modlists.SetAvailable(ctx, ids[name], false))
			}
			gone, err = tx.Mods.ClearPhysicalName(ctx, ids[name], name)
			return storageErr("clear physical name", err)
		})
		if err != nil {
			return released, err
		}
		if gone {
			e.log.Warnw("Cataloged file is missing from storage", "bucket", bucket, "file", name)
			released = append(released, name)
		}
	}
	return released, nil
}

// ToggleLostForever flips the lost-forever flag of an unavailable mod.
func (e *Engine) ToggleLostForever(ctx context.Context, modID uint) (*models.Mod, error) {
	var mod *models.Mod
	err := e.cat.Transaction(ctx, func(tx *repositories.Catalog) error {
		m, err := tx.Mods.FindByID(ctx, modID)
		if err != nil {
			return storageErr("find mod", err)
		}
		if m == nil {
			return fmt.Errorf("mod %d: %w", modID, ErrNotFound)
		}
		if m.PhysicalName != nil {
			return fmt.Errorf("mod %d is stored as %s: %w", modID, *m.PhysicalName, ErrModHasDiskFilename)
		}
		changed, err := tx.Mods.SetLostForever(ctx, modID, !m.LostForever)
		if err != nil {
			return storageErr("set lost forever", err)
		}
		if !changed {
			return fmt.Errorf("mod %d: %w", modID, ErrModHasDiskFilename)
		}
		m.LostForever = !m.LostForever
		mod = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Infow("Toggled lost forever", "mod", modID, "lostForever", mod.LostForever)
	return mod, nil
}
