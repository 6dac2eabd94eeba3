package catalog

import (
	"context"
	"fmt"

	"github.com/rohits-web03/modvault/internal/models"
)

// Readiness is whether a modlist can be installed from stored files.
type Readiness string

const (
	Ready         Readiness = "ready"
	MissingFiles  Readiness = "missing_files"
	Uninstallable Readiness = "uninstallable"
)

// ReadinessOf derives readiness from a modlist's associations. Entries that
// need no download are ignored.
func ReadinessOf(assocs []models.AssociatedMod) Readiness {
	missing := false
	for _, a := range assocs {
		if !a.RequiresDownload() {
			continue
		}
		if a.Mod.LostForever {
			return Uninstallable
		}
		if !a.Mod.Available() {
			missing = true
		}
	}
	if missing {
		return MissingFiles
	}
	return Ready
}

// FilesStillRequired lists the associations a user would still have to
// fetch before installing.
func FilesStillRequired(assocs []models.AssociatedMod) []models.AssociatedMod {
	var out []models.AssociatedMod
	for _, a := range assocs {
		if a.RequiresDownload() && !a.Mod.Available() {
			out = append(out, a)
		}
	}
	return out
}

type ModlistSummary struct {
	models.Modlist
	ModCount       int       `json:"modCount"`
	AvailableCount int       `json:"availableCount"`
	Readiness      Readiness `json:"readiness"`
}

type ModlistDetails struct {
	ModlistSummary
	Mods     []models.AssociatedMod `json:"mods"`
	Required []models.AssociatedMod `json:"filesStillRequired"`
}

func summarize(ml models.Modlist, assocs []models.AssociatedMod) ModlistSummary {
	s := ModlistSummary{Modlist: ml, ModCount: len(assocs), Readiness: ReadinessOf(assocs)}
	for _, a := range assocs {
		if a.Mod.Available() {
			s.AvailableCount++
		}
	}
	return s
}

// Modlists lists unmuted (or muted) modlists with their readiness.
func (e *Engine) Modlists(ctx context.Context, muted bool) ([]ModlistSummary, error) {
	modlists, err := e.cat.Modlists.List(ctx, muted)
	if err != nil {
		return nil, storageErr("list modlists", err)
	}
	ids := make([]uint, len(modlists))
	for i, ml := range modlists {
		ids[i] = ml.ID
	}
	grouped, err := e.cat.Associations.ListByModlists(ctx, ids)
	if err != nil {
		return nil, storageErr("list associations", err)
	}

	out := make([]ModlistSummary, 0, len(modlists))
	for _, ml := range modlists {
		out = append(out, summarize(ml, grouped[ml.ID]))
	}
	return out, nil
}

func (e *Engine) ModlistDetails(ctx context.Context, id uint) (*ModlistDetails, error) {
	ml, err := e.cat.Modlists.FindByID(ctx, id)
	if err != nil {
		return nil, storageErr("find modlist", err)
	}
	if ml == nil {
		return nil, fmt.Errorf("modlist %d: %w", id, ErrNotFound)
	}
	assocs, err := e.cat.Associations.ListByModlist(ctx, id)
	if err != nil {
		return nil, storageErr("list associations", err)
	}
	return &ModlistDetails{
		ModlistSummary: summarize(*ml, assocs),
		Mods:           assocs,
		Required:       FilesStillRequired(assocs),
	}, nil
}

// Readiness computes the readiness of one modlist.
func (e *Engine) Readiness(ctx context.Context, modlistID uint) (Readiness, error) {
	d, err := e.ModlistDetails(ctx, modlistID)
	if err != nil {
		return "", err
	}
	return d.Readiness, nil
}
