package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rohits-web03/modvault/internal/models"
)

// AssociationRepository links modlists to the mods their manifests require.
type AssociationRepository struct {
	db *gorm.DB
}

// Upsert creates the (modlist, mod) link or overwrites its declared fields.
func (r AssociationRepository) Upsert(ctx context.Context, assoc *models.ModAssociation) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "modlist_id"}, {Name: "mod_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"filename", "name", "version", "source", "updated_at"}),
		}).
		Create(assoc).Error
	if err != nil {
		return fmt.Errorf("upsert association %d/%d: %w", assoc.ModlistID, assoc.ModID, err)
	}
	return nil
}

func (r AssociationRepository) Find(ctx context.Context, modlistID, modID uint) (*models.ModAssociation, error) {
	return first[models.ModAssociation](r.db.WithContext(ctx).
		Where("modlist_id = ? AND mod_id = ?", modlistID, modID))
}

func (r AssociationRepository) CountByModlist(ctx context.Context, modlistID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ModAssociation{}).
		Where("modlist_id = ?", modlistID).Count(&n).Error
	return n, err
}

// ListByMod returns every declaration of the mod across modlists.
func (r AssociationRepository) ListByMod(ctx context.Context, modID uint) ([]models.ModAssociation, error) {
	var assocs []models.ModAssociation
	err := r.db.WithContext(ctx).Where("mod_id = ?", modID).Order("modlist_id").Find(&assocs).Error
	return assocs, err
}

// ListByModlist returns the modlist's associations joined with their mods,
// ordered by declared filename.
func (r AssociationRepository) ListByModlist(ctx context.Context, modlistID uint) ([]models.AssociatedMod, error) {
	grouped, err := r.ListByModlists(ctx, []uint{modlistID})
	if err != nil {
		return nil, err
	}
	return grouped[modlistID], nil
}

// ListByModlists is ListByModlist for many modlists in two queries.
func (r AssociationRepository) ListByModlists(ctx context.Context, modlistIDs []uint) (map[uint][]models.AssociatedMod, error) {
	out := make(map[uint][]models.AssociatedMod, len(modlistIDs))
	if len(modlistIDs) == 0 {
		return out, nil
	}

	var assocs []models.ModAssociation
	err := r.db.WithContext(ctx).
		Where("modlist_id IN ?", modlistIDs).
		Order("modlist_id").Order("filename").
		Find(&assocs).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]struct{}, len(assocs))
	var modIDs []uint
	for _, a := range assocs {
		if _, ok := seen[a.ModID]; !ok {
			seen[a.ModID] = struct{}{}
			modIDs = append(modIDs, a.ModID)
		}
	}
	mods, err := ModRepository{db: r.db}.ListByIDs(ctx, modIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Mod, len(mods))
	for _, m := range mods {
		byID[m.ID] = m
	}

	for _, a := range assocs {
		mod, ok := byID[a.ModID]
		if !ok {
			return nil, fmt.Errorf("association %d/%d references a missing mod", a.ModlistID, a.ModID)
		}
		out[a.ModlistID] = append(out[a.ModlistID], models.AssociatedMod{ModAssociation: a, Mod: mod})
	}
	return out, nil
}
