package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rohits-web03/modvault/internal/models"
)

// ModFilter narrows mod listings.
type ModFilter string

const (
	ModsAll         ModFilter = ""
	ModsUnavailable ModFilter = "unavailable"
	ModsLostForever ModFilter = "lost"
)

// ModRepository is the content registry.
type ModRepository struct {
	db *gorm.DB
}

func (r ModRepository) FindByID(ctx context.Context, id uint) (*models.Mod, error) {
	return first[models.Mod](r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByIdentity looks a mod up by its content identity.
func (r ModRepository) FindByIdentity(ctx context.Context, contentHash string, size int64) (*models.Mod, error) {
	return first[models.Mod](r.db.WithContext(ctx).
		Where("content_hash = ? AND size = ?", contentHash, size))
}

// FindByHash returns a mod with the given hash, preferring one that is
// available.
func (r ModRepository) FindByHash(ctx context.Context, contentHash string) (*models.Mod, error) {
	return first[models.Mod](r.db.WithContext(ctx).
		Where("content_hash = ?", contentHash).
		Order("physical_name IS NULL"))
}

// ListByHash returns every mod carrying the hash, whatever its size.
func (r ModRepository) ListByHash(ctx context.Context, contentHash string) ([]models.Mod, error) {
	var mods []models.Mod
	err := r.db.WithContext(ctx).Where("content_hash = ?", contentHash).Order("id").Find(&mods).Error
	return mods, err
}

func (r ModRepository) FindByPhysicalName(ctx context.Context, name string) (*models.Mod, error) {
	return first[models.Mod](r.db.WithContext(ctx).Where("physical_name = ?", name))
}

// Insert adds a mod unless its identity already exists. It reports whether
// this call created the row; on conflict mod is left without an ID.
func (r ModRepository) Insert(ctx context.Context, mod *models.Mod) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "content_hash"}, {Name: "size"}},
			DoNothing: true,
		}).
		Create(mod)
	if res.Error != nil {
		return false, fmt.Errorf("insert mod: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// SetPhysicalName marks the mod available under name. Being available
// always clears lost_forever.
func (r ModRepository) SetPhysicalName(ctx context.Context, id uint, name string) error {
	return r.db.WithContext(ctx).Model(&models.Mod{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"physical_name": name,
			"lost_forever":  false,
		}).Error
}

// ReleaseName drops the claim of every mod other than keepID on the stored
// file name and reports how many were released.
func (r ModRepository) ReleaseName(ctx context.Context, name string, keepID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Mod{}).
		Where("physical_name = ? AND id <> ?", name, keepID).
		Update("physical_name", nil)
	return res.RowsAffected, res.Error
}

// ClearPhysicalName marks the mod unavailable if it is still stored as name.
func (r ModRepository) ClearPhysicalName(ctx context.Context, id uint, name string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Mod{}).
		Where("id = ? AND physical_name = ?", id, name).
		Update("physical_name", nil)
	return res.RowsAffected == 1, res.Error
}

// ListStored returns the mods that claim a stored file.
func (r ModRepository) ListStored(ctx context.Context) ([]models.Mod, error) {
	var mods []models.Mod
	err := r.db.WithContext(ctx).Where("physical_name IS NOT NULL").Order("physical_name").Find(&mods).Error
	return mods, err
}

// SetLostForever only touches mods without a physical name; it reports
// whether a row was changed.
func (r ModRepository) SetLostForever(ctx context.Context, id uint, lost bool) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Mod{}).
		Where("id = ? AND physical_name IS NULL", id).
		Update("lost_forever", lost)
	return res.RowsAffected == 1, res.Error
}

func (r ModRepository) List(ctx context.Context, filter ModFilter) ([]models.Mod, error) {
	q := r.db.WithContext(ctx).Model(&models.Mod{})
	switch filter {
	case ModsUnavailable:
		q = q.Where("physical_name IS NULL")
	case ModsLostForever:
		q = q.Where("lost_forever = ?", true)
	}
	var mods []models.Mod
	err := q.Order("physical_name").Order("id").Find(&mods).Error
	return mods, err
}

func (r ModRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Mod, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var mods []models.Mod
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&mods).Error
	return mods, err
}

// Modlists returns the modlists whose manifests reference the mod.
func (r ModRepository) Modlists(ctx context.Context, modID uint) ([]models.Modlist, error) {
	var modlists []models.Modlist
	err := r.db.WithContext(ctx).
		Joins("JOIN mod_associations ON mod_associations.modlist_id = modlists.id").
		Where("mod_associations.mod_id = ?", modID).
		Order("modlists.name").
		Find(&modlists).Error
	return modlists, err
}
