package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rohits-web03/modvault/internal/models"
)

// ModlistRepository is the package catalog.
type ModlistRepository struct {
	db *gorm.DB
}

func (r ModlistRepository) FindByID(ctx context.Context, id uint) (*models.Modlist, error) {
	return first[models.Modlist](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r ModlistRepository) FindByFilename(ctx context.Context, filename string) (*models.Modlist, error) {
	return first[models.Modlist](r.db.WithContext(ctx).Where("filename = ?", filename))
}

// FindByHash returns a modlist with the hash, preferring an available one.
func (r ModlistRepository) FindByHash(ctx context.Context, contentHash string) (*models.Modlist, error) {
	return first[models.Modlist](r.db.WithContext(ctx).
		Where("content_hash = ?", contentHash).
		Order("available DESC"))
}

// Insert creates the modlist unless the filename is already taken and
// reports whether it did.
func (r ModlistRepository) Insert(ctx context.Context, modlist *models.Modlist) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "filename"}},
			DoNothing: true,
		}).
		Create(modlist)
	if res.Error != nil {
		return false, fmt.Errorf("insert modlist: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// UpdateIngested rewrites the fields an ingestion owns. Muted is left as is.
func (r ModlistRepository) UpdateIngested(ctx context.Context, modlist *models.Modlist) error {
	return r.db.WithContext(ctx).Model(&models.Modlist{}).Where("id = ?", modlist.ID).
		Updates(map[string]interface{}{
			"content_hash": modlist.ContentHash,
			"size":         modlist.Size,
			"name":         modlist.Name,
			"version":      modlist.Version,
			"available":    modlist.Available,
		}).Error
}

// SetAvailable records whether the package file is present in storage.
func (r ModlistRepository) SetAvailable(ctx context.Context, id uint, available bool) error {
	return r.db.WithContext(ctx).Model(&models.Modlist{}).Where("id = ?", id).
		Update("available", available).Error
}

func (r ModlistRepository) ListAvailable(ctx context.Context) ([]models.Modlist, error) {
	var modlists []models.Modlist
	err := r.db.WithContext(ctx).Where("available = ?", true).Order("filename").Find(&modlists).Error
	return modlists, err
}

func (r ModlistRepository) SetMuted(ctx context.Context, id uint, muted bool) error {
	return r.db.WithContext(ctx).Model(&models.Modlist{}).Where("id = ?", id).
		Update("muted", muted).Error
}

// Rename changes the display name only; the filename stays the identity.
func (r ModlistRepository) Rename(ctx context.Context, id uint, name string) error {
	return r.db.WithContext(ctx).Model(&models.Modlist{}).Where("id = ?", id).
		Update("name", name).Error
}

func (r ModlistRepository) List(ctx context.Context, muted bool) ([]models.Modlist, error) {
	var modlists []models.Modlist
	err := r.db.WithContext(ctx).
		Where("muted = ?", muted).
		Order("name").Order("version DESC").
		Find(&modlists).Error
	return modlists, err
}
