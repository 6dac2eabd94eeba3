package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Catalog bundles the three registries over one connection or transaction.
type Catalog struct {
	db *gorm.DB

	Mods         ModRepository
	Modlists     ModlistRepository
	Associations AssociationRepository
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{
		db:           db,
		Mods:         ModRepository{db: db},
		Modlists:     ModlistRepository{db: db},
		Associations: AssociationRepository{db: db},
	}
}

// Transaction runs fn against a catalog bound to a single database
// transaction. Any error returned by fn rolls everything back.
func (c *Catalog) Transaction(ctx context.Context, fn func(tx *Catalog) error) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewCatalog(tx))
	})
}

// first runs q and returns nil without error when no row matches.
func first[T any](q *gorm.DB) (*T, error) {
	var row T
	err := q.First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
