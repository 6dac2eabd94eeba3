package models

import "time"

// ModStatus is the availability of a content item.
type ModStatus string

const (
	ModAvailable   ModStatus = "available"
	ModUnavailable ModStatus = "unavailable"
	ModLostForever ModStatus = "lost_forever"
)

// Mod is a content-addressed item, identified by (ContentHash, Size) and
// tracked independently of the modlists that reference it.
type Mod struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	ContentHash string `json:"contentHash" gorm:"not null;uniqueIndex:idx_mod_identity,priority:1"`
	Size        int64  `json:"size" gorm:"not null;uniqueIndex:idx_mod_identity,priority:2"`
	// PhysicalName is the stored filename once the bytes exist in storage.
	// At most one mod claims a stored file.
	PhysicalName *string   `json:"physicalName" gorm:"uniqueIndex"`
	LostForever  bool      `json:"lostForever" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (m Mod) Available() bool {
	return m.PhysicalName != nil
}

func (m Mod) Status() ModStatus {
	switch {
	case m.Available():
		return ModAvailable
	case m.LostForever:
		return ModLostForever
	default:
		return ModUnavailable
	}
}
