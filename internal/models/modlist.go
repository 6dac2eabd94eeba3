package models

import "time"

// Modlist is an uploaded package. Filename is its identity; re-uploading the
// same filename updates the row in place.
type Modlist struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Filename    string    `json:"filename" gorm:"uniqueIndex;not null"`
	ContentHash string    `json:"contentHash" gorm:"index;not null"`
	Size        int64     `json:"size" gorm:"not null"`
	Name        string    `json:"name" gorm:"not null"`
	Version     string    `json:"version" gorm:"not null"`
	Available   bool      `json:"available" gorm:"not null;default:false"`
	Muted       bool      `json:"muted" gorm:"not null;default:false"` // hidden from default listings
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
