package models

import (
	"time"

	"github.com/rohits-web03/modvault/internal/wabbajack"
)

// ModAssociation records how one modlist's manifest names and sources one
// mod. Two modlists may declare identical content under different names.
type ModAssociation struct {
	ModlistID uint            `json:"modlistId" gorm:"primaryKey;autoIncrement:false"`
	ModID     uint            `json:"modId" gorm:"primaryKey;autoIncrement:false;index"`
	Filename  string          `json:"filename" gorm:"not null"`
	Name      *string         `json:"name"`
	Version   *string         `json:"version"`
	Source    wabbajack.State `json:"source" gorm:"type:text"`
	CreatedAt time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

// AssociatedMod is an association joined with the state of its mod.
type AssociatedMod struct {
	ModAssociation
	Mod Mod `json:"mod"`
}

// RequiresDownload reports whether this entry counts toward the files a
// user still has to fetch.
func (a AssociatedMod) RequiresDownload() bool {
	return a.Source.RequiresDownload()
}
