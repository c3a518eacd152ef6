package models

import (
	"time"
)

// Author grants a user publishing capability and tracks a derived reputation
// score. Rating is recomputed on demand by the rating service and must never
// be edited directly.
//
// Deleting a User does not cascade to its Author row; the row is left behind
// referencing the missing principal. Documented product behavior.
type Author struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Rating    int       `gorm:"not null;default:0" json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
