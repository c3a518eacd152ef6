package models

import (
	"time"
)

// Category is a topical tag. Users subscribe to categories to receive an
// email whenever a new post is published under one of them.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Subscribers []User    `gorm:"many2many:category_subscribers" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
