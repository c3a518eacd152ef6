package models

import (
	"time"
)

// Comment is a reply to a post. It is owned by its own Author, which may
// differ from the post's author. Comments are not independently cached, so
// rating changes on them never touch a cache entry.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    Author    `gorm:"foreignKey:AuthorID" json:"author"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Rating    int       `gorm:"not null;default:0" json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
