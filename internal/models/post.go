package models

import (
	"time"
)

// Post kinds. A post is either a long-form article or a news item.
const (
	PostKindArticle = "article"
	PostKindNews    = "news"
)

// Post is a published piece owned by exactly one Author and tagged with any
// number of categories through the post_categories join table.
//
// Rating moves only through like/dislike; it has no floor or ceiling.
// CreatedAt is set once at creation and never updated.
type Post struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	AuthorID   uint       `gorm:"not null;index" json:"author_id"`
	Author     Author     `gorm:"foreignKey:AuthorID" json:"author"`
	Kind       string     `gorm:"not null;index" json:"kind"`
	Title      string     `gorm:"not null" json:"title"`
	Body       string     `gorm:"type:text;not null" json:"body"`
	Rating     int        `gorm:"not null;default:0" json:"rating"`
	Categories []Category `gorm:"many2many:post_categories" json:"categories"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int       `gorm:"->" json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ValidKind reports whether k names a known post kind.
func ValidKind(k string) bool {
	return k == PostKindArticle || k == PostKindNews
}

// Preview returns a shortened body for list views.
func (p *Post) Preview() string {
	const previewLen = 124
	if len(p.Body) <= previewLen {
		return p.Body
	}
	return p.Body[:previewLen] + "..."
}

// PostCategory is the explicit join row between a post and a category.
// Deleting a Category removes its join rows; deleting a Post does not,
// so a dangling join row is possible. Documented product behavior.
type PostCategory struct {
	PostID     uint `gorm:"primaryKey" json:"post_id"`
	CategoryID uint `gorm:"primaryKey" json:"category_id"`
}
