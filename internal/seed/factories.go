// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"gazette/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	// #nosec G404: acceptable for seeding
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "Password123!demo"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("Password123!demo"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateAuthor persists an author record for the given user.
func (f *Factory) CreateAuthor(user *models.User) (*models.Author, error) {
	author := &models.Author{UserID: user.ID}
	if err := f.db.Create(author).Error; err != nil {
		return nil, err
	}
	return author, nil
}

// CreatePost constructs and persists a sample `models.Post` for the given
// author, tagged with the provided categories. The creation timestamp is
// spread over the recent past so list views look lived-in.
func (f *Factory) CreatePost(author *models.Author, categories []models.Category, overrides ...func(*models.Post)) (*models.Post, error) {
	kind := models.PostKindArticle
	if f.rng.Intn(3) == 0 {
		kind = models.PostKindNews
	}

	post := &models.Post{
		AuthorID:   author.ID,
		Kind:       kind,
		Title:      gofakeit.Sentence(5),
		Body:       gofakeit.Paragraph(2, 4, 8, "\n\n"),
		Rating:     f.rng.Intn(21) - 5,
		Categories: categories,
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided post written by the provided author.
func (f *Factory) CreateComment(author *models.Author, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Body:     gofakeit.Sentence(8),
		Rating:   f.rng.Intn(11) - 3,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// Subscribe registers the user for notifications in the category.
// Re-subscribing the same pair is a no-op.
func (f *Factory) Subscribe(user *models.User, category *models.Category) error {
	var count int64
	if err := f.db.Table("category_subscribers").
		Where("category_id = ? AND user_id = ?", category.ID, user.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return f.db.Exec(
		"INSERT INTO category_subscribers (category_id, user_id) VALUES (?, ?)",
		category.ID, user.ID,
	).Error
}
