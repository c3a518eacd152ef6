package repository

import (
	"context"
	"errors"

	"gazette/internal/models"

	"gorm.io/gorm"
)

// AuthorRepository defines the interface for author data operations,
// including the aggregate reads feeding the rating recomputation.
type AuthorRepository interface {
	Create(ctx context.Context, author *models.Author) error
	GetByID(ctx context.Context, id uint) (*models.Author, error)
	// GetByUserID returns (nil, nil) when the user holds no author record.
	GetByUserID(ctx context.Context, userID uint) (*models.Author, error)
	ListIDs(ctx context.Context) ([]uint, error)
	// UpdateRating writes the derived rating. Nothing else on the author row
	// is touched.
	UpdateRating(ctx context.Context, authorID uint, rating int) error

	SumPostRatings(ctx context.Context, authorID uint) (int, error)
	SumOwnCommentRatings(ctx context.Context, authorID uint) (int, error)
	SumCommentRatingsOnPosts(ctx context.Context, authorID uint) (int, error)
}

type authorRepository struct {
	db *gorm.DB
}

// NewAuthorRepository creates a new AuthorRepository
func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{db: db}
}

func (r *authorRepository) Create(ctx context.Context, author *models.Author) error {
	return r.db.WithContext(ctx).Create(author).Error
}

func (r *authorRepository) GetByID(ctx context.Context, id uint) (*models.Author, error) {
	var author models.Author
	if err := r.db.WithContext(ctx).Preload("User").First(&author, id).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *authorRepository) GetByUserID(ctx context.Context, userID uint) (*models.Author, error) {
	var author models.Author
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&author).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *authorRepository) ListIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Author{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

func (r *authorRepository) UpdateRating(ctx context.Context, authorID uint, rating int) error {
	res := r.db.WithContext(ctx).Model(&models.Author{}).
		Where("id = ?", authorID).
		Update("rating", rating)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *authorRepository) SumPostRatings(ctx context.Context, authorID uint) (int, error) {
	var sum int
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("author_id = ?", authorID).
		Select("COALESCE(SUM(rating), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *authorRepository) SumOwnCommentRatings(ctx context.Context, authorID uint) (int, error) {
	var sum int
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("author_id = ?", authorID).
		Select("COALESCE(SUM(rating), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *authorRepository) SumCommentRatingsOnPosts(ctx context.Context, authorID uint) (int, error) {
	var sum int
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id IN (?)", r.db.Model(&models.Post{}).Select("id").Where("author_id = ?", authorID)).
		Select("COALESCE(SUM(rating), 0)").
		Scan(&sum).Error
	return sum, err
}
