package repository

import (
	"context"

	"gazette/internal/cache"
	"gazette/internal/models"

	"gorm.io/gorm"
)

// ListPostsFilter narrows the post list. Zero values mean "no filter".
type ListPostsFilter struct {
	Kind       string
	CategoryID uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int, filter ListPostsFilter) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	// IncrementRating applies rating = rating + delta as a single store-level
	// update, so concurrent votes never lose increments.
	IncrementRating(ctx context.Context, id uint, delta int) error
	CountAll(ctx context.Context) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// withDetails appends the computed comments_count column.
func (r *postRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Post{}).
		Select("posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	key := cache.PostKey(id)

	err := cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
		return r.withDetails(r.db.WithContext(ctx)).
			Preload("Author").
			Preload("Author.User").
			Preload("Categories").
			First(&post, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int, filter ListPostsFilter) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.withDetails(r.db.WithContext(ctx)).
		Preload("Author").
		Preload("Author.User").
		Preload("Categories")

	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.CategoryID != 0 {
		q = q.Where("posts.id IN (?)",
			r.db.Model(&models.PostCategory{}).Select("post_id").Where("category_id = ?", filter.CategoryID))
	}

	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.withDetails(r.db.WithContext(ctx)).
		Preload("Categories").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	pattern := "%" + query + "%"
	err := r.withDetails(r.db.WithContext(ctx)).
		Preload("Author").
		Preload("Author.User").
		Preload("Categories").
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(body) LIKE LOWER(?)", pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// Update persists the mutable columns and replaces the category set.
// CreatedAt and Rating are never written here: creation time is immutable and
// rating moves only through IncrementRating.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ?", post.ID).
			Updates(map[string]interface{}{
				"kind":  post.Kind,
				"title": post.Title,
				"body":  post.Body,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if post.Categories != nil {
			cats := make([]models.Category, len(post.Categories))
			copy(cats, post.Categories)
			if err := tx.Model(post).Association("Categories").Replace(&cats); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the post row only. Join rows in post_categories are left
// behind on purpose; see models.PostCategory.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}

func (r *postRepository) IncrementRating(ctx context.Context, id uint, delta int) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("rating", gorm.Expr("rating + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error
	return count, err
}
