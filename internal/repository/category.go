package repository

import (
	"context"
	"errors"

	"gazette/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	Delete(ctx context.Context, id uint) error
	Subscribe(ctx context.Context, categoryID, userID uint) error
	Unsubscribe(ctx context.Context, categoryID, userID uint) error
	IsSubscribed(ctx context.Context, categoryID, userID uint) (bool, error)
	// ListForPostWithSubscribers returns the post's categories ordered by id,
	// each with its subscribers preloaded in subscription order.
	ListForPostWithSubscribers(ctx context.Context, postID uint) ([]*models.Category, error)
}

// categoryRepository implements CategoryRepository
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

// Delete removes the category together with its post links and subscriptions.
// Posts that referenced the category survive; only the association is gone.
func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.PostCategory{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM category_subscribers WHERE category_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *categoryRepository) Subscribe(ctx context.Context, categoryID, userID uint) error {
	subscribed, err := r.IsSubscribed(ctx, categoryID, userID)
	if err != nil {
		return err
	}
	if subscribed {
		// Subscribing twice is a no-op.
		return nil
	}
	return r.db.WithContext(ctx).
		Exec("INSERT INTO category_subscribers (category_id, user_id) VALUES (?, ?)", categoryID, userID).Error
}

func (r *categoryRepository) Unsubscribe(ctx context.Context, categoryID, userID uint) error {
	return r.db.WithContext(ctx).
		Exec("DELETE FROM category_subscribers WHERE category_id = ? AND user_id = ?", categoryID, userID).Error
}

func (r *categoryRepository) IsSubscribed(ctx context.Context, categoryID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("category_subscribers").
		Where("category_id = ? AND user_id = ?", categoryID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *categoryRepository) ListForPostWithSubscribers(ctx context.Context, postID uint) ([]*models.Category, error) {
	var categories []*models.Category
	err := r.db.WithContext(ctx).
		Preload("Subscribers", func(db *gorm.DB) *gorm.DB {
			return db.Order("users.id ASC")
		}).
		Where("id IN (?)",
			r.db.Model(&models.PostCategory{}).Select("category_id").Where("post_id = ?", postID)).
		Order("id ASC").
		Find(&categories).Error
	return categories, err
}
