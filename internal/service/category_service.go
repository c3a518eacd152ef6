package service

import (
	"context"
	"strings"

	"gazette/internal/cache"
	"gazette/internal/models"
	"gazette/internal/repository"
	"gazette/internal/validation"
)

type CategoryService struct {
	categoryRepo repository.CategoryRepository
	userRepo     repository.UserRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository, userRepo repository.UserRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
	}
}

func (s *CategoryService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateCategoryName(name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.categoryRepo.GetByName(ctx, name)
	if err != nil {
		return nil, models.NewStoreUnavailableError("create category", err)
	}
	if existing != nil {
		return nil, models.NewValidationError("Category name is already taken")
	}

	category := &models.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, models.NewStoreUnavailableError("create category", err)
	}
	return category, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get category", "Category", id, err)
	}
	return category, nil
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, models.NewStoreUnavailableError("list categories", err)
	}
	return categories, nil
}

// DeleteCategory removes the category, its post links, and its subscriptions.
// Posts tagged with it are left standing.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return storeError("delete category", "Category", id, err)
	}
	cache.InvalidateCategory(ctx, id)
	return nil
}

// Subscribe registers the user for new-post emails in the category.
// Subscribing twice is a no-op, not an error.
func (s *CategoryService) Subscribe(ctx context.Context, categoryID, userID uint) error {
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		return storeError("subscribe", "Category", categoryID, err)
	}
	if err := s.categoryRepo.Subscribe(ctx, categoryID, userID); err != nil {
		return models.NewStoreUnavailableError("subscribe", err)
	}
	return nil
}

// Unsubscribe stops new-post emails for the category. Unsubscribing when not
// subscribed is a no-op.
func (s *CategoryService) Unsubscribe(ctx context.Context, categoryID, userID uint) error {
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		return storeError("unsubscribe", "Category", categoryID, err)
	}
	if err := s.categoryRepo.Unsubscribe(ctx, categoryID, userID); err != nil {
		return models.NewStoreUnavailableError("unsubscribe", err)
	}
	return nil
}
