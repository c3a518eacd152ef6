package service

import (
	"context"

	"gazette/internal/models"
	"gazette/internal/repository"
)

type AuthorService struct {
	authorRepo repository.AuthorRepository
	userRepo   repository.UserRepository
}

func NewAuthorService(authorRepo repository.AuthorRepository, userRepo repository.UserRepository) *AuthorService {
	return &AuthorService{
		authorRepo: authorRepo,
		userRepo:   userRepo,
	}
}

// BecomeAuthor grants the user publishing capability. Calling it when the
// user is already an author returns the existing record unchanged.
func (s *AuthorService) BecomeAuthor(ctx context.Context, userID uint) (*models.Author, error) {
	existing, err := s.authorRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, models.NewStoreUnavailableError("become author", err)
	}
	if existing != nil {
		return existing, nil
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, storeError("become author", "User", userID, err)
	}

	author := &models.Author{UserID: userID}
	if err := s.authorRepo.Create(ctx, author); err != nil {
		return nil, models.NewStoreUnavailableError("become author", err)
	}
	return author, nil
}

func (s *AuthorService) GetAuthor(ctx context.Context, id uint) (*models.Author, error) {
	author, err := s.authorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get author", "Author", id, err)
	}
	return author, nil
}

// GetAuthorForUser returns the user's author record, nil if none exists.
func (s *AuthorService) GetAuthorForUser(ctx context.Context, userID uint) (*models.Author, error) {
	author, err := s.authorRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, models.NewStoreUnavailableError("get author", err)
	}
	return author, nil
}
