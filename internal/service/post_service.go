package service

import (
	"context"
	"strings"

	"gazette/internal/models"
	"gazette/internal/repository"
	"gazette/internal/validation"
)

// PostService owns the post lifecycle. Every write goes through the injected
// postSaved hook after the store acknowledged it; cache invalidation hangs off
// that hook rather than hiding inside the repository.
type PostService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	authorRepo   repository.AuthorRepository
	notifier     Notifier
	postSaved    func(ctx context.Context, postID uint)
}

type CreatePostInput struct {
	UserID      uint
	Kind        string
	Title       string
	Body        string
	CategoryIDs []uint
}

type UpdatePostInput struct {
	UserID uint
	PostID uint
	Kind   string
	Title  string
	Body   string
	// CategoryIDs nil leaves the category set unchanged; an empty slice
	// clears it.
	CategoryIDs []uint
}

type ListPostsInput struct {
	Limit      int
	Offset     int
	Kind       string
	CategoryID uint
}

func NewPostService(
	postRepo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	authorRepo repository.AuthorRepository,
	notifier Notifier,
	postSaved func(ctx context.Context, postID uint),
) *PostService {
	if postSaved == nil {
		postSaved = func(context.Context, uint) {}
	}
	return &PostService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		authorRepo:   authorRepo,
		notifier:     notifier,
		postSaved:    postSaved,
	}
}

// CreatePost publishes a new post. The write is committed first, then the
// postSaved hook runs, then subscribers are notified. A notification failure
// never unwinds the post: the created post is returned together with the
// delivery error.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.ValidatePostKind(in.Kind); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePostTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePostBody(in.Body); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	author, err := s.requireAuthor(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	categories, err := s.resolveCategories(ctx, in.CategoryIDs)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID:   author.ID,
		Kind:       in.Kind,
		Title:      strings.TrimSpace(in.Title),
		Body:       in.Body,
		Categories: categories,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewStoreUnavailableError("create post", err)
	}

	s.postSaved(ctx, post.ID)

	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, storeError("create post", "Post", post.ID, err)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyNewPost(ctx, created); err != nil {
			return created, err
		}
	}
	return created, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get post", "Post", id, err)
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	if in.Kind != "" {
		if err := validation.ValidatePostKind(in.Kind); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}
	limit, offset := normalizePage(in.Limit, in.Offset)

	posts, err := s.postRepo.List(ctx, limit, offset, repository.ListPostsFilter{
		Kind:       in.Kind,
		CategoryID: in.CategoryID,
	})
	if err != nil {
		return nil, models.NewStoreUnavailableError("list posts", err)
	}
	return posts, nil
}

func (s *PostService) SearchPosts(ctx context.Context, query string, limit, offset int) ([]*models.Post, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	limit, offset = normalizePage(limit, offset)

	posts, err := s.postRepo.Search(ctx, query, limit, offset)
	if err != nil {
		return nil, models.NewStoreUnavailableError("search posts", err)
	}
	return posts, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if err := validation.ValidatePostKind(in.Kind); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePostTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePostBody(in.Body); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post, err := s.requireOwnedPost(ctx, in.UserID, in.PostID)
	if err != nil {
		return nil, err
	}

	post.Kind = in.Kind
	post.Title = strings.TrimSpace(in.Title)
	post.Body = in.Body
	if in.CategoryIDs != nil {
		categories, err := s.resolveCategories(ctx, in.CategoryIDs)
		if err != nil {
			return nil, err
		}
		if categories == nil {
			categories = []models.Category{}
		}
		post.Categories = categories
	} else {
		post.Categories = nil
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, storeError("update post", "Post", in.PostID, err)
	}

	s.postSaved(ctx, post.ID)

	updated, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, storeError("update post", "Post", post.ID, err)
	}
	return updated, nil
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	if _, err := s.requireOwnedPost(ctx, userID, postID); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return models.NewStoreUnavailableError("delete post", err)
	}
	s.postSaved(ctx, postID)
	return nil
}

// LikePost bumps the rating by one as a single store-level increment, so two
// concurrent likes always land as two.
func (s *PostService) LikePost(ctx context.Context, postID uint) (*models.Post, error) {
	return s.adjustRating(ctx, postID, 1)
}

// DislikePost lowers the rating by one. There is no floor.
func (s *PostService) DislikePost(ctx context.Context, postID uint) (*models.Post, error) {
	return s.adjustRating(ctx, postID, -1)
}

func (s *PostService) adjustRating(ctx context.Context, postID uint, delta int) (*models.Post, error) {
	if err := s.postRepo.IncrementRating(ctx, postID, delta); err != nil {
		return nil, storeError("rate post", "Post", postID, err)
	}
	s.postSaved(ctx, postID)

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, storeError("rate post", "Post", postID, err)
	}
	return post, nil
}

func (s *PostService) requireAuthor(ctx context.Context, userID uint) (*models.Author, error) {
	author, err := s.authorRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, models.NewStoreUnavailableError("resolve author", err)
	}
	if author == nil {
		return nil, models.NewUnauthorizedError("Only authors can publish; become an author first")
	}
	return author, nil
}

func (s *PostService) requireOwnedPost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	author, err := s.requireAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, storeError("load post", "Post", postID, err)
	}
	if post.AuthorID != author.ID {
		return nil, models.NewUnauthorizedError("You can only modify your own posts")
	}
	return post, nil
}

func (s *PostService) resolveCategories(ctx context.Context, ids []uint) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	seen := make(map[uint]struct{}, len(ids))
	categories := make([]models.Category, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		category, err := s.categoryRepo.GetByID(ctx, id)
		if err != nil {
			return nil, storeError("resolve categories", "Category", id, err)
		}
		categories = append(categories, *category)
	}
	return categories, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
