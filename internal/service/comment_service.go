package service

import (
	"context"

	"gazette/internal/models"
	"gazette/internal/repository"
	"gazette/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	authorRepo  repository.AuthorRepository
}

type CreateCommentInput struct {
	UserID uint
	PostID uint
	Body   string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Body      string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	authorRepo repository.AuthorRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		authorRepo:  authorRepo,
	}
}

// CreateComment attaches a comment to an existing post. Commenting requires
// an author record, same as publishing.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := validation.ValidateCommentBody(in.Body); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	author, err := s.authorRepo.GetByUserID(ctx, in.UserID)
	if err != nil {
		return nil, models.NewStoreUnavailableError("create comment", err)
	}
	if author == nil {
		return nil, models.NewUnauthorizedError("Only authors can comment; become an author first")
	}

	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, storeError("create comment", "Post", in.PostID, err)
	}

	comment := &models.Comment{
		PostID:   in.PostID,
		AuthorID: author.ID,
		Body:     in.Body,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewStoreUnavailableError("create comment", err)
	}

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, storeError("create comment", "Comment", comment.ID, err)
	}
	return created, nil
}

func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get comment", "Comment", id, err)
	}
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, storeError("list comments", "Post", postID, err)
	}
	limit, offset = normalizePage(limit, offset)

	comments, err := s.commentRepo.ListByPost(ctx, postID, limit, offset)
	if err != nil {
		return nil, models.NewStoreUnavailableError("list comments", err)
	}
	return comments, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if err := validation.ValidateCommentBody(in.Body); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment, err := s.requireOwnedComment(ctx, in.UserID, in.CommentID)
	if err != nil {
		return nil, err
	}

	comment.Body = in.Body
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, storeError("update comment", "Comment", in.CommentID, err)
	}

	updated, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, storeError("update comment", "Comment", in.CommentID, err)
	}
	return updated, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	if _, err := s.requireOwnedComment(ctx, userID, commentID); err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return models.NewStoreUnavailableError("delete comment", err)
	}
	return nil
}

// LikeComment bumps the comment rating by one. Comments are not cached, so
// no invalidation follows.
func (s *CommentService) LikeComment(ctx context.Context, commentID uint) (*models.Comment, error) {
	return s.adjustRating(ctx, commentID, 1)
}

// DislikeComment lowers the comment rating by one.
func (s *CommentService) DislikeComment(ctx context.Context, commentID uint) (*models.Comment, error) {
	return s.adjustRating(ctx, commentID, -1)
}

func (s *CommentService) adjustRating(ctx context.Context, commentID uint, delta int) (*models.Comment, error) {
	if err := s.commentRepo.IncrementRating(ctx, commentID, delta); err != nil {
		return nil, storeError("rate comment", "Comment", commentID, err)
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, storeError("rate comment", "Comment", commentID, err)
	}
	return comment, nil
}

func (s *CommentService) requireOwnedComment(ctx context.Context, userID, commentID uint) (*models.Comment, error) {
	author, err := s.authorRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, models.NewStoreUnavailableError("resolve author", err)
	}
	if author == nil {
		return nil, models.NewUnauthorizedError("Only authors can modify comments")
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, storeError("load comment", "Comment", commentID, err)
	}
	if comment.AuthorID != author.ID {
		return nil, models.NewUnauthorizedError("You can only modify your own comments")
	}
	return comment, nil
}
