package service

import (
	"context"

	"gazette/internal/middleware"
	"gazette/internal/models"
	"gazette/internal/observability"
	"gazette/internal/repository"
)

// postRatingWeight is the multiplier applied to the author's own post
// ratings; post reputation counts three times as much as comment reputation.
const postRatingWeight = 3

// RatingService derives author reputation from vote tallies. The score is
// recomputed from scratch on every run, never adjusted incrementally, so a
// missed run is self-healing.
type RatingService struct {
	authorRepo repository.AuthorRepository
	postRepo   repository.PostRepository
}

func NewRatingService(authorRepo repository.AuthorRepository, postRepo repository.PostRepository) *RatingService {
	return &RatingService{
		authorRepo: authorRepo,
		postRepo:   postRepo,
	}
}

// RecomputeAuthor recalculates one author's rating:
//
//	3 * sum(own post ratings)
//	  + sum(ratings on comments the author wrote)
//	  + sum(ratings on comments under the author's posts)
//
// When the store holds no posts at all the recomputation is skipped and the
// stored rating is left untouched.
func (s *RatingService) RecomputeAuthor(ctx context.Context, authorID uint) (int, error) {
	count, err := s.postRepo.CountAll(ctx)
	if err != nil {
		observability.RatingRecomputes.WithLabelValues("error").Inc()
		return 0, models.NewStoreUnavailableError("recompute rating", err)
	}
	if count == 0 {
		observability.RatingRecomputes.WithLabelValues("skipped").Inc()
		author, err := s.authorRepo.GetByID(ctx, authorID)
		if err != nil {
			return 0, storeError("recompute rating", "Author", authorID, err)
		}
		return author.Rating, nil
	}

	postSum, err := s.authorRepo.SumPostRatings(ctx, authorID)
	if err != nil {
		observability.RatingRecomputes.WithLabelValues("error").Inc()
		return 0, models.NewStoreUnavailableError("recompute rating", err)
	}
	ownCommentSum, err := s.authorRepo.SumOwnCommentRatings(ctx, authorID)
	if err != nil {
		observability.RatingRecomputes.WithLabelValues("error").Inc()
		return 0, models.NewStoreUnavailableError("recompute rating", err)
	}
	onPostsSum, err := s.authorRepo.SumCommentRatingsOnPosts(ctx, authorID)
	if err != nil {
		observability.RatingRecomputes.WithLabelValues("error").Inc()
		return 0, models.NewStoreUnavailableError("recompute rating", err)
	}

	rating := postRatingWeight*postSum + ownCommentSum + onPostsSum
	if err := s.authorRepo.UpdateRating(ctx, authorID, rating); err != nil {
		observability.RatingRecomputes.WithLabelValues("error").Inc()
		return 0, storeError("recompute rating", "Author", authorID, err)
	}

	observability.RatingRecomputes.WithLabelValues("success").Inc()
	return rating, nil
}

// RecomputeAll sweeps every author. Individual failures are logged and do not
// stop the sweep; the first error is reported once the pass completes.
func (s *RatingService) RecomputeAll(ctx context.Context) error {
	ids, err := s.authorRepo.ListIDs(ctx)
	if err != nil {
		return models.NewStoreUnavailableError("recompute all ratings", err)
	}

	var firstErr error
	for _, id := range ids {
		if _, err := s.RecomputeAuthor(ctx, id); err != nil {
			middleware.Logger.WarnContext(ctx, "rating recompute failed", "author_id", id, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
