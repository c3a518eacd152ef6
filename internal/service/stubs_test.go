package service

import (
	"context"
	"errors"
	"testing"

	"gazette/internal/mail"
	"gazette/internal/models"
	"gazette/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn:       func(_ context.Context, _ uint) (*models.User, error) { return &models.User{}, nil },
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
	}
}

// authorRepoStub is a stub for repository.AuthorRepository.
type authorRepoStub struct {
	createFn                   func(context.Context, *models.Author) error
	getByIDFn                  func(context.Context, uint) (*models.Author, error)
	getByUserIDFn              func(context.Context, uint) (*models.Author, error)
	listIDsFn                  func(context.Context) ([]uint, error)
	updateRatingFn             func(context.Context, uint, int) error
	sumPostRatingsFn           func(context.Context, uint) (int, error)
	sumOwnCommentRatingsFn     func(context.Context, uint) (int, error)
	sumCommentRatingsOnPostsFn func(context.Context, uint) (int, error)
}

func (s *authorRepoStub) Create(ctx context.Context, author *models.Author) error {
	return s.createFn(ctx, author)
}
func (s *authorRepoStub) GetByID(ctx context.Context, id uint) (*models.Author, error) {
	return s.getByIDFn(ctx, id)
}
func (s *authorRepoStub) GetByUserID(ctx context.Context, userID uint) (*models.Author, error) {
	return s.getByUserIDFn(ctx, userID)
}
func (s *authorRepoStub) ListIDs(ctx context.Context) ([]uint, error) {
	return s.listIDsFn(ctx)
}
func (s *authorRepoStub) UpdateRating(ctx context.Context, authorID uint, rating int) error {
	return s.updateRatingFn(ctx, authorID, rating)
}
func (s *authorRepoStub) SumPostRatings(ctx context.Context, authorID uint) (int, error) {
	return s.sumPostRatingsFn(ctx, authorID)
}
func (s *authorRepoStub) SumOwnCommentRatings(ctx context.Context, authorID uint) (int, error) {
	return s.sumOwnCommentRatingsFn(ctx, authorID)
}
func (s *authorRepoStub) SumCommentRatingsOnPosts(ctx context.Context, authorID uint) (int, error) {
	return s.sumCommentRatingsOnPostsFn(ctx, authorID)
}

func noopAuthorRepo() *authorRepoStub {
	return &authorRepoStub{
		createFn:                   func(_ context.Context, _ *models.Author) error { return nil },
		getByIDFn:                  func(_ context.Context, _ uint) (*models.Author, error) { return &models.Author{ID: 1}, nil },
		getByUserIDFn:              func(_ context.Context, _ uint) (*models.Author, error) { return &models.Author{ID: 1}, nil },
		listIDsFn:                  func(_ context.Context) ([]uint, error) { return nil, nil },
		updateRatingFn:             func(_ context.Context, _ uint, _ int) error { return nil },
		sumPostRatingsFn:           func(_ context.Context, _ uint) (int, error) { return 0, nil },
		sumOwnCommentRatingsFn:     func(_ context.Context, _ uint) (int, error) { return 0, nil },
		sumCommentRatingsOnPostsFn: func(_ context.Context, _ uint) (int, error) { return 0, nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn          func(context.Context, *models.Post) error
	getByIDFn         func(context.Context, uint) (*models.Post, error)
	listFn            func(context.Context, int, int, repository.ListPostsFilter) ([]*models.Post, error)
	listByAuthorFn    func(context.Context, uint, int, int) ([]*models.Post, error)
	searchFn          func(context.Context, string, int, int) ([]*models.Post, error)
	updateFn          func(context.Context, *models.Post) error
	deleteFn          func(context.Context, uint) error
	incrementRatingFn func(context.Context, uint, int) error
	countAllFn        func(context.Context) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int, filter repository.ListPostsFilter) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset, filter)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error) {
	return s.listByAuthorFn(ctx, authorID, limit, offset)
}
func (s *postRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, error) {
	return s.searchFn(ctx, query, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) IncrementRating(ctx context.Context, id uint, delta int) error {
	return s.incrementRatingFn(ctx, id, delta)
}
func (s *postRepoStub) CountAll(ctx context.Context) (int64, error) {
	return s.countAllFn(ctx)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: 1}, nil
		},
		listFn: func(_ context.Context, _, _ int, _ repository.ListPostsFilter) ([]*models.Post, error) {
			return nil, nil
		},
		listByAuthorFn:    func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		searchFn:          func(_ context.Context, _ string, _, _ int) ([]*models.Post, error) { return nil, nil },
		updateFn:          func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:          func(_ context.Context, _ uint) error { return nil },
		incrementRatingFn: func(_ context.Context, _ uint, _ int) error { return nil },
		countAllFn:        func(_ context.Context) (int64, error) { return 1, nil },
	}
}

// categoryRepoStub is a stub for repository.CategoryRepository.
type categoryRepoStub struct {
	createFn                     func(context.Context, *models.Category) error
	getByIDFn                    func(context.Context, uint) (*models.Category, error)
	getByNameFn                  func(context.Context, string) (*models.Category, error)
	listFn                       func(context.Context) ([]*models.Category, error)
	deleteFn                     func(context.Context, uint) error
	subscribeFn                  func(context.Context, uint, uint) error
	unsubscribeFn                func(context.Context, uint, uint) error
	isSubscribedFn               func(context.Context, uint, uint) (bool, error)
	listForPostWithSubscribersFn func(context.Context, uint) ([]*models.Category, error)
}

func (s *categoryRepoStub) Create(ctx context.Context, category *models.Category) error {
	return s.createFn(ctx, category)
}
func (s *categoryRepoStub) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return s.getByIDFn(ctx, id)
}
func (s *categoryRepoStub) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return s.getByNameFn(ctx, name)
}
func (s *categoryRepoStub) List(ctx context.Context) ([]*models.Category, error) {
	return s.listFn(ctx)
}
func (s *categoryRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *categoryRepoStub) Subscribe(ctx context.Context, categoryID, userID uint) error {
	return s.subscribeFn(ctx, categoryID, userID)
}
func (s *categoryRepoStub) Unsubscribe(ctx context.Context, categoryID, userID uint) error {
	return s.unsubscribeFn(ctx, categoryID, userID)
}
func (s *categoryRepoStub) IsSubscribed(ctx context.Context, categoryID, userID uint) (bool, error) {
	return s.isSubscribedFn(ctx, categoryID, userID)
}
func (s *categoryRepoStub) ListForPostWithSubscribers(ctx context.Context, postID uint) ([]*models.Category, error) {
	return s.listForPostWithSubscribersFn(ctx, postID)
}

func noopCategoryRepo() *categoryRepoStub {
	return &categoryRepoStub{
		createFn:       func(_ context.Context, _ *models.Category) error { return nil },
		getByIDFn:      func(_ context.Context, id uint) (*models.Category, error) { return &models.Category{ID: id}, nil },
		getByNameFn:    func(_ context.Context, _ string) (*models.Category, error) { return nil, nil },
		listFn:         func(_ context.Context) ([]*models.Category, error) { return nil, nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
		subscribeFn:    func(_ context.Context, _, _ uint) error { return nil },
		unsubscribeFn:  func(_ context.Context, _, _ uint) error { return nil },
		isSubscribedFn: func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		listForPostWithSubscribersFn: func(_ context.Context, _ uint) ([]*models.Category, error) {
			return nil, nil
		},
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn          func(context.Context, *models.Comment) error
	getByIDFn         func(context.Context, uint) (*models.Comment, error)
	listByPostFn      func(context.Context, uint, int, int) ([]*models.Comment, error)
	updateFn          func(context.Context, *models.Comment) error
	deleteFn          func(context.Context, uint) error
	incrementRatingFn func(context.Context, uint, int) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) IncrementRating(ctx context.Context, id uint, delta int) error {
	return s.incrementRatingFn(ctx, id, delta)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, AuthorID: 1}, nil
		},
		listByPostFn:      func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, error) { return nil, nil },
		updateFn:          func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:          func(_ context.Context, _ uint) error { return nil },
		incrementRatingFn: func(_ context.Context, _ uint, _ int) error { return nil },
	}
}

// mailerStub records sent messages for assertions.
type mailerStub struct {
	sent   []mail.Message
	sendFn func(context.Context, mail.Message) error
}

func (m *mailerStub) Send(ctx context.Context, msg mail.Message) error {
	m.sent = append(m.sent, msg)
	if m.sendFn != nil {
		return m.sendFn(ctx, msg)
	}
	return nil
}

// notifierStub is a stub for Notifier.
type notifierStub struct {
	notified []uint
	err      error
}

func (n *notifierStub) NotifyNewPost(_ context.Context, post *models.Post) error {
	n.notified = append(n.notified, post.ID)
	return n.err
}

// assertAppError asserts that err is an AppError carrying the given code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeValidation)
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeUnauthorized)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeNotFound)
}
