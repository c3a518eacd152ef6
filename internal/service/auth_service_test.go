package service

import (
	"context"
	"testing"

	"gazette/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func validSignup() SignupInput {
	return SignupInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "SecurePass12!@",
	}
}

func TestSignup_Validation(t *testing.T) {
	svc := NewAuthService(noopUserRepo())
	ctx := context.Background()

	in := validSignup()
	in.Username = "a"
	_, err := svc.Signup(ctx, in)
	assertValidationError(t, err)

	in = validSignup()
	in.Email = "not-an-email"
	_, err = svc.Signup(ctx, in)
	assertValidationError(t, err)

	in = validSignup()
	in.Password = "weak"
	_, err = svc.Signup(ctx, in)
	assertValidationError(t, err)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	userRepo := noopUserRepo()
	userRepo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		return &models.User{ID: 1, Email: email}, nil
	}

	svc := NewAuthService(userRepo)
	_, err := svc.Signup(context.Background(), validSignup())
	assertValidationError(t, err)
}

func TestSignup_HashesPassword(t *testing.T) {
	var created *models.User
	userRepo := noopUserRepo()
	userRepo.createFn = func(_ context.Context, user *models.User) error {
		user.ID = 1
		created = user
		return nil
	}

	svc := NewAuthService(userRepo)
	in := validSignup()
	user, err := svc.Signup(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.NotEqual(t, in.Password, user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte(in.Password)))
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := NewAuthService(noopUserRepo())
	_, err := svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "whatever"})
	assertUnauthorizedError(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("CorrectPass12!"), bcrypt.MinCost)
	require.NoError(t, err)

	userRepo := noopUserRepo()
	userRepo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		return &models.User{ID: 1, Email: email, Password: string(hashed)}, nil
	}

	svc := NewAuthService(userRepo)
	_, err = svc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "WrongPass12!"})
	assertUnauthorizedError(t, err)
}

func TestLogin_Success(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("CorrectPass12!"), bcrypt.MinCost)
	require.NoError(t, err)

	userRepo := noopUserRepo()
	userRepo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		return &models.User{ID: 7, Email: email, Password: string(hashed)}, nil
	}

	svc := NewAuthService(userRepo)
	user, err := svc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "CorrectPass12!"})
	require.NoError(t, err)
	assert.Equal(t, uint(7), user.ID)
}

func TestBecomeAuthor_Idempotent(t *testing.T) {
	authorRepo := noopAuthorRepo()
	existing := &models.Author{ID: 3, UserID: 1, Rating: 10}
	authorRepo.getByUserIDFn = func(_ context.Context, _ uint) (*models.Author, error) {
		return existing, nil
	}
	created := false
	authorRepo.createFn = func(_ context.Context, _ *models.Author) error {
		created = true
		return nil
	}

	svc := NewAuthorService(authorRepo, noopUserRepo())
	author, err := svc.BecomeAuthor(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, existing, author)
	assert.False(t, created)
}

func TestBecomeAuthor_CreatesRecord(t *testing.T) {
	authorRepo := noopAuthorRepo()
	authorRepo.getByUserIDFn = func(_ context.Context, _ uint) (*models.Author, error) { return nil, nil }

	var created *models.Author
	authorRepo.createFn = func(_ context.Context, author *models.Author) error {
		author.ID = 5
		created = author
		return nil
	}

	svc := NewAuthorService(authorRepo, noopUserRepo())
	author, err := svc.BecomeAuthor(context.Background(), 9)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, uint(9), created.UserID)
	assert.Equal(t, uint(5), author.ID)
}
