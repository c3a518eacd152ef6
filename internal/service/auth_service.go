package service

import (
	"context"

	"gazette/internal/models"
	"gazette/internal/repository"
	"gazette/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo repository.UserRepository
}

type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, models.NewStoreUnavailableError("signup", err)
	}
	if existing != nil {
		return nil, models.NewValidationError("Email is already registered")
	}
	existing, err = s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, models.NewStoreUnavailableError("signup", err)
	}
	if existing != nil {
		return nil, models.NewValidationError("Username is already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, models.NewStoreUnavailableError("signup", err)
	}
	return user, nil
}

// Login verifies credentials. Unknown email and wrong password produce the
// same error so the endpoint does not leak which accounts exist.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, models.NewStoreUnavailableError("login", err)
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	return user, nil
}
