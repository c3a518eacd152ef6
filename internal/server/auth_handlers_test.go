package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"gazette/internal/config"
	"gazette/internal/models"
	"gazette/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthTestServer(userRepo *MockUserRepository) (*Server, *fiber.App) {
	s := &Server{
		config:      &config.Config{JWTSecret: "test-secret-key-for-auth-tests"},
		authService: service.NewAuthService(userRepo),
	}
	return s, fiber.New()
}

func TestSignupHandler(t *testing.T) {
	userRepo := new(MockUserRepository)
	s, app := newAuthTestServer(userRepo)
	app.Post("/auth/signup", s.Signup)

	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{
				"username": "alice",
				"email":    "alice@example.com",
				"password": "SecurePass12!@",
			},
			mockSetup: func() {
				userRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, nil).Once()
				userRepo.On("GetByUsername", mock.Anything, "alice").Return(nil, nil).Once()
				userRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Missing Fields",
			body: map[string]string{
				"username": "alice",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Weak Password",
			body: map[string]string{
				"username": "alice",
				"email":    "alice@example.com",
				"password": "weak",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Duplicate Email",
			body: map[string]string{
				"username": "alice",
				"email":    "alice@example.com",
				"password": "SecurePass12!@",
			},
			mockSetup: func() {
				userRepo.On("GetByEmail", mock.Anything, "alice@example.com").
					Return(&models.User{ID: 1}, nil).Once()
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			req := httptest.NewRequest(http.MethodPost, "/auth/signup", jsonBody(t, tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
	userRepo.AssertExpectations(t)
}

func TestLoginHandler(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("SecurePass12!@"), bcrypt.MinCost)
	require.NoError(t, err)

	userRepo := new(MockUserRepository)
	s, app := newAuthTestServer(userRepo)
	app.Post("/auth/login", s.Login)

	userRepo.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&models.User{ID: 1, Username: "alice", Email: "alice@example.com", Password: string(hashed)}, nil)
	userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

	t.Run("Success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			jsonBody(t, map[string]string{"email": "alice@example.com", "password": "SecurePass12!@"}))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			jsonBody(t, map[string]string{"email": "alice@example.com", "password": "WrongPass12!@"}))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Unknown Email", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			jsonBody(t, map[string]string{"email": "ghost@example.com", "password": "SecurePass12!@"}))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAuthRequired(t *testing.T) {
	s := &Server{config: &config.Config{JWTSecret: "test-secret-key-for-auth-tests"}}

	app := fiber.New()
	app.Get("/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": currentUserID(c)})
	})

	t.Run("Missing Token", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Garbage Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Valid Token", func(t *testing.T) {
		token, err := s.generateToken(42, "alice")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		forged := &Server{config: &config.Config{JWTSecret: "another-secret-entirely-here!!"}}
		token, err := forged.generateToken(42, "alice")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
