package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupAuthRouter(svc *MockAuthService) http.Handler {
	h := NewAuthHandler(svc)
	router := newTestRouter()
	router.POST("/auth/register", h.Register)
	router.POST("/auth/login", h.Login)
	router.GET("/auth/me", h.Me)
	router.PUT("/auth/me", h.UpdateProfile)
	return router
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		mockErr        error
		expectCall     bool
		expectedStatus int
	}{
		{
			name:           "created",
			body:           dto.RegisterRequest{Email: "anna@example.com", Password: "s3cret-pass", Name: "Anna", Phone: "+7 (900) 123-45-67"},
			expectCall:     true,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "duplicate email",
			body:           dto.RegisterRequest{Email: "anna@example.com", Password: "s3cret-pass", Name: "Anna"},
			mockErr:        domain.ErrUserExists,
			expectCall:     true,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "short password",
			body:           dto.RegisterRequest{Email: "anna@example.com", Password: "short", Name: "Anna"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad phone",
			body:           dto.RegisterRequest{Email: "anna@example.com", Password: "s3cret-pass", Name: "Anna", Phone: "call me"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed json",
			body:           `{"email":`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAuthService)
			if tt.expectCall {
				var result *dto.AuthResponse
				if tt.mockErr == nil {
					result = &dto.AuthResponse{AccessToken: "token", TokenType: "Bearer", User: &domain.User{ID: "u-1"}}
				}
				svc.On("Register", mock.Anything, mock.AnythingOfType("*dto.RegisterRequest")).Return(result, tt.mockErr)
			}

			w := doRequest(setupAuthRouter(svc), http.MethodPost, "/auth/register", tt.body, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
			if !tt.expectCall {
				svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		mockErr        error
		expectedStatus int
		expectedCode   string
	}{
		{"ok", nil, http.StatusOK, ""},
		{"wrong password", domain.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"inactive", domain.ErrUserInactive, http.StatusForbidden, "USER_INACTIVE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAuthService)
			var result *dto.AuthResponse
			if tt.mockErr == nil {
				result = &dto.AuthResponse{AccessToken: "token"}
			}
			svc.On("Login", mock.Anything, &dto.LoginRequest{Email: "anna@example.com", Password: "pw"}).Return(result, tt.mockErr)

			w := doRequest(setupAuthRouter(svc), http.MethodPost, "/auth/login",
				dto.LoginRequest{Email: "anna@example.com", Password: "pw"}, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeResponse(t, w).Error.Code)
			}
		})
	}
}

func TestAuthHandler_MeRequiresAuth(t *testing.T) {
	svc := new(MockAuthService)
	router := setupAuthRouter(svc)

	w := doRequest(router, http.MethodGet, "/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	svc.On("GetUser", mock.Anything, "u-1").Return(&domain.User{ID: "u-1", Name: "Anna"}, nil)
	w = doRequest(router, http.MethodGet, "/auth/me", nil, asUser("u-1", domain.RoleUser))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Anna"`)
}

func TestTokenValidator(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("ValidateToken", mock.Anything, "good").Return(&domain.Claims{UserID: "u-1", Email: "a@example.com", Role: domain.RoleOrganizer}, nil)
	svc.On("ValidateToken", mock.Anything, "bad").Return(nil, domain.ErrInvalidToken)

	validator := TokenValidator(svc)

	principal, err := validator.ValidateToken(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "u-1", principal.UserID)
	assert.Equal(t, "organizer", principal.Role)

	_, err = validator.ValidateToken(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
