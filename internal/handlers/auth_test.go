package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/trip-ledger/internal/auth"
	"github.com/ukydev/trip-ledger/internal/db"
	"github.com/ukydev/trip-ledger/internal/middleware"
	"github.com/ukydev/trip-ledger/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAuthService(t *testing.T) *auth.Service {
	t.Helper()
	s, err := auth.NewService("handler-secret", time.Hour)
	require.NoError(t, err)
	return s
}

func loginBody(t *testing.T, username, password string) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(models.LoginRequest{Username: username, Password: password})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestAuthHandler_Login(t *testing.T) {
	authService := newAuthService(t)
	passwordHash, err := authService.HashPassword("password123")
	require.NoError(t, err)

	newOperator := func(active bool) *models.Operator {
		return &models.Operator{
			ID:           primitive.NewObjectID(),
			Username:     "accountant",
			PasswordHash: passwordHash,
			Role:         models.RoleAccountant,
			IsActive:     active,
		}
	}

	t.Run("successful login", func(t *testing.T) {
		operators := new(MockOperatorCollection)
		handler := NewAuthHandler(authService, operators)
		operator := newOperator(true)

		operators.On("FindOperatorByUsername", mock.Anything, "accountant").Return(operator, nil)
		operators.On("UpdateLastLogin", mock.Anything, operator.ID.Hex()).Return(nil)

		req := httptest.NewRequest("POST", "/api/auth/login", loginBody(t, "accountant", "password123"))
		w := httptest.NewRecorder()
		handler.Login(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), passwordHash)

		var response models.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotEmpty(t, response.Token)
		assert.Equal(t, "accountant", response.Operator.Username)

		claims, err := authService.ValidateToken(response.Token)
		require.NoError(t, err)
		assert.Equal(t, operator.ID.Hex(), claims.OperatorID)
		operators.AssertExpectations(t)
	})

	t.Run("last login failure does not block login", func(t *testing.T) {
		operators := new(MockOperatorCollection)
		handler := NewAuthHandler(authService, operators)
		operator := newOperator(true)

		operators.On("FindOperatorByUsername", mock.Anything, "accountant").Return(operator, nil)
		operators.On("UpdateLastLogin", mock.Anything, operator.ID.Hex()).Return(fmt.Errorf("write conflict"))

		w := httptest.NewRecorder()
		handler.Login(w, httptest.NewRequest("POST", "/api/auth/login", loginBody(t, "accountant", "password123")))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		operators := new(MockOperatorCollection)
		handler := NewAuthHandler(authService, operators)
		operators.On("FindOperatorByUsername", mock.Anything, "accountant").Return(newOperator(true), nil)

		w := httptest.NewRecorder()
		handler.Login(w, httptest.NewRequest("POST", "/api/auth/login", loginBody(t, "accountant", "nope")))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		operators.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything)
	})

	t.Run("unknown operator", func(t *testing.T) {
		operators := new(MockOperatorCollection)
		handler := NewAuthHandler(authService, operators)
		operators.On("FindOperatorByUsername", mock.Anything, "ghost").
			Return(nil, fmt.Errorf("operator ghost: %w", db.ErrNotFound))

		w := httptest.NewRecorder()
		handler.Login(w, httptest.NewRequest("POST", "/api/auth/login", loginBody(t, "ghost", "password123")))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deactivated operator", func(t *testing.T) {
		operators := new(MockOperatorCollection)
		handler := NewAuthHandler(authService, operators)
		operators.On("FindOperatorByUsername", mock.Anything, "accountant").Return(newOperator(false), nil)

		w := httptest.NewRecorder()
		handler.Login(w, httptest.NewRequest("POST", "/api/auth/login", loginBody(t, "accountant", "password123")))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "deactivated")
	})

	t.Run("bad requests", func(t *testing.T) {
		handler := NewAuthHandler(authService, new(MockOperatorCollection))

		w := httptest.NewRecorder()
		handler.Login(w, httptest.NewRequest("GET", "/api/auth/login", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

		w = httptest.NewRecorder()
		handler.Login(w, httptest.NewRequest("POST", "/api/auth/login", bytes.NewBufferString("{bad json")))
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = httptest.NewRecorder()
		handler.Login(w, httptest.NewRequest("POST", "/api/auth/login", loginBody(t, "accountant", "")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_GetProfile(t *testing.T) {
	authService := newAuthService(t)
	operators := new(MockOperatorCollection)
	handler := NewAuthHandler(authService, operators)

	operator := &models.Operator{
		ID:       primitive.NewObjectID(),
		Username: "owner",
		Role:     models.RoleOwner,
		IsActive: true,
	}
	operators.On("FindOperatorByID", mock.Anything, operator.ID.Hex()).Return(operator, nil)

	req := httptest.NewRequest("GET", "/api/auth/profile", nil)
	req = req.WithContext(middleware.WithOperator(req.Context(), &models.Claims{
		OperatorID: operator.ID.Hex(),
		Username:   "owner",
		Role:       models.RoleOwner,
	}))
	w := httptest.NewRecorder()
	handler.GetProfile(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"owner"`)

	w = httptest.NewRecorder()
	handler.GetProfile(w, httptest.NewRequest("GET", "/api/auth/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
