package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/trip-ledger/internal/auth"
	"github.com/ukydev/trip-ledger/internal/db"
	"github.com/ukydev/trip-ledger/internal/middleware"
	"github.com/ukydev/trip-ledger/internal/models"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService *auth.Service
	operators   db.OperatorCollection
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, operators db.OperatorCollection) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		operators:   operators,
	}
}

// Login exchanges operator credentials for an access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var loginReq models.LoginRequest
	if err := json.Unmarshal(body, &loginReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if loginReq.Username == "" || loginReq.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	operator, err := h.operators.FindOperatorByUsername(r.Context(), loginReq.Username)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		fail(w, r, err)
		return
	}
	if err := h.authService.Authenticate(operator, loginReq.Password); err != nil {
		if errors.Is(err, auth.ErrOperatorInactive) {
			http.Error(w, "Account is deactivated", http.StatusUnauthorized)
			return
		}
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken(operator)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	if err := h.operators.UpdateLastLogin(r.Context(), operator.ID.Hex()); err != nil {
		log.WithField("operator", operator.Username).WithError(err).Warn("Failed to update last login")
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{Token: token, Operator: *operator})
}

// GetProfile returns the current operator's profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetOperatorFromContext(r.Context())
	if !ok {
		http.Error(w, "Operator context not found", http.StatusUnauthorized)
		return
	}

	operator, err := h.operators.FindOperatorByID(r.Context(), claims.OperatorID)
	if err != nil {
		http.Error(w, "Operator not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, operator)
}
