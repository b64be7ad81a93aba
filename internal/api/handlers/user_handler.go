package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lmoren/taskdeck-be/internal/auth"
	"github.com/lmoren/taskdeck-be/internal/models"
	"github.com/lmoren/taskdeck-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for account management.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	FirstName         string `json:"firstName" validate:"required"`
	LastName          string `json:"lastName" validate:"required"`
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required"`
	ConfirmPassword   string `json:"confirmPassword"`
	PreferredLanguage string `json:"preferredLanguage" validate:"omitempty,oneof=en es fr"`
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfilePayload defines the structure for profile updates.
type ProfilePayload struct {
	FirstName         *string `json:"firstName" validate:"omitempty,min=1"`
	LastName          *string `json:"lastName" validate:"omitempty,min=1"`
	PreferredLanguage *string `json:"preferredLanguage" validate:"omitempty,oneof=en es fr"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !checkPayload(w, payload) {
		return
	}

	user, err := h.service.Register(services.RegisterInput{
		FirstName:         payload.FirstName,
		LastName:          payload.LastName,
		Email:             payload.Email,
		Password:          payload.Password,
		ConfirmPassword:   payload.ConfirmPassword,
		PreferredLanguage: payload.PreferredLanguage,
	})
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		writeServiceError(w, err)
		return
	}

	token, err := auth.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{
		"message": "user registered",
		"user":    user,
		"token":   token,
	})
}

// Login handles user authentication and JWT generation.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !checkPayload(w, payload) {
		return
	}

	user, err := h.service.Authenticate(payload.Email, payload.Password)
	if err != nil {
		log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		writeServiceError(w, err)
		return
	}

	token, err := auth.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	writeSuccess(w, http.StatusOK, map[string]any{
		"user":  user,
		"token": token,
	})
}

// GetProfile retrieves the currently authenticated user from the token.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(auth.UserClaimsKey).(*auth.Claims)
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		writeError(w, http.StatusInternalServerError, "could not retrieve user from token")
		return
	}

	user, err := h.service.GetUserByID(claims.UserID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Msg("User from token not found")
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"user": user})
}

// UpdateProfile applies a partial update to the authenticated user's profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(auth.UserClaimsKey).(*auth.Claims)
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		writeError(w, http.StatusInternalServerError, "could not retrieve user from token")
		return
	}

	var payload ProfilePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !checkPayload(w, payload) {
		return
	}

	user, err := h.service.UpdateProfile(claims.UserID, models.UserPatch{
		FirstName:         payload.FirstName,
		LastName:          payload.LastName,
		PreferredLanguage: payload.PreferredLanguage,
	})
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Msg("Failed to update profile")
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"message": "profile updated",
		"user":    user,
	})
}

// List handles the account listing.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		writeServiceError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeSuccess(w, http.StatusOK, map[string]any{"users": users})
}
