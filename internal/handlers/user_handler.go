package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"volugram/internal/middleware"
	"volugram/internal/service"
)

// UserHandler handles profile requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateNameRequest represents a display name change
type UpdateNameRequest struct {
	Name string `json:"name"`
}

// UpdateAvatarRequest represents an avatar change, image as data URL
type UpdateAvatarRequest struct {
	Image string `json:"image"`
}

// GetProfile handles retrieving the current user's profile
// @Summary Get profile
// @Tags Users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	user, err := h.userService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("Profile lookup failed", "user_id", userID, "error", err)
		respondWithError(w, http.StatusInternalServerError, ErrMsgInternalError)
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

// UpdateName handles changing the display name
// @Summary Update display name
// @Tags Users
// @Accept json
// @Produce json
// @Param request body UpdateNameRequest true "New name"
// @Success 200 {object} map[string]string "Name updated"
// @Failure 400 {object} map[string]string "Invalid request"
// @Security BearerAuth
// @Router /users/profile/name [put]
func (h *UserHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req UpdateNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := h.userService.UpdateName(userID, req.Name); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Name updated"})
}

// UpdateAvatar handles changing the avatar image
// @Summary Update avatar
// @Description Stores the avatar as a base64 data URL
// @Tags Users
// @Accept json
// @Produce json
// @Param request body UpdateAvatarRequest true "Image data URL"
// @Success 200 {object} map[string]string "Avatar updated"
// @Failure 400 {object} map[string]string "Invalid request"
// @Security BearerAuth
// @Router /users/profile/avatar [put]
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req UpdateAvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := h.userService.UpdateImage(userID, req.Image); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Avatar updated"})
}
