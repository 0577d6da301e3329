package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"volugram/internal/middleware"
	"volugram/internal/service"
)

// FormHandler handles form requests
type FormHandler struct {
	formService *service.FormService
}

// NewFormHandler creates a new form handler
func NewFormHandler(formService *service.FormService) *FormHandler {
	return &FormHandler{formService: formService}
}

// CreateFormRequest represents a form creation request
type CreateFormRequest struct {
	Definition      json.RawMessage `json:"definition"`
	CertificateLogo *string         `json:"certificate_logo,omitempty"`
	Language        string          `json:"language"`
}

// Create handles form creation
// @Summary Create a form
// @Description Creates a shareable submission form with a fresh share token
// @Tags Forms
// @Accept json
// @Produce json
// @Param request body CreateFormRequest true "Form definition"
// @Success 201 {object} models.Form
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /forms [post]
func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	var req CreateFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	form, err := h.formService.Create(userID, req.Definition, req.CertificateLogo, req.Language)
	if err != nil {
		slog.Error("Form creation failed", "user_id", userID, "error", err)
		respondWithError(w, http.StatusInternalServerError, ErrMsgInternalError)
		return
	}

	respondWithJSON(w, http.StatusCreated, form)
}

// Get handles the public form lookup by share token
// @Summary Get a form
// @Description Retrieves a form by its share token; volunteers load forms this way
// @Tags Forms
// @Produce json
// @Param token path string true "Form share token"
// @Success 200 {object} models.Form
// @Failure 404 {object} map[string]string "Form not found"
// @Router /forms/{token} [get]
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	form, err := h.formService.Get(token)
	if err != nil {
		if errors.Is(err, service.ErrFormNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgFormNotFound)
			return
		}
		slog.Error("Form lookup failed", "token", token, "error", err)
		respondWithError(w, http.StatusInternalServerError, ErrMsgInternalError)
		return
	}

	respondWithJSON(w, http.StatusOK, form)
}

// List handles listing the user's own forms
// @Summary List own forms
// @Tags Forms
// @Produce json
// @Success 200 {array} models.Form
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /forms [get]
func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	forms, err := h.formService.List(userID)
	if err != nil {
		slog.Error("Form listing failed", "user_id", userID, "error", err)
		respondWithError(w, http.StatusInternalServerError, ErrMsgInternalError)
		return
	}

	respondWithJSON(w, http.StatusOK, forms)
}

// Delete handles deleting an owned form
// @Summary Delete a form
// @Description Deletes a form the caller owns; other users' forms look like missing ones
// @Tags Forms
// @Produce json
// @Param token path string true "Form share token"
// @Success 200 {object} map[string]string "Form deleted"
// @Failure 404 {object} map[string]string "Form not found"
// @Security BearerAuth
// @Router /forms/{token} [delete]
func (h *FormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	token := r.PathValue("token")

	if err := h.formService.Delete(token, userID); err != nil {
		if errors.Is(err, service.ErrFormNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgFormNotFound)
			return
		}
		slog.Error("Form deletion failed", "token", token, "user_id", userID, "error", err)
		respondWithError(w, http.StatusInternalServerError, ErrMsgInternalError)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Form deleted"})
}
