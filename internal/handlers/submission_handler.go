package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"volugram/internal/certificate"
	"volugram/internal/middleware"
	"volugram/internal/score"
	"volugram/internal/service"
)

// SubmissionHandler handles submission requests
type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissionService *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// SubmitRequest represents an anonymous volunteer submission
type SubmitRequest struct {
	FormToken    string          `json:"form_token"`
	CaptchaToken string          `json:"captcha_token"`
	Email        string          `json:"email"`
	FullName     string          `json:"full_name"`
	Payload      json.RawMessage `json:"payload"`
}

// DecisionRequest represents a confirm or reject decision. Language
// selects the certificate and notification language; empty means the
// form's language.
type DecisionRequest struct {
	Language       string           `json:"language,omitempty"`
	Comment        string           `json:"comment"`
	ReviewerReview []score.Category `json:"reviewer_review,omitempty"`
}

// CertificateBundleRequest represents a certificate bundle request
type CertificateBundleRequest struct {
	Email        string `json:"email"`
	CaptchaToken string `json:"captcha_token"`
}

// Submit handles an anonymous volunteer submission
// @Summary Submit volunteer hours
// @Description Records a pending submission against a form; captcha protected
// @Tags Submissions
// @Accept json
// @Produce json
// @Param request body SubmitRequest true "Submission"
// @Success 201 {object} models.Submission
// @Failure 400 {object} map[string]string "Invalid request or captcha"
// @Failure 404 {object} map[string]string "Form not found"
// @Router /submissions [post]
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	sub, err := h.submissionService.Submit(r.Context(), req.FormToken, req.CaptchaToken, req.Email, req.FullName, req.Payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCaptcha):
			respondWithError(w, http.StatusBadRequest, "Captcha verification failed")
		case errors.Is(err, service.ErrFormNotFound):
			respondWithError(w, http.StatusNotFound, ErrMsgFormNotFound)
		default:
			slog.Error("Submission failed", "form_token", req.FormToken, "ip", getIP(r), "error", err)
			respondWithError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, sub)
}

// ListPending handles listing pending submissions for the reviewer
// @Summary List pending submissions
// @Description Pending submissions across all forms the caller owns
// @Tags Submissions
// @Produce json
// @Success 200 {array} models.PendingSubmission
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /submissions [get]
func (h *SubmissionHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	pending, err := h.submissionService.ListPending(userID)
	if err != nil {
		slog.Error("Pending listing failed", "user_id", userID, "error", err)
		respondWithError(w, http.StatusInternalServerError, ErrMsgInternalError)
		return
	}

	respondWithJSON(w, http.StatusOK, pending)
}

// Get handles retrieving a single submission
// @Summary Get a submission
// @Description Retrieves a submission tied to one of the caller's forms
// @Tags Submissions
// @Produce json
// @Param id path int true "Submission ID"
// @Success 200 {object} models.Submission
// @Failure 404 {object} map[string]string "Submission not found"
// @Security BearerAuth
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	id, err := parseSubmissionID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidSubmissionID)
		return
	}

	sub, err := h.submissionService.Get(id, userID)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgSubmissionNotFound)
			return
		}
		slog.Error("Submission lookup failed", "submission_id", id, "error", err)
		respondWithError(w, http.StatusInternalServerError, ErrMsgInternalError)
		return
	}

	respondWithJSON(w, http.StatusOK, sub)
}

// Confirm handles confirming a pending submission
// @Summary Confirm a submission
// @Description Renders the certificate, flips the submission to confirmed and mails the volunteer
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path int true "Submission ID"
// @Param request body DecisionRequest true "Reviewer review and comment"
// @Success 200 {object} map[string]string "Submission confirmed"
// @Failure 404 {object} map[string]string "Submission not found"
// @Failure 409 {object} map[string]string "Already decided"
// @Security BearerAuth
// @Router /submissions/{id}/confirm [post]
func (h *SubmissionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	id, err := parseSubmissionID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidSubmissionID)
		return
	}

	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := h.submissionService.Confirm(id, userID, req.Language, req.Comment, req.ReviewerReview); err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			respondWithError(w, http.StatusNotFound, ErrMsgSubmissionNotFound)
		case errors.Is(err, service.ErrAlreadyDecided):
			respondWithError(w, http.StatusConflict, ErrMsgAlreadyDecided)
		case errors.Is(err, certificate.ErrRender), errors.Is(err, score.ErrUnsupportedLanguage), errors.Is(err, score.ErrNoRatings):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("Confirmation failed", "submission_id", id, "error", err)
			respondWithError(w, http.StatusInternalServerError, ErrMsgInternalError)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Submission confirmed"})
}

// Reject handles rejecting a pending submission
// @Summary Reject a submission
// @Description Deletes the pending submission and mails the volunteer
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path int true "Submission ID"
// @Param request body DecisionRequest true "Comment"
// @Success 200 {object} map[string]string "Submission rejected"
// @Failure 404 {object} map[string]string "Submission not found"
// @Failure 409 {object} map[string]string "Already decided"
// @Security BearerAuth
// @Router /submissions/{id}/reject [post]
func (h *SubmissionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	id, err := parseSubmissionID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidSubmissionID)
		return
	}

	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := h.submissionService.Reject(id, userID, req.Language, req.Comment); err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			respondWithError(w, http.StatusNotFound, ErrMsgSubmissionNotFound)
		case errors.Is(err, service.ErrAlreadyDecided):
			respondWithError(w, http.StatusConflict, ErrMsgAlreadyDecided)
		case errors.Is(err, score.ErrUnsupportedLanguage):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("Rejection failed", "submission_id", id, "error", err)
			respondWithError(w, http.StatusInternalServerError, ErrMsgInternalError)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Submission rejected"})
}

// RequestCertificates handles the certificate bundle mailer
// @Summary Request all certificates
// @Description Mails a zip archive of every certificate issued to the email address
// @Tags Submissions
// @Accept json
// @Produce json
// @Param request body CertificateBundleRequest true "Email and captcha token"
// @Success 200 {object} map[string]string "Certificates have been sent"
// @Failure 404 {object} map[string]string "No certificates found"
// @Router /certificates/bundle [post]
func (h *SubmissionHandler) RequestCertificates(w http.ResponseWriter, r *http.Request) {
	var req CertificateBundleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := h.submissionService.RequestCertificates(r.Context(), req.Email, req.CaptchaToken); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCaptcha):
			respondWithError(w, http.StatusBadRequest, "Captcha verification failed")
		case errors.Is(err, service.ErrNoCertificates):
			respondWithError(w, http.StatusNotFound, "No certificates found")
		default:
			slog.Error("Certificate bundle failed", "email", req.Email, "error", err)
			respondWithError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Certificates have been sent"})
}

func parseSubmissionID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
