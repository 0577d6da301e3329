package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"volugram/internal/service"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordResetRequest represents a password reset request
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents a password reset confirmation
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// activationSuccessPage is served when a confirmation link is opened in
// the browser
const activationSuccessPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <style>
    body {
      background-color: #141219;
      color: #939eab;
      font-family: sans-serif;
      font-weight: bold;
      display: flex;
      flex-direction: column;
      justify-content: center;
      align-items: center;
      height: 100vh;
      padding: 0 10px;
    }
    .message {
      text-align: center;
      font-weight: bold;
      font-size: 28px;
      margin-bottom: 20px;
    }
    .info-text {
      font-size: 16px;
    }
  </style>
  <title>Volugram Account Activation</title>
</head>
<body>
  <div class="message">Account activated successfully!</div>
  <div class="info-text">You can now close this tab.</div>
</body>
</html>
`

// Register handles user registration
// @Summary Register a new account
// @Description Parks the account and sends a single-use activation link by email
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration details"
// @Success 201 {object} map[string]string "Confirmation link has been sent"
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := h.authService.Register(req.Email, req.Password, req.Name); err != nil {
		slog.Warn("Registration failed", "email", req.Email, "ip", getIP(r), "error", err)
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "Confirmation link has been sent"})
}

// Activate handles account activation from the emailed link
// @Summary Activate an account
// @Description Redeems a single-use activation token; served as HTML because the link is opened in a browser
// @Tags Authentication
// @Produce html
// @Param token path string true "Activation token"
// @Success 200 {string} string "Activation page"
// @Failure 400 {string} string "Invalid confirmation link or link expired"
// @Router /auth/activate/{token} [get]
func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	if err := h.authService.Activate(token); err != nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid confirmation link or link expired"))
		case errors.Is(err, service.ErrEmailExists):
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Account under the same email already exists"))
		default:
			slog.Error("Activation failed", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Failed to activate account"))
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(activationSuccessPage))
}

// Login handles user login
// @Summary Log in
// @Description Verifies credentials and returns a JWT access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{} "Access token and profile"
// @Failure 401 {object} map[string]string "Invalid email or password"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	token, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		slog.Error("Login failed", "email", req.Email, "error", err)
		respondWithError(w, http.StatusInternalServerError, ErrMsgInternalError)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"user":         user,
	})
}

// Logout handles user logout
// @Summary Log out
// @Description Access tokens are stateless, so logout is a client-side discard
// @Tags Authentication
// @Produce json
// @Success 200 {object} map[string]string "Logout successful"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// RequestPasswordReset handles password reset requests
// @Summary Request a password reset
// @Description Sends a single-use reset link; issuing a new link revokes earlier ones for the same email
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body PasswordResetRequest true "Email"
// @Success 200 {object} map[string]string "Password reset link has been sent"
// @Router /auth/password-reset/request [post]
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := h.authService.RequestPasswordReset(req.Email); err != nil {
		slog.Error("Password reset request failed", "email", req.Email, "error", err)
		respondWithError(w, http.StatusInternalServerError, ErrMsgInternalError)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Password reset link has been sent"})
}

// ResetPassword handles the password reset confirmation
// @Summary Reset the password
// @Description Redeems a single-use reset token and sets a new password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Token and new password"
// @Success 200 {object} map[string]string "Password reset successful"
// @Failure 400 {object} map[string]string "Invalid or expired token"
// @Router /auth/password-reset/confirm [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := h.authService.ResetPassword(req.Token, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			respondWithError(w, http.StatusBadRequest, "Invalid or expired token")
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Password reset successful"})
}
