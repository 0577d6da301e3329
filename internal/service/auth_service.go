package service

import (
	"errors"
	"fmt"
	"log/slog"

	"volugram/internal/auth"
	"volugram/internal/models"
	"volugram/internal/repository"
	"volugram/internal/tokenstore"
	"volugram/pkg/validator"
)

// PendingAccount is the payload parked in the activation registry until
// the volunteer coordinator confirms their email
type PendingAccount struct {
	Email        string
	PasswordHash string
	Name         string
}

// UserStore is the persistence surface the auth service needs
type UserStore interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	EmailExists(email string) (bool, error)
	UpdatePassword(email, passwordHash string) error
	UpdateName(userID uint, name string) error
	UpdateImage(userID uint, image string) error
}

// AccountMailer sends account lifecycle emails
type AccountMailer interface {
	SendActivationEmail(to, token string) error
	SendPasswordResetEmail(to, token string) error
}

// AuthService handles registration, activation, login and password resets
type AuthService struct {
	users       UserStore
	auth        *auth.Service
	mailer      AccountMailer
	activations *tokenstore.Registry[PendingAccount]
	resets      *tokenstore.Registry[string]
}

// NewAuthService creates a new auth service
func NewAuthService(
	users UserStore,
	authSvc *auth.Service,
	mailer AccountMailer,
	activations *tokenstore.Registry[PendingAccount],
	resets *tokenstore.Registry[string],
) *AuthService {
	return &AuthService{
		users:       users,
		auth:        authSvc,
		mailer:      mailer,
		activations: activations,
		resets:      resets,
	}
}

// Register validates the registration, parks the account in the
// activation registry and emails the single-use activation token. No
// user row exists until the token is redeemed.
func (s *AuthService) Register(email, password, name string) error {
	email = validator.SanitizeEmail(email)
	if err := validator.ValidateEmail(email); err != nil {
		return err
	}
	if err := validator.ValidatePassword(password); err != nil {
		return err
	}
	if err := validator.ValidateRequired("name", name); err != nil {
		return err
	}

	exists, err := s.users.EmailExists(email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return ErrEmailExists
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return err
	}

	// Re-registering invalidates any earlier activation token for the
	// same address
	s.activations.RevokeWhere(func(p PendingAccount) bool {
		return p.Email == email
	})

	token := s.activations.Issue(PendingAccount{
		Email:        email,
		PasswordHash: hash,
		Name:         validator.SanitizeString(name),
	})

	if err := s.mailer.SendActivationEmail(email, token); err != nil {
		s.activations.RevokeWhere(func(p PendingAccount) bool {
			return p.Email == email
		})
		return fmt.Errorf("failed to send activation email: %w", err)
	}

	slog.Info("Activation email sent", "email", email)
	return nil
}

// Activate redeems an activation token and creates the user account
func (s *AuthService) Activate(token string) error {
	pending, ok := s.activations.Redeem(token)
	if !ok {
		return ErrInvalidToken
	}

	exists, err := s.users.EmailExists(pending.Email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return ErrEmailExists
	}

	user := &models.User{
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Name:         pending.Name,
	}
	if err := s.users.Create(user); err != nil {
		return err
	}

	slog.Info("Account activated", "email", pending.Email, "user_id", user.ID)
	return nil
}

// Login verifies credentials and returns a signed access token
func (s *AuthService) Login(email, password string) (string, *models.User, error) {
	email = validator.SanitizeEmail(email)

	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := s.auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// RequestPasswordReset issues a single-use reset token and emails it.
// Issuing a new token revokes every earlier reset token for the same
// address. Unknown addresses are not revealed to the caller.
func (s *AuthService) RequestPasswordReset(email string) error {
	email = validator.SanitizeEmail(email)

	exists, err := s.users.EmailExists(email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if !exists {
		slog.Info("Password reset requested for unknown email", "email", email)
		return nil
	}

	s.resets.RevokeWhere(func(e string) bool { return e == email })

	token := s.resets.Issue(email)
	if err := s.mailer.SendPasswordResetEmail(email, token); err != nil {
		s.resets.RevokeWhere(func(e string) bool { return e == email })
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	slog.Info("Password reset email sent", "email", email)
	return nil
}

// ResetPassword redeems a reset token and updates the password. All
// remaining reset tokens for the same address are revoked so a stolen
// older token cannot be replayed.
func (s *AuthService) ResetPassword(token, newPassword string) error {
	if err := validator.ValidatePassword(newPassword); err != nil {
		return err
	}

	email, ok := s.resets.Redeem(token)
	if !ok {
		return ErrInvalidToken
	}

	s.resets.RevokeWhere(func(e string) bool { return e == email })

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(email, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	slog.Info("Password reset completed", "email", email)
	return nil
}
