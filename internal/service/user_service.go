package service

import (
	"errors"
	"strings"

	"volugram/internal/models"
	"volugram/internal/repository"
	"volugram/pkg/validator"
)

// UserService handles profile operations
type UserService struct {
	users UserStore
}

// NewUserService creates a new user service
func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// GetProfile retrieves the user's profile
func (s *UserService) GetProfile(userID uint) (*models.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateName updates the user's display name
func (s *UserService) UpdateName(userID uint, name string) error {
	name = validator.SanitizeString(name)
	if err := validator.ValidateRequired("name", name); err != nil {
		return err
	}

	if err := s.users.UpdateName(userID, name); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// UpdateImage stores the user's avatar, expected as a base64 data URL
func (s *UserService) UpdateImage(userID uint, image string) error {
	if image != "" && !strings.HasPrefix(image, "data:image/") {
		return errors.New("image must be a data URL")
	}

	if err := s.users.UpdateImage(userID, image); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
