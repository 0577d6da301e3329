package service

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"volugram/internal/models"
	"volugram/internal/repository"
	"volugram/pkg/validator"
)

// FormStore is the persistence surface the form and submission services
// need
type FormStore interface {
	Create(form *models.Form) error
	GetByID(id uint) (*models.Form, error)
	GetByToken(token string) (*models.Form, error)
	ListByUser(userID uint) ([]models.Form, error)
	DeleteOwned(token string, userID uint) (bool, error)
}

// FormService handles shareable submission forms
type FormService struct {
	forms FormStore
}

// NewFormService creates a new form service
func NewFormService(forms FormStore) *FormService {
	return &FormService{forms: forms}
}

// Create creates a form with a fresh share token. Unknown certificate
// languages fall back to English rather than failing the save.
func (s *FormService) Create(userID uint, definition json.RawMessage, certificateLogo *string, language string) (*models.Form, error) {
	if len(definition) == 0 {
		definition = json.RawMessage(`{}`)
	}

	form := &models.Form{
		UserID:          userID,
		Token:           uuid.NewString(),
		Definition:      definition,
		CertificateLogo: certificateLogo,
		Language:        validator.NormalizeLanguage(language),
	}

	if err := s.forms.Create(form); err != nil {
		return nil, err
	}
	return form, nil
}

// Get retrieves a form by its share token. This is the public lookup a
// volunteer uses to load the form, so no ownership check applies.
func (s *FormService) Get(token string) (*models.Form, error) {
	form, err := s.forms.GetByToken(token)
	if err != nil {
		if errors.Is(err, repository.ErrFormNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}
	return form, nil
}

// List retrieves all forms owned by the user
func (s *FormService) List(userID uint) ([]models.Form, error) {
	return s.forms.ListByUser(userID)
}

// Delete removes a form the user owns. Deleting someone else's form is
// indistinguishable from deleting a missing one.
func (s *FormService) Delete(token string, userID uint) error {
	deleted, err := s.forms.DeleteOwned(token, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrFormNotFound
	}
	return nil
}
