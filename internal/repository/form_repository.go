package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"volugram/internal/models"
)

var ErrFormNotFound = errors.New("form not found")

// FormRepository handles form database operations
type FormRepository struct {
	db *sql.DB
}

// NewFormRepository creates a new form repository
func NewFormRepository(db *sql.DB) *FormRepository {
	return &FormRepository{db: db}
}

// Create creates a new form
func (r *FormRepository) Create(form *models.Form) error {
	query := `
		INSERT INTO forms (user_id, token, definition, certificate_logo, language, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(
		query,
		form.UserID,
		form.Token,
		[]byte(form.Definition),
		form.CertificateLogo,
		form.Language,
		now,
	).Scan(&form.ID)

	if err != nil {
		return fmt.Errorf("failed to create form: %w", err)
	}

	form.CreatedAt = now
	return nil
}

// GetByToken retrieves a form by its share token
func (r *FormRepository) GetByToken(token string) (*models.Form, error) {
	query := `
		SELECT id, user_id, token, definition, certificate_logo, language, created_at
		FROM forms
		WHERE token = $1
	`

	form := &models.Form{}
	var definition []byte
	err := r.db.QueryRow(query, token).Scan(
		&form.ID,
		&form.UserID,
		&form.Token,
		&definition,
		&form.CertificateLogo,
		&form.Language,
		&form.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrFormNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get form: %w", err)
	}

	form.Definition = definition
	return form, nil
}

// GetByID retrieves a form by its primary key
func (r *FormRepository) GetByID(id uint) (*models.Form, error) {
	query := `
		SELECT id, user_id, token, definition, certificate_logo, language, created_at
		FROM forms
		WHERE id = $1
	`

	form := &models.Form{}
	var definition []byte
	err := r.db.QueryRow(query, id).Scan(
		&form.ID,
		&form.UserID,
		&form.Token,
		&definition,
		&form.CertificateLogo,
		&form.Language,
		&form.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrFormNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get form: %w", err)
	}

	form.Definition = definition
	return form, nil
}

// ListByUser retrieves all forms owned by a user
func (r *FormRepository) ListByUser(userID uint) ([]models.Form, error) {
	query := `
		SELECT id, user_id, token, definition, certificate_logo, language, created_at
		FROM forms
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	defer rows.Close()

	var forms []models.Form
	for rows.Next() {
		var form models.Form
		var definition []byte
		if err := rows.Scan(
			&form.ID,
			&form.UserID,
			&form.Token,
			&definition,
			&form.CertificateLogo,
			&form.Language,
			&form.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan form: %w", err)
		}
		form.Definition = definition
		forms = append(forms, form)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}

	return forms, nil
}

// DeleteOwned deletes a form by token if it belongs to the user.
// Returns false when no matching owned form exists.
func (r *FormRepository) DeleteOwned(token string, userID uint) (bool, error) {
	query := `DELETE FROM forms WHERE token = $1 AND user_id = $2`

	result, err := r.db.Exec(query, token, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete form: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete form: %w", err)
	}
	return affected > 0, nil
}
