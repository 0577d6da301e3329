package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"volugram/internal/models"
)

var ErrSubmissionNotFound = errors.New("submission not found")

// SubmissionRepository handles submission database operations
type SubmissionRepository struct {
	db *sql.DB
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create creates a new pending submission
func (r *SubmissionRepository) Create(sub *models.Submission) error {
	query := `
		INSERT INTO submissions (form_id, email, full_name, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(
		query,
		sub.FormID,
		sub.Email,
		sub.FullName,
		sub.Payload,
		models.SubmissionStatusPending,
		now,
	).Scan(&sub.ID)

	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}

	sub.Status = models.SubmissionStatusPending
	sub.CreatedAt = now
	return nil
}

// GetForReviewer retrieves a submission only if it belongs to a form
// owned by the given reviewer
func (r *SubmissionRepository) GetForReviewer(id, reviewerID uint) (*models.Submission, error) {
	query := `
		SELECT s.id, s.form_id, s.email, s.full_name, s.payload, s.status,
		       s.confirmed_by, s.certificate_pdf, s.created_at, s.decided_at
		FROM submissions s
		JOIN forms f ON f.id = s.form_id
		WHERE s.id = $1 AND f.user_id = $2
	`

	sub := &models.Submission{}
	err := r.db.QueryRow(query, id, reviewerID).Scan(
		&sub.ID,
		&sub.FormID,
		&sub.Email,
		&sub.FullName,
		&sub.Payload,
		&sub.Status,
		&sub.ConfirmedBy,
		&sub.CertificatePDF,
		&sub.CreatedAt,
		&sub.DecidedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return sub, nil
}

// ListPendingByReviewer retrieves pending submissions across all forms
// owned by the reviewer
func (r *SubmissionRepository) ListPendingByReviewer(reviewerID uint) ([]models.PendingSubmission, error) {
	query := `
		SELECT s.id, s.email, s.full_name, f.token, s.created_at
		FROM submissions s
		JOIN forms f ON f.id = s.form_id
		WHERE f.user_id = $1 AND s.status = $2
		ORDER BY s.created_at ASC
	`

	rows, err := r.db.Query(query, reviewerID, models.SubmissionStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending submissions: %w", err)
	}
	defer rows.Close()

	var pending []models.PendingSubmission
	for rows.Next() {
		var p models.PendingSubmission
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.FormToken, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending submission: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list pending submissions: %w", err)
	}

	return pending, nil
}

// ConfirmPending marks a submission confirmed and stores its certificate.
// The status predicate makes the transition atomic: a submission that was
// already decided leaves zero rows affected and the caller sees false.
func (r *SubmissionRepository) ConfirmPending(id uint, confirmedBy string, pdf []byte) (bool, error) {
	query := `
		UPDATE submissions
		SET status = $1, confirmed_by = $2, certificate_pdf = $3, decided_at = $4
		WHERE id = $5 AND status = $6
	`

	result, err := r.db.Exec(
		query,
		models.SubmissionStatusConfirmed,
		confirmedBy,
		pdf,
		time.Now(),
		id,
		models.SubmissionStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("failed to confirm submission: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to confirm submission: %w", err)
	}
	return affected > 0, nil
}

// DeletePending removes a submission only while it is still pending.
// Returns false when the submission was already decided or does not exist.
func (r *SubmissionRepository) DeletePending(id uint) (bool, error) {
	query := `DELETE FROM submissions WHERE id = $1 AND status = $2`

	result, err := r.db.Exec(query, id, models.SubmissionStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to delete submission: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete submission: %w", err)
	}
	return affected > 0, nil
}

// ListCertificatesByEmail retrieves all confirmed certificates issued to
// the given volunteer email
func (r *SubmissionRepository) ListCertificatesByEmail(email string) ([]models.Certificate, error) {
	query := `
		SELECT id, certificate_pdf
		FROM submissions
		WHERE email = $1 AND status = $2 AND certificate_pdf IS NOT NULL
		ORDER BY decided_at ASC
	`

	rows, err := r.db.Query(query, email, models.SubmissionStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	defer rows.Close()

	var certs []models.Certificate
	for rows.Next() {
		var c models.Certificate
		if err := rows.Scan(&c.SubmissionID, &c.PDF); err != nil {
			return nil, fmt.Errorf("failed to scan certificate: %w", err)
		}
		certs = append(certs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}

	return certs, nil
}
