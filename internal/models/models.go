package models

import (
	"encoding/json"
	"time"
)

// Submission status values
const (
	SubmissionStatusPending   = "pending"
	SubmissionStatusConfirmed = "confirmed"
)

// User represents a team leader account
type User struct {
	ID           uint      `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Image        *string   `json:"image,omitempty" db:"image"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Form represents a shareable volunteer submission form owned by a user
type Form struct {
	ID              uint            `json:"id" db:"id"`
	UserID          uint            `json:"user_id" db:"user_id"`
	Token           string          `json:"token" db:"token"`
	Definition      json.RawMessage `json:"definition" db:"definition"`
	CertificateLogo *string         `json:"certificate_logo,omitempty" db:"certificate_logo"`
	Language        string          `json:"language" db:"language"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// Submission represents a volunteer hour submission tied to a form.
// Rejected submissions are deleted, so the only persisted states are
// pending and confirmed.
type Submission struct {
	ID             uint       `json:"id" db:"id"`
	FormID         uint       `json:"form_id" db:"form_id"`
	Email          string     `json:"email" db:"email"`
	FullName       string     `json:"full_name" db:"full_name"`
	Payload        []byte     `json:"-" db:"payload"`
	Status         string     `json:"status" db:"status"`
	ConfirmedBy    *string    `json:"confirmed_by,omitempty" db:"confirmed_by"`
	CertificatePDF []byte     `json:"-" db:"certificate_pdf"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	DecidedAt      *time.Time `json:"decided_at,omitempty" db:"decided_at"`
}

// PendingSubmission is the listing projection shown to a reviewer
type PendingSubmission struct {
	ID        uint      `json:"id" db:"id"`
	Email     string    `json:"submission_email" db:"email"`
	FullName  string    `json:"full_name" db:"full_name"`
	FormToken string    `json:"form_token" db:"form_token"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Certificate is a stored certificate PDF for the bundle mailer
type Certificate struct {
	SubmissionID uint   `json:"submission_id" db:"id"`
	PDF          []byte `json:"-" db:"certificate_pdf"`
}
