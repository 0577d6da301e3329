package testutil

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"volugram/internal/models"
)

// Fixtures holds test data
type Fixtures struct {
	DB       *sql.DB
	Reviewer *models.User
	Form     *models.Form
}

// SetupFixtures creates a reviewer with one form
func SetupFixtures(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()

	reviewer := CreateTestUser(t, db, "reviewer@test.com", "Test Reviewer")
	form := CreateTestForm(t, db, reviewer.ID, "en")

	return &Fixtures{
		DB:       db,
		Reviewer: reviewer,
		Form:     form,
	}
}

// CreateTestUser inserts a user with the password "password123"
func CreateTestUser(t *testing.T, db *sql.DB, email, name string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{Email: email, Name: name, PasswordHash: string(hash)}
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, user.Email, user.PasswordHash, user.Name).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	return user
}

// CreateTestForm inserts a form with a fresh share token
func CreateTestForm(t *testing.T, db *sql.DB, userID uint, language string) *models.Form {
	t.Helper()

	form := &models.Form{
		UserID:     userID,
		Token:      uuid.NewString(),
		Definition: []byte(`{}`),
		Language:   language,
	}
	err := db.QueryRow(`
		INSERT INTO forms (user_id, token, definition, language, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`, form.UserID, form.Token, []byte(form.Definition), form.Language).Scan(&form.ID, &form.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create form: %v", err)
	}

	return form
}

// CreateTestSubmission inserts a pending submission
func CreateTestSubmission(t *testing.T, db *sql.DB, formID uint, email, fullName string, payload []byte) *models.Submission {
	t.Helper()

	sub := &models.Submission{
		FormID:   formID,
		Email:    email,
		FullName: fullName,
		Payload:  payload,
		Status:   models.SubmissionStatusPending,
	}
	err := db.QueryRow(`
		INSERT INTO submissions (form_id, email, full_name, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`, sub.FormID, sub.Email, sub.FullName, sub.Payload, sub.Status).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create submission: %v", err)
	}

	return sub
}
