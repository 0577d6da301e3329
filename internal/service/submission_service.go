package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"volugram/internal/captcha"
	"volugram/internal/models"
	"volugram/internal/repository"
	"volugram/internal/score"
	"volugram/pkg/validator"
)

// SubmissionStore is the persistence surface the submission service needs
type SubmissionStore interface {
	Create(sub *models.Submission) error
	GetForReviewer(id, reviewerID uint) (*models.Submission, error)
	ListPendingByReviewer(reviewerID uint) ([]models.PendingSubmission, error)
	ConfirmPending(id uint, confirmedBy string, pdf []byte) (bool, error)
	DeletePending(id uint) (bool, error)
	ListCertificatesByEmail(email string) ([]models.Certificate, error)
}

// CertificateRenderer produces a certificate PDF for a confirmed
// submission
type CertificateRenderer interface {
	Render(fullName string, payload []byte, lang string, reviewerReview []score.Category) ([]byte, error)
}

// DecisionMailer sends submission decision and certificate emails
type DecisionMailer interface {
	SendSubmissionAcceptedEmail(to, language, who, comment string, certificate []byte) error
	SendSubmissionRejectedEmail(to, language, who, comment string) error
	SendCertificateBundleEmail(to string, archive []byte) error
}

// SubmissionService handles the volunteer submission workflow
type SubmissionService struct {
	submissions SubmissionStore
	forms       FormStore
	users       UserStore
	captcha     captcha.Verifier
	renderer    CertificateRenderer
	mailer      DecisionMailer
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	submissions SubmissionStore,
	forms FormStore,
	users UserStore,
	verifier captcha.Verifier,
	renderer CertificateRenderer,
	mailer DecisionMailer,
) *SubmissionService {
	return &SubmissionService{
		submissions: submissions,
		forms:       forms,
		users:       users,
		captcha:     verifier,
		renderer:    renderer,
		mailer:      mailer,
	}
}

// Submit records an anonymous volunteer submission against a form. The
// captcha gate runs before anything touches the database.
func (s *SubmissionService) Submit(ctx context.Context, formToken, captchaToken, email, fullName string, payload []byte) (*models.Submission, error) {
	ok, err := s.captcha.Verify(ctx, captchaToken)
	if err != nil {
		return nil, fmt.Errorf("captcha verification failed: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCaptcha
	}

	email = validator.SanitizeEmail(email)
	if err := validator.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validator.ValidateRequired("full_name", fullName); err != nil {
		return nil, err
	}

	form, err := s.forms.GetByToken(formToken)
	if err != nil {
		if errors.Is(err, repository.ErrFormNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}

	sub := &models.Submission{
		FormID:   form.ID,
		Email:    email,
		FullName: validator.SanitizeString(fullName),
		Payload:  payload,
	}
	if err := s.submissions.Create(sub); err != nil {
		return nil, err
	}

	slog.Info("Submission created", "submission_id", sub.ID, "form_token", formToken)
	return sub, nil
}

// ListPending retrieves pending submissions across the reviewer's forms
func (s *SubmissionService) ListPending(reviewerID uint) ([]models.PendingSubmission, error) {
	return s.submissions.ListPendingByReviewer(reviewerID)
}

// Get retrieves a submission the reviewer owns
func (s *SubmissionService) Get(id, reviewerID uint) (*models.Submission, error) {
	sub, err := s.submissions.GetForReviewer(id, reviewerID)
	if err != nil {
		if errors.Is(err, repository.ErrSubmissionNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// decisionLanguage resolves the language a decision is communicated in.
// The reviewer may pick one per decision; an empty choice falls back to
// the form's language. An unsupported choice is rejected outright so the
// certificate and the notification cannot silently diverge.
func (s *SubmissionService) decisionLanguage(language string, form *models.Form) (string, error) {
	if language == "" {
		return form.Language, nil
	}
	if !validator.IsSupportedLanguage(language) {
		return "", score.ErrUnsupportedLanguage
	}
	return language, nil
}

// Confirm renders the certificate and marks the submission confirmed.
// The PDF is rendered before the status flips, so a render failure
// leaves the submission pending and retryable. The status transition
// itself is guarded in the store: a concurrent decision makes exactly
// one caller win and the rest see ErrAlreadyDecided.
func (s *SubmissionService) Confirm(id, reviewerID uint, language, comment string, reviewerReview []score.Category) error {
	sub, err := s.submissions.GetForReviewer(id, reviewerID)
	if err != nil {
		if errors.Is(err, repository.ErrSubmissionNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}
	if sub.Status != models.SubmissionStatusPending {
		return ErrAlreadyDecided
	}

	form, err := s.forms.GetByID(sub.FormID)
	if err != nil {
		return err
	}

	lang, err := s.decisionLanguage(language, form)
	if err != nil {
		return err
	}

	reviewer, err := s.users.GetByID(reviewerID)
	if err != nil {
		return err
	}

	pdf, err := s.renderer.Render(sub.FullName, sub.Payload, lang, reviewerReview)
	if err != nil {
		return err
	}

	confirmed, err := s.submissions.ConfirmPending(id, reviewer.Name, pdf)
	if err != nil {
		return err
	}
	if !confirmed {
		return ErrAlreadyDecided
	}

	if err := s.mailer.SendSubmissionAcceptedEmail(sub.Email, lang, reviewer.Name, comment, pdf); err != nil {
		slog.Error("Failed to send acceptance email",
			"submission_id", id,
			"email", sub.Email,
			"error", err,
		)
	}

	slog.Info("Submission confirmed", "submission_id", id, "reviewer_id", reviewerID)
	return nil
}

// Reject deletes a pending submission and notifies the volunteer. Like
// Confirm, the delete is status-guarded so a decided submission cannot
// be rejected afterwards.
func (s *SubmissionService) Reject(id, reviewerID uint, language, comment string) error {
	sub, err := s.submissions.GetForReviewer(id, reviewerID)
	if err != nil {
		if errors.Is(err, repository.ErrSubmissionNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}
	if sub.Status != models.SubmissionStatusPending {
		return ErrAlreadyDecided
	}

	form, err := s.forms.GetByID(sub.FormID)
	if err != nil {
		return err
	}

	lang, err := s.decisionLanguage(language, form)
	if err != nil {
		return err
	}

	reviewer, err := s.users.GetByID(reviewerID)
	if err != nil {
		return err
	}

	deleted, err := s.submissions.DeletePending(id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrAlreadyDecided
	}

	if err := s.mailer.SendSubmissionRejectedEmail(sub.Email, lang, reviewer.Name, comment); err != nil {
		slog.Error("Failed to send rejection email",
			"submission_id", id,
			"email", sub.Email,
			"error", err,
		)
	}

	slog.Info("Submission rejected", "submission_id", id, "reviewer_id", reviewerID)
	return nil
}

// RequestCertificates mails the volunteer a zip archive of every
// certificate issued to their email address
func (s *SubmissionService) RequestCertificates(ctx context.Context, email, captchaToken string) error {
	ok, err := s.captcha.Verify(ctx, captchaToken)
	if err != nil {
		return fmt.Errorf("captcha verification failed: %w", err)
	}
	if !ok {
		return ErrInvalidCaptcha
	}

	email = validator.SanitizeEmail(email)
	if err := validator.ValidateEmail(email); err != nil {
		return err
	}

	certs, err := s.submissions.ListCertificatesByEmail(email)
	if err != nil {
		return err
	}
	if len(certs) == 0 {
		return ErrNoCertificates
	}

	archive, err := bundleCertificates(certs)
	if err != nil {
		return err
	}

	if err := s.mailer.SendCertificateBundleEmail(email, archive); err != nil {
		return fmt.Errorf("failed to send certificate bundle: %w", err)
	}

	slog.Info("Certificate bundle sent", "email", email, "count", len(certs))
	return nil
}

// bundleCertificates packs the certificates into a zip archive, one
// certificate_<id>.pdf per entry
func bundleCertificates(certs []models.Certificate) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for _, cert := range certs {
		f, err := w.Create(fmt.Sprintf("certificate_%d.pdf", cert.SubmissionID))
		if err != nil {
			return nil, fmt.Errorf("failed to create archive entry: %w", err)
		}
		if _, err := f.Write(cert.PDF); err != nil {
			return nil, fmt.Errorf("failed to write archive entry: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
