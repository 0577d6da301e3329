package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"volugram/internal/models"
	"volugram/internal/repository"
	"volugram/internal/score"
)

type fakeSubmissionStore struct {
	mu          sync.Mutex
	submissions map[uint]*models.Submission
	certs       []models.Certificate
}

func (f *fakeSubmissionStore) Create(sub *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub.ID = uint(len(f.submissions) + 1)
	sub.Status = models.SubmissionStatusPending
	f.submissions[sub.ID] = sub
	return nil
}

func (f *fakeSubmissionStore) GetForReviewer(id, reviewerID uint) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.submissions[id]
	if !ok {
		return nil, repository.ErrSubmissionNotFound
	}
	copied := *sub
	return &copied, nil
}

func (f *fakeSubmissionStore) ListPendingByReviewer(reviewerID uint) ([]models.PendingSubmission, error) {
	return nil, nil
}

func (f *fakeSubmissionStore) ConfirmPending(id uint, confirmedBy string, pdf []byte) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.submissions[id]
	if !ok || sub.Status != models.SubmissionStatusPending {
		return false, nil
	}
	sub.Status = models.SubmissionStatusConfirmed
	sub.ConfirmedBy = &confirmedBy
	sub.CertificatePDF = pdf
	return true, nil
}

func (f *fakeSubmissionStore) DeletePending(id uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.submissions[id]
	if !ok || sub.Status != models.SubmissionStatusPending {
		return false, nil
	}
	delete(f.submissions, id)
	return true, nil
}

func (f *fakeSubmissionStore) ListCertificatesByEmail(email string) ([]models.Certificate, error) {
	return f.certs, nil
}

type fakeFormStore struct {
	form *models.Form
}

func (f *fakeFormStore) Create(form *models.Form) error { return nil }

func (f *fakeFormStore) GetByID(id uint) (*models.Form, error) {
	if f.form == nil || f.form.ID != id {
		return nil, repository.ErrFormNotFound
	}
	return f.form, nil
}

func (f *fakeFormStore) GetByToken(token string) (*models.Form, error) {
	if f.form == nil || f.form.Token != token {
		return nil, repository.ErrFormNotFound
	}
	return f.form, nil
}

func (f *fakeFormStore) ListByUser(userID uint) ([]models.Form, error) { return nil, nil }

func (f *fakeFormStore) DeleteOwned(token string, userID uint) (bool, error) { return false, nil }

type fakeUserStore struct {
	user *models.User
}

func (f *fakeUserStore) Create(user *models.User) error { return nil }

func (f *fakeUserStore) GetByID(id uint) (*models.User, error) {
	if f.user == nil {
		return nil, repository.ErrUserNotFound
	}
	return f.user, nil
}

func (f *fakeUserStore) GetByEmail(email string) (*models.User, error) {
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) EmailExists(email string) (bool, error)          { return false, nil }
func (f *fakeUserStore) UpdatePassword(email, passwordHash string) error { return nil }
func (f *fakeUserStore) UpdateName(userID uint, name string) error       { return nil }
func (f *fakeUserStore) UpdateImage(userID uint, image string) error     { return nil }

type fakeVerifier struct {
	ok bool
}

func (f fakeVerifier) Verify(ctx context.Context, token string) (bool, error) {
	return f.ok, nil
}

type fakeRenderer struct {
	err      error
	calls    int
	lastLang string
	mu       sync.Mutex
}

func (f *fakeRenderer) Render(fullName string, payload []byte, lang string, reviewerReview []score.Category) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.lastLang = lang
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.3 fake"), nil
}

type fakeMailer struct {
	mu           sync.Mutex
	accepted     int
	rejected     int
	acceptedLang string
	rejectedLang string
	bundles      [][]byte
}

func (f *fakeMailer) SendSubmissionAcceptedEmail(to, language, who, comment string, certificate []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accepted++
	f.acceptedLang = language
	return nil
}

func (f *fakeMailer) SendSubmissionRejectedEmail(to, language, who, comment string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected++
	f.rejectedLang = language
	return nil
}

func (f *fakeMailer) SendCertificateBundleEmail(to string, archive []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bundles = append(f.bundles, archive)
	return nil
}

func newTestService(store *fakeSubmissionStore, renderer *fakeRenderer, mailer *fakeMailer) *SubmissionService {
	forms := &fakeFormStore{form: &models.Form{ID: 1, Token: "form-token", UserID: 1, Language: "en"}}
	users := &fakeUserStore{user: &models.User{ID: 1, Name: "Jane Reviewer", Email: "jane@example.com"}}
	return NewSubmissionService(store, forms, users, fakeVerifier{ok: true}, renderer, mailer)
}

func pendingStore() *fakeSubmissionStore {
	return &fakeSubmissionStore{
		submissions: map[uint]*models.Submission{
			1: {
				ID:       1,
				FormID:   1,
				Email:    "vol@example.com",
				FullName: "Sam Volunteer",
				Payload:  []byte(`{}`),
				Status:   models.SubmissionStatusPending,
			},
		},
	}
}

func TestSubmitRejectsBadCaptcha(t *testing.T) {
	store := &fakeSubmissionStore{submissions: map[uint]*models.Submission{}}
	svc := NewSubmissionService(
		store,
		&fakeFormStore{form: &models.Form{ID: 1, Token: "form-token", Language: "en"}},
		&fakeUserStore{},
		fakeVerifier{ok: false},
		&fakeRenderer{},
		&fakeMailer{},
	)

	_, err := svc.Submit(context.Background(), "form-token", "bad", "vol@example.com", "Sam Volunteer", []byte(`{}`))
	if !errors.Is(err, ErrInvalidCaptcha) {
		t.Errorf("err = %v, want ErrInvalidCaptcha", err)
	}
	if len(store.submissions) != 0 {
		t.Error("submission must not be stored when captcha fails")
	}
}

func TestConfirmAlreadyDecided(t *testing.T) {
	store := pendingStore()
	store.submissions[1].Status = models.SubmissionStatusConfirmed
	svc := newTestService(store, &fakeRenderer{}, &fakeMailer{})

	err := svc.Confirm(1, 1, "", "great work", []score.Category{{Name: "Teamwork", Rating: 4}})
	if !errors.Is(err, ErrAlreadyDecided) {
		t.Errorf("err = %v, want ErrAlreadyDecided", err)
	}
}

func TestConfirmUsesReviewerLanguage(t *testing.T) {
	store := pendingStore()
	renderer := &fakeRenderer{}
	mailer := &fakeMailer{}
	svc := newTestService(store, renderer, mailer)

	if err := svc.Confirm(1, 1, "et", "tubli töö", []score.Category{{Name: "Teamwork", Rating: 4}}); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if renderer.lastLang != "et" {
		t.Errorf("rendered language = %q, want %q", renderer.lastLang, "et")
	}
	if mailer.acceptedLang != "et" {
		t.Errorf("mail language = %q, want %q", mailer.acceptedLang, "et")
	}
}

func TestConfirmDefaultsToFormLanguage(t *testing.T) {
	store := pendingStore()
	renderer := &fakeRenderer{}
	mailer := &fakeMailer{}
	svc := newTestService(store, renderer, mailer)

	if err := svc.Confirm(1, 1, "", "good", []score.Category{{Name: "Teamwork", Rating: 4}}); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if renderer.lastLang != "en" {
		t.Errorf("rendered language = %q, want form language %q", renderer.lastLang, "en")
	}
	if mailer.acceptedLang != "en" {
		t.Errorf("mail language = %q, want form language %q", mailer.acceptedLang, "en")
	}
}

func TestConfirmUnsupportedLanguage(t *testing.T) {
	store := pendingStore()
	renderer := &fakeRenderer{}
	svc := newTestService(store, renderer, &fakeMailer{})

	err := svc.Confirm(1, 1, "fr", "bon", []score.Category{{Name: "Teamwork", Rating: 4}})
	if !errors.Is(err, score.ErrUnsupportedLanguage) {
		t.Errorf("err = %v, want ErrUnsupportedLanguage", err)
	}
	if renderer.calls != 0 {
		t.Error("renderer must not run for an unsupported language")
	}
	if store.submissions[1].Status != models.SubmissionStatusPending {
		t.Errorf("status = %q, want pending", store.submissions[1].Status)
	}
}

func TestConfirmRenderFailureLeavesPending(t *testing.T) {
	store := pendingStore()
	renderer := &fakeRenderer{err: errors.New("render boom")}
	mailer := &fakeMailer{}
	svc := newTestService(store, renderer, mailer)

	err := svc.Confirm(1, 1, "", "great work", []score.Category{{Name: "Teamwork", Rating: 4}})
	if err == nil {
		t.Fatal("expected render error")
	}
	if store.submissions[1].Status != models.SubmissionStatusPending {
		t.Errorf("status = %q, want pending after render failure", store.submissions[1].Status)
	}
	if mailer.accepted != 0 {
		t.Error("no acceptance email must be sent on render failure")
	}
}

func TestConfirmConcurrentSingleWinner(t *testing.T) {
	store := pendingStore()
	mailer := &fakeMailer{}
	svc := newTestService(store, &fakeRenderer{}, mailer)

	const workers = 16
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Confirm(1, 1, "", "ok", []score.Category{{Name: "Teamwork", Rating: 4}})
		}()
	}
	wg.Wait()
	close(results)

	wins, losses := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyDecided):
			losses++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("wins = %d, want exactly 1", wins)
	}
	if losses != workers-1 {
		t.Errorf("losses = %d, want %d", losses, workers-1)
	}
	if mailer.accepted != 1 {
		t.Errorf("acceptance emails = %d, want 1", mailer.accepted)
	}
}

func TestRejectDeletesPending(t *testing.T) {
	store := pendingStore()
	mailer := &fakeMailer{}
	svc := newTestService(store, &fakeRenderer{}, mailer)

	if err := svc.Reject(1, 1, "", "insufficient detail"); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if _, ok := store.submissions[1]; ok {
		t.Error("rejected submission must be deleted")
	}
	if mailer.rejected != 1 {
		t.Errorf("rejection emails = %d, want 1", mailer.rejected)
	}
	if mailer.rejectedLang != "en" {
		t.Errorf("mail language = %q, want form language %q", mailer.rejectedLang, "en")
	}
}

func TestRejectUnsupportedLanguage(t *testing.T) {
	store := pendingStore()
	mailer := &fakeMailer{}
	svc := newTestService(store, &fakeRenderer{}, mailer)

	err := svc.Reject(1, 1, "fr", "non")
	if !errors.Is(err, score.ErrUnsupportedLanguage) {
		t.Errorf("err = %v, want ErrUnsupportedLanguage", err)
	}
	if _, ok := store.submissions[1]; !ok {
		t.Error("submission must stay pending when the language is invalid")
	}
	if mailer.rejected != 0 {
		t.Error("no rejection email must be sent")
	}
}

func TestConfirmRejectRaceSingleWinner(t *testing.T) {
	store := pendingStore()
	mailer := &fakeMailer{}
	svc := newTestService(store, &fakeRenderer{}, mailer)

	const pairs = 8
	results := make(chan error, pairs*2)
	var wg sync.WaitGroup
	for i := 0; i < pairs; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			results <- svc.Confirm(1, 1, "", "ok", []score.Category{{Name: "Teamwork", Rating: 4}})
		}()
		go func() {
			defer wg.Done()
			results <- svc.Reject(1, 1, "", "no")
		}()
	}
	wg.Wait()
	close(results)

	wins, losses := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		// a loser that reads after a winning reject sees the row gone
		case errors.Is(err, ErrAlreadyDecided), errors.Is(err, ErrSubmissionNotFound):
			losses++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("wins = %d, want exactly 1", wins)
	}
	if losses != pairs*2-1 {
		t.Errorf("losses = %d, want %d", losses, pairs*2-1)
	}
	if mailer.accepted+mailer.rejected != 1 {
		t.Errorf("decision emails = %d, want exactly 1", mailer.accepted+mailer.rejected)
	}
	if mailer.accepted == 1 {
		if _, ok := store.submissions[1]; !ok || store.submissions[1].Status != models.SubmissionStatusConfirmed {
			t.Error("confirm won but the submission is not confirmed")
		}
	} else {
		if _, ok := store.submissions[1]; ok {
			t.Error("reject won but the submission still exists")
		}
	}
}

func TestRequestCertificatesBundlesZip(t *testing.T) {
	store := pendingStore()
	store.certs = []models.Certificate{
		{SubmissionID: 1, PDF: []byte("%PDF-1")},
		{SubmissionID: 4, PDF: []byte("%PDF-2")},
	}
	mailer := &fakeMailer{}
	svc := newTestService(store, &fakeRenderer{}, mailer)

	if err := svc.RequestCertificates(context.Background(), "vol@example.com", "token"); err != nil {
		t.Fatalf("RequestCertificates failed: %v", err)
	}
	if len(mailer.bundles) != 1 {
		t.Fatalf("bundles = %d, want 1", len(mailer.bundles))
	}

	r, err := zip.NewReader(bytes.NewReader(mailer.bundles[0]), int64(len(mailer.bundles[0])))
	if err != nil {
		t.Fatalf("invalid zip: %v", err)
	}
	names := map[string]bool{}
	for _, f := range r.File {
		names[f.Name] = true
	}
	if !names["certificate_1.pdf"] || !names["certificate_4.pdf"] {
		t.Errorf("unexpected archive entries: %v", names)
	}
}

func TestRequestCertificatesNoneFound(t *testing.T) {
	store := pendingStore()
	svc := newTestService(store, &fakeRenderer{}, &fakeMailer{})

	err := svc.RequestCertificates(context.Background(), "vol@example.com", "token")
	if !errors.Is(err, ErrNoCertificates) {
		t.Errorf("err = %v, want ErrNoCertificates", err)
	}
}
