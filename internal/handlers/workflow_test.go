package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"volugram/internal/auth"
	"volugram/internal/captcha"
	"volugram/internal/certificate"
	"volugram/internal/config"
	"volugram/internal/email"
	"volugram/internal/handlers"
	"volugram/internal/middleware"
	"volugram/internal/models"
	"volugram/internal/repository"
	"volugram/internal/service"
	"volugram/internal/testutil"
	"volugram/internal/tokenstore"
)

const testSubmissionPayload = `{
	"position": "Event Volunteer",
	"hours": 12,
	"minutes": 30,
	"eventTitle": "Beach Cleanup",
	"location": "Tallinn",
	"startDate": "2024-05-01",
	"endDate": "2024-05-03",
	"volunteerReview": [
		{"name": "Teamwork", "rating": 4, "comments": "Worked well with others"},
		{"name": "Reliability", "rating": 5, "comments": "Always on time"}
	]
}`

type testEnv struct {
	server   *httptest.Server
	authSvc  *auth.Service
	fixtures *testutil.Fixtures
	db       *testutil.TestContainers
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	containers := testutil.SetupTestContainers(t)
	t.Cleanup(func() { containers.Cleanup(t) })

	fixtures := testutil.SetupFixtures(t, containers.DB)

	userRepo := repository.NewUserRepository(containers.DB)
	formRepo := repository.NewFormRepository(containers.DB)
	submissionRepo := repository.NewSubmissionRepository(containers.DB)

	authSvc := auth.NewService(&config.JWTConfig{Expiration: time.Hour})
	// Mail delivery is unreachable in tests; decision mails are logged,
	// not surfaced, so the workflow still completes.
	emailSvc := email.NewService(&config.EmailConfig{
		SMTPHost: "127.0.0.1",
		SMTPPort: "1",
		SMTPFrom: "info@volugram.eu",
	})
	verifier := captcha.NewClient(&config.CaptchaConfig{Enabled: false})
	renderer := certificate.NewRenderer()

	activations := tokenstore.New[service.PendingAccount](0)
	resets := tokenstore.New[string](0)
	t.Cleanup(func() {
		activations.Close()
		resets.Close()
	})

	authService := service.NewAuthService(userRepo, authSvc, emailSvc, activations, resets)
	formService := service.NewFormService(formRepo)
	userService := service.NewUserService(userRepo)
	submissionService := service.NewSubmissionService(submissionRepo, formRepo, userRepo, verifier, renderer, emailSvc)

	authHandler := handlers.NewAuthHandler(authService)
	formHandler := handlers.NewFormHandler(formService)
	userHandler := handlers.NewUserHandler(userService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)

	authMw := middleware.NewAuthMiddleware(authSvc)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/submissions", submissionHandler.Submit)
	mux.HandleFunc("GET /api/v1/forms/{token}", formHandler.Get)
	mux.Handle("GET /api/v1/submissions", authMw.Authenticate(http.HandlerFunc(submissionHandler.ListPending)))
	mux.Handle("GET /api/v1/submissions/{id}", authMw.Authenticate(http.HandlerFunc(submissionHandler.Get)))
	mux.Handle("POST /api/v1/submissions/{id}/confirm", authMw.Authenticate(http.HandlerFunc(submissionHandler.Confirm)))
	mux.Handle("POST /api/v1/submissions/{id}/reject", authMw.Authenticate(http.HandlerFunc(submissionHandler.Reject)))
	mux.Handle("GET /api/v1/users/profile", authMw.Authenticate(http.HandlerFunc(userHandler.GetProfile)))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		server:   server,
		authSvc:  authSvc,
		fixtures: fixtures,
		db:       containers,
	}
}

func (e *testEnv) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := e.authSvc.GenerateToken(user.ID, user.Email)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func TestSubmissionWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	env := setupEnv(t)
	token := env.tokenFor(t, env.fixtures.Reviewer)

	// Volunteer submits anonymously
	resp := env.do(t, http.MethodPost, "/api/v1/submissions", "", map[string]interface{}{
		"form_token": env.fixtures.Form.Token,
		"email":      "volunteer@test.com",
		"full_name":  "Sam Volunteer",
		"payload":    json.RawMessage(testSubmissionPayload),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Submit status = %d", resp.StatusCode)
	}
	var created models.Submission
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("Failed to decode submission: %v", err)
	}
	resp.Body.Close()

	// Reviewer sees it in the pending list
	resp = env.do(t, http.MethodGet, "/api/v1/submissions", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ListPending status = %d", resp.StatusCode)
	}
	var pending []models.PendingSubmission
	if err := json.NewDecoder(resp.Body).Decode(&pending); err != nil {
		t.Fatalf("Failed to decode pending list: %v", err)
	}
	resp.Body.Close()
	if len(pending) != 1 || pending[0].ID != created.ID {
		t.Fatalf("pending = %+v, want the new submission", pending)
	}

	// Reviewer confirms, picking the decision language explicitly
	decision := map[string]interface{}{
		"language": "de",
		"comment":  "great work",
		"reviewer_review": []map[string]interface{}{
			{"name": "Teamwork", "rating": 5, "comments": "excellent"},
		},
	}
	confirmPath := fmt.Sprintf("/api/v1/submissions/%d/confirm", created.ID)
	resp = env.do(t, http.MethodPost, confirmPath, token, decision)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Confirm status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Confirming again conflicts
	resp = env.do(t, http.MethodPost, confirmPath, token, decision)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("second Confirm status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()

	// Rejecting after the decision conflicts too
	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/submissions/%d/reject", created.ID), token, decision)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Reject after confirm status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()

	// The stored certificate is a PDF
	var status string
	var pdf []byte
	err := env.db.DB.QueryRow(
		`SELECT status, certificate_pdf FROM submissions WHERE id = $1`, created.ID,
	).Scan(&status, &pdf)
	if err != nil {
		t.Fatalf("Failed to read submission row: %v", err)
	}
	if status != models.SubmissionStatusConfirmed {
		t.Errorf("status = %q, want confirmed", status)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("stored certificate is not a PDF")
	}
}

func TestReviewerIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	env := setupEnv(t)

	sub := testutil.CreateTestSubmission(t, env.db.DB, env.fixtures.Form.ID,
		"volunteer@test.com", "Sam Volunteer", []byte(testSubmissionPayload))

	other := testutil.CreateTestUser(t, env.db.DB, "other@test.com", "Other Reviewer")
	otherToken := env.tokenFor(t, other)

	// A reviewer who does not own the form cannot see or decide the submission
	resp := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/submissions/%d", sub.ID), otherToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("foreign Get status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/submissions/%d/confirm", sub.ID), otherToken, map[string]interface{}{
		"comment":         "not mine",
		"reviewer_review": []map[string]interface{}{{"name": "Teamwork", "rating": 3}},
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("foreign Confirm status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	// Still pending for the rightful owner
	var status string
	if err := env.db.DB.QueryRow(`SELECT status FROM submissions WHERE id = $1`, sub.ID).Scan(&status); err != nil {
		t.Fatalf("Failed to read submission row: %v", err)
	}
	if status != models.SubmissionStatusPending {
		t.Errorf("status = %q, want pending", status)
	}
}

func TestRejectDeletesRow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	env := setupEnv(t)
	token := env.tokenFor(t, env.fixtures.Reviewer)

	sub := testutil.CreateTestSubmission(t, env.db.DB, env.fixtures.Form.ID,
		"volunteer@test.com", "Sam Volunteer", []byte(testSubmissionPayload))

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/submissions/%d/reject", sub.ID), token, map[string]interface{}{
		"comment": "insufficient detail",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Reject status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	var count int
	if err := env.db.DB.QueryRow(`SELECT COUNT(*) FROM submissions WHERE id = $1`, sub.ID).Scan(&count); err != nil {
		t.Fatalf("Failed to count submissions: %v", err)
	}
	if count != 0 {
		t.Errorf("rejected submission still present")
	}
}

func TestLoginAndProfile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	env := setupEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    env.fixtures.Reviewer.Email,
		"password": "password123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Login status = %d", resp.StatusCode)
	}
	var loginResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}
	resp.Body.Close()
	if loginResp.AccessToken == "" {
		t.Fatal("expected an access token")
	}

	resp = env.do(t, http.MethodGet, "/api/v1/users/profile", loginResp.AccessToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GetProfile status = %d", resp.StatusCode)
	}
	var profile models.User
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		t.Fatalf("Failed to decode profile: %v", err)
	}
	resp.Body.Close()
	if profile.Email != env.fixtures.Reviewer.Email {
		t.Errorf("profile email = %q", profile.Email)
	}

	// Unauthenticated access is rejected
	resp = env.do(t, http.MethodGet, "/api/v1/users/profile", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated profile status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()
}
