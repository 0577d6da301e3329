package captcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"volugram/internal/config"
)

func newTestClient(verifyURL string, enabled bool) *Client {
	return NewClient(&config.CaptchaConfig{
		Enabled:   enabled,
		Secret:    "test-secret",
		VerifyURL: verifyURL,
		Timeout:   5 * time.Second,
	})
}

func TestVerifySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("bad form: %v", err)
		}
		if r.PostForm.Get("secret") != "test-secret" {
			t.Errorf("secret = %q", r.PostForm.Get("secret"))
		}
		if r.PostForm.Get("response") != "token-123" {
			t.Errorf("response = %q", r.PostForm.Get("response"))
		}
		w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	ok, err := newTestClient(server.URL, true).Verify(context.Background(), "token-123")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Error("Verify = false, want true")
	}
}

func TestVerifyFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "error-codes": ["invalid-input-response"]}`))
	}))
	defer server.Close()

	ok, err := newTestClient(server.URL, true).Verify(context.Background(), "bad-token")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Error("Verify = true, want false")
	}
}

func TestVerifyEmptyToken(t *testing.T) {
	ok, err := newTestClient("http://unused", true).Verify(context.Background(), "")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Error("empty token must not verify")
	}
}

func TestVerifyDisabled(t *testing.T) {
	ok, err := newTestClient("http://unused", false).Verify(context.Background(), "")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Error("disabled verifier must accept")
	}
}
