package tokenstore

import (
	"sync"
	"testing"
	"time"
)

func TestIssueAndRedeemRoundTrip(t *testing.T) {
	r := New[string](0)
	defer r.Close()

	token := r.Issue("volunteer@example.com")
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	payload, ok := r.Redeem(token)
	if !ok {
		t.Fatal("Redeem failed for freshly issued token")
	}
	if payload != "volunteer@example.com" {
		t.Errorf("payload = %q, want volunteer@example.com", payload)
	}
}

func TestRedeemIsSingleUse(t *testing.T) {
	r := New[string](0)
	defer r.Close()

	token := r.Issue("once")

	if _, ok := r.Redeem(token); !ok {
		t.Fatal("first Redeem failed")
	}
	if _, ok := r.Redeem(token); ok {
		t.Error("second Redeem succeeded, token must be single-use")
	}
	if _, ok := r.Peek(token); ok {
		t.Error("Peek found token after redemption")
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	r := New[int](0)
	defer r.Close()

	token := r.Issue(7)

	for i := 0; i < 3; i++ {
		payload, ok := r.Peek(token)
		if !ok || payload != 7 {
			t.Fatalf("Peek #%d = (%d, %t), want (7, true)", i, payload, ok)
		}
	}

	if _, ok := r.Redeem(token); !ok {
		t.Error("Redeem failed after Peek")
	}
}

func TestRedeemUnknownToken(t *testing.T) {
	r := New[string](0)
	defer r.Close()

	if _, ok := r.Redeem("00000000-0000-0000-0000-000000000000"); ok {
		t.Error("Redeem succeeded for unknown token")
	}
}

func TestConcurrentRedeemExactlyOneWinner(t *testing.T) {
	r := New[string](0)
	defer r.Close()

	token := r.Issue("contested")

	const goroutines = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := r.Redeem(token); ok {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	winners := 0
	for range wins {
		winners++
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}
}

func TestRevokeWhereCascade(t *testing.T) {
	r := New[string](0)
	defer r.Close()

	keep := r.Issue("other@example.com")
	r.Issue("reset@example.com")
	r.Issue("reset@example.com")
	winner := r.Issue("reset@example.com")

	if _, ok := r.Redeem(winner); !ok {
		t.Fatal("Redeem failed")
	}

	removed := r.RevokeWhere(func(email string) bool {
		return email == "reset@example.com"
	})
	if removed != 2 {
		t.Errorf("removed = %d, want 2 sibling tokens", removed)
	}

	if _, ok := r.Peek(keep); !ok {
		t.Error("token for a different email was revoked")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestTTLExpiry(t *testing.T) {
	r := New[string](time.Hour)
	defer r.Close()

	current := time.Now()
	r.now = func() time.Time { return current }

	token := r.Issue("expiring")

	if _, ok := r.Peek(token); !ok {
		t.Fatal("fresh token should be visible")
	}

	current = current.Add(2 * time.Hour)

	if _, ok := r.Peek(token); ok {
		t.Error("expired token visible via Peek")
	}
	if _, ok := r.Redeem(token); ok {
		t.Error("expired token redeemable")
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0 after expiry", r.Len())
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	r := New[string](0)
	defer r.Close()

	current := time.Now()
	r.now = func() time.Time { return current }

	token := r.Issue("durable")
	current = current.Add(1000 * time.Hour)

	if _, ok := r.Peek(token); !ok {
		t.Error("token expired despite zero TTL")
	}
}
