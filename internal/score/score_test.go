package score

import (
	"errors"
	"math"
	"testing"
)

func TestAverageRating(t *testing.T) {
	categories := []Category{
		{Name: "Teamwork Abilities", Rating: 3},
		{Name: "Communication Skills", Rating: 5},
		{Name: "Taking Initiative", Rating: 4.3},
		{Name: "Planning and Organisational Skills", Rating: 3.7},
		{Name: "Self-development", Rating: 4.5},
	}

	avg, err := AverageRating(categories)
	if err != nil {
		t.Fatalf("AverageRating failed: %v", err)
	}
	if math.Abs(avg-4.1) > 1e-9 {
		t.Errorf("avg = %v, want 4.1", avg)
	}
}

func TestAverageRatingEmpty(t *testing.T) {
	avg, err := AverageRating(nil)
	if !errors.Is(err, ErrNoRatings) {
		t.Fatalf("err = %v, want ErrNoRatings", err)
	}
	if avg != 0 {
		t.Errorf("avg = %v, want 0", avg)
	}
	if math.IsNaN(avg) || math.IsInf(avg, 0) {
		t.Error("average must never be NaN or infinite")
	}
}

func TestDescribeBands(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{5, "Outstanding"},
		{4.6, "Outstanding"},
		{4.5, "Exceeds expectations"}, // boundary is strict
		{4, "Exceeds expectations"},
		{3.5, "Meets expectations"},
		{3, "Meets expectations"},
		{2.5, "Needs improvement"},
		{2, "Needs improvement"},
		{1.5, "Does not meet expectations"},
		{1, "Does not meet expectations"},
		{0, "Does not meet expectations"},
	}

	for _, tt := range tests {
		got, err := Describe(tt.score, "en")
		if err != nil {
			t.Fatalf("Describe(%v, en) failed: %v", tt.score, err)
		}
		if got != tt.want {
			t.Errorf("Describe(%v, en) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestDescribeLocalized(t *testing.T) {
	tests := []struct {
		lang string
		want string
	}{
		{"en", "Outstanding"},
		{"de", "Hervorragend"},
		{"et", "Väga hea"},
		{"no", "Utmerket"},
	}

	for _, tt := range tests {
		got, err := Describe(4.8, tt.lang)
		if err != nil {
			t.Fatalf("Describe(4.8, %s) failed: %v", tt.lang, err)
		}
		if got != tt.want {
			t.Errorf("Describe(4.8, %s) = %q, want %q", tt.lang, got, tt.want)
		}
	}
}

func TestDescribeUnsupportedLanguage(t *testing.T) {
	for _, lang := range []string{"fr", "", "EN", "sv"} {
		if _, err := Describe(3, lang); !errors.Is(err, ErrUnsupportedLanguage) {
			t.Errorf("Describe(3, %q) err = %v, want ErrUnsupportedLanguage", lang, err)
		}
	}
}
