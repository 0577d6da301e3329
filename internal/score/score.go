// Package score computes overall review ratings and their localized
// descriptions for volunteer certificates.
package score

import "errors"

var (
	ErrNoRatings           = errors.New("no ratings to average")
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// Category is a single review category with a numeric rating
type Category struct {
	Name     string  `json:"name"`
	Rating   float64 `json:"rating"`
	Comments string  `json:"comments,omitempty"`
}

// descriptions holds the five band labels per language, ordered from the
// highest band down
type descriptions struct {
	outstanding             string
	exceedsExpectations     string
	meetsExpectations       string
	needsImprovement        string
	doesNotMeetExpectations string
}

var bandLabels = map[string]descriptions{
	"en": {
		outstanding:             "Outstanding",
		exceedsExpectations:     "Exceeds expectations",
		meetsExpectations:       "Meets expectations",
		needsImprovement:        "Needs improvement",
		doesNotMeetExpectations: "Does not meet expectations",
	},
	"de": {
		outstanding:             "Hervorragend",
		exceedsExpectations:     "Übertrifft Erwartungen",
		meetsExpectations:       "Entspricht den Erwartungen",
		needsImprovement:        "Bedarf Verbesserung",
		doesNotMeetExpectations: "Entspricht nicht den Erwartungen",
	},
	"et": {
		outstanding:             "Väga hea",
		exceedsExpectations:     "Ületab ootusi",
		meetsExpectations:       "Vastab ootustele",
		needsImprovement:        "Vajab parendamist",
		doesNotMeetExpectations: "Ei vasta ootustele",
	},
	"no": {
		outstanding:             "Utmerket",
		exceedsExpectations:     "Overgår forventningene",
		meetsExpectations:       "Møter forventningene",
		needsImprovement:        "Trenger forbedring",
		doesNotMeetExpectations: "Møter ikke forventningene",
	},
}

// AverageRating returns the arithmetic mean of the category ratings.
// An empty list returns ErrNoRatings rather than NaN.
func AverageRating(categories []Category) (float64, error) {
	if len(categories) == 0 {
		return 0, ErrNoRatings
	}

	sum := 0.0
	for _, c := range categories {
		sum += c.Rating
	}
	return sum / float64(len(categories)), nil
}

// Describe maps a score onto its localized band label. Thresholds are
// strict: a score must exceed 4.5 for the top band, 3.5 for the next,
// and so on; everything at or below 1.5 falls into the bottom band.
func Describe(score float64, lang string) (string, error) {
	labels, ok := bandLabels[lang]
	if !ok {
		return "", ErrUnsupportedLanguage
	}

	switch {
	case score > 4.5:
		return labels.outstanding, nil
	case score > 3.5:
		return labels.exceedsExpectations, nil
	case score > 2.5:
		return labels.meetsExpectations, nil
	case score > 1.5:
		return labels.needsImprovement, nil
	default:
		return labels.doesNotMeetExpectations, nil
	}
}
