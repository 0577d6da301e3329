// Package certificate renders the two-page volunteer certificate PDF
// that is attached to the confirmation email and stored alongside the
// submission.
package certificate

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"volugram/internal/score"
)

// ErrRender marks any failure to produce a certificate. No partial
// output is ever returned alongside it.
var ErrRender = errors.New("certificate render failed")

//go:embed assets/logo.png
var defaultLogo []byte

//go:embed assets/europe.png
var europeMark []byte

// submissionPayload is the slice of the stored submission JSON the
// certificate needs
type submissionPayload struct {
	Position        string           `json:"position"`
	Hours           json.Number      `json:"hours"`
	Minutes         json.Number      `json:"minutes"`
	EventTitle      string           `json:"eventTitle"`
	Location        string           `json:"location"`
	StartDate       string           `json:"startDate"`
	EndDate         string           `json:"endDate"`
	CertificateLogo string           `json:"certificateLogo"`
	VolunteerReview []score.Category `json:"volunteerReview"`
}

// Renderer produces certificate PDFs. The clock is injectable so that
// output is byte-deterministic under a fixed time.
type Renderer struct {
	now func() time.Time
}

// Option configures a Renderer
type Option func(*Renderer)

// WithClock overrides the renderer's time source
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// NewRenderer creates a certificate renderer
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render builds the certificate PDF for a confirmed submission.
// Page one carries the narrative, page two the self-review and reviewer
// review tables. The language must be one of the supported certificate
// languages; anything else returns score.ErrUnsupportedLanguage.
func (r *Renderer) Render(fullName string, payload []byte, lang string, reviewerReview []score.Category) ([]byte, error) {
	content, ok := languageContent[lang]
	if !ok {
		return nil, score.ErrUnsupportedLanguage
	}

	var data submissionPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("%w: invalid submission payload: %v", ErrRender, err)
	}

	if err := validatePayload(fullName, &data); err != nil {
		return nil, err
	}
	if len(reviewerReview) == 0 {
		return nil, fmt.Errorf("%w: reviewer review is empty", ErrRender)
	}

	startDate, err := reformatDate(data.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad start date %q", ErrRender, data.StartDate)
	}
	endDate, err := reformatDate(data.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad end date %q", ErrRender, data.EndDate)
	}

	selfOverall, err := overallDescription(data.VolunteerReview, lang)
	if err != nil {
		return nil, err
	}
	reviewerOverall, err := overallDescription(reviewerReview, lang)
	if err != nil {
		return nil, err
	}

	logoType, logoBytes, err := resolveLogo(data.CertificateLogo)
	if err != nil {
		return nil, err
	}

	narrative := fmt.Sprintf(content.narrativeFormat,
		fullName,
		data.Position,
		data.Hours.String(),
		data.Minutes.String(),
		data.EventTitle,
		data.Location,
		startDate,
		endDate,
	)

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetCreationDate(r.now())
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(50, 50, 50)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()

	// Page 1: narrative
	pdf.AddPage()

	pdf.RegisterImageOptionsReader("brand-mark", gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(europeMark))
	pdf.ImageOptions("brand-mark", 50, 50, 100, 0, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	logoOpts := gofpdf.ImageOptions{ImageType: logoType}
	pdf.RegisterImageOptionsReader("certificate-logo", logoOpts, bytes.NewReader(logoBytes))
	pdf.ImageOptions("certificate-logo", pageW-100-50, 50, 100, 0, false, logoOpts, 0, "")

	pdf.SetY(220)
	pdf.SetFont("Helvetica", "B", 72)
	pdf.CellFormat(0, 80, tr(content.certificateText), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 24, tr(content.certificateTitle), "", 1, "C", false, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 18)
	pdf.CellFormat(0, 24, tr(fullName), "", 1, "C", false, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 14)
	pdf.MultiCell(0, 21, tr(narrative), "", "C", false)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(50, pageH-80, r.now().Format("02/01/2006"))

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(1)
	pdf.Line(50, pageH-45, 550, pageH-45)

	// Page 2: review tables
	pdf.AddPage()

	tableW := 400.0
	tableX := (pageW - tableW) / 2

	pdf.SetY(60)
	pdf.SetFont("Helvetica", "B", 32)
	pdf.CellFormat(0, 40, tr(content.selfReviewTitle), "", 1, "C", false, 0, "")

	selfTableY := pdf.GetY() + 10
	r.drawReviewTable(pdf, tr, content, tableX, selfTableY, tableW, data.VolunteerReview, selfOverall, 224, 247, 224)

	reviewerTitleY := selfTableY + 325
	pdf.SetY(reviewerTitleY - 50)
	pdf.SetFont("Helvetica", "B", 32)
	pdf.CellFormat(0, 40, tr(content.reviewerTitle), "", 1, "C", false, 0, "")

	r.drawReviewTable(pdf, tr, content, tableX, reviewerTitleY, tableW, reviewerReview, reviewerOverall, 247, 235, 224)

	pdf.SetLineWidth(1)
	pdf.Line(50, pageH-45, 550, pageH-45)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

// drawReviewTable renders one review table with a header row, one filled
// row per category and the overall rating line below
func (r *Renderer) drawReviewTable(pdf *gofpdf.Fpdf, tr func(string) string, content pageContent, tableX, tableY, tableW float64, categories []score.Category, overall string, fr, fg, fb int) {
	const rowHeight = 25.0
	ratingX := tableX + 325

	pdf.SetFont("Helvetica", "", 20)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(tableX, tableY+16, tr(content.category))
	pdf.Text(ratingX, tableY+16, tr(content.rating))

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(1)
	pdf.Line(tableX, tableY+20, tableX+tableW, tableY+20)

	for i, category := range categories {
		rowY := tableY + float64(i+1)*rowHeight

		pdf.SetFillColor(fr, fg, fb)
		pdf.Rect(tableX, rowY, tableW, 20, "F")

		pdf.Text(tableX, rowY+16, tr(category.Name))
		pdf.Text(ratingX, rowY+16, formatRating(category.Rating))

		pdf.SetLineWidth(2)
		pdf.Line(tableX, rowY+20, tableX+tableW, rowY+20)
	}

	overallY := tableY + float64(len(categories)+1)*rowHeight + 20
	pdf.Text(tableX, overallY, tr(fmt.Sprintf("%s: %s", content.overallRating, overall)))
}

// overallDescription averages the categories and localizes the band label
func overallDescription(categories []score.Category, lang string) (string, error) {
	avg, err := score.AverageRating(categories)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	label, err := score.Describe(avg, lang)
	if err != nil {
		return "", err
	}
	return label, nil
}

// validatePayload checks the narrative fields before any drawing happens
func validatePayload(fullName string, data *submissionPayload) error {
	switch {
	case strings.TrimSpace(fullName) == "":
		return fmt.Errorf("%w: missing full name", ErrRender)
	case data.Position == "":
		return fmt.Errorf("%w: missing position", ErrRender)
	case data.Hours.String() == "":
		return fmt.Errorf("%w: missing hours", ErrRender)
	case data.Minutes.String() == "":
		return fmt.Errorf("%w: missing minutes", ErrRender)
	case data.EventTitle == "":
		return fmt.Errorf("%w: missing event title", ErrRender)
	case data.Location == "":
		return fmt.Errorf("%w: missing location", ErrRender)
	case len(data.VolunteerReview) == 0:
		return fmt.Errorf("%w: self-review is empty", ErrRender)
	}
	return nil
}

// reformatDate turns YYYY-MM-DD into DD-MM-YYYY
func reformatDate(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", err
	}
	return t.Format("02-01-2006"), nil
}

// resolveLogo decodes the optional base64 data URL logo, falling back to
// the built-in default mark
func resolveLogo(dataURL string) (string, []byte, error) {
	if dataURL == "" {
		return "PNG", defaultLogo, nil
	}

	rest, ok := strings.CutPrefix(dataURL, "data:image/")
	if !ok {
		return "", nil, fmt.Errorf("%w: certificate logo is not an image data URL", ErrRender)
	}
	subtype, encoded, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return "", nil, fmt.Errorf("%w: certificate logo is not base64 encoded", ErrRender)
	}

	var imageType string
	switch strings.ToLower(subtype) {
	case "png":
		imageType = "PNG"
	case "jpeg", "jpg":
		imageType = "JPG"
	default:
		return "", nil, fmt.Errorf("%w: unsupported logo type %q", ErrRender, subtype)
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("%w: certificate logo decode: %v", ErrRender, err)
	}
	return imageType, decoded, nil
}

// formatRating prints ratings the way they were entered (3, 4.3, ...)
func formatRating(rating float64) string {
	return strconv.FormatFloat(rating, 'f', -1, 64)
}
