package certificate

// pageContent holds the localized strings for one certificate language.
// The narrative format takes, in order: full name, position, hours,
// minutes, event title, location, start date, end date.
type pageContent struct {
	certificateText  string
	certificateTitle string
	narrativeFormat  string
	selfReviewTitle  string
	reviewerTitle    string
	category         string
	rating           string
	overallRating    string
}

var languageContent = map[string]pageContent{
	"en": {
		certificateText:  "Certificate",
		certificateTitle: "Certificate of Volunteer Work",
		narrativeFormat:  "To certify that %s, a %s, volunteered for %s hours and %s minutes. Participated in %s held at %s, from %s to %s.",
		selfReviewTitle:  "Volunteer Self-Evaluation",
		reviewerTitle:    "Team Leader Evaluation",
		category:         "Category",
		rating:           "Rating",
		overallRating:    "Overall rating",
	},
	"de": {
		certificateText:  "Zertifikat",
		certificateTitle: "Zertifikat der ehrenamtlichen Arbeit",
		narrativeFormat:  "Um zu bescheinigen, dass %s, ein/e %s, für %s Stunden und %s Minuten ehrenamtlich gearbeitet hat. Teilnahme an %s in %s, vom %s bis %s.",
		selfReviewTitle:  "Ehrenamtliche Selbstbewertung",
		reviewerTitle:    "Bewertung durch den Teamleiter",
		category:         "Kategorie",
		rating:           "Bewertung",
		overallRating:    "Gesamtbewertung",
	},
	"et": {
		certificateText:  "Tunnistus",
		certificateTitle: "Vabatahtliku töö tunnistus",
		narrativeFormat:  "Sertifitseeritakse, et %s, %s, osales vabatahtlikuna %s tundi ja %s minutit. Osalesid %s asukohas %s, ajavahemikul %s kuni %s.",
		selfReviewTitle:  "Vabatahtliku Enesehinnang",
		reviewerTitle:    "Juhi hinnang",
		category:         "Kategooria",
		rating:           "Hinne",
		overallRating:    "Üldine hinnang",
	},
	"no": {
		certificateText:  "Sertifikat",
		certificateTitle: "Frivillighetsbevis",
		narrativeFormat:  "For å bekrefte at %s, en %s, deltok frivillig i %s timer og %s minutter. Deltok i %s arrangert på %s, fra %s til %s.",
		selfReviewTitle:  "Frivillig Selvvurdering",
		reviewerTitle:    "Leder Vurdering",
		category:         "Kategori",
		rating:           "Vurdering",
		overallRating:    "Samlet vurdering",
	},
}
