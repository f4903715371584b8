package parsing

import "regexp"

var (
	reEmail  = regexp.MustCompile(`[\w.+\-]+@[\w\-]+\.[\w.\-]+`)
	reURL    = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)
	rePhone  = regexp.MustCompile(`(?:\+\d{1,3}[\s.\-]?)?(?:\(0\)\s?)?\d(?:[\s.\-]?\d){8,}`)
	rePostal = regexp.MustCompile(`\b\d{5}\b`)
)

// IsContact reports whether s looks like contact details rather than a name:
// an e-mail, a URL, a phone number or a postal code.
func IsContact(s string) bool {
	return reEmail.MatchString(s) || reURL.MatchString(s) || rePhone.MatchString(s) || rePostal.MatchString(s)
}
