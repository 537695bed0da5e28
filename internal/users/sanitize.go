package users

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxNicenameLength = 50

var (
	scriptStyleRe  = regexp.MustCompile(`(?is)<(script|style)[^>]*?>.*?</(script|style)>`)
	tagRe          = regexp.MustCompile(`(?s)<[^>]*>`)
	octetRe        = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
	entityRe       = regexp.MustCompile(`&.+?;`)
	loginStrictRe  = regexp.MustCompile(`(?i)[^a-z0-9 _.\-@]`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	localPartRe    = regexp.MustCompile("[^a-zA-Z0-9!#$%&'*+/=?^_`{|}~.-]")
	domainLabelRe  = regexp.MustCompile(`(?i)[^a-z0-9-]`)
	nicenameJoinRe = regexp.MustCompile(`[^a-z0-9_]+`)

	ligatures = strings.NewReplacer(
		"ß", "ss", "æ", "ae", "Æ", "AE", "œ", "oe", "Œ", "OE",
		"ø", "o", "Ø", "O", "đ", "d", "Đ", "D", "ð", "d", "Ð", "D",
		"ł", "l", "Ł", "L", "þ", "th", "Þ", "TH",
	)
)

// SanitizeLogin reduces s to a strict login: markup, accents, percent octets
// and HTML entities are removed, only letters, digits, space, "_", ".", "-"
// and "@" survive, and whitespace is collapsed. Case is preserved.
func SanitizeLogin(s string) string {
	s = stripTags(s)
	s = removeAccents(s)
	s = octetRe.ReplaceAllString(s, "")
	s = entityRe.ReplaceAllString(s, "")
	s = loginStrictRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return whitespaceRe.ReplaceAllString(s, " ")
}

// SanitizeEmail strips characters not allowed in an address and returns ""
// when what remains cannot be an address.
func SanitizeEmail(s string) string {
	s = strings.TrimSpace(s)
	at := strings.LastIndex(s, "@")
	if len(s) < 6 || at < 1 {
		return ""
	}
	local := localPartRe.ReplaceAllString(s[:at], "")
	if local == "" {
		return ""
	}
	domain := s[at+1:]
	if strings.Contains(domain, "..") {
		return ""
	}
	var labels []string
	for _, label := range strings.Split(strings.Trim(domain, " \t\n\r\x00\x0B."), ".") {
		label = strings.Trim(label, " \t\n\r\x00\x0B-")
		label = domainLabelRe.ReplaceAllString(label, "")
		if label != "" {
			labels = append(labels, label)
		}
	}
	if len(labels) < 2 {
		return ""
	}
	return local + "@" + strings.Join(labels, ".")
}

// Nicename derives the URL-safe slug of a login.
func Nicename(login string) string {
	slug := nicenameJoinRe.ReplaceAllString(strings.ToLower(removeAccents(login)), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxNicenameLength {
		slug = strings.TrimRight(slug[:maxNicenameLength], "-")
	}
	return slug
}

func stripTags(s string) string {
	s = scriptStyleRe.ReplaceAllString(s, "")
	s = tagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func removeAccents(s string) string {
	s = ligatures.Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
