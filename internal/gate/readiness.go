package gate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"lexora-chat/internal/lang"
)

const (
	LetterOpenTag  = "[LETTER]"
	LetterCloseTag = "[/LETTER]"
)

// MinLetterLength is the rune count a tagless text must exceed to count as a letter.
const MinLetterLength = 300

var letterBlock = regexp.MustCompile(`(?is)\[LETTER\](.*?)\[/LETTER\]`)

// Marker classes run against lang.Fold output.
var (
	subjectMarker = regexp.MustCompile(
		`\b(betreff|oggetto|subject|objet|asunto|konu|subiect|temat)\s*:|(тема|الموضوع)\s*:`)
	salutationMarker = regexp.MustCompile(
		`\bsehr geehrte|\bgentil[ei]\b|\begregi[oa]\b|\bspett\.?(le|abile)\b|\bdear\b|\bmadame, monsieur|\bmonsieur\b|\bestimad[oa]s?\b|\bmuy senor|\bsayın|\bsayin\b|\bstimat[ae]\b|\bszanown|уважаем|шановн|السيد|السادة`)
	closingMarker = regexp.MustCompile(
		`mit freundlichen gru(ß|ss)en|\bfreundliche gru(ß|ss)e|\bhochachtungsvoll|\bcordiali saluti|\bdistinti saluti|\bsincerely|\byours faithfully|\bkind regards|\bbest regards|\bveuillez agreer|\bcordialement|\batentamente|\bsaludos cordiales|\bsaygılarımla|\bsaygilarimla|\bcu stima|\bcu respect|\bz powazaniem|\bz wyrazami szacunku|с уважением|з повагою|مع التحية|مع خالص`)
)

// LooksLikeGeneratedDocument reports whether text is a finished formal
// letter: either wrapped in [LETTER]...[/LETTER], or long enough and carrying
// at least two of subject line, salutation and closing formula.
func LooksLikeGeneratedDocument(text string) bool {
	if m := letterBlock.FindStringSubmatch(text); m != nil && strings.TrimSpace(m[1]) != "" {
		return true
	}
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) <= MinLetterLength {
		return false
	}
	folded := lang.Fold(trimmed)
	markers := 0
	for _, re := range []*regexp.Regexp{subjectMarker, salutationMarker, closingMarker} {
		if re.MatchString(folded) {
			markers++
		}
	}
	return markers >= 2
}

// ExtractLetter returns the body between the letter tags, or the trimmed
// text when no tags are present.
func ExtractLetter(text string) string {
	if m := letterBlock.FindStringSubmatch(text); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}
