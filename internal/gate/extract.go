package gate

import (
	"regexp"
	"strings"

	"lexora-chat/internal/domain"
	"lexora-chat/internal/lang"
)

var (
	subjectLine = regexp.MustCompile(
		`(?im)^\s*(betreff|oggetto|subject|objet|asunto|konu|subiect|temat|тема|الموضوع)\s*:\s*(.+?)\s*$`)
	referenceLine = regexp.MustCompile(
		`(?im)^\s*(aktenzeichen|az\.|steuernummer|kundennummer|riferimento|rif\.|protocollo|reference|ref\.|référence|referencia|referință|sygnatura|номер дела|номер справи)\s*:\s*(.+?)\s*$`)
	dateToken = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2}|\d{1,2}[./]\d{1,2}[./]\d{2,4})\b`)
)

// ExtractSummary fills a DocumentSummary from a generated letter: the subject
// and reference lines, the first date, the body between salutation and
// closing, and the first line after the closing as sender name. Fields that
// cannot be found stay empty.
func ExtractSummary(letter string) domain.DocumentSummary {
	letter = ExtractLetter(letter)
	var out domain.DocumentSummary
	if m := subjectLine.FindStringSubmatch(letter); m != nil {
		out.Subject = m[2]
	}
	if m := referenceLine.FindStringSubmatch(letter); m != nil {
		out.Reference = m[2]
	}
	if m := dateToken.FindString(letter); m != "" {
		out.Date = m
	}

	lines := strings.Split(letter, "\n")
	salutation, closing := -1, -1
	for i, l := range lines {
		folded := lang.Fold(l)
		if salutation < 0 && salutationMarker.MatchString(folded) {
			salutation = i
			continue
		}
		if salutation >= 0 && closing < 0 && closingMarker.MatchString(folded) {
			closing = i
			break
		}
	}
	if salutation >= 0 {
		end := len(lines)
		if closing > salutation {
			end = closing
		}
		out.MainContent = strings.TrimSpace(strings.Join(lines[salutation+1:end], "\n"))
	}
	if closing >= 0 {
		for _, l := range lines[closing+1:] {
			if name := strings.TrimSpace(l); name != "" {
				out.SenderName = name
				break
			}
		}
	}
	return out
}
