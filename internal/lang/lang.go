// Package lang holds the closed set of languages the chat answers in and the
// text folding shared by every keyword matcher.
package lang

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Code is an upper-case language code from the supported set.
type Code string

const (
	DE Code = "DE"
	EN Code = "EN"
	IT Code = "IT"
	FR Code = "FR"
	ES Code = "ES"
	TR Code = "TR"
	RO Code = "RO"
	PL Code = "PL"
	AR Code = "AR"
	RU Code = "RU"
	UK Code = "UK"
)

// Default is returned for any input that does not name a supported language.
const Default = EN

var names = map[Code]string{
	DE: "German",
	EN: "English",
	IT: "Italian",
	FR: "French",
	ES: "Spanish",
	TR: "Turkish",
	RO: "Romanian",
	PL: "Polish",
	AR: "Arabic",
	RU: "Russian",
	UK: "Ukrainian",
}

// Supported returns the supported codes in a stable order.
func Supported() []Code {
	return []Code{DE, EN, IT, FR, ES, TR, RO, PL, AR, RU, UK}
}

// Supported reports whether c is one of the supported codes.
func (c Code) Supported() bool {
	_, ok := names[c]
	return ok
}

// Name returns the English name of the language, used in prompt text.
func (c Code) Name() string {
	return Lookup(names, c)
}

// Normalize maps an arbitrary language input to a supported code. Plain codes
// ("de", " It ") match directly; tags such as "de-AT" or "it_IT" are reduced to
// their base language. Anything else yields Default.
func Normalize(input string) Code {
	s := strings.ToUpper(strings.TrimSpace(input))
	if s == "" {
		return Default
	}
	if c := Code(s); c.Supported() {
		return c
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return Default
	}
	base, _ := tag.Base()
	if c := Code(strings.ToUpper(base.String())); c.Supported() {
		return c
	}
	return Default
}

// Lookup returns table[c], falling back to the Default entry.
func Lookup[T any](table map[Code]T, c Code) T {
	if v, ok := table[c]; ok {
		return v
	}
	return table[Default]
}

// Fold lower-cases s, strips combining marks ("bestätige" -> "bestatige",
// "sì" -> "si"), unifies typographic apostrophes and collapses whitespace.
// Letters without a decomposition (ß, ı, ł) are kept as they are.
func Fold(s string) string {
	// Casers and transform chains carry state, so they are built per call.
	lowered := cases.Lower(language.Und).String(s)
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		lowered,
	)
	if err != nil {
		stripped = lowered
	}
	stripped = strings.NewReplacer("’", "'", "‘", "'", "`", "'").Replace(stripped)
	return strings.Join(strings.Fields(stripped), " ")
}

// Truncate cuts s to at most max runes. It reports whether anything was cut.
func Truncate(s string, max int) (string, bool) {
	if max <= 0 {
		return s, false
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i], true
		}
		n++
	}
	return s, false
}
