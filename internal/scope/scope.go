// Package scope decides whether a chat message is about bureaucratic or legal
// correspondence. The keyword lists are heuristics and meant to be tuned.
package scope

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"lexora-chat/internal/lang"
)

// Confidence grades a Verdict.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// MinMessageLength is the rune count below which a message is accepted
// without keyword analysis.
const MinMessageLength = 10

// Verdict is the result of Check. It depends only on the message text.
type Verdict struct {
	InScope    bool
	Confidence Confidence
	Reason     string
}

// Patterns run against lang.Fold output, so they are lower-case and free of
// accents. \b only works around ASCII letters; Cyrillic and Arabic stems are
// plain substrings.
var inScopePatterns = compileAll([]string{
	// DE institutions and documents
	`\bfinanzamt\b`,
	`\bjobcenter\b`,
	`\bschufa\b`,
	`\bagentur fur arbeit\b`,
	`\bkrankenkasse\b`,
	`\bauslanderbehorde\b|\bburgeramt\b|\bfamilienkasse\b`,
	`\brundfunkbeitrag\b|\bgez\b`,
	`\bbescheid\w*`,
	`\bmahnung\w*|\bmahnbescheid\w*`,
	`\beinspruch\w*`,
	`\bwiderspruch\w*`,
	`\bfrist\w*`,
	`\bbu(ss|ß)geld\w*`,
	`\bkundigung\w*`,
	`\bsteuer\w*`,
	`\bgericht\w*`,
	`\bbehorde\w*`,
	`\binkasso\w*`,
	`\brechnung\w*`,
	// IT
	`\bagenzia (delle )?entrate\b`,
	`\binps\b|\binail\b`,
	`\bequitalia\b|\bagenzia (delle )?entrate riscossione\b`,
	`\bprefettura\b|\bquestura\b`,
	`\bmult[ae]\b`,
	`\bricors[oi]\b`,
	`\bscadenz[ae]\b`,
	`\bcartell[ae] esattorial[ei]\b`,
	`\bverbale\b`,
	`\braccomandata\b`,
	`\bsollecito\b|\bdiffida\b`,
	`\btribunale\b|\bgiudice di pace\b`,
	`\bimpost[ae]\b|\bbollo auto\b`,
	`\bcontratto\b|\bdisdetta\b`,
	// EN
	`\btax(es)?\b|\btax office\b`,
	`\bfines?\b|\bpenalt(y|ies)\b`,
	`\bappeal\w*`,
	`\bdeadlines?\b`,
	`\bobjection\b`,
	`\bcourt\b`,
	`\bofficial letter\b|\bletter from\b`,
	`\binvoice\b|\bdebt collect\w*`,
	`\bunemployment benefit\w*`,
	// FR
	`\bimpots?\b`,
	`\bamende\b`,
	`\brecours\b`,
	`\bmise en demeure\b`,
	`\bprefecture\b|\bcaf\b`,
	// ES
	`\bhacienda\b`,
	`\brecurso\b`,
	`\bplazo\b`,
	`\breclamacion\b`,
	// TR
	`\bvergi\w*`,
	`\bitiraz\w*`,
	`\bceza\w*`,
	`\bmahkeme\w*`,
	// RO
	`\bamenda\b`,
	`\bcontestati[ea]\b`,
	`\bimpozit\w*`,
	`\bsomatie\b`,
	// PL
	`\bmandat\w*`,
	`\bodwołani\w*`,
	`\burzad skarbowy\b`,
	`\bpodat(ek|ku|ki)\b`,
	// RU / UK
	`налог`,
	`штраф`,
	`жалоб`,
	`податк`,
	`скарг`,
	// AR
	`ضريبة`,
	`غرامة`,
	`محكمة`,
	`اعتراض`,
})

var outOfScopePatterns = compileAll([]string{
	`\bricett[ae]\b|\brezept\w*|\brecipes?\b|\brecettes?\b|\brecetas?\b|\btarifi\b`,
	`\bal forno\b|\bbacken\b|\bcooking\b|\bcucinare\b|\bcocinar\b`,
	`\bpizza\b|\bpasta\b|\blasagn\w*|\bsushi\b|\bkuchen\b|\btiramisu\b`,
	`\bingredient\w*|\bzutaten\b`,
	`\bpatat\w*|\bkartoffel\w*|\bpotato\w*`,
	`\bmovies?\b|\bnetflix\b|\bserie tv\b|\bfilm\w*`,
	`\bsongs?\b|\bcanzon[ei]\b|\blyrics\b|\bmusic\w*|\bmusik\b`,
	`\bvideo ?games?\b|\bvideogioc\w*|\bgaming\b|\bfortnite\b|\bminecraft\b|\bplaystation\b|\bxbox\b|\bnintendo\b`,
	`\bworkout\w*|\ballenamento\b|\bpalestra\b|\bgym\b|\bfitness\b|\bdieta?\b`,
	`\bjokes?\b|\bbarzellett\w*|\bwitz\w*|\bblagues?\b|\bchistes?\b`,
	`\boroscop\w*|\bhoroskop\w*|\bhoroscope\w*`,
	`\bfootball\b|\bcalcio\b|\bfu(ss|ß)ball\b|\bfutbol\b`,
	`\bweather\b|\bmeteo\b|\bwetter\b`,
	`рецепт`,
	`фильм|фільм`,
	`وصفة`,
})

func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

func countHits(patterns []*regexp.Regexp, text string) int {
	hits := 0
	for _, re := range patterns {
		if re.MatchString(text) {
			hits++
		}
	}
	return hits
}

// Check classifies message. Ambiguous messages are accepted with low confidence.
func Check(message string) Verdict {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return Verdict{InScope: false, Confidence: ConfidenceHigh, Reason: "empty_message"}
	}
	if utf8.RuneCountInString(trimmed) < MinMessageLength {
		return Verdict{InScope: true, Confidence: ConfidenceLow, Reason: "short_message"}
	}

	folded := lang.Fold(trimmed)
	in := countHits(inScopePatterns, folded)
	out := countHits(outOfScopePatterns, folded)

	switch {
	case out > 0 && in == 0:
		return Verdict{InScope: false, Confidence: ConfidenceHigh, Reason: "out_of_scope_keywords"}
	case in > 0 && out == 0:
		conf := ConfidenceMedium
		if in >= 2 {
			conf = ConfidenceHigh
		}
		return Verdict{InScope: true, Confidence: conf, Reason: "in_scope_keywords"}
	case in == 0 && out == 0:
		return Verdict{InScope: true, Confidence: ConfidenceLow, Reason: "no_keywords"}
	default:
		return Verdict{InScope: in >= out, Confidence: ConfidenceMedium, Reason: "mixed_keywords"}
	}
}
