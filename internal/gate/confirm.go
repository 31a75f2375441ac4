// Package gate decides when a final letter may be produced: whether the user
// confirmed, whether the model output already is a letter, and what to show
// the user before they confirm.
package gate

import (
	"regexp"
	"strings"

	"lexora-chat/internal/lang"
)

// confirmKeywords match anywhere in the message. The list is generous;
// single verbs that prefix ordinary nouns live in confirmWords instead.
var confirmKeywords = foldAll([]string{
	// EN
	"confirm", "yes, proceed", "yes proceed", "please proceed", "proceed with", "go ahead",
	"generate the letter", "create the letter", "write the letter",
	// IT
	"confermo", "conferma", "sì procedi", "sì, procedi", "vai avanti",
	"genera la lettera", "crea la lettera", "scrivi la lettera",
	// DE
	"bestätige", "bestätigt", "ja weiter", "ja, weiter", "mach weiter", "fortfahren",
	"erstelle den brief", "erstelle das schreiben", "generiere",
	// FR
	"je confirme", "allez-y", "vas-y", "continuez", "génère la lettre", "rédige la lettre",
	// ES
	"confirmo", "adelante", "genera la carta", "crea la carta",
	// TR
	"onaylıyorum", "onayla", "devam et", "oluştur",
	// RO
	"continuă", "generează",
	// PL
	"potwierdzam", "kontynuuj", "wygeneruj",
	// RU / UK
	"подтверждаю", "продолжай", "создай письмо", "підтверджую", "продовжуй", "створи лист",
	// AR
	"أؤكد", "تابع", "أنشئ الرسالة",
})

// confirmWords must stand alone: "procedi" is also the start of
// "procedimento".
var confirmWords = regexp.MustCompile(`(^|[^\p{L}])(procedi|prosegui)([^\p{L}]|$)`)

// shortAffirmative matches messages that consist only of an agreement word.
var shortAffirmative = regexp.MustCompile(
	`^(ok|okay|okey|yes|yep|yeah|sure|ja|jawohl|genau|klar|oui|ouais|d'accord|si|certo|va bene|perfetto|vale|claro|evet|tamam|da|tak|sim|да|так|ок|хорошо|добре|نعم)` +
		`( (ok|okay|ja|si|yes|da|evet|да))?[\s!.,;:)]*$`,
)

func foldAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = lang.Fold(s)
	}
	return out
}

// HasUserConfirmed reports whether message counts as an explicit go-ahead to
// generate the final letter.
func HasUserConfirmed(message string) bool {
	folded := lang.Fold(message)
	if folded == "" {
		return false
	}
	for _, kw := range confirmKeywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	if confirmWords.MatchString(folded) {
		return true
	}
	return shortAffirmative.MatchString(folded)
}
