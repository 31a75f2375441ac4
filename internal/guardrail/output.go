package guardrail

import (
	"log/slog"
	"regexp"
	"unicode/utf8"

	"lexora-chat/internal/gate"
	"lexora-chat/internal/lang"
)

// SafeFallbackMessage replaces model output that claims a supplied document
// was never received.
const SafeFallbackMessage = "Technical error: document context missing or not injected. Please retry."

const previewLength = 200

// Phrases meaning "I did not receive / cannot see the document" or "send the
// document to me". Non-receipt claims are first person and requests name the
// assistant as recipient, so advice to send a letter to an office passes.
// Matched against lang.Fold output.
var forbiddenPhrases = compileAll([]string{
	// EN
	`\b(i|we) (have not|haven't|has not|did not|didn't|do not|don't) (yet )?(received|receive|got|get|seen|see)\b.{0,40}?\b(document|file|letter|attachment|upload)`,
	`\bno (document|file|letter|attachment)s? (was |were |has been |have been )?(provided|attached|uploaded|received|shared)`,
	`\b(i|we) (cannot|can't|can not|am unable to|am not able to|was unable to) (see|access|find|open|read|view)\b.{0,40}?\b(document|file|letter|attachment|upload)`,
	`\b(send|upload|share|provide|attach|forward|paste)\b.{0,60}?\b(document|file|letter|copy|photo|scan|attachment)s?\b.{0,40}?\b(here|in (this|the) chat|so (that )?(i|we) (can|could|may)|for me to)\b`,
	`\b(send|share|provide) me your (data|details|information)\b`,
	// DE
	`\b(ich habe|habe ich|wir haben|haben wir)\b.{0,40}?(dokument|datei|schreiben|brief|unterlagen?)\w* (noch )?nicht (erhalten|bekommen|gesehen)`,
	`(dokument|datei|schreiben|brief|unterlagen?)\w* (liegt|liegen) (mir|uns) (noch )?nicht vor`,
	`\b(ich habe|habe ich|wir haben|haben wir) (noch |leider )*kein(e|en)? (dokument|datei|schreiben|brief|unterlagen?)\w* (erhalten|bekommen|gesehen|hochgeladen)`,
	`\b(ich kann|kann ich|wir konnen|konnen wir) (das|den|die|ihr(e|en)?) (dokument|brief|schreiben|datei)\w* nicht (sehen|lesen|offnen|finden)`,
	`\b(sende|schicke|lade|senden sie|schicken sie|laden sie)\b.{0,50}?(dokument|brief|schreiben|unterlagen|datei)\w*.{0,40}?\b(hier|im chat|damit (ich|wir))\b`,
	// IT
	`\bnon (ho|abbiamo) (ancora )?ricevuto\b.{0,30}?(documento|file|lettera|allegato)`,
	`\bnon (riesco|posso) (a )?(vedere|leggere|aprire|trovare)\b.{0,30}?(documento|file|lettera|allegato)`,
	`\b(inviami|mandami|caricami|inviamelo|mandamelo|inviamela|mandamela)\b.{0,30}?(documento|file|lettera|allegato|i tuoi dati)`,
	`\b(invia|manda|carica|condividi)\b.{0,40}?(documento|file|lettera|allegato)\w*.{0,30}?\b(qui|in chat|cosi (che )?(io )?possa)\b`,
	// FR
	`\bn'ai pas (encore )?recu\b.{0,30}?(document|fichier|lettre|courrier)`,
	`\b(envoyez|envoie|transmettez|transmets|telechargez|telecharge)-moi\b.{0,30}?(document|fichier|lettre|courrier)`,
	`\b(envoyez|envoie|telechargez|telecharge|partagez)\b.{0,40}?(document|fichier|lettre|courrier)\w*.{0,30}?\b(ici|dans (le|ce) chat|pour que je)\b`,
	// ES
	`\bno (he|hemos) recibido\b.{0,30}?(documento|archivo|carta)`,
	`\b(enviame|envieme|mandame|mandeme)\b.{0,30}?(documento|archivo|carta)`,
	`\b(sube|suba|adjunta|adjunte|comparte)\b.{0,40}?(documento|archivo|carta)\w*.{0,30}?\b(aqui|en (el|este) chat|para que (yo )?pueda)\b`,
	// TR, RO, PL
	`\b(belge|dosya|mektup)\w* (henuz )?(almad[iı]m|gormed[iı]m|ulasmad[iı])`,
	`\bnu am primit\b.{0,30}?(document|fisier|scrisoare)`,
	`\bnie (otrzyma|dosta)ł\w*.{0,30}?(dokument|plik|pism|list)`,
	// RU, UK, AR
	`не (получил|вижу|могу найти)\S*.{0,30}?(документ|файл|письм)`,
	`не (отримав|бачу)\S*.{0,30}?(документ|файл|лист)`,
	`لم (استلم|اتلق)`,
})

// letterBlock is the tagged letter body. Its text is addressed to the
// authority, not to the user, so it is not scanned.
var letterBlock = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(gate.LetterOpenTag) + `.*?` + regexp.QuoteMeta(gate.LetterCloseTag))

func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// OutputResult is the outcome of output validation. When OK is false the
// Response is SafeFallbackMessage and Pattern names the phrase that matched.
type OutputResult struct {
	OK       bool
	Response string
	Pattern  string
}

// ValidateOutput checks model output for claims that the document is
// missing. It only applies when a document was supplied
// (documentTextLength > 0); otherwise output passes through unchanged.
func ValidateOutput(documentTextLength int, output string) OutputResult {
	if documentTextLength <= 0 {
		return OutputResult{OK: true, Response: output}
	}
	folded := lang.Fold(letterBlock.ReplaceAllString(output, " "))
	for _, re := range forbiddenPhrases {
		if re.MatchString(folded) {
			return OutputResult{OK: false, Response: SafeFallbackMessage, Pattern: re.String()}
		}
	}
	return OutputResult{OK: true, Response: output}
}

// ViolationContext identifies where a violation happened, for the log line.
type ViolationContext struct {
	Endpoint   string
	CaseID     string
	DocumentID string
}

// OutputValidator runs ValidateOutput and logs every substitution.
type OutputValidator struct {
	logger *slog.Logger
}

func NewOutputValidator(logger *slog.Logger) *OutputValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &OutputValidator{logger: logger}
}

func (v *OutputValidator) Validate(vc ViolationContext, documentTextLength int, output string) OutputResult {
	res := ValidateOutput(documentTextLength, output)
	if res.OK {
		return res
	}
	preview, _ := lang.Truncate(output, previewLength)
	v.logger.Warn("forbidden phrase in model output",
		"code", "FORBIDDEN_PHRASE_IN_OUTPUT",
		"endpoint", vc.Endpoint,
		"case_id", vc.CaseID,
		"document_id", vc.DocumentID,
		"document_text_length", documentTextLength,
		"output_length", utf8.RuneCountInString(output),
		"output_preview", preview,
		"pattern", res.Pattern,
	)
	return res
}
