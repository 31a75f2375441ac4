package gate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"lexora-chat/internal/domain"
	"lexora-chat/internal/lang"
)

const germanLetter = `Max Mustermann
Musterstraße 1
12345 Berlin

Finanzamt Berlin-Mitte
Neue Jakobstraße 6
10179 Berlin

Berlin, 12.03.2025

Betreff: Einspruch gegen den Einkommensteuerbescheid 2023
Steuernummer: 12/345/67890

Sehr geehrte Damen und Herren,

hiermit lege ich fristgerecht Einspruch gegen den Einkommensteuerbescheid für das Jahr 2023 ein.
Die Werbungskosten wurden nicht vollständig berücksichtigt. Ich bitte um erneute Prüfung und Korrektur des Bescheids.

Mit freundlichen Grüßen

Max Mustermann`

func TestHasUserConfirmed(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"OK", true},
		{"ok!", true},
		{"Confermo, procedi", true},
		{"Sì", true},
		{"ja ja", true},
		{"Oui.", true},
		{"Да", true},
		{"نعم", true},
		{"Yes, proceed with the letter", true},
		{"Ich bestätige die Angaben", true},
		{"Bitte mach weiter", true},
		{"Je confirme", true},
		{"Tamam", true},
		{"no grazie", false},
		{"   ", false},
		{"", false},
		{"What is the procedure for an appeal?", false},
		{"I have court proceedings next week", false},
		{"Ho ricevuto un procedimento dal tribunale, cosa significa?", false},
		{"Il procedimento è chiuso?", false},
		{"Procedi pure", true},
		{"ok, procedi.", true},
		{"okay, but change the date first", false},
		{"Non sono sicuro", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, HasUserConfirmed(tc.msg), "msg=%q", tc.msg)
	}
}

func TestHasUserConfirmed_SummaryKeywordsConfirm(t *testing.T) {
	for _, l := range lang.Supported() {
		kw := lang.Lookup(summaryTables, l).ConfirmKeyword
		require.True(t, HasUserConfirmed(kw), "lang=%s keyword=%q", l, kw)
	}
}

func TestLooksLikeGeneratedDocument_Heuristic(t *testing.T) {
	require.True(t, LooksLikeGeneratedDocument(germanLetter))

	body := "Sehr geehrte Damen und Herren,\n\n" + strings.Repeat("ich widerspreche dem Bescheid. ", 12) + "\n\nMit freundlichen Grüßen\nAnna"
	require.Greater(t, len([]rune(body)), MinLetterLength)
	require.True(t, LooksLikeGeneratedDocument(body))

	italian := "Oggetto: Ricorso contro verbale n. 123\n\nGentile Prefetto,\n\n" + strings.Repeat("con la presente propongo ricorso. ", 10)
	require.True(t, LooksLikeGeneratedDocument(italian))
}

func TestLooksLikeGeneratedDocument_RejectsCasualReplies(t *testing.T) {
	require.False(t, LooksLikeGeneratedDocument("Sure, I can help you understand this letter!"))
	require.False(t, LooksLikeGeneratedDocument(""))

	// markers present but too short
	require.False(t, LooksLikeGeneratedDocument("Sehr geehrte Frau Meier,\nDanke.\nMit freundlichen Grüßen"))

	// long but only one marker class
	long := "Dear Anna, " + strings.Repeat("here is what the notice means for you. ", 12)
	require.False(t, LooksLikeGeneratedDocument(long))
}

func TestLooksLikeGeneratedDocument_ExplicitTag(t *testing.T) {
	require.True(t, LooksLikeGeneratedDocument("Here it is:\n[LETTER]\nShort letter.\n[/LETTER]"))
	require.True(t, LooksLikeGeneratedDocument("[letter]lower-case tags[/letter]"))
	require.False(t, LooksLikeGeneratedDocument("[LETTER]   [/LETTER]"))
}

func TestExtractLetter(t *testing.T) {
	require.Equal(t, "Body text", ExtractLetter("intro [LETTER]\n Body text \n[/LETTER] outro"))
	require.Equal(t, "no tags", ExtractLetter("  no tags \n"))
}

func TestExtractSummary(t *testing.T) {
	s := ExtractSummary("[LETTER]\n" + germanLetter + "\n[/LETTER]")
	require.Equal(t, "Einspruch gegen den Einkommensteuerbescheid 2023", s.Subject)
	require.Equal(t, "12/345/67890", s.Reference)
	require.Equal(t, "12.03.2025", s.Date)
	require.Equal(t, "Max Mustermann", s.SenderName)
	require.True(t, strings.HasPrefix(s.MainContent, "hiermit lege ich fristgerecht Einspruch"))
	require.True(t, strings.HasSuffix(s.MainContent, "Korrektur des Bescheids."))
}

func TestExtractSummary_NothingFound(t *testing.T) {
	require.Equal(t, domain.DocumentSummary{}, ExtractSummary("just a plain answer"))
}

func TestBuildSummaryBlock_OmitsEmptyFields(t *testing.T) {
	block := BuildSummaryBlock(domain.DocumentSummary{
		Subject: "Einspruch",
		Date:    "12.03.2025",
	}, lang.EN)

	require.True(t, strings.HasPrefix(block, "Summary of your letter\n"))
	require.Contains(t, block, "Subject: Einspruch\n")
	require.Contains(t, block, "Date: 12.03.2025\n")
	require.NotContains(t, block, "Sender:")
	require.NotContains(t, block, "Reference:")
	require.NotContains(t, block, "Content:")
	require.True(t, strings.HasSuffix(block, `Reply "I confirm" to generate the final letter, or tell me what to change.`))
}

func TestBuildSummaryBlock_Localized(t *testing.T) {
	data := domain.DocumentSummary{SenderName: "Max", Subject: "Ricorso", Reference: "AZ-1"}

	it := BuildSummaryBlock(data, lang.IT)
	require.Contains(t, it, "Riepilogo della tua lettera")
	require.Contains(t, it, "Mittente: Max")
	require.Contains(t, it, "Oggetto: Ricorso")
	require.Contains(t, it, "Riferimento: AZ-1")
	require.Contains(t, it, `"Confermo"`)

	require.Equal(t, BuildSummaryBlock(data, lang.EN), BuildSummaryBlock(data, lang.Code("XX")))

	for _, l := range lang.Supported() {
		block := BuildSummaryBlock(data, l)
		require.NotContains(t, block, "%!", "lang=%s", l)
		require.Contains(t, block, lang.Lookup(summaryTables, l).ConfirmKeyword)
	}
}

func TestBuildSummaryBlock_TruncatesContent(t *testing.T) {
	block := BuildSummaryBlock(domain.DocumentSummary{MainContent: strings.Repeat("a", 500)}, lang.EN)
	require.Contains(t, block, "Content: "+strings.Repeat("a", contentPreviewLength)+"…\n")
	require.NotContains(t, block, strings.Repeat("a", contentPreviewLength+1))
}
