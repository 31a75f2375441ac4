package domain

import "strings"

// DocumentContext carries the identifiers of the letter a chat is about and
// the OCR text extracted from it, if any.
type DocumentContext struct {
	CaseID       string
	DocumentID   string
	PraticaID    string
	DocumentText string
}

// HasIdentifier reports whether any document identifier is set.
func (d DocumentContext) HasIdentifier() bool {
	return strings.TrimSpace(d.CaseID) != "" ||
		strings.TrimSpace(d.DocumentID) != "" ||
		strings.TrimSpace(d.PraticaID) != ""
}

// HasText reports whether the OCR text contains anything besides whitespace.
func (d DocumentContext) HasText() bool {
	return strings.TrimSpace(d.DocumentText) != ""
}

// DocumentSummary is the structured recap shown to the user before the final
// letter is generated. Empty fields are omitted when rendered.
type DocumentSummary struct {
	SenderName       string
	SenderAddress    string
	RecipientName    string
	RecipientAddress string
	Subject          string
	Date             string
	Reference        string
	MainContent      string
}
