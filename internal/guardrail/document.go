// Package guardrail holds the pre-flight document check and the post-flight
// output check that surround every document-aware LLM call.
package guardrail

import (
	"fmt"
	"unicode/utf8"

	"lexora-chat/internal/domain"
)

// CodeDocumentTextMissing is the error code surfaced to HTTP callers.
const CodeDocumentTextMissing = "DOCUMENT_TEXT_MISSING"

const (
	// MissingTextHint is reported when ids are present but no OCR text is.
	MissingTextHint = "OCR text not provided to chat. Fix pipeline."
	// UploadWithoutTextHint is reported when the client flagged a fresh
	// upload whose text has not been extracted yet.
	UploadWithoutTextHint = "Upload received without extracted text. Retry after OCR completes."
)

// MissingTextError is returned when a document is expected but its text is
// not available. It carries the ids for operator diagnosis.
type MissingTextError struct {
	Hint               string
	CaseID             string
	DocumentID         string
	PraticaID          string
	DocumentTextLength int
	UploadWithoutText  bool
}

func (e *MissingTextError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("guardrail: %s: %s", CodeDocumentTextMissing, e.Hint)
}

// Code returns CodeDocumentTextMissing.
func (e *MissingTextError) Code() string {
	return CodeDocumentTextMissing
}

// RequireDocumentText fails closed: a flagged upload without text, or any
// document identifier without non-blank text, yields a *MissingTextError.
// Non-blank text always passes, with or without identifiers.
func RequireDocumentText(doc domain.DocumentContext, uploadWithoutText bool) error {
	if uploadWithoutText {
		return missing(doc, UploadWithoutTextHint, true)
	}
	if doc.HasIdentifier() && !doc.HasText() {
		return missing(doc, MissingTextHint, false)
	}
	return nil
}

func missing(doc domain.DocumentContext, hint string, upload bool) *MissingTextError {
	return &MissingTextError{
		Hint:               hint,
		CaseID:             doc.CaseID,
		DocumentID:         doc.DocumentID,
		PraticaID:          doc.PraticaID,
		DocumentTextLength: utf8.RuneCountInString(doc.DocumentText),
		UploadWithoutText:  upload,
	}
}
