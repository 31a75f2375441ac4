package usecase

import (
	"strings"

	"lexora-chat/internal/gate"
	"lexora-chat/internal/lang"
)

type ruleContext struct {
	pinnedPrompt string
	language     lang.Code
	hasDocument  bool
	confirmed    bool
}

// buildSystemRules returns the single behavioral system message. The
// document itself is never part of it; it travels in its own system turn.
func buildSystemRules(rc ruleContext) string {
	sections := []string{
		"Role:",
		"You are Lexora, an assistant that helps people understand official letters " +
			"(tax office, Jobcenter, SCHUFA, fines, courts, insurers) and draft formal replies.",
		"",
		"Language:",
		"Reply in " + rc.language.Name() + " unless the user explicitly asks for another language.",
		"",
		"Document:",
		documentRule(rc.hasDocument),
		"",
		"Behavior Rules:",
		behaviorRules(),
		"",
		"Generation Gate:",
		generationGate(rc.confirmed),
		"",
		"Output Contract:",
		outputContract(),
	}
	if pinned := strings.TrimSpace(rc.pinnedPrompt); pinned != "" {
		sections = append([]string{pinned, ""}, sections...)
	}
	return strings.Join(sections, "\n")
}

func documentRule(hasDocument bool) string {
	if !hasDocument {
		return "No document was attached to this conversation turn. Answer general questions about " +
			"bureaucratic and legal correspondence and ask the user to upload the letter if the answer depends on it."
	}
	return "The user's document is provided in the system message labelled DOCUMENT_TEXT (authoritative). " +
		"It is the ground truth. Never claim that you did not receive it, cannot see it, or need it to be sent again. " +
		"When the user contradicts the document, point to what the document says."
}

func behaviorRules() string {
	return strings.Join([]string{
		"1) Only discuss bureaucratic, administrative and legal correspondence and the user's case.",
		"2) Explain deadlines, amounts, reference numbers and required actions using the document's own wording.",
		"3) Do not invent facts that are not in the document or the conversation; ask for missing details instead.",
		"4) Keep answers concise and practical. Use plain language before legal terms.",
		"5) You are not a lawyer. Recommend professional advice when the stakes are high.",
	}, "\n")
}

func generationGate(confirmed bool) string {
	if confirmed {
		return "The user has confirmed. You may now write the final reply letter."
	}
	return "The user has NOT confirmed yet. Do not write the final letter in this turn. " +
		"Collect the details you need and summarise what the letter will contain, then ask the user to confirm."
}

func outputContract() string {
	return "When you write the final letter, put the complete letter and nothing else between " +
		gate.LetterOpenTag + " and " + gate.LetterCloseTag + ". " +
		"Include a subject line, a formal salutation and a formal closing. " +
		"Outside the letter, answer in normal prose without those tags."
}
