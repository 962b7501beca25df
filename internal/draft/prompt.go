package draft

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmreyes/redline/internal/redact"
)

// BuildPrompt assembles the drafting prompt from a tokenized record and the
// jurisdiction's rule set. The record reaches this function already
// tokenized; nothing sensitive appears in the prompt.
func BuildPrompt(rec *redact.TokenizedRecord, rules *RuleSet) (string, error) {
	recordJSON, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal tokenized record: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are drafting a premarital agreement for the jurisdiction ")
	b.WriteString(rules.DisplayName)
	b.WriteString(".\n\n")

	b.WriteString("The intake record below uses opaque placeholders of the form [XXX-12345678] ")
	b.WriteString("in place of names, amounts, dates, and descriptions. Copy every placeholder ")
	b.WriteString("into your draft exactly as written. Never alter, translate, paraphrase, or ")
	b.WriteString("invent a placeholder.\n\n")

	b.WriteString("Intake record:\n")
	b.Write(recordJSON)
	b.WriteString("\n\n")

	b.WriteString("Governing law: ")
	b.WriteString(rules.GoverningLaw)
	b.WriteString("\n\n")

	if len(rules.DraftingNotes) > 0 {
		b.WriteString("Jurisdiction notes:\n")
		for _, note := range rules.DraftingNotes {
			b.WriteString("- ")
			b.WriteString(note)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Produce the agreement as markdown. Start each section with a level-two ")
	b.WriteString("heading (\"## Section Title\") and number the operative paragraphs inside ")
	b.WriteString("each section (\"1. \", \"2. \"). Include these sections in order:\n")
	for _, title := range rules.RequiredSections {
		b.WriteString("- ")
		b.WriteString(title)
		b.WriteString("\n")
	}

	return b.String(), nil
}

// BuildExplainPrompt asks for a plain-language explanation of one clause. The
// clause body still contains placeholders; the instruction keeps them opaque.
func BuildExplainPrompt(clauseTitle, clauseBody string) string {
	var b strings.Builder
	b.WriteString("Explain the following contract clause in plain language, in at most three ")
	b.WriteString("sentences, for a reader with no legal training. Strings of the form ")
	b.WriteString("[XXX-12345678] are confidential placeholders; refer to them generically ")
	b.WriteString("(\"the named party\", \"the stated amount\") and copy none of them into ")
	b.WriteString("your answer.\n\n")
	if clauseTitle != "" {
		b.WriteString("Clause title: ")
		b.WriteString(clauseTitle)
		b.WriteString("\n")
	}
	b.WriteString("Clause text:\n")
	b.WriteString(clauseBody)
	return b.String()
}

// BuildAnswerPrompt asks for an answer to a reviewer's question about a
// clause, under the same placeholder rules as explanations.
func BuildAnswerPrompt(clauseTitle, clauseBody, question string) string {
	var b strings.Builder
	b.WriteString("A reviewer asked a question about the contract clause below. Answer it ")
	b.WriteString("plainly and concisely. Strings of the form [XXX-12345678] are confidential ")
	b.WriteString("placeholders; refer to them generically and copy none of them into your ")
	b.WriteString("answer.\n\n")
	if clauseTitle != "" {
		b.WriteString("Clause title: ")
		b.WriteString(clauseTitle)
		b.WriteString("\n")
	}
	b.WriteString("Clause text:\n")
	b.WriteString(clauseBody)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	return b.String()
}
