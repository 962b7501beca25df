package ops

import (
	"database/sql"
	"strings"

	"github.com/tmreyes/redline/internal/db"
	"github.com/tmreyes/redline/internal/errors"
	"github.com/tmreyes/redline/internal/redact"
)

// DocumentInput contains parameters for the AssembleDocument operation.
type DocumentInput struct {
	SubmissionID string
	CallerEmail  string
}

// DocumentOutput contains the fully assembled agreement.
type DocumentOutput struct {
	SubmissionID string `json:"submission_id"`
	Jurisdiction string `json:"jurisdiction"`
	Markdown     string `json:"markdown"`
}

// AssembleDocument renders the complete agreement as readable markdown with
// all tokens resolved. A full document never ships display-masked, so this
// operation requires a verified caller identity.
func AssembleDocument(database *sql.DB, input DocumentInput) (*DocumentOutput, error) {
	if input.CallerEmail == "" {
		return nil, errors.NewUnauthenticated("the assembled document requires a verified caller identity")
	}

	sub, err := db.GetSubmission(database, input.SubmissionID)
	if err != nil {
		return nil, err
	}

	rmap, err := db.GetRedactionMap(database, input.SubmissionID)
	if err != nil {
		return nil, err
	}

	bindIdentity(database, sub, input.CallerEmail)

	doc, err := db.GetLatestDocument(database, input.SubmissionID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("# Premarital Agreement\n")
	for _, s := range doc.Sections {
		b.WriteString("\n## ")
		b.WriteString(redact.Unmask(s.Title, rmap))
		b.WriteString("\n\n")
		b.WriteString(strings.TrimRight(redact.Unmask(s.Body, rmap), "\n"))
		b.WriteString("\n")
	}

	return &DocumentOutput{
		SubmissionID: sub.ID,
		Jurisdiction: doc.Jurisdiction,
		Markdown:     b.String(),
	}, nil
}
