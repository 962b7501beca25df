package ops

import (
	"context"
	"database/sql"
	"io"
	"log"
	"strings"
	"time"

	"github.com/tmreyes/redline/internal/clause"
	"github.com/tmreyes/redline/internal/db"
	"github.com/tmreyes/redline/internal/draft"
	"github.com/tmreyes/redline/internal/errors"
	"github.com/tmreyes/redline/internal/intake"
	"github.com/tmreyes/redline/internal/redact"
)

// SubmitInput contains parameters for the Submit operation.
type SubmitInput struct {
	Record *intake.Record
}

// SubmitOutput contains the result of the Submit operation.
type SubmitOutput struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	ClausesAvailable bool   `json:"clauses_available"`
	Jurisdiction     string `json:"jurisdiction"`
}

// Submit runs the full generation pipeline synchronously within one call:
// validate, tokenize, draft, unmask-check, segment, persist. The caller's
// request stays open for the duration; the drafting call is the only slow
// step. A segmentation or clause-persistence failure degrades review
// availability but never fails the pipeline once a document exists.
func Submit(ctx context.Context, database *sql.DB, gen draft.Generator, entropy io.Reader, input SubmitInput) (*SubmitOutput, error) {
	// Rejected submissions never get a row or a redaction map.
	if err := intake.Validate(input.Record); err != nil {
		return nil, err
	}
	rec := input.Record

	id, err := newULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	tokenized, rmap, err := redact.Tokenize(rec, entropy)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	now := time.Now().Unix()
	sub := &db.Submission{
		ID:           id,
		Status:       db.StatusPending,
		Jurisdiction: strings.ToUpper(strings.TrimSpace(rec.Jurisdiction)),
		ContactEmail: intake.NormalizeEmail(rec.ContactEmail),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if rec.PartyA.Email != "" {
		email := intake.NormalizeEmail(rec.PartyA.Email)
		sub.PartyAEmail = &email
	}
	if rec.PartyB.Email != "" {
		email := intake.NormalizeEmail(rec.PartyB.Email)
		sub.PartyBEmail = &email
	}

	// The submission row and its redaction map are created together; the map
	// is the sole persisted bridge back to the original values.
	if err := db.InsertSubmission(database, sub); err != nil {
		return nil, err
	}
	if err := db.InsertRedactionMap(database, id, rmap); err != nil {
		return nil, err
	}

	// No rule library, no adapter call.
	rules, err := draft.LoadRules(sub.Jurisdiction)
	if err != nil {
		return failSubmission(database, id, err)
	}

	if err := db.UpdateSubmissionStatus(database, id, db.StatusProcessing, false); err != nil {
		return nil, err
	}

	prompt, err := draft.BuildPrompt(tokenized, rules)
	if err != nil {
		return failSubmission(database, id, errors.NewInternal(err))
	}

	raw, err := gen.Generate(ctx, prompt)
	if err != nil {
		return failSubmission(database, id, errors.NewGenerationFailed(err))
	}

	doc, err := draft.ParseDocument(raw, sub.Jurisdiction)
	if err != nil {
		return failSubmission(database, id, errors.NewGenerationFailed(err))
	}

	// A token-shaped string left after a full unmask pass means the drafting
	// service altered or fabricated a placeholder. Hard error: the text must
	// never reach a deliverable.
	var assembled strings.Builder
	for _, section := range doc.Sections {
		assembled.WriteString(redact.Unmask(section.Title, rmap))
		assembled.WriteString("\n")
		assembled.WriteString(redact.Unmask(section.Body, rmap))
		assembled.WriteString("\n")
	}
	if residual := redact.ScanResidual(assembled.String()); len(residual) > 0 {
		return failSubmission(database, id, errors.NewResidualToken(residual))
	}

	docID, err := newULID()
	if err != nil {
		return failSubmission(database, id, errors.NewInternal(err))
	}
	stored := &db.Document{
		ID:           docID,
		SubmissionID: id,
		Jurisdiction: doc.Jurisdiction,
		Sections:     doc.Sections,
		CreatedAt:    time.Now().Unix(),
	}
	if err := db.ReplaceDocument(database, stored); err != nil {
		return failSubmission(database, id, err)
	}

	// Segment and persist clauses as one batch. Failure here degrades to
	// "document ready, review unavailable": the document itself is the
	// primary deliverable.
	available := true
	if err := persistClauses(database, docID, doc.Sections); err != nil {
		log.Printf("submission %s: clause segmentation unavailable: %v", id, err)
		available = false
	}

	if err := db.UpdateSubmissionStatus(database, id, db.StatusCompleted, available); err != nil {
		return nil, err
	}

	return &SubmitOutput{
		ID:               id,
		Status:           db.StatusCompleted,
		ClausesAvailable: available,
		Jurisdiction:     sub.Jurisdiction,
	}, nil
}

// persistClauses segments the document's sections and writes the clause set
// in one transaction.
func persistClauses(database *sql.DB, documentID string, sections []draft.Section) error {
	segments := make([]clause.Section, len(sections))
	for i, s := range sections {
		segments[i] = clause.Section{Title: s.Title, Body: s.Body}
	}

	clauses := clause.SegmentDocument(segments)
	stored := make([]db.StoredClause, len(clauses))
	for i, c := range clauses {
		clauseID, err := newULID()
		if err != nil {
			return err
		}
		stored[i] = db.StoredClause{
			ID:       clauseID,
			Seq:      c.Seq,
			Title:    c.Title,
			Body:     c.Body,
			Category: c.Category,
		}
	}
	return db.InsertClauses(database, documentID, stored)
}

// failSubmission marks the submission failed and returns the causing error.
// Failed submissions expose no partial document.
func failSubmission(database *sql.DB, id string, cause error) (*SubmitOutput, error) {
	if err := db.UpdateSubmissionStatus(database, id, db.StatusFailed, false); err != nil {
		log.Printf("submission %s: could not mark failed: %v", id, err)
	}
	return nil, cause
}
