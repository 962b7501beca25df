package ops

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	"github.com/tmreyes/redline/internal/db"
	"github.com/tmreyes/redline/internal/draft"
	"github.com/tmreyes/redline/internal/errors"
	"github.com/tmreyes/redline/internal/intake"
)

// AnnotateInput contains parameters for the Annotate operation.
type AnnotateInput struct {
	ClauseID    string
	CallerEmail string
	Kind        string // comment | question | flag
	Body        string
}

// AnnotateOutput contains the created annotation as rendered for the caller.
type AnnotateOutput struct {
	Annotation AnnotationView `json:"annotation"`
	ClauseID   string         `json:"clause_id"`
}

// Annotate appends one reviewer annotation to a clause. Access is
// capability-style: any authenticated caller who holds the clause identifier
// may annotate; no party-role binding is checked. Questions get a derived
// answer from the drafting service, attached at most once and best-effort.
func Annotate(ctx context.Context, database *sql.DB, gen draft.Generator, input AnnotateInput) (*AnnotateOutput, error) {
	if input.CallerEmail == "" {
		return nil, errors.NewUnauthenticated("annotation requires a verified caller identity")
	}
	if !AnnotationKinds[input.Kind] {
		return nil, errors.NewInvalidRequest("kind must be one of: comment, question, flag")
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, errors.NewInvalidRequest("body is required")
	}

	c, err := db.GetClause(database, input.ClauseID)
	if err != nil {
		return nil, err
	}
	submissionID, err := db.GetClauseSubmission(database, input.ClauseID)
	if err != nil {
		return nil, err
	}

	// Same fail-closed precondition as every review operation.
	rmap, err := db.GetRedactionMap(database, submissionID)
	if err != nil {
		return nil, err
	}

	id, err := newULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	annotation := &db.Annotation{
		ID:          id,
		ClauseID:    input.ClauseID,
		AuthorEmail: intake.NormalizeEmail(input.CallerEmail),
		Kind:        input.Kind,
		Body:        input.Body,
		CreatedAt:   time.Now().Unix(),
	}
	if err := db.InsertAnnotation(database, annotation); err != nil {
		return nil, err
	}

	// Questions get a drafted answer over the still-tokenized clause text.
	// Failure leaves the question unanswered; it never fails the mutation.
	if input.Kind == "question" && gen != nil {
		title := ""
		if c.Title != nil {
			title = *c.Title
		}
		prompt := draft.BuildAnswerPrompt(title, c.Body, input.Body)
		if answer, genErr := gen.Generate(ctx, prompt); genErr == nil && strings.TrimSpace(answer) != "" {
			if err := db.SetAnnotationAnswer(database, id, answer); err == nil {
				annotation.Answer = &answer
			}
		} else if genErr != nil {
			log.Printf("annotation %s: answer generation failed: %v", id, genErr)
		}
	}

	view := annotationViews([]db.Annotation{*annotation}, rmap)[0]
	return &AnnotateOutput{Annotation: view, ClauseID: input.ClauseID}, nil
}
