package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tmreyes/redline/internal/db"
	"github.com/tmreyes/redline/internal/draft"
	"github.com/tmreyes/redline/internal/errors"
	"github.com/tmreyes/redline/internal/redact"
)

// ExplainInput contains parameters for the Explain operation.
type ExplainInput struct {
	ClauseID    string
	CallerEmail string
}

// ExplainOutput contains the clause's plain-language explanation, rendered
// for the caller's visibility level.
type ExplainOutput struct {
	ClauseID    string `json:"clause_id"`
	Explanation string `json:"explanation"`
	Generated   bool   `json:"generated"`
}

// Explain returns a plain-language explanation of one clause, generating and
// persisting it on first request. The explanation is written once per clause;
// concurrent first requests race on the write and the loser re-reads the
// winner's text. Generation runs over the still-tokenized clause body so the
// drafting service never sees raw identities or amounts.
func Explain(ctx context.Context, database *sql.DB, gen draft.Generator, input ExplainInput) (*ExplainOutput, error) {
	c, err := db.GetClause(database, input.ClauseID)
	if err != nil {
		return nil, err
	}
	submissionID, err := db.GetClauseSubmission(database, input.ClauseID)
	if err != nil {
		return nil, err
	}

	// Fail closed before rendering any text.
	rmap, err := db.GetRedactionMap(database, submissionID)
	if err != nil {
		return nil, err
	}

	out := &ExplainOutput{ClauseID: input.ClauseID}
	if c.Explanation == nil {
		title := ""
		if c.Title != nil {
			title = *c.Title
		}
		prompt := draft.BuildExplainPrompt(title, c.Body)
		explanation, err := gen.Generate(ctx, prompt)
		if err != nil {
			return nil, errors.NewGenerationFailed(err)
		}
		switch err := db.SetClauseExplanation(database, input.ClauseID, explanation); {
		case err == nil:
			c.Explanation = &explanation
			out.Generated = true
		case errors.Is(err, errors.ErrConflict):
			// Another request explained this clause first; serve its text.
			if c, err = db.GetClause(database, input.ClauseID); err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
	}

	if c.Explanation == nil {
		return nil, errors.NewInternal(fmt.Errorf("clause %s: explanation missing after write", input.ClauseID))
	}
	if input.CallerEmail != "" {
		out.Explanation = redact.Unmask(*c.Explanation, rmap)
	} else {
		out.Explanation = redact.DisplayMask(*c.Explanation, rmap)
	}
	return out, nil
}
