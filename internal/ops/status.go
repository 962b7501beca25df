package ops

import (
	"database/sql"

	"github.com/tmreyes/redline/internal/db"
)

// StatusOutput is a submission's processing state as reported to any caller.
// It carries no clause text and no party data, so it needs no visibility
// transform.
type StatusOutput struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	ClausesAvailable bool   `json:"clauses_available"`
	Jurisdiction     string `json:"jurisdiction"`
	CreatedAt        int64  `json:"created_at"`
}

// Status reports where a submission stands in the drafting pipeline.
func Status(database *sql.DB, submissionID string) (*StatusOutput, error) {
	sub, err := db.GetSubmission(database, submissionID)
	if err != nil {
		return nil, err
	}
	return &StatusOutput{
		ID:               sub.ID,
		Status:           sub.Status,
		ClausesAvailable: sub.ClausesAvailable,
		Jurisdiction:     sub.Jurisdiction,
		CreatedAt:        sub.CreatedAt,
	}, nil
}
