package ops

import (
	"database/sql"

	"github.com/tmreyes/redline/internal/db"
	"github.com/tmreyes/redline/internal/intake"
	"github.com/tmreyes/redline/internal/redact"
)

// FetchClausesInput contains parameters for the FetchClauses operation.
// CallerEmail is the verified identity; empty means unauthenticated.
type FetchClausesInput struct {
	SubmissionID string
	CallerEmail  string
}

// AnnotationView is one annotation as rendered for a caller.
type AnnotationView struct {
	ID          string `json:"id"`
	AuthorEmail string `json:"author_email"`
	Kind        string `json:"kind"`
	Body        string `json:"body"`
	Answer      string `json:"answer,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

// ClauseView is one clause as rendered for a caller, with every PII-bearing
// field already passed through the caller's visibility transform.
type ClauseView struct {
	ID          string           `json:"id"`
	Seq         int              `json:"seq"`
	Title       string           `json:"title,omitempty"`
	Category    string           `json:"category"`
	Body        string           `json:"body"`
	Explanation string           `json:"explanation,omitempty"`
	Annotations []AnnotationView `json:"annotations,omitempty"`
}

// FetchClausesOutput contains the result of the FetchClauses operation.
type FetchClausesOutput struct {
	SubmissionID     string       `json:"submission_id"`
	Status           string       `json:"status"`
	ClausesAvailable bool         `json:"clauses_available"`
	Authenticated    bool         `json:"authenticated"`
	Clauses          []ClauseView `json:"clauses"`
}

// FetchClauses is the differential visibility gate. The submission's
// redaction map must exist; without it the gate fails closed rather than
// ever returning raw or unmasked data. Unauthenticated callers receive
// display-masked fields and no annotations; authenticated callers receive
// unmasked fields, annotations, and trigger opportunistic role binding.
func FetchClauses(database *sql.DB, input FetchClausesInput) (*FetchClausesOutput, error) {
	sub, err := db.GetSubmission(database, input.SubmissionID)
	if err != nil {
		return nil, err
	}

	// Fail closed before touching any clause text.
	rmap, err := db.GetRedactionMap(database, input.SubmissionID)
	if err != nil {
		return nil, err
	}

	authenticated := input.CallerEmail != ""
	out := &FetchClausesOutput{
		SubmissionID:     sub.ID,
		Status:           sub.Status,
		ClausesAvailable: sub.ClausesAvailable,
		Authenticated:    authenticated,
	}

	if authenticated {
		bindIdentity(database, sub, input.CallerEmail)
	}

	// Completed without clauses (or not yet completed): review unavailable,
	// but the status itself is not an error.
	if !sub.ClausesAvailable {
		return out, nil
	}

	doc, err := db.GetLatestDocument(database, sub.ID)
	if err != nil {
		return nil, err
	}
	clauses, err := db.ListClauses(database, doc.ID)
	if err != nil {
		return nil, err
	}

	reveal := func(text string) string { return redact.DisplayMask(text, rmap) }
	if authenticated {
		reveal = func(text string) string { return redact.Unmask(text, rmap) }
	}

	out.Clauses = make([]ClauseView, len(clauses))
	for i, c := range clauses {
		view := ClauseView{
			ID:       c.ID,
			Seq:      c.Seq,
			Category: c.Category,
			Body:     reveal(c.Body),
		}
		if c.Title != nil {
			view.Title = reveal(*c.Title)
		}
		if c.Explanation != nil {
			view.Explanation = reveal(*c.Explanation)
		}
		if authenticated {
			annotations, err := db.ListAnnotations(database, c.ID)
			if err != nil {
				return nil, err
			}
			view.Annotations = annotationViews(annotations, rmap)
		}
		out.Clauses[i] = view
	}

	return out, nil
}

// annotationViews renders stored annotations for an authenticated caller.
// Bodies and derived answers may reference tokens; resolve them.
func annotationViews(annotations []db.Annotation, rmap *redact.Map) []AnnotationView {
	if len(annotations) == 0 {
		return nil
	}
	views := make([]AnnotationView, len(annotations))
	for i, a := range annotations {
		views[i] = AnnotationView{
			ID:          a.ID,
			AuthorEmail: a.AuthorEmail,
			Kind:        a.Kind,
			Body:        redact.Unmask(a.Body, rmap),
			CreatedAt:   a.CreatedAt,
		}
		if a.Answer != nil {
			views[i].Answer = redact.Unmask(*a.Answer, rmap)
		}
	}
	return views
}

// bindIdentity opportunistically associates an authenticated caller with a
// party role. Matching order: explicit party A email, explicit party B
// email, then the submission's contact email as a fallback claim to party A.
// Bindings are one-directional and sticky; failures are best-effort and never
// block the read.
func bindIdentity(database *sql.DB, sub *db.Submission, callerEmail string) {
	email := intake.NormalizeEmail(callerEmail)

	bindings, err := db.GetBindings(database, sub.ID)
	if err != nil {
		return
	}
	for _, bound := range bindings {
		if bound == email {
			return // already bound to a role
		}
	}

	switch {
	case sub.PartyAEmail != nil && email == *sub.PartyAEmail:
		if _, taken := bindings[db.RolePartyA]; !taken {
			_ = db.BindParty(database, sub.ID, db.RolePartyA, email)
		}
	case sub.PartyBEmail != nil && email == *sub.PartyBEmail:
		if _, taken := bindings[db.RolePartyB]; !taken {
			_ = db.BindParty(database, sub.ID, db.RolePartyB, email)
		}
	case email == sub.ContactEmail:
		if _, taken := bindings[db.RolePartyA]; !taken {
			_ = db.BindParty(database, sub.ID, db.RolePartyA, email)
		}
	}
}
