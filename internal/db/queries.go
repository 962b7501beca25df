package db

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/tmreyes/redline/internal/clause"
	"github.com/tmreyes/redline/internal/draft"
	"github.com/tmreyes/redline/internal/errors"
	"github.com/tmreyes/redline/internal/redact"
)

// Submission processing states. Transitions are one-way:
// pending -> processing -> completed | failed.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Party roles for review bindings.
const (
	RolePartyA = "party_a"
	RolePartyB = "party_b"
)

// Submission is one stored submission row. Only structural and routing fields
// live here; sensitive leaves exist solely inside the redaction map.
type Submission struct {
	ID               string
	Status           string
	ClausesAvailable bool
	Jurisdiction     string
	PartyAEmail      *string
	PartyBEmail      *string
	ContactEmail     string
	CreatedAt        int64
	UpdatedAt        int64
}

// Document is one stored generated document. Regeneration replaces the row
// wholesale; nothing ever patches sections in place.
type Document struct {
	ID           string
	SubmissionID string
	Jurisdiction string
	Sections     []draft.Section
	CreatedAt    int64
}

// Clause is one stored clause row. Body and title may contain tokens; the
// visibility gate resolves them at read time.
type Clause struct {
	ID          string
	DocumentID  string
	Seq         int
	Title       *string
	Body        string
	Category    string
	Explanation *string
	CreatedAt   int64
}

// Annotation is one append-only reviewer note.
type Annotation struct {
	ID          string
	ClauseID    string
	AuthorEmail string
	Kind        string
	Body        string
	Answer      *string
	CreatedAt   int64
}

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.RedlineError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// InsertSubmission stores a new submission row.
func InsertSubmission(db *sql.DB, s *Submission) error {
	query := `
		INSERT INTO submissions (
			id, status, clauses_available, jurisdiction,
			party_a_email, party_b_email, contact_email,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query,
		s.ID, s.Status, boolToInt(s.ClausesAvailable), s.Jurisdiction,
		toNullString(s.PartyAEmail), toNullString(s.PartyBEmail), s.ContactEmail,
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetSubmission retrieves a submission by ID.
func GetSubmission(db *sql.DB, id string) (*Submission, error) {
	query := `
		SELECT id, status, clauses_available, jurisdiction,
			party_a_email, party_b_email, contact_email,
			created_at, updated_at
		FROM submissions WHERE id = ?
	`
	s := &Submission{}
	var available int
	var partyA, partyB sql.NullString
	err := db.QueryRow(query, id).Scan(
		&s.ID, &s.Status, &available, &s.Jurisdiction,
		&partyA, &partyB, &s.ContactEmail,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	s.ClausesAvailable = available != 0
	s.PartyAEmail = fromNullString(partyA)
	s.PartyBEmail = fromNullString(partyB)
	return s, nil
}

// UpdateSubmissionStatus advances a submission's state and review flag.
// Sets updated_at to the current timestamp.
func UpdateSubmissionStatus(db *sql.DB, id, status string, clausesAvailable bool) error {
	res, err := db.Exec(
		`UPDATE submissions SET status = ?, clauses_available = ?, updated_at = ? WHERE id = ?`,
		status, boolToInt(clausesAvailable), time.Now().Unix(), id,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// InsertRedactionMap stores a submission's redaction map, one JSON blob per
// dictionary. Created atomically with the submission by the intake pipeline.
func InsertRedactionMap(db *sql.DB, submissionID string, m *redact.Map) error {
	identities, err := json.Marshal(m.Identities)
	if err != nil {
		return errors.NewInternal(err)
	}
	amounts, err := json.Marshal(m.Amounts)
	if err != nil {
		return errors.NewInternal(err)
	}
	descriptions, err := json.Marshal(m.Descriptions)
	if err != nil {
		return errors.NewInternal(err)
	}
	dates, err := json.Marshal(m.Dates)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO redaction_maps (
			submission_id, identities_json, amounts_json,
			descriptions_json, dates_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = db.Exec(query, submissionID, identities, amounts, descriptions, dates, time.Now().Unix())
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetRedactionMap retrieves a submission's redaction map. A missing map is the
// fail-closed REDACTION_MAP_MISSING error, never a nil map.
func GetRedactionMap(db *sql.DB, submissionID string) (*redact.Map, error) {
	query := `
		SELECT identities_json, amounts_json, descriptions_json, dates_json
		FROM redaction_maps WHERE submission_id = ?
	`
	var identities, amounts, descriptions, dates []byte
	err := db.QueryRow(query, submissionID).Scan(&identities, &amounts, &descriptions, &dates)
	if err == sql.ErrNoRows {
		return nil, errors.NewMapMissing(submissionID)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	m := redact.NewMap()
	if err := json.Unmarshal(identities, &m.Identities); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := json.Unmarshal(amounts, &m.Amounts); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := json.Unmarshal(descriptions, &m.Descriptions); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := json.Unmarshal(dates, &m.Dates); err != nil {
		return nil, errors.NewInternal(err)
	}
	return m, nil
}

// ReplaceDocument stores a generated document for a submission, deleting any
// prior document and its clauses in the same transaction. Regeneration
// replaces wholesale; it never patches.
func ReplaceDocument(db *sql.DB, d *Document) error {
	sections, err := json.Marshal(d.Sections)
	if err != nil {
		return errors.NewInternal(err)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM annotations WHERE clause_id IN (
			SELECT c.id FROM clauses c
			JOIN documents doc ON doc.id = c.document_id
			WHERE doc.submission_id = ?)`, d.SubmissionID); err != nil {
		return errors.NewInternal(err)
	}
	if _, err := tx.Exec(
		`DELETE FROM clauses WHERE document_id IN (
			SELECT id FROM documents WHERE submission_id = ?)`, d.SubmissionID); err != nil {
		return errors.NewInternal(err)
	}
	if _, err := tx.Exec(`DELETE FROM documents WHERE submission_id = ?`, d.SubmissionID); err != nil {
		return errors.NewInternal(err)
	}

	if _, err := tx.Exec(
		`INSERT INTO documents (id, submission_id, jurisdiction, sections_json, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.SubmissionID, d.Jurisdiction, sections, d.CreatedAt); err != nil {
		return errors.NewInternal(err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetLatestDocument retrieves the newest document for a submission.
func GetLatestDocument(db *sql.DB, submissionID string) (*Document, error) {
	query := `
		SELECT id, submission_id, jurisdiction, sections_json, created_at
		FROM documents WHERE submission_id = ?
		ORDER BY created_at DESC, id DESC LIMIT 1
	`
	d := &Document{}
	var sections []byte
	err := db.QueryRow(query, submissionID).Scan(&d.ID, &d.SubmissionID, &d.Jurisdiction, &sections, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(submissionID)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := json.Unmarshal(sections, &d.Sections); err != nil {
		return nil, errors.NewInternal(err)
	}
	return d, nil
}

// InsertClauses stores a document's clause set in one transaction. The write
// is all-or-nothing: a failure part way through leaves no clause rows behind.
func InsertClauses(db *sql.DB, documentID string, clauses []StoredClause) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO clauses (id, document_id, seq, title, body, category, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, c := range clauses {
		var title sql.NullString
		if c.Title != "" {
			title = sql.NullString{String: c.Title, Valid: true}
		}
		if _, err := stmt.Exec(c.ID, documentID, c.Seq, title, c.Body, string(c.Category), now); err != nil {
			if isUniqueConstraintError(err) {
				return ErrUniqueConstraint
			}
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// StoredClause pairs a segmented clause with its assigned ID for persistence.
type StoredClause struct {
	ID       string
	Seq      int
	Title    string
	Body     string
	Category clause.Category
}

// ListClauses retrieves a document's clauses ordered by sequence number.
func ListClauses(db *sql.DB, documentID string) ([]Clause, error) {
	query := `
		SELECT id, document_id, seq, title, body, category, explanation, created_at
		FROM clauses WHERE document_id = ? ORDER BY seq
	`
	rows, err := db.Query(query, documentID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var clauses []Clause
	for rows.Next() {
		c, err := scanClause(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		clauses = append(clauses, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return clauses, nil
}

// GetClause retrieves one clause by ID.
func GetClause(db *sql.DB, id string) (*Clause, error) {
	query := `
		SELECT id, document_id, seq, title, body, category, explanation, created_at
		FROM clauses WHERE id = ?
	`
	c, err := scanClause(db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// GetClauseSubmission resolves the submission a clause belongs to.
func GetClauseSubmission(db *sql.DB, clauseID string) (string, error) {
	query := `
		SELECT doc.submission_id FROM clauses c
		JOIN documents doc ON doc.id = c.document_id
		WHERE c.id = ?
	`
	var submissionID string
	err := db.QueryRow(query, clauseID).Scan(&submissionID)
	if err == sql.ErrNoRows {
		return "", errors.NewNotFound(clauseID)
	}
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return submissionID, nil
}

// SetClauseExplanation attaches a cached plain-language explanation. The
// write is once-only: an existing explanation is never overwritten.
func SetClauseExplanation(db *sql.DB, clauseID, explanation string) error {
	res, err := db.Exec(
		`UPDATE clauses SET explanation = ? WHERE id = ? AND explanation IS NULL`,
		explanation, clauseID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewConflict("clause already has an explanation or does not exist")
	}
	return nil
}

// InsertAnnotation stores one reviewer annotation. Annotations are
// append-only; there is no update or delete path for their bodies.
func InsertAnnotation(db *sql.DB, a *Annotation) error {
	query := `
		INSERT INTO annotations (id, clause_id, author_email, kind, body, answer, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query,
		a.ID, a.ClauseID, a.AuthorEmail, a.Kind, a.Body, toNullString(a.Answer), a.CreatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// SetAnnotationAnswer attaches the derived answer to a question annotation.
// Once-only, and only for questions.
func SetAnnotationAnswer(db *sql.DB, annotationID, answer string) error {
	res, err := db.Exec(
		`UPDATE annotations SET answer = ? WHERE id = ? AND kind = 'question' AND answer IS NULL`,
		answer, annotationID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewConflict("annotation is not an unanswered question")
	}
	return nil
}

// ListAnnotations retrieves a clause's annotations in creation order.
func ListAnnotations(db *sql.DB, clauseID string) ([]Annotation, error) {
	query := `
		SELECT id, clause_id, author_email, kind, body, answer, created_at
		FROM annotations WHERE clause_id = ? ORDER BY created_at, id
	`
	rows, err := db.Query(query, clauseID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var annotations []Annotation
	for rows.Next() {
		var a Annotation
		var answer sql.NullString
		if err := rows.Scan(&a.ID, &a.ClauseID, &a.AuthorEmail, &a.Kind, &a.Body, &answer, &a.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		a.Answer = fromNullString(answer)
		annotations = append(annotations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return annotations, nil
}

// BindParty records a caller's binding to a party role. Bindings are sticky:
// an existing binding for the role is never replaced or cleared.
func BindParty(db *sql.DB, submissionID, role, email string) error {
	query := `
		INSERT OR IGNORE INTO party_bindings (submission_id, role, email, bound_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err := db.Exec(query, submissionID, role, email, time.Now().Unix()); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetBindings retrieves a submission's role bindings as role -> email.
func GetBindings(db *sql.DB, submissionID string) (map[string]string, error) {
	rows, err := db.Query(
		`SELECT role, email FROM party_bindings WHERE submission_id = ?`, submissionID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	bindings := make(map[string]string)
	for rows.Next() {
		var role, email string
		if err := rows.Scan(&role, &email); err != nil {
			return nil, errors.NewInternal(err)
		}
		bindings[role] = email
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return bindings, nil
}

// rowScanner abstracts sql.Row and sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanClause(row rowScanner) (*Clause, error) {
	c := &Clause{}
	var title, explanation sql.NullString
	err := row.Scan(&c.ID, &c.DocumentID, &c.Seq, &title, &c.Body, &c.Category, &explanation, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.Title = fromNullString(title)
	c.Explanation = fromNullString(explanation)
	return c, nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
