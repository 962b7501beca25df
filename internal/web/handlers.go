package web

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"io"
	"log"
	"net/http"

	"github.com/tmreyes/redline/internal/config"
	"github.com/tmreyes/redline/internal/draft"
	"github.com/tmreyes/redline/internal/errors"
	"github.com/tmreyes/redline/internal/intake"
	"github.com/tmreyes/redline/internal/ops"
)

// maxSubmissionBytes bounds the intake payload.
const maxSubmissionBytes = 1 << 20

// Handlers contains HTTP route handlers for the JSON API.
type Handlers struct {
	db      *sql.DB
	cfg     *config.Config
	gen     draft.Generator
	entropy io.Reader
	version string
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(); err != nil {
		renderError(w, errors.NewInternal(err))
		return
	}
	renderJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": h.version})
}

// HandleSubmit handles POST /submissions — intake plus the full synchronous
// drafting pipeline. The response arrives when the pipeline finishes.
func (h *Handlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var rec intake.Record
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmissionBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		renderError(w, errors.NewInvalidRequest("request body must be a submission record: "+err.Error()))
		return
	}

	out, err := ops.Submit(r.Context(), h.db, h.gen, h.entropy, ops.SubmitInput{Record: &rec})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusCreated, out)
}

// HandleStatus handles GET /submissions/{id}.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	out, err := ops.Status(h.db, r.PathValue("id"))
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleClauses handles GET /submissions/{id}/clauses — the differential
// visibility read. The same route serves both authentication levels; the
// ops layer picks the transform.
func (h *Handlers) HandleClauses(w http.ResponseWriter, r *http.Request) {
	out, err := ops.FetchClauses(h.db, ops.FetchClausesInput{
		SubmissionID: r.PathValue("id"),
		CallerEmail:  callerEmail(r),
	})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleDocument handles GET /submissions/{id}/document. With ?format=html
// the assembled markdown renders as a standalone HTML artifact.
func (h *Handlers) HandleDocument(w http.ResponseWriter, r *http.Request) {
	out, err := ops.AssembleDocument(h.db, ops.DocumentInput{
		SubmissionID: r.PathValue("id"),
		CallerEmail:  callerEmail(r),
	})
	if err != nil {
		renderError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		renderDocumentHTML(w, out)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleAnnotate handles POST /clauses/{id}/annotations.
func (h *Handlers) HandleAnnotate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Kind string `json:"kind"`
		Body string `json:"body"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmissionBytes)).Decode(&body); err != nil {
		renderError(w, errors.NewInvalidRequest("request body must be an annotation: "+err.Error()))
		return
	}

	out, err := ops.Annotate(r.Context(), h.db, h.gen, ops.AnnotateInput{
		ClauseID:    r.PathValue("id"),
		CallerEmail: callerEmail(r),
		Kind:        body.Kind,
		Body:        body.Body,
	})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusCreated, out)
}

// HandleExplain handles GET /clauses/{id}/explain.
func (h *Handlers) HandleExplain(w http.ResponseWriter, r *http.Request) {
	out, err := ops.Explain(r.Context(), h.db, h.gen, ops.ExplainInput{
		ClauseID:    r.PathValue("id"),
		CallerEmail: callerEmail(r),
	})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// renderJSON writes a JSON response with the given status.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("response encoding error: %v", err)
	}
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details,omitempty"`
	} `json:"error"`
}

// renderError maps an operation error to its HTTP status and envelope.
func renderError(w http.ResponseWriter, err error) {
	var rErr *errors.RedlineError
	if !stderrors.As(err, &rErr) {
		rErr = errors.NewInternal(err)
	}

	var body errorBody
	body.Error.Code = string(rErr.Code)
	body.Error.Message = rErr.Message
	body.Error.Details = rErr.Details
	renderJSON(w, rErr.Status, body)
}
