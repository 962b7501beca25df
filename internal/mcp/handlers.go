package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tmreyes/redline/internal/config"
	"github.com/tmreyes/redline/internal/draft"
	"github.com/tmreyes/redline/internal/errors"
	"github.com/tmreyes/redline/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers. The operator's identity
// comes from configuration; tools act as that identity on the authenticated
// review path, or as an unauthenticated reader when no identity is set.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
	gen draft.Generator
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, gen draft.Generator) *Handlers {
	return &Handlers{db: db, cfg: cfg, gen: gen}
}

// Tool definitions

var statusToolDef = mcp.NewTool("review_status",
	mcp.WithDescription("Report where a submission stands in the drafting pipeline: pending, processing, completed, or failed, and whether clause review is available."),
	mcp.WithString("submission_id", mcp.Required(), mcp.Description("The submission ULID.")),
)

var clausesToolDef = mcp.NewTool("review_clauses",
	mcp.WithDescription("List a submission's clauses with annotations. Sensitive values appear only when an operator identity is configured; otherwise they are withheld."),
	mcp.WithString("submission_id", mcp.Required(), mcp.Description("The submission ULID.")),
)

var annotateToolDef = mcp.NewTool("review_annotate",
	mcp.WithDescription("Attach a comment, question, or flag to a clause as the configured operator identity. Questions receive a drafted answer when the drafting service is reachable."),
	mcp.WithString("clause_id", mcp.Required(), mcp.Description("The clause ULID.")),
	mcp.WithString("kind", mcp.Required(), mcp.Description("One of: comment, question, flag.")),
	mcp.WithString("body", mcp.Required(), mcp.Description("The annotation text.")),
)

// Request types for each tool

// StatusRequest represents the arguments for review_status.
type StatusRequest struct {
	SubmissionID string `json:"submission_id"`
}

// ClausesRequest represents the arguments for review_clauses.
type ClausesRequest struct {
	SubmissionID string `json:"submission_id"`
}

// AnnotateRequest represents the arguments for review_annotate.
type AnnotateRequest struct {
	ClauseID string `json:"clause_id"`
	Kind     string `json:"kind"`
	Body     string `json:"body"`
}

// HandleStatus handles the review_status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StatusRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Status(h.db, input.SubmissionID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleClauses handles the review_clauses tool call.
func (h *Handlers) HandleClauses(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ClausesRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.FetchClauses(h.db, ops.FetchClausesInput{
		SubmissionID: input.SubmissionID,
		CallerEmail:  h.cfg.OperatorEmail,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleAnnotate handles the review_annotate tool call.
func (h *Handlers) HandleAnnotate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AnnotateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Annotate(ctx, h.db, h.gen, ops.AnnotateInput{
		ClauseID:    input.ClauseID,
		CallerEmail: h.cfg.OperatorEmail,
		Kind:        input.Kind,
		Body:        input.Body,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// errorResult creates an MCP error result carrying the structured error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if rErr, ok := err.(*errors.RedlineError); ok {
		errorObj := map[string]any{
			"code":    rErr.Code,
			"message": rErr.Message,
			"status":  rErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if rErr.Code != errors.ErrInternal && rErr.Details != nil {
			errorObj["details"] = rErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return mcp.NewToolResultError(string(content))
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
