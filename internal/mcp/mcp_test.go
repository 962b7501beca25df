package mcp

import (
	"context"
	"database/sql"
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tmreyes/redline/internal/config"
	"github.com/tmreyes/redline/internal/db"
	"github.com/tmreyes/redline/internal/intake"
	"github.com/tmreyes/redline/internal/ops"
)

// testSetup creates a temporary database and config for testing.
func testSetup(t *testing.T) (*sql.DB, *config.Config) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return database, config.DefaultConfig()
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

var partyAToken = regexp.MustCompile(`\[PTA-[0-9a-f]{8}\]`)

type stubGenerator struct {
	respond func(prompt string) (string, error)
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	return g.respond(prompt)
}

// seedSubmission runs the pipeline and returns the submission ID.
func seedSubmission(t *testing.T, database *sql.DB, gen *stubGenerator) string {
	t.Helper()
	rec := &intake.Record{
		PartyA:        intake.Party{Name: "Alice Smith", Email: "alice@example.com"},
		PartyB:        intake.Party{Name: "Bob Jones", Email: "bob@example.com"},
		AgreementDate: "2026-06-01",
		ContactEmail:  "alice@example.com",
		Jurisdiction:  "US-CA",
		Elections:     intake.Elections{WaiveSpousalSupport: true},
	}
	out, err := ops.Submit(context.Background(), database, gen, rand.New(rand.NewSource(3)), ops.SubmitInput{Record: rec})
	if err != nil {
		t.Fatalf("seed submission: %v", err)
	}
	return out.ID
}

func echoGenerator() *stubGenerator {
	return &stubGenerator{respond: func(prompt string) (string, error) {
		token := partyAToken.FindString(prompt)
		return "## Recitals\n1. Made by " + token + ".\n2. Entered voluntarily.\n", nil
	}}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	return result.Content[0].(mcp.TextContent).Text
}

func TestHandleStatus(t *testing.T) {
	database, cfg := testSetup(t)
	gen := echoGenerator()
	id := seedSubmission(t, database, gen)

	h := NewHandlers(database, cfg, gen)
	result, err := h.HandleStatus(context.Background(), makeRequest(map[string]any{"submission_id": id}))
	if err != nil {
		t.Fatalf("HandleStatus error: %v", err)
	}
	body := resultText(t, result)
	if !strings.Contains(body, `"completed"`) {
		t.Errorf("result = %s, want completed status", body)
	}
}

func TestHandleStatus_NotFound(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg, echoGenerator())

	result, err := h.HandleStatus(context.Background(), makeRequest(map[string]any{"submission_id": "01MISSING"}))
	if err != nil {
		t.Fatalf("HandleStatus error: %v", err)
	}
	if !result.IsError {
		t.Fatal("IsError = false, want error result")
	}
	if !strings.Contains(resultText(t, result), "NOT_FOUND") {
		t.Error("expected NOT_FOUND code in error payload")
	}
}

func TestHandleClauses_WithoutOperatorIdentity_Masked(t *testing.T) {
	database, cfg := testSetup(t)
	gen := echoGenerator()
	id := seedSubmission(t, database, gen)

	h := NewHandlers(database, cfg, gen)
	result, err := h.HandleClauses(context.Background(), makeRequest(map[string]any{"submission_id": id}))
	if err != nil {
		t.Fatalf("HandleClauses error: %v", err)
	}
	body := resultText(t, result)
	if !strings.Contains(body, "[name withheld]") {
		t.Error("expected withheld-name marker without an operator identity")
	}
	if strings.Contains(body, "Alice") {
		t.Error("masked result contains the raw party name")
	}
}

func TestHandleClauses_WithOperatorIdentity_Unmasked(t *testing.T) {
	database, cfg := testSetup(t)
	gen := echoGenerator()
	id := seedSubmission(t, database, gen)

	cfg.OperatorEmail = "alice@example.com"
	h := NewHandlers(database, cfg, gen)
	result, err := h.HandleClauses(context.Background(), makeRequest(map[string]any{"submission_id": id}))
	if err != nil {
		t.Fatalf("HandleClauses error: %v", err)
	}
	if !strings.Contains(resultText(t, result), "Alice Smith") {
		t.Error("expected resolved party name with an operator identity")
	}
}

func TestHandleAnnotate_RequiresOperatorIdentity(t *testing.T) {
	database, cfg := testSetup(t)
	gen := echoGenerator()
	seedSubmission(t, database, gen)

	h := NewHandlers(database, cfg, gen)
	result, err := h.HandleAnnotate(context.Background(), makeRequest(map[string]any{
		"clause_id": "01ANY",
		"kind":      "comment",
		"body":      "x",
	}))
	if err != nil {
		t.Fatalf("HandleAnnotate error: %v", err)
	}
	if !result.IsError {
		t.Fatal("IsError = false, want error result")
	}
	if !strings.Contains(resultText(t, result), "UNAUTHENTICATED") {
		t.Error("expected UNAUTHENTICATED code without an operator identity")
	}
}

func TestValidateDisabledTools(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"review_status", "capsule_store"})
	if len(unknown) != 1 || unknown[0] != "capsule_store" {
		t.Errorf("unknown = %v, want [capsule_store]", unknown)
	}
}
