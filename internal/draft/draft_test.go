package draft

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tmreyes/redline/internal/errors"
	"github.com/tmreyes/redline/internal/intake"
	"github.com/tmreyes/redline/internal/redact"

	"math/rand"
)

func TestLoadRulesKnownJurisdiction(t *testing.T) {
	rs, err := LoadRules("US-CA")
	if err != nil {
		t.Fatalf("LoadRules(US-CA) error: %v", err)
	}
	if rs.Jurisdiction != "US-CA" {
		t.Errorf("Jurisdiction = %q", rs.Jurisdiction)
	}
	if len(rs.RequiredSections) == 0 {
		t.Error("RequiredSections is empty")
	}
	if rs.GoverningLaw == "" {
		t.Error("GoverningLaw is empty")
	}
}

func TestLoadRulesCaseInsensitive(t *testing.T) {
	if _, err := LoadRules(" us-ny "); err != nil {
		t.Errorf("LoadRules should normalize the code: %v", err)
	}
}

func TestLoadRulesUnknownJurisdiction(t *testing.T) {
	_, err := LoadRules("ZZ-XX")
	if err == nil {
		t.Fatal("LoadRules should fail for unknown jurisdiction")
	}
	if !errors.Is(err, errors.ErrUnknownJurisdiction) {
		t.Errorf("error = %v, want UNKNOWN_JURISDICTION", err)
	}
}

func TestSupportedJurisdictions(t *testing.T) {
	codes := SupportedJurisdictions()
	if len(codes) < 3 {
		t.Fatalf("got %d jurisdictions: %v", len(codes), codes)
	}
	for _, code := range codes {
		if _, err := LoadRules(code); err != nil {
			t.Errorf("LoadRules(%s) error: %v", code, err)
		}
	}
}

func tokenizedFixture(t *testing.T) *redact.TokenizedRecord {
	t.Helper()
	rec := &intake.Record{
		PartyA:        intake.Party{Name: "Alice"},
		PartyB:        intake.Party{Name: "Bob"},
		AgreementDate: "2026-06-14",
		ContactEmail:  "alice@example.com",
		Jurisdiction:  "US-CA",
		Assets: []intake.Item{
			{Kind: "real_estate", Description: "Family home", Value: 500000, Ownership: "joint"},
		},
	}
	tok, _, err := redact.Tokenize(rec, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestBuildPrompt(t *testing.T) {
	rules, err := LoadRules("US-CA")
	if err != nil {
		t.Fatal(err)
	}
	tok := tokenizedFixture(t)

	prompt, err := BuildPrompt(tok, rules)
	if err != nil {
		t.Fatalf("BuildPrompt() error: %v", err)
	}

	// The token-preservation instruction and the tokens themselves.
	if !strings.Contains(prompt, "exactly as written") {
		t.Error("prompt missing placeholder preservation instruction")
	}
	if !strings.Contains(prompt, tok.PartyAName) {
		t.Error("prompt missing tokenized party name")
	}
	// None of the original values can appear.
	for _, leaked := range []string{"Alice", "Bob", "Family home", "500000"} {
		if strings.Contains(prompt, leaked) {
			t.Errorf("prompt leaked %q", leaked)
		}
	}
	for _, title := range rules.RequiredSections {
		if !strings.Contains(prompt, title) {
			t.Errorf("prompt missing required section %q", title)
		}
	}
}

func TestBuildExplainPromptKeepsTokensOpaque(t *testing.T) {
	prompt := BuildExplainPrompt("Spousal Support", "1. [PTA-00000001] waives support.")
	if !strings.Contains(prompt, "copy none of them") {
		t.Error("explain prompt missing placeholder instruction")
	}
	if !strings.Contains(prompt, "[PTA-00000001]") {
		t.Error("explain prompt missing clause body")
	}
}

func TestParseDocument(t *testing.T) {
	raw := "Preamble the model emitted.\n" +
		"## Recitals\n1. First recital.\n2. Second recital.\n" +
		"## Financial Disclosure\nThe parties disclosed everything.\n"

	doc, err := ParseDocument(raw, "US-CA")
	if err != nil {
		t.Fatalf("ParseDocument() error: %v", err)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(doc.Sections))
	}
	if doc.Sections[0].Title != "Recitals" {
		t.Errorf("section 0 title = %q", doc.Sections[0].Title)
	}
	if !strings.Contains(doc.Sections[0].Body, "Second recital.") {
		t.Errorf("section 0 body = %q", doc.Sections[0].Body)
	}
	if doc.Sections[1].Title != "Financial Disclosure" {
		t.Errorf("section 1 title = %q", doc.Sections[1].Title)
	}
	if doc.Jurisdiction != "US-CA" {
		t.Errorf("Jurisdiction = %q", doc.Jurisdiction)
	}
}

func TestParseDocumentNoSections(t *testing.T) {
	if _, err := ParseDocument("just prose, no headings", "US-CA"); err == nil {
		t.Error("ParseDocument should fail without headings")
	}
}

func TestOllamaClientGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		// Newline-delimited JSON stream, Ollama style.
		fmt.Fprintln(w, `{"response":"## Recitals\n","done":false}`)
		fmt.Fprintln(w, `{"response":"1. First.","done":true}`)
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL+"/api", "test-model")
	got, err := c.Generate(context.Background(), "draft it")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if got != "## Recitals\n1. First." {
		t.Errorf("Generate() = %q", got)
	}
}

func TestOllamaClientGenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL+"/api", "missing-model")
	if _, err := c.Generate(context.Background(), "draft it"); err == nil {
		t.Error("Generate should surface HTTP errors")
	}
}
