package ops

import (
	"context"
	"database/sql"
	"math/rand"
	"regexp"
	"testing"

	"github.com/tmreyes/redline/internal/db"
	"github.com/tmreyes/redline/internal/intake"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// testEntropy returns a deterministic token entropy source.
func testEntropy() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

// stubGenerator records every prompt and delegates to a swappable respond
// function, so one stub can serve both the drafting call and the later
// explain/answer calls in a single test.
type stubGenerator struct {
	respond func(prompt string) (string, error)
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.respond(prompt)
}

var partyAToken = regexp.MustCompile(`\[PTA-[0-9a-f]{8}\]`)

// draftEcho builds a plausible drafting response that carries the prompt's
// party-A placeholder back into the recitals, the way a compliant drafting
// service would.
func draftEcho(prompt string) (string, error) {
	token := partyAToken.FindString(prompt)
	return "## Recitals\n" +
		"1. This agreement is made by " + token + " in contemplation of marriage.\n" +
		"2. Both parties enter into this agreement voluntarily.\n\n" +
		"## Spousal Support\n" +
		"Each party waives any claim to spousal support from the other.\n", nil
}

func testRecord() *intake.Record {
	return &intake.Record{
		PartyA:        intake.Party{Name: "Alice Smith", Email: "alice@example.com"},
		PartyB:        intake.Party{Name: "Bob Jones", Email: "bob@example.com"},
		AgreementDate: "2026-06-01",
		ContactEmail:  "alice@example.com",
		Jurisdiction:  "US-CA",
		Assets: []intake.Item{
			{Kind: "real_estate", Description: "Condominium on Oak Street", Value: 500000, Ownership: "party_a"},
		},
		Debts: []intake.Item{
			{Kind: "loan", Description: "Graduate school loan balance", Value: 42000, Ownership: "party_b"},
		},
		Elections: intake.Elections{WaiveSpousalSupport: true, KeepDebtsSeparate: true},
	}
}

// submitCompleted runs the full pipeline with a compliant stub and returns
// the submission ID plus the stub for later repointing.
func submitCompleted(t *testing.T, database *sql.DB) (string, *stubGenerator) {
	t.Helper()
	gen := &stubGenerator{respond: draftEcho}
	out, err := Submit(context.Background(), database, gen, testEntropy(), SubmitInput{Record: testRecord()})
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if !out.ClausesAvailable {
		t.Fatal("ClausesAvailable = false, want true")
	}
	return out.ID, gen
}
