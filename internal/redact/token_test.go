package redact

import (
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/tmreyes/redline/internal/intake"
)

// testEntropy returns a deterministic entropy source for token minting.
func testEntropy() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func testRecord() *intake.Record {
	addendum := "Neither party owns cryptocurrency."
	return &intake.Record{
		PartyA:        intake.Party{Name: "Alice", Email: "alice@example.com"},
		PartyB:        intake.Party{Name: "Bob", Email: "bob@example.com"},
		AgreementDate: "2026-06-14",
		ContactEmail:  "alice@example.com",
		Jurisdiction:  "US-CA",
		Assets: []intake.Item{
			{Kind: "real_estate", Description: "Family home", Value: 500000, Ownership: "joint"},
		},
		Debts: []intake.Item{
			{Kind: "loan", Description: "Student loan", Value: 24000, Ownership: "party_b"},
		},
		Elections: intake.Elections{WaiveSpousalSupport: true},
		Addendum:  &addendum,
	}
}

func TestTokenizeReplacesSensitiveLeaves(t *testing.T) {
	rec := testRecord()
	tok, m, err := Tokenize(rec, testEntropy())
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}

	// Every sensitive leaf must be a token, not the original value.
	for name, got := range map[string]string{
		"party_a_name":      tok.PartyAName,
		"party_b_name":      tok.PartyBName,
		"agreement_date":    tok.AgreementDate,
		"contact_email":     tok.ContactEmail,
		"asset description": tok.Assets[0].Description,
		"asset value":       tok.Assets[0].Value,
		"debt description":  tok.Debts[0].Description,
		"debt value":        tok.Debts[0].Value,
		"addendum":          tok.Addendum,
	} {
		if !tokenPattern.MatchString(got) {
			t.Errorf("%s = %q, want token-shaped string", name, got)
		}
	}

	// Structural fields pass through unmodified.
	if tok.Jurisdiction != "US-CA" {
		t.Errorf("Jurisdiction = %q, want pass-through", tok.Jurisdiction)
	}
	if !tok.Elections.WaiveSpousalSupport {
		t.Error("Elections should pass through unmodified")
	}
	if tok.Assets[0].Kind != "real_estate" || tok.Assets[0].Ownership != "joint" {
		t.Errorf("item structural fields altered: %+v", tok.Assets[0])
	}

	// Map holds the reverse lookups.
	if m.Identities[tok.PartyAName] != "Alice" {
		t.Errorf("Identities[%s] = %q, want Alice", tok.PartyAName, m.Identities[tok.PartyAName])
	}
	if m.Amounts[tok.Assets[0].Value] != 500000 {
		t.Errorf("Amounts[%s] = %v, want 500000", tok.Assets[0].Value, m.Amounts[tok.Assets[0].Value])
	}
	if m.Dates[tok.AgreementDate] != "2026-06-14" {
		t.Errorf("Dates[%s] = %q", tok.AgreementDate, m.Dates[tok.AgreementDate])
	}
}

func TestTokenizeRolePrefixes(t *testing.T) {
	tok, _, err := Tokenize(testRecord(), testEntropy())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(tok.PartyAName, "[PTA-") {
		t.Errorf("PartyAName = %q, want PTA prefix", tok.PartyAName)
	}
	if !strings.HasPrefix(tok.PartyBName, "[PTB-") {
		t.Errorf("PartyBName = %q, want PTB prefix", tok.PartyBName)
	}
	if tok.PartyAName == tok.PartyBName {
		t.Error("role tokens must differ")
	}
}

func TestTokenUniquenessAcrossDictionaries(t *testing.T) {
	_, m, err := Tokenize(testRecord(), testEntropy())
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[string]bool)
	var all []string
	for _, dict := range []map[string]string{m.Identities, m.Descriptions, m.Dates} {
		for token := range dict {
			all = append(all, token)
		}
	}
	for token := range m.Amounts {
		all = append(all, token)
	}

	for _, token := range all {
		if seen[token] {
			t.Errorf("duplicate token %q", token)
		}
		seen[token] = true
	}

	// No token may be a substring of a token from a different dictionary.
	for _, a := range all {
		for _, b := range all {
			if a != b && strings.Contains(a, b) {
				t.Errorf("token %q contains token %q", a, b)
			}
		}
	}
}

func TestTokenizeAbsentAddendumMintsNoToken(t *testing.T) {
	rec := testRecord()
	rec.Addendum = nil
	tok, m, err := Tokenize(rec, testEntropy())
	if err != nil {
		t.Fatal(err)
	}
	if tok.Addendum != "" {
		t.Errorf("Addendum = %q, want empty", tok.Addendum)
	}
	// 2 identities + 1 date + 1 email + 2 descriptions + 2 amounts
	if got := m.Size(); got != 8 {
		t.Errorf("map size = %d, want 8 (no addendum entry)", got)
	}
}

func TestTokenizePartyEmailsNeverForwarded(t *testing.T) {
	tok, m, err := Tokenize(testRecord(), testEntropy())
	if err != nil {
		t.Fatal(err)
	}
	// The tokenized record has no field carrying party emails; check the
	// contact email value landed in the map but party ones did not.
	for _, v := range m.Descriptions {
		if v == "bob@example.com" {
			t.Error("party email leaked into the redaction map")
		}
	}
	_ = tok
}

func TestTokenShape(t *testing.T) {
	shape := regexp.MustCompile(`^\[(PTA|PTB|AMT|TXT|DTE)-[0-9a-f]{8}\]$`)
	_, m, err := Tokenize(testRecord(), testEntropy())
	if err != nil {
		t.Fatal(err)
	}
	check := func(token string) {
		if !shape.MatchString(token) {
			t.Errorf("token %q does not match expected shape", token)
		}
	}
	for token := range m.Identities {
		check(token)
	}
	for token := range m.Amounts {
		check(token)
	}
	for token := range m.Descriptions {
		check(token)
	}
	for token := range m.Dates {
		check(token)
	}
}
