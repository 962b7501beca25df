// Package redact implements the tokenization round trip: sensitive leaves of
// a submission record are swapped for opaque placeholders before any text
// leaves the process, and swapped back (or display-masked) on the way out.
package redact

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/tmreyes/redline/internal/intake"
)

// Token prefixes, one per dictionary plus a distinct prefix per identity
// role. Prefixes must never be a prefix of one another so a token from one
// dictionary can never substring-match a token from another.
const (
	prefixPartyA      = "PTA"
	prefixPartyB      = "PTB"
	prefixAmount      = "AMT"
	prefixDescription = "TXT"
	prefixDate        = "DTE"
)

// Map is the per-submission reverse lookup from token to original value,
// partitioned into four dictionaries. It is the sole persisted bridge between
// the original data and any token found in generated text.
type Map struct {
	// Identities maps PTA/PTB tokens to party names.
	Identities map[string]string `json:"identities"`

	// Amounts maps AMT tokens to raw numeric values. Formatting happens at
	// substitution time, never here.
	Amounts map[string]float64 `json:"amounts"`

	// Descriptions maps TXT tokens to free-text values (item descriptions,
	// the contact email, the addendum).
	Descriptions map[string]string `json:"descriptions"`

	// Dates maps DTE tokens to ISO date strings.
	Dates map[string]string `json:"dates"`
}

// NewMap returns an empty map with all dictionaries allocated.
func NewMap() *Map {
	return &Map{
		Identities:   make(map[string]string),
		Amounts:      make(map[string]float64),
		Descriptions: make(map[string]string),
		Dates:        make(map[string]string),
	}
}

// Size returns the total number of minted tokens across all dictionaries.
func (m *Map) Size() int {
	return len(m.Identities) + len(m.Amounts) + len(m.Descriptions) + len(m.Dates)
}

// TokenizedRecord is the structurally identical copy of a submission record
// with every sensitive leaf replaced by a token. Structural fields pass
// through unmodified. Party emails are dropped entirely; they exist only for
// review-role binding and are never sent to the drafting service.
type TokenizedRecord struct {
	PartyAName    string          `json:"party_a_name"`
	PartyBName    string          `json:"party_b_name"`
	AgreementDate string          `json:"agreement_date"`
	ContactEmail  string          `json:"contact_email"`
	Jurisdiction  string          `json:"jurisdiction"`
	Assets        []TokenizedItem `json:"assets,omitempty"`
	Debts         []TokenizedItem `json:"debts,omitempty"`
	Elections     intake.Elections `json:"elections"`
	Addendum      string          `json:"addendum,omitempty"`
}

// TokenizedItem mirrors intake.Item with tokenized description and value.
type TokenizedItem struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Value       string `json:"value"`
	Ownership   string `json:"ownership"`
}

// minter generates unique tokens from an injected entropy source so tests can
// assert token shape deterministically.
type minter struct {
	entropy io.Reader
	used    map[string]bool
}

func newMinter(entropy io.Reader) *minter {
	return &minter{entropy: entropy, used: make(map[string]bool)}
}

// mint produces a token of the form [PFX-xxxxxxxx] with an 8-hex-digit random
// suffix. Collisions within one submission are retried.
func (m *minter) mint(prefix string) (string, error) {
	for {
		u, err := uuid.NewRandomFromReader(m.entropy)
		if err != nil {
			return "", fmt.Errorf("mint token: %w", err)
		}
		token := fmt.Sprintf("[%s-%02x%02x%02x%02x]", prefix, u[0], u[1], u[2], u[3])
		if !m.used[token] {
			m.used[token] = true
			return token, nil
		}
	}
}

// Tokenize converts a submission record into its tokenized twin and the
// redaction map. The operation is pure and total over any validated record:
// the only error source is the entropy reader.
func Tokenize(rec *intake.Record, entropy io.Reader) (*TokenizedRecord, *Map, error) {
	m := NewMap()
	mint := newMinter(entropy)

	out := &TokenizedRecord{
		Jurisdiction: rec.Jurisdiction,
		Elections:    rec.Elections,
	}

	var err error
	if out.PartyAName, err = mintInto(mint, prefixPartyA, rec.PartyA.Name, m.Identities); err != nil {
		return nil, nil, err
	}
	if out.PartyBName, err = mintInto(mint, prefixPartyB, rec.PartyB.Name, m.Identities); err != nil {
		return nil, nil, err
	}
	if out.AgreementDate, err = mintInto(mint, prefixDate, rec.AgreementDate, m.Dates); err != nil {
		return nil, nil, err
	}
	if out.ContactEmail, err = mintInto(mint, prefixDescription, rec.ContactEmail, m.Descriptions); err != nil {
		return nil, nil, err
	}

	if out.Assets, err = tokenizeItems(mint, m, rec.Assets); err != nil {
		return nil, nil, err
	}
	if out.Debts, err = tokenizeItems(mint, m, rec.Debts); err != nil {
		return nil, nil, err
	}

	// No addendum, no token: the map has no entry for absent fields.
	if rec.Addendum != nil {
		if out.Addendum, err = mintInto(mint, prefixDescription, *rec.Addendum, m.Descriptions); err != nil {
			return nil, nil, err
		}
	}

	return out, m, nil
}

func tokenizeItems(mint *minter, m *Map, items []intake.Item) ([]TokenizedItem, error) {
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]TokenizedItem, len(items))
	for i, item := range items {
		descToken, err := mintInto(mint, prefixDescription, item.Description, m.Descriptions)
		if err != nil {
			return nil, err
		}
		valueToken, err := mint.mint(prefixAmount)
		if err != nil {
			return nil, err
		}
		m.Amounts[valueToken] = item.Value

		out[i] = TokenizedItem{
			Kind:        item.Kind,
			Description: descToken,
			Value:       valueToken,
			Ownership:   item.Ownership,
		}
	}
	return out, nil
}

func mintInto(mint *minter, prefix, value string, dict map[string]string) (string, error) {
	token, err := mint.mint(prefix)
	if err != nil {
		return "", err
	}
	dict[token] = value
	return token, nil
}
