package draft

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tmreyes/redline/internal/errors"
)

//go:embed rules/*.json
var rulesFS embed.FS

// RuleSet is the static drafting library for one jurisdiction.
type RuleSet struct {
	// Jurisdiction is the code this rule set covers (e.g. "US-CA").
	Jurisdiction string `json:"jurisdiction"`

	// DisplayName is the human-readable jurisdiction name.
	DisplayName string `json:"display_name"`

	// GoverningLaw is the governing-law sentence the draft must include.
	GoverningLaw string `json:"governing_law"`

	// RequiredSections lists the section titles every draft must contain,
	// in order.
	RequiredSections []string `json:"required_sections"`

	// DraftingNotes are jurisdiction-specific instructions passed to the
	// drafting service verbatim.
	DraftingNotes []string `json:"drafting_notes"`
}

// LoadRules returns the rule set for a jurisdiction code, or an
// UNKNOWN_JURISDICTION error. Generation never proceeds without rules.
func LoadRules(code string) (*RuleSet, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	data, err := rulesFS.ReadFile(fmt.Sprintf("rules/%s.json", code))
	if err != nil {
		return nil, errors.NewUnknownJurisdiction(code)
	}

	rs := &RuleSet{}
	if err := json.Unmarshal(data, rs); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("rule library for %s is malformed: %w", code, err))
	}
	return rs, nil
}

// SupportedJurisdictions lists every jurisdiction code with an embedded rule
// set, sorted.
func SupportedJurisdictions() []string {
	entries, err := rulesFS.ReadDir("rules")
	if err != nil {
		return nil
	}
	codes := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		codes = append(codes, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(codes)
	return codes
}
