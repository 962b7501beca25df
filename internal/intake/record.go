// Package intake defines the submission record and its validation.
// A record is created once per session, is immutable after creation, and is
// never persisted in unmasked form beyond the first pipeline step.
package intake

// Record is the structured input both parties submit before drafting.
type Record struct {
	// PartyA and PartyB identify the two parties to the agreement.
	PartyA Party `json:"party_a"`
	PartyB Party `json:"party_b"`

	// AgreementDate is the intended execution date, ISO 8601 (YYYY-MM-DD).
	AgreementDate string `json:"agreement_date"`

	// ContactEmail is the delivery address for the finished document.
	ContactEmail string `json:"contact_email"`

	// Jurisdiction is the governing jurisdiction code (e.g. "US-CA").
	Jurisdiction string `json:"jurisdiction"`

	// Assets and Debts are the disclosed financial items.
	Assets []Item `json:"assets,omitempty"`
	Debts  []Item `json:"debts,omitempty"`

	// Elections are the parties' boolean drafting choices.
	Elections Elections `json:"elections"`

	// Addendum is optional free-text the parties want reflected in the draft.
	Addendum *string `json:"addendum,omitempty"`
}

// Party identifies one party to the agreement.
type Party struct {
	// Name is the party's full legal name.
	Name string `json:"name"`

	// Email is the party's own address, used only for review-role binding.
	// It is never forwarded to the drafting service.
	Email string `json:"email,omitempty"`
}

// Item is one disclosed asset or debt.
type Item struct {
	// Kind is a structural label such as "real_estate", "vehicle", "loan".
	Kind string `json:"kind"`

	// Description is free text describing the item.
	Description string `json:"description"`

	// Value is the item's monetary value or balance, in whole currency units.
	Value float64 `json:"value"`

	// Ownership indicates which party holds the item: "party_a", "party_b",
	// or "joint".
	Ownership string `json:"ownership"`
}

// Elections are the structural yes/no drafting choices. They carry no free
// text and pass through tokenization unmodified.
type Elections struct {
	WaiveSpousalSupport bool `json:"waive_spousal_support"`
	KeepDebtsSeparate   bool `json:"keep_debts_separate"`
	IndependentCounsel  bool `json:"independent_counsel"`
}
