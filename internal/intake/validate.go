package intake

import (
	"fmt"
	"strings"
	"time"

	"github.com/tmreyes/redline/internal/errors"
)

// ownership values accepted on items.
var validOwnership = map[string]bool{
	"party_a": true,
	"party_b": true,
	"joint":   true,
}

// Validate checks a record before any tokenization happens. A record rejected
// here never gets a redaction map.
func Validate(r *Record) error {
	if r == nil {
		return errors.NewInvalidRequest("record is required")
	}

	if strings.TrimSpace(r.PartyA.Name) == "" {
		return errors.NewInvalidRequest("party_a.name is required")
	}
	if strings.TrimSpace(r.PartyB.Name) == "" {
		return errors.NewInvalidRequest("party_b.name is required")
	}

	if err := validEmail(r.ContactEmail); err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("contact_email: %v", err))
	}
	if r.PartyA.Email != "" {
		if err := validEmail(r.PartyA.Email); err != nil {
			return errors.NewInvalidRequest(fmt.Sprintf("party_a.email: %v", err))
		}
	}
	if r.PartyB.Email != "" {
		if err := validEmail(r.PartyB.Email); err != nil {
			return errors.NewInvalidRequest(fmt.Sprintf("party_b.email: %v", err))
		}
	}

	if strings.TrimSpace(r.Jurisdiction) == "" {
		return errors.NewInvalidRequest("jurisdiction is required")
	}

	if _, err := time.Parse("2006-01-02", r.AgreementDate); err != nil {
		return errors.NewInvalidRequest("agreement_date must be YYYY-MM-DD")
	}

	for i, item := range r.Assets {
		if err := validateItem(&item); err != nil {
			return errors.NewInvalidRequest(fmt.Sprintf("assets[%d]: %v", i, err))
		}
	}
	for i, item := range r.Debts {
		if err := validateItem(&item); err != nil {
			return errors.NewInvalidRequest(fmt.Sprintf("debts[%d]: %v", i, err))
		}
	}

	if r.Addendum != nil && strings.TrimSpace(*r.Addendum) == "" {
		return errors.NewInvalidRequest("addendum must be omitted when empty")
	}

	return nil
}

func validateItem(item *Item) error {
	if strings.TrimSpace(item.Kind) == "" {
		return fmt.Errorf("kind is required")
	}
	if strings.TrimSpace(item.Description) == "" {
		return fmt.Errorf("description is required")
	}
	if item.Value < 0 {
		return fmt.Errorf("value must not be negative")
	}
	if !validOwnership[item.Ownership] {
		return fmt.Errorf("ownership must be one of: party_a, party_b, joint")
	}
	return nil
}

// validEmail applies a shape check only. Deliverability is the mail
// collaborator's problem.
func validEmail(addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return fmt.Errorf("address is required")
	}
	at := strings.Index(addr, "@")
	if at <= 0 || at == len(addr)-1 {
		return fmt.Errorf("address must contain a local part and a domain")
	}
	domain := addr[at+1:]
	if !strings.Contains(domain, ".") || strings.ContainsAny(addr, " \t\n") {
		return fmt.Errorf("address domain looks malformed")
	}
	return nil
}

// NormalizeEmail lowercases and trims an address for comparison. Binding
// decisions always compare normalized forms.
func NormalizeEmail(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
