package clause

import "strings"

// Category is one entry of the fixed clause taxonomy.
type Category string

const (
	Recitals            Category = "Recitals"
	FinancialDisclosure Category = "Financial Disclosure"
	PropertyRights      Category = "Property Rights"
	SpousalSupport      Category = "Spousal Support"
	DebtsLiabilities    Category = "Debts & Liabilities"
	EstatePlanning      Category = "Estate Planning"
	LegalRepresentation Category = "Legal Representation"
	Modifications       Category = "Modifications"
	GeneralProvisions   Category = "General Provisions"
)

// categoryKeywords is the ordered keyword list used to classify a clause by
// its parent section's title. First match wins; order matters because titles
// like "Disclosure of Property" should classify as disclosure, not property.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{Recitals, []string{"recital", "background", "preamble", "introduction"}},
	{FinancialDisclosure, []string{"disclosure", "financial", "income", "net worth"}},
	{SpousalSupport, []string{"spousal", "support", "alimony", "maintenance"}},
	{DebtsLiabilities, []string{"debt", "liabilit", "obligation"}},
	{PropertyRights, []string{"property", "asset", "ownership", "separate estate"}},
	{EstatePlanning, []string{"estate", "inheritance", "will", "testament"}},
	{LegalRepresentation, []string{"counsel", "representation", "attorney", "legal advice"}},
	{Modifications, []string{"modification", "amendment", "waiver", "revocation"}},
}

// Classify maps a section title to a category. The same title always yields
// the same category; titles matching no keyword default to General Provisions.
func Classify(sectionTitle string) Category {
	title := strings.ToLower(sectionTitle)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(title, kw) {
				return entry.category
			}
		}
	}
	return GeneralProvisions
}

// Categories returns the full taxonomy in display order.
func Categories() []Category {
	return []Category{
		Recitals, FinancialDisclosure, PropertyRights, SpousalSupport,
		DebtsLiabilities, EstatePlanning, LegalRepresentation,
		Modifications, GeneralProvisions,
	}
}
