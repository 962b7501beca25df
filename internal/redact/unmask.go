package redact

import (
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// currencyPrinter renders amounts with en-US grouping and two decimal places.
// Substitution-time formatting keeps stored values raw so the same value
// always renders identically no matter where or how often it is unmasked.
var currencyPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatAmount renders a raw numeric value as a currency string.
func FormatAmount(v float64) string {
	return currencyPrinter.Sprintf("$%.2f", v)
}

// Unmask replaces every occurrence of every token from the map with its
// original value. Identity, description, and date dictionaries substitute the
// stored string verbatim; the amount dictionary substitutes a currency string
// computed now. Text containing no tokens from the map is returned unchanged.
func Unmask(text string, m *Map) string {
	if m == nil || m.Size() == 0 {
		return text
	}

	pairs := make([]string, 0, 2*m.Size())
	for token, value := range m.Identities {
		pairs = append(pairs, token, value)
	}
	for token, value := range m.Descriptions {
		pairs = append(pairs, token, value)
	}
	for token, value := range m.Dates {
		pairs = append(pairs, token, value)
	}
	for token, value := range m.Amounts {
		pairs = append(pairs, token, FormatAmount(value))
	}

	return strings.NewReplacer(pairs...).Replace(text)
}

// Display-masking markers, one per dictionary. Generic and non-reversible:
// an unauthenticated caller receives neither the token nor the value.
const (
	maskedName        = "[name withheld]"
	maskedAmount      = "[amount withheld]"
	maskedDescription = "[details withheld]"
	maskedDate        = "[date withheld]"
)

// DisplayMask replaces every recognized token with a generic redaction
// marker. This is the one-way transform for unauthenticated display,
// distinct from the reversible Unmask.
func DisplayMask(text string, m *Map) string {
	if m == nil || m.Size() == 0 {
		return text
	}

	pairs := make([]string, 0, 2*m.Size())
	for token := range m.Identities {
		pairs = append(pairs, token, maskedName)
	}
	for token := range m.Amounts {
		pairs = append(pairs, token, maskedAmount)
	}
	for token := range m.Descriptions {
		pairs = append(pairs, token, maskedDescription)
	}
	for token := range m.Dates {
		pairs = append(pairs, token, maskedDate)
	}

	return strings.NewReplacer(pairs...).Replace(text)
}

// tokenPattern matches anything shaped like a minted token, whether or not it
// appears in a map. Used to catch placeholders the drafting service mangled
// or fabricated.
var tokenPattern = regexp.MustCompile(`\[(?:PTA|PTB|AMT|TXT|DTE)-[0-9a-f]{8}\]`)

// ScanResidual returns every token-shaped string found in text. After a full
// unmask pass the result must be empty; anything left means a placeholder
// survived the round trip and the text must not be delivered.
func ScanResidual(text string) []string {
	return tokenPattern.FindAllString(text, -1)
}
