package draft

import (
	"fmt"
	"regexp"
	"strings"
)

// Document is the structured drafting result: an ordered list of sections
// whose bodies may still contain placeholders.
type Document struct {
	Jurisdiction string    `json:"jurisdiction"`
	Sections     []Section `json:"sections"`
}

// Section is one (title, body) pair of a generated document.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// sectionHeader matches a level-two markdown heading at the start of a line.
var sectionHeader = regexp.MustCompile(`(?m)^##\s+([^\n]+?)[ \t]*$`)

// ParseDocument splits the raw completion into ordered sections at its
// markdown headings. A completion with no headings is a malformed response:
// the caller marks the submission failed rather than guessing at structure.
func ParseDocument(raw, jurisdiction string) (*Document, error) {
	matches := sectionHeader.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("drafting response contains no sections")
	}

	sections := make([]Section, 0, len(matches))
	for i, match := range matches {
		title := strings.TrimSpace(raw[match[2]:match[3]])

		bodyStart := match[1]
		bodyEnd := len(raw)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		body := strings.TrimSpace(raw[bodyStart:bodyEnd])

		if title == "" && body == "" {
			continue
		}
		sections = append(sections, Section{Title: title, Body: body})
	}

	if len(sections) == 0 {
		return nil, fmt.Errorf("drafting response contains only empty sections")
	}

	return &Document{Jurisdiction: jurisdiction, Sections: sections}, nil
}
