// Package clause decomposes generated prose sections into addressable,
// independently reviewable units. Generated legal prose has no enforced
// schema, so splitting is a conservative ordered fallback: numbered
// paragraphs, then lettered subsections, then the whole section as one
// clause.
package clause

import (
	"regexp"
	"strings"
)

// Section is one (title, body) unit of a generated document.
type Section struct {
	Title string
	Body  string
}

// Candidate is one clause candidate produced by splitting a section body.
// Title is empty when no per-segment title could be inferred; such candidates
// are attributed to the parent section's title.
type Candidate struct {
	Title string
	Body  string
}

// Clause is a numbered, classified candidate. Sequence numbers are unique and
// monotonically increasing across the whole document, never per section.
type Clause struct {
	Seq      int
	Title    string
	Body     string
	Category Category
}

// numberedMarker matches a paragraph marker: a line-start integer followed by
// a period and whitespace.
var numberedMarker = regexp.MustCompile(`(?m)^(\d+)\.\s+`)

// letteredMarker matches a subsection marker: a line-start lowercase letter
// followed by a closing parenthesis and whitespace.
var letteredMarker = regexp.MustCompile(`(?m)^([a-z])\)\s+`)

// titleMaxLen is the length threshold for treating a segment's first line as
// a title rather than body prose.
const titleMaxLen = 80

// SplitSection splits one section body into clause candidates. The split only
// triggers at two or more markers; a section with zero or one marker of both
// kinds becomes exactly one candidate carrying the section's own title.
func SplitSection(s Section) []Candidate {
	if candidates := splitAt(s.Body, numberedMarker, true); candidates != nil {
		return candidates
	}
	if candidates := splitAt(s.Body, letteredMarker, false); candidates != nil {
		return candidates
	}
	return []Candidate{{Title: s.Title, Body: strings.TrimSpace(s.Body)}}
}

// splitAt splits body at each marker boundary, stripping the marker itself.
// Returns nil when fewer than two markers are present. Title inference only
// applies to numbered segments; letters denote sub-points, not headings.
func splitAt(body string, marker *regexp.Regexp, inferTitles bool) []Candidate {
	matches := marker.FindAllStringIndex(body, -1)
	if len(matches) < 2 {
		return nil
	}

	candidates := make([]Candidate, 0, len(matches))
	for i, match := range matches {
		segStart := match[1] // after the marker
		segEnd := len(body)
		if i+1 < len(matches) {
			segEnd = matches[i+1][0]
		}
		segment := strings.TrimSpace(body[segStart:segEnd])

		// Prose before the first marker belongs with the first segment.
		if i == 0 {
			if lead := strings.TrimSpace(body[:match[0]]); lead != "" {
				segment = lead + "\n" + segment
			}
		}

		if inferTitles {
			candidates = append(candidates, inferTitle(segment))
		} else {
			candidates = append(candidates, Candidate{Body: segment})
		}
	}
	return candidates
}

// inferTitle treats a segment's first line as its title when the line is
// short and does not end in a sentence-terminating period. Otherwise the
// whole segment is untitled body text.
func inferTitle(segment string) Candidate {
	line, rest, found := strings.Cut(segment, "\n")
	line = strings.TrimSpace(line)
	if !found {
		return Candidate{Body: segment}
	}
	if len(line) < titleMaxLen && !strings.HasSuffix(line, ".") {
		return Candidate{Title: line, Body: strings.TrimSpace(rest)}
	}
	return Candidate{Body: segment}
}

// SegmentDocument splits every section of a document and assigns document-wide
// sequence numbers and categories. Classification keys off the parent
// section's title, so every clause of a section shares its category.
// Untitled candidates inherit the parent section's title.
func SegmentDocument(sections []Section) []Clause {
	var clauses []Clause
	seq := 0
	for _, section := range sections {
		category := Classify(section.Title)
		for _, cand := range SplitSection(section) {
			seq++
			title := cand.Title
			if title == "" {
				title = section.Title
			}
			clauses = append(clauses, Clause{
				Seq:      seq,
				Title:    title,
				Body:     cand.Body,
				Category: category,
			})
		}
	}
	return clauses
}
