package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tmreyes/redline/internal/db"
)

// TestFullWorkflow exercises the complete submission lifecycle:
// submit → status → masked review → authenticated review → annotate →
// explain → assembled document.
func TestFullWorkflow(t *testing.T) {
	database := testDB(t)
	gen := &stubGenerator{respond: draftEcho}

	// 1. Submit
	submitOut, err := Submit(context.Background(), database, gen, testEntropy(), SubmitInput{Record: testRecord()})
	require.NoError(t, err)
	require.NotEmpty(t, submitOut.ID)
	require.Equal(t, db.StatusCompleted, submitOut.Status)
	require.True(t, submitOut.ClausesAvailable)
	id := submitOut.ID

	// 2. Status
	statusOut, err := Status(database, id)
	require.NoError(t, err)
	require.Equal(t, db.StatusCompleted, statusOut.Status)

	// 3. Anonymous review: structure visible, values withheld
	anon, err := FetchClauses(database, FetchClausesInput{SubmissionID: id})
	require.NoError(t, err)
	require.False(t, anon.Authenticated)
	require.Len(t, anon.Clauses, 3)
	require.Contains(t, anon.Clauses[0].Body, "[name withheld]")
	require.NotContains(t, anon.Clauses[0].Body, "Alice")

	// 4. Authenticated review: full text
	authed, err := FetchClauses(database, FetchClausesInput{SubmissionID: id, CallerEmail: "alice@example.com"})
	require.NoError(t, err)
	require.True(t, authed.Authenticated)
	require.Contains(t, authed.Clauses[0].Body, "Alice Smith")

	// 5. Annotate a clause as the other party
	clauseID := authed.Clauses[0].ID
	annotateOut, err := Annotate(context.Background(), database, gen, AnnotateInput{
		ClauseID:    clauseID,
		CallerEmail: "bob@example.com",
		Kind:        "comment",
		Body:        "agreed as drafted",
	})
	require.NoError(t, err)
	require.Equal(t, "comment", annotateOut.Annotation.Kind)

	// 6. Explain the same clause
	gen.respond = func(string) (string, error) {
		return "This section establishes who the agreement covers.", nil
	}
	explainOut, err := Explain(context.Background(), database, gen, ExplainInput{ClauseID: clauseID, CallerEmail: "alice@example.com"})
	require.NoError(t, err)
	require.True(t, explainOut.Generated)
	require.Contains(t, explainOut.Explanation, "who the agreement covers")

	// 7. Assembled document for delivery
	docOut, err := AssembleDocument(database, DocumentInput{SubmissionID: id, CallerEmail: "alice@example.com"})
	require.NoError(t, err)
	require.Contains(t, docOut.Markdown, "# Premarital Agreement")
	require.Contains(t, docOut.Markdown, "Alice Smith")
	require.Empty(t, partyAToken.FindString(docOut.Markdown))
}
