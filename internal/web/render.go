package web

import (
	"bytes"
	"html/template"
	"log"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/tmreyes/redline/internal/ops"
)

// documentPage wraps the rendered agreement in a minimal standalone page.
// The artifact is meant to be saved or printed, so it embeds its own styling
// and loads nothing external.
var documentPage = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Premarital Agreement ({{.Jurisdiction}})</title>
<style>
body { font-family: Georgia, serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.5; }
h1 { text-align: center; }
h2 { margin-top: 2rem; border-bottom: 1px solid #ccc; padding-bottom: 0.25rem; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// renderDocumentHTML converts the assembled markdown to a standalone HTML
// artifact.
func renderDocumentHTML(w http.ResponseWriter, doc *ops.DocumentOutput) {
	var md bytes.Buffer
	if err := goldmark.Convert([]byte(doc.Markdown), &md); err != nil {
		log.Printf("document %s: markdown rendering error: %v", doc.SubmissionID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var page bytes.Buffer
	data := struct {
		Jurisdiction string
		Body         template.HTML
	}{
		Jurisdiction: doc.Jurisdiction,
		Body:         template.HTML(md.String()),
	}
	if err := documentPage.Execute(&page, data); err != nil {
		log.Printf("document %s: template execution error: %v", doc.SubmissionID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page.Bytes())
}
