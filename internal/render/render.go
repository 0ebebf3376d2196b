// Package render produces the final document body from a template and a
// collected answer map, and drives the external HTML-to-PDF renderer.
//
// Substitution is literal and global: every occurrence of {{fieldName}} is
// replaced with the recorded answer (or an empty string for an optional field
// left blank). Answers are inserted verbatim, without HTML escaping; catalog
// templates embed their own markup and answers are plain form input. See
// DESIGN.md for the escaping decision.
package render

import (
	"fmt"
	"strings"

	"github.com/moydoc/go-docgen-backend/internal/domain"
)

// Substitute replaces {{fieldName}} markers in the template body for every
// field in the template's schema. Placeholders that do not correspond to any
// schema field are left untouched; they are not an error.
func Substitute(tpl *domain.Template, answers map[string]string) string {
	body := tpl.BodyHTML
	for _, f := range tpl.Fields {
		marker := "{{" + f.FieldName + "}}"
		body = strings.ReplaceAll(body, marker, answers[f.FieldName])
	}
	return body
}

// Page wraps a substituted body in a complete A4-styled HTML document, ready
// for display or for the PDF renderer.
func Page(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="ru">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>%s</title>
  <style>
    @page { size: A4; margin: 2cm; }
    body {
      font-family: 'Times New Roman', serif;
      font-size: 14pt;
      line-height: 1.5;
      color: #000;
      max-width: 21cm;
      margin: 0 auto;
      padding: 1cm;
    }
  </style>
</head>
<body>
%s
</body>
</html>
`, title, body)
}

// Document renders the full HTML page for a template and its answers.
func Document(tpl *domain.Template, title string, answers map[string]string) string {
	return Page(title, Substitute(tpl, answers))
}
