package ai

import (
	"bytes"
	"strings"
	"text/template"
	"unicode/utf8"
)

const analysisTemplate = `Analyze the following document and provide a structured analysis.
{{if .Inline}}
The document is attached as a PDF file named {{.Filename}}.
{{else}}
DOCUMENT ({{.Filename}}):
{{.Text}}
{{end}}
Respond with a single JSON object with exactly these fields:
- "summary": a concise 2-3 sentence summary of the document's main content and purpose
- "key_entities": the key people, organizations, dates and important terms mentioned
- "action_items": any action items, tasks or recommendations found in the document; "None identified" if there are none
- "keywords": an array of 5-10 relevant keywords that describe this document

If you cannot produce JSON, use this plain format instead:

SUMMARY:
...
KEY ENTITIES:
...
ACTION ITEMS:
...
KEYWORDS:
comma, separated, keywords`

var promptTemplate = template.Must(template.New("analysis").Parse(analysisTemplate))

type promptData struct {
	Filename string
	Text     string
	Inline   bool
}

// renderPrompt expands the analysis prompt for one document.
func renderPrompt(filename, text string, inline bool) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, promptData{
		Filename: filename,
		Text:     text,
		Inline:   inline,
	}); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// truncateChars keeps at most limit characters (runes), never splitting a
// multi-byte sequence.
func truncateChars(text string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text, false
	}
	count := 0
	for i := range text {
		if count == limit {
			return text[:i], true
		}
		count++
	}
	return text, false
}
