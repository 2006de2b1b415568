package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/doeshing/gpa/assets"
	"github.com/doeshing/gpa/internal/domain"
)

// analysisFields is the parsed body of a model reply.
type analysisFields struct {
	Summary     string
	KeyEntities string
	ActionItems string
	Keywords    []string
}

func (f analysisFields) empty() bool {
	return f.Summary == "" && f.KeyEntities == "" && f.ActionItems == ""
}

// responseSchema validates structured replies.
type responseSchema struct {
	schema *jsonschema.Schema
}

func compileResponseSchema() (*responseSchema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("analysis_schema.json", bytes.NewReader(assets.AnalysisSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("analysis_schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &responseSchema{schema: schema}, nil
}

// parseResponse turns raw model text into fields. It tries, in order, schema
// valid JSON, the labelled section format and finally the raw text itself.
func parseResponse(raw string, schema *responseSchema) (analysisFields, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return analysisFields{}, domain.ErrMalformedResponse
	}
	if fields, err := parseJSON(text, schema); err == nil && !fields.empty() {
		return fields, nil
	}
	if fields := parseSections(text); !fields.empty() {
		return fields, nil
	}
	return analysisFields{Summary: truncateRaw(text)}, nil
}

func parseJSON(text string, schema *responseSchema) (analysisFields, error) {
	body := stripCodeFence(text)
	var v map[string]any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return analysisFields{}, fmt.Errorf("unmarshal reply: %w", err)
	}
	if schema != nil {
		if err := schema.schema.Validate(v); err != nil {
			return analysisFields{}, fmt.Errorf("reply does not match schema: %w", err)
		}
	}
	return analysisFields{
		Summary:     flatten(v["summary"], " "),
		KeyEntities: flatten(v["key_entities"], ", "),
		ActionItems: flatten(v["action_items"], "; "),
		Keywords:    keywordList(v["keywords"]),
	}, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	body := strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

func flatten(v any, sep string) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, sep)
	default:
		return ""
	}
}

func keywordList(v any) []string {
	switch val := v.(type) {
	case string:
		return splitKeywords(val)
	case []any:
		var out []string
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, splitKeywords(s)...)
			}
		}
		return out
	default:
		return nil
	}
}

func splitKeywords(raw string) []string {
	var out []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

var sectionHeaders = []struct {
	prefix string
	field  string
}{
	{"SUMMARY:", "summary"},
	{"KEY ENTITIES:", "key_entities"},
	{"ACTION ITEMS:", "action_items"},
	{"KEYWORDS:", "keywords"},
}

// parseSections reads the labelled plain-text format. Headers match
// case-insensitively at the start of a line; continuation lines are joined
// with single spaces.
func parseSections(text string) analysisFields {
	collected := map[string][]string{}
	current := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)
		matched := false
		for _, h := range sectionHeaders {
			if strings.HasPrefix(upper, h.prefix) {
				current = h.field
				collected[current] = []string{strings.TrimSpace(line[len(h.prefix):])}
				matched = true
				break
			}
		}
		if !matched && current != "" {
			collected[current] = append(collected[current], line)
		}
	}

	join := func(field string) string {
		var parts []string
		for _, p := range collected[field] {
			if p != "" {
				parts = append(parts, p)
			}
		}
		return strings.Join(parts, " ")
	}
	return analysisFields{
		Summary:     join("summary"),
		KeyEntities: join("key_entities"),
		ActionItems: join("action_items"),
		Keywords:    splitKeywords(join("keywords")),
	}
}

func truncateRaw(text string) string {
	if utf8.RuneCountInString(text) <= domain.RawSummaryLimit {
		return text
	}
	out, _ := truncateChars(text, domain.RawSummaryLimit)
	return out
}
