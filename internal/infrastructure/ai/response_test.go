package ai

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/gpa/internal/domain"
)

func mustSchema(t *testing.T) *responseSchema {
	t.Helper()
	schema, err := compileResponseSchema()
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}
	return schema
}

func TestParseResponseJSON(t *testing.T) {
	raw := `{"summary":"A lease renewal.","key_entities":["Acme Corp","Jane Doe"],"action_items":"Sign by May 1","keywords":["lease","renewal"]}`
	got, err := parseResponse(raw, mustSchema(t))
	if err != nil {
		t.Fatalf("parseResponse error: %v", err)
	}
	want := analysisFields{
		Summary:     "A lease renewal.",
		KeyEntities: "Acme Corp, Jane Doe",
		ActionItems: "Sign by May 1",
		Keywords:    []string{"lease", "renewal"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParseResponseFencedJSONWithKeywordString(t *testing.T) {
	raw := "```json\n{\"summary\":\"Invoice.\",\"key_entities\":\"Globex\",\"action_items\":\"Pay\",\"keywords\":\"invoice, payment\"}\n```"
	got, err := parseResponse(raw, mustSchema(t))
	if err != nil {
		t.Fatalf("parseResponse error: %v", err)
	}
	if got.Summary != "Invoice." || cmp.Diff([]string{"invoice", "payment"}, got.Keywords) != "" {
		t.Fatalf("unexpected fields: %+v", got)
	}
}

func TestParseResponseSchemaViolationFallsBackToSections(t *testing.T) {
	// Valid JSON without the required fields is not trusted.
	raw := `{"note":"nothing useful"}`
	got, err := parseResponse(raw, mustSchema(t))
	if err != nil {
		t.Fatalf("parseResponse error: %v", err)
	}
	if got.Summary != raw {
		t.Fatalf("expected raw fallback, got %+v", got)
	}
}

func TestParseResponseSections(t *testing.T) {
	raw := strings.Join([]string{
		"Summary: The board approved the budget.",
		"It also set targets.",
		"KEY ENTITIES:",
		"Board of Directors, 2025 budget",
		"action items: Publish minutes",
		"KEYWORDS: budget, board , , approval",
	}, "\n")
	got, err := parseResponse(raw, mustSchema(t))
	if err != nil {
		t.Fatalf("parseResponse error: %v", err)
	}
	want := analysisFields{
		Summary:     "The board approved the budget. It also set targets.",
		KeyEntities: "Board of Directors, 2025 budget",
		ActionItems: "Publish minutes",
		Keywords:    []string{"budget", "board", "approval"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParseResponseKeywordsNotLast(t *testing.T) {
	raw := "KEYWORDS: alpha, beta\nSUMMARY: Short."
	got, _ := parseResponse(raw, nil)
	if got.Summary != "Short." || len(got.Keywords) != 2 {
		t.Fatalf("unexpected fields: %+v", got)
	}
}

func TestParseResponseRawFallbackTruncates(t *testing.T) {
	raw := strings.Repeat("x", 800)
	got, err := parseResponse(raw, mustSchema(t))
	if err != nil {
		t.Fatalf("parseResponse error: %v", err)
	}
	if len(got.Summary) != domain.RawSummaryLimit {
		t.Fatalf("summary length = %d", len(got.Summary))
	}
	if got.KeyEntities != "" || got.Keywords != nil {
		t.Fatalf("unexpected fields: %+v", got)
	}
}

func TestParseResponseEmptyIsMalformed(t *testing.T) {
	_, err := parseResponse("  \n ", mustSchema(t))
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("want ErrMalformedResponse, got %v", err)
	}
}

func TestTruncateCharsKeepsRunes(t *testing.T) {
	got, cut := truncateChars("héllo wörld", 4)
	if !cut || got != "héll" {
		t.Fatalf("got %q cut=%v", got, cut)
	}
	same, cut := truncateChars("short", 10)
	if cut || same != "short" {
		t.Fatalf("got %q cut=%v", same, cut)
	}
}

func TestRenderPromptModes(t *testing.T) {
	text, err := renderPrompt("a.pdf", "BODY TEXT", false)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "BODY TEXT") || !strings.Contains(text, `"keywords"`) {
		t.Fatalf("text prompt missing content:\n%s", text)
	}
	inline, err := renderPrompt("scan.pdf", "", true)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(inline, "attached as a PDF file named scan.pdf") {
		t.Fatalf("inline prompt missing attachment note:\n%s", inline)
	}
}
