package documents

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/doeshing/gpa/internal/domain"
)

// buildPDF writes a minimal uncompressed PDF with one text line per page.
func buildPDF(t *testing.T, pages ...string) string {
	t.Helper()
	contents := make([]string, len(pages))
	for i, text := range pages {
		if text != "" {
			contents[i] = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
	}
	return buildPDFContents(t, contents...)
}

// buildPDFContents writes a PDF whose pages use the given raw content streams.
func buildPDFContents(t *testing.T, pages ...string) string {
	t.Helper()
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	// 1 catalog, 2 pages, 3 font, then a page/content pair per page.
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for i, content := range pages {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractJoinsPages(t *testing.T) {
	path := buildPDF(t, "Quarterly report", "Page two")

	got, err := NewPDFExtractor().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if got.Pages != 2 {
		t.Fatalf("pages = %d, want 2", got.Pages)
	}
	if got.Text != "Quarterly report\n\nPage two" {
		t.Fatalf("unexpected text %q", got.Text)
	}
	if got.Empty() {
		t.Fatal("text should not be empty")
	}
}

func TestExtractKeepsWordBoundaries(t *testing.T) {
	path := buildPDF(t, "Invoice due on March first")

	got, err := NewPDFExtractor().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if got.Text != "Invoice due on March first" {
		t.Fatalf("unexpected text %q", got.Text)
	}
}

func TestExtractFollowsTextOperators(t *testing.T) {
	content := strings.Join([]string{
		"BT /F1 12 Tf 72 720 Td",
		"(Total)Tj 30 0 Td (amount) Tj",
		"[-400(due)-350(now)12(!)] TJ",
		"0 -14 Td (Second line) Tj",
		"T* (Third) Tj",
		"ET",
		"BT 1 0 0 1 72 600 Tm (Footer) Tj ET",
	}, "\n")
	path := buildPDFContents(t, content)

	got, err := NewPDFExtractor().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	want := "Total amount due now!\nSecond line\nThird\nFooter"
	if got.Text != want {
		t.Fatalf("text = %q, want %q", got.Text, want)
	}
}

func TestExtractBlankPDFIsEmpty(t *testing.T) {
	path := buildPDF(t, "")

	got, err := NewPDFExtractor().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if !got.Empty() || got.Pages != 1 {
		t.Fatalf("expected one empty page, got %+v", got)
	}
}

func TestExtractRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	if err := os.WriteFile(path, []byte(strings.Repeat("not a pdf at all ", 20)), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewPDFExtractor().Extract(context.Background(), path)
	if domain.KindOf(err) != domain.KindIO {
		t.Fatalf("want io error, got %v", err)
	}
}
