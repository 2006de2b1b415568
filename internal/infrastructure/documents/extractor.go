package documents

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"rsc.io/pdf"

	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/ports"
)

// PDFExtractor pulls text out of PDFs with the pure-Go rsc.io/pdf reader.
type PDFExtractor struct{}

// NewPDFExtractor builds a PDFExtractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract returns the text of every page joined by blank lines. A page that
// fails to decode contributes empty text and a warning.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (out domain.ExtractedText, err error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.ExtractedText{}, domain.IOError("open pdf", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return domain.ExtractedText{}, domain.IOError("stat pdf", path, err)
	}

	// rsc.io/pdf panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			out = domain.ExtractedText{}
			err = domain.IOError("parse pdf", path, fmt.Errorf("%v", r))
		}
	}()

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return domain.ExtractedText{}, domain.IOError("parse pdf", path, err)
	}

	total := reader.NumPage()
	parts := make([]string, 0, total)
	var warnings []string
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return domain.ExtractedText{}, err
		}
		text, perr := pageText(reader.Page(i))
		if perr != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: %v", i, perr))
		}
		parts = append(parts, text)
	}

	return domain.ExtractedText{
		Text:     strings.Join(parts, "\n\n"),
		Pages:    total,
		Warnings: warnings,
	}, nil
}

func pageText(p pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%v", r)
		}
	}()
	if p.V.IsNull() {
		return "", fmt.Errorf("missing page object")
	}

	w := &textWriter{page: p}
	contents := p.V.Key("Contents")
	switch contents.Kind() {
	case pdf.Stream:
		pdf.Interpret(contents, w.op)
	case pdf.Array:
		for i := 0; i < contents.Len(); i++ {
			pdf.Interpret(contents.Index(i), w.op)
		}
	}
	return w.String(), nil
}

// kernGap is the TJ adjustment, in thousandths of an em, read as a word break.
const kernGap = 200

// textWriter rebuilds reading order from the text-showing operators of a
// content stream. String operands keep their literal spaces; line moves
// become newlines.
type textWriter struct {
	page pdf.Page
	enc  pdf.TextEncoding
	b    strings.Builder

	lastY float64
	haveY bool
}

func (w *textWriter) op(stk *pdf.Stack, op string) {
	n := stk.Len()
	args := make([]pdf.Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = stk.Pop()
	}

	switch op {
	case "Tf":
		if len(args) == 2 {
			w.enc = w.page.Font(args[0].Name()).Encoder()
		}
	case "Td", "TD":
		if len(args) == 2 {
			if args[1].Float64() != 0 {
				w.newline()
			} else if args[0].Float64() > 0 {
				w.space()
			}
		}
	case "Tm":
		if len(args) == 6 {
			y := args[5].Float64()
			if w.haveY && math.Abs(y-w.lastY) <= 0.5 {
				w.space()
			} else {
				w.newline()
			}
			w.lastY, w.haveY = y, true
		}
	case "T*":
		w.newline()
	case "Tj":
		if len(args) == 1 {
			w.show(args[0])
		}
	case "'":
		if len(args) == 1 {
			w.newline()
			w.show(args[0])
		}
	case "\"":
		if len(args) == 3 {
			w.newline()
			w.show(args[2])
		}
	case "TJ":
		if len(args) == 1 && args[0].Kind() == pdf.Array {
			arr := args[0]
			for i := 0; i < arr.Len(); i++ {
				v := arr.Index(i)
				switch v.Kind() {
				case pdf.String:
					w.show(v)
				case pdf.Integer, pdf.Real:
					if v.Float64() < -kernGap {
						w.space()
					}
				}
			}
		}
	}
}

func (w *textWriter) show(v pdf.Value) {
	if v.Kind() != pdf.String {
		return
	}
	raw := v.RawString()
	if w.enc != nil {
		raw = w.enc.Decode(raw)
	}
	w.b.WriteString(raw)
}

func (w *textWriter) space() {
	if w.b.Len() == 0 {
		return
	}
	s := w.b.String()
	if last := s[len(s)-1]; last != ' ' && last != '\n' {
		w.b.WriteByte(' ')
	}
}

func (w *textWriter) newline() {
	if w.b.Len() == 0 {
		return
	}
	s := w.b.String()
	if s[len(s)-1] != '\n' {
		w.b.WriteByte('\n')
	}
}

// String returns the page text with trailing spaces trimmed from each line.
func (w *textWriter) String() string {
	lines := strings.Split(w.b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

var _ ports.TextExtractor = (*PDFExtractor)(nil)
