package sources

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/anatolykoptev/go_study/internal/engine"
	"rsc.io/pdf"
)

// pdfDoc is the slice of a PDF reader the extractor needs.
type pdfDoc interface {
	NumPage() int
	PageText(n int) string // n is 1-based
	io.Closer
}

// PDFExtractor reads the text of every page of a PDF file.
type PDFExtractor struct {
	open    func(path string) (pdfDoc, error)
	log     *slog.Logger
	metrics *engine.Metrics
}

// NewPDFExtractor returns an extractor backed by rsc.io/pdf.
func NewPDFExtractor(log *slog.Logger, m *engine.Metrics) *PDFExtractor {
	if log == nil {
		log = slog.Default()
	}
	return &PDFExtractor{open: openPDF, log: log, metrics: m}
}

// Extract returns the text of the PDF at path. Each non-empty page is prefixed with
// a "[Page N]" marker; pages without text are logged and skipped.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (engine.SourceDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return engine.SourceDocument{}, engine.Wrap(engine.KindNotFound, "pdf", path, err)
	}
	if info.IsDir() {
		return engine.SourceDocument{}, engine.Errorf(engine.KindNotFound, "pdf", path, "is a directory")
	}
	e.metrics.Incr(engine.MetricPDFExtractions)

	doc, err := e.open(path)
	if err != nil {
		e.log.Error("failed to open PDF", slog.String("path", path), slog.Any("error", err))
		return engine.SourceDocument{}, engine.Wrap(engine.KindExtraction, "pdf", path, err)
	}
	defer doc.Close()

	total := doc.NumPage()
	e.log.Info("total pages found", slog.String("path", path), slog.Int("pages", total))

	var sb strings.Builder
	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return engine.SourceDocument{}, engine.Wrap(engine.KindExtraction, "pdf", path, err)
		}
		text, err := safePageText(doc, n)
		if err != nil || strings.TrimSpace(text) == "" {
			attrs := []any{slog.Int("page", n)}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			e.log.Warn("no text found on page", attrs...)
			continue
		}
		fmt.Fprintf(&sb, "\n\n[Page %d]\n%s", n, text)
	}

	return engine.SourceDocument{
		Text:   strings.TrimSpace(sb.String()),
		Origin: engine.Origin{Kind: engine.OriginPDF, Identifier: path},
		Pages:  total,
	}, nil
}

// safePageText converts a reader panic on a broken content stream into an error.
func safePageText(doc pdfDoc, n int) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("page %d: %v", n, p)
		}
	}()
	return doc.PageText(n), nil
}

// --- rsc.io/pdf backend ---

type rscDoc struct {
	f *os.File
	r *pdf.Reader
}

func openPDF(path string) (pdfDoc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	r, err := newPDFReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	return &rscDoc{f: f, r: r}, nil
}

// newPDFReader guards pdf.NewReader, which panics on some malformed trailers.
func newPDFReader(f io.ReaderAt, size int64) (r *pdf.Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("malformed PDF: %v", p)
		}
	}()
	return pdf.NewReader(f, size)
}

func (d *rscDoc) NumPage() int { return d.r.NumPage() }

func (d *rscDoc) Close() error { return d.f.Close() }

func (d *rscDoc) PageText(n int) string {
	p := d.r.Page(n)
	if p.V.IsNull() {
		return ""
	}
	return assembleText(p.Content().Text)
}

// assembleText lays text runs out in reading order: top to bottom, then left to right.
// A baseline change starts a new line; a horizontal gap inserts a space.
func assembleText(runs []pdf.Text) string {
	if len(runs) == 0 {
		return ""
	}
	sorted := make([]pdf.Text, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !sameLine(a, b) {
			return a.Y > b.Y
		}
		return a.X < b.X
	})

	var sb strings.Builder
	prev := sorted[0]
	sb.WriteString(prev.S)
	for _, t := range sorted[1:] {
		switch {
		case !sameLine(prev, t):
			sb.WriteByte('\n')
		case t.X-(prev.X+prev.W) > spaceWidth(prev):
			sb.WriteByte(' ')
		}
		sb.WriteString(t.S)
		prev = t
	}

	lines := strings.Split(sb.String(), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func sameLine(a, b pdf.Text) bool {
	tol := math.Max(a.FontSize, b.FontSize) * 0.5
	if tol == 0 {
		tol = 1
	}
	return math.Abs(a.Y-b.Y) <= tol
}

func spaceWidth(t pdf.Text) float64 {
	if t.FontSize > 0 {
		return t.FontSize * 0.2
	}
	return 1
}
