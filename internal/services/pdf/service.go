package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Service converts markdown run reports into PDF attachments
type Service struct {
	logger arbor.ILogger
}

// NewService creates a new PDF report service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// ConvertMarkdownToPDF renders a markdown report to PDF bytes. The title is
// expected to appear in the markdown as an H1 heading; the parameter is kept
// for document metadata.
func (s *Service) ConvertMarkdownToPDF(markdown, title string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.SetTitle(title, true)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 9)

	md := goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
	)

	source := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(source))

	renderer := &reportRenderer{
		pdf:    pdf,
		source: source,
		font:   "Arial",
		size:   9,
	}
	if err := ast.Walk(doc, renderer.walk); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render markdown report")
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	s.logger.Debug().
		Int("markdown_len", len(markdown)).
		Int("pdf_size", buf.Len()).
		Msg("Report PDF generated")

	return buf.Bytes(), nil
}

type reportRenderer struct {
	pdf    *fpdf.Fpdf
	source []byte
	font   string
	size   float64
	bold   bool
	italic bool
	inList bool

	tableRows [][]string
	inTable   bool
}

func (r *reportRenderer) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont(r.font, style, r.size)
}

func (r *reportRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {
	case ast.KindHeading:
		r.renderHeading(n.(*ast.Heading), entering)
	case ast.KindParagraph:
		if !entering && !r.inList {
			r.pdf.Ln(7)
		}
	case ast.KindText:
		if entering && !r.inTable {
			r.pdf.Write(5, string(n.Text(r.source)))
		}
	case ast.KindEmphasis:
		if n.(*ast.Emphasis).Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.updateFont()
	case ast.KindList:
		r.inList = entering
		if !entering {
			r.pdf.Ln(3)
		}
	case ast.KindListItem:
		if entering {
			r.pdf.Write(5, "  • ")
		} else {
			r.pdf.Ln(5)
		}
	case ast.KindThematicBreak:
		if entering {
			r.pdf.Ln(2)
			r.pdf.Line(15, r.pdf.GetY(), 195, r.pdf.GetY())
			r.pdf.Ln(2)
		}
	case extast.KindTable:
		if entering {
			r.inTable = true
			r.tableRows = nil
		} else {
			r.renderTable()
			r.inTable = false
		}
	case extast.KindTableRow, extast.KindTableHeader:
		if entering {
			r.tableRows = append(r.tableRows, r.extractRow(n))
		}
	}
	return ast.WalkContinue, nil
}

func (r *reportRenderer) renderHeading(n *ast.Heading, entering bool) {
	if entering {
		r.pdf.Ln(6)
		size := 10.0
		switch n.Level {
		case 1:
			size = 14
		case 2:
			size = 12
		case 3:
			size = 11
		}
		r.pdf.SetFont(r.font, "B", size)
	} else {
		r.pdf.Ln(6)
		r.updateFont()
	}
}

func (r *reportRenderer) extractRow(n ast.Node) []string {
	var cells []string
	for cell := n.FirstChild(); cell != nil; cell = cell.NextSibling() {
		var sb strings.Builder
		for child := cell.FirstChild(); child != nil; child = child.NextSibling() {
			if t, ok := child.(*ast.Text); ok {
				sb.Write(t.Text(r.source))
			}
		}
		cells = append(cells, sb.String())
	}
	return cells
}

// renderTable draws collected rows as equal-width bordered cells. The first
// row is treated as the header.
func (r *reportRenderer) renderTable() {
	if len(r.tableRows) == 0 {
		return
	}

	numCols := len(r.tableRows[0])
	if numCols == 0 {
		return
	}

	pageWidth, _ := r.pdf.GetPageSize()
	left, _, right, _ := r.pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(numCols)

	r.pdf.Ln(2)
	for rowIdx, row := range r.tableRows {
		if rowIdx == 0 {
			r.pdf.SetFont(r.font, "B", r.size)
		} else {
			r.pdf.SetFont(r.font, "", r.size)
		}

		for col := 0; col < numCols; col++ {
			var cellText string
			if col < len(row) {
				cellText = truncateCell(row[col], colWidth, r.size)
			}
			r.pdf.CellFormat(colWidth, 6, cellText, "1", 0, "L", false, 0, "")
		}
		r.pdf.Ln(-1)
	}
	r.pdf.Ln(3)
	r.updateFont()
}

// truncateCell clips cell text to roughly fit the column width so long
// portal descriptions cannot overflow the table.
func truncateCell(text string, width, fontSize float64) string {
	// Approximate character budget from width in mm and font size in pt
	maxChars := int(width / (fontSize * 0.18))
	if maxChars < 4 {
		maxChars = 4
	}
	if len(text) <= maxChars {
		return text
	}
	return text[:maxChars-3] + "..."
}
