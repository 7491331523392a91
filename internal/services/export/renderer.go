package export

import (
	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// pdfRenderer walks a goldmark AST and draws it into an fpdf document.
// Inline state (bold, italic, list depth) lives on the renderer because the
// walk visits enter and exit separately.
type pdfRenderer struct {
	pdf       *fpdf.Fpdf
	source    []byte
	font      string
	size      float64
	bold      bool
	italic    bool
	listLevel int
}

func (r *pdfRenderer) render(node ast.Node) error {
	return ast.Walk(node, r.walk)
}

func (r *pdfRenderer) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont(r.font, style, r.size)
}

func (r *pdfRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {
	case ast.KindHeading:
		r.handleHeading(n.(*ast.Heading), entering)
	case ast.KindParagraph:
		if !entering {
			r.pdf.Ln(7)
		}
	case ast.KindText:
		if entering {
			r.pdf.Write(5, string(n.Text(r.source)))
			if n.(*ast.Text).HardLineBreak() {
				r.pdf.Ln(5)
			}
		}
	case ast.KindEmphasis:
		if n.(*ast.Emphasis).Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.updateFont()
	case ast.KindCodeSpan:
		return r.handleCodeSpan(n, entering)
	case ast.KindFencedCodeBlock:
		if entering {
			r.renderCodeBlock(n.Lines())
			return ast.WalkSkipChildren, nil
		}
	case ast.KindCodeBlock:
		if entering {
			r.renderCodeBlock(n.Lines())
			return ast.WalkSkipChildren, nil
		}
	case ast.KindList:
		r.handleList(entering)
	case ast.KindListItem:
		if entering {
			r.pdf.Ln(5)
			indent := float64(r.listLevel) * 5.0
			r.pdf.SetX(10 + indent)
			r.pdf.Write(5, "- ")
		}
	case ast.KindBlockquote:
		if entering {
			r.pdf.SetLeftMargin(16)
			r.italic = true
		} else {
			r.pdf.SetLeftMargin(10)
			r.italic = false
		}
		r.updateFont()
	case ast.KindThematicBreak:
		if entering {
			r.pdf.Ln(2)
			r.pdf.Line(15, r.pdf.GetY(), 195, r.pdf.GetY())
			r.pdf.Ln(4)
		}
	case extast.KindTable:
		if entering {
			r.renderTable(collectTableRows(n, r.source))
			return ast.WalkSkipChildren, nil
		}
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) handleHeading(n *ast.Heading, entering bool) {
	if entering {
		r.pdf.Ln(6)
		size := 14.0
		switch n.Level {
		case 1:
			size = 14
		case 2:
			size = 12
		case 3:
			size = 11
		default:
			size = 10
		}
		r.pdf.SetFont(r.font, "B", size)
	} else {
		r.pdf.Ln(6)
		r.updateFont()
	}
}

func (r *pdfRenderer) handleCodeSpan(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.pdf.SetFont("Courier", "", r.size)
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if textNode, ok := c.(*ast.Text); ok {
				r.pdf.Write(5, string(textNode.Segment.Value(r.source)))
			}
		}
	}
	r.updateFont()
	return ast.WalkSkipChildren, nil
}

func (r *pdfRenderer) renderCodeBlock(lines *text.Segments) {
	r.pdf.Ln(2)
	r.pdf.SetFont("Courier", "", 9)
	r.pdf.SetFillColor(245, 245, 245)

	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		r.pdf.MultiCell(0, 5, string(line.Value(r.source)), "", "L", true)
	}

	r.pdf.SetFillColor(255, 255, 255)
	r.updateFont()
	r.pdf.Ln(2)
}

func (r *pdfRenderer) handleList(entering bool) {
	if entering {
		r.listLevel++
	} else {
		r.listLevel--
		if r.listLevel == 0 {
			r.pdf.Ln(7)
		}
	}
}

// collectTableRows flattens a GFM table node into cell text, header row
// first
func collectTableRows(table ast.Node, source []byte) [][]string {
	var rows [][]string

	var visit func(node ast.Node)
	visit = func(node ast.Node) {
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			switch row := child.(type) {
			case *extast.TableRow:
				rows = append(rows, extractCells(row, source))
			case *extast.TableHeader:
				visit(row)
			}
		}
	}
	visit(table)

	return rows
}

func extractCells(row *extast.TableRow, source []byte) []string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*extast.TableCell); ok {
			cells = append(cells, string(cell.Text(source)))
		}
	}
	return cells
}

// renderTable draws rows in equal-width columns, one line per row, with
// overlong cells truncated. Item text rarely carries tables, so layout
// stays simple.
func (r *pdfRenderer) renderTable(rows [][]string) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	pageWidth := 190.0
	colWidth := pageWidth / float64(len(rows[0]))
	lineHeight := 6.0

	r.pdf.Ln(2)
	for i, row := range rows {
		if i == 0 {
			r.pdf.SetFont(r.font, "B", 8)
			r.pdf.SetFillColor(230, 230, 230)
		} else {
			r.pdf.SetFont(r.font, "", 8)
			r.pdf.SetFillColor(255, 255, 255)
		}

		r.pdf.SetX(10)
		for _, cell := range row {
			r.pdf.CellFormat(colWidth, lineHeight, r.fitCell(cell, colWidth-2), "1", 0, "L", i == 0, 0, "")
		}
		r.pdf.Ln(lineHeight)
	}

	r.pdf.SetFillColor(255, 255, 255)
	r.updateFont()
	r.pdf.Ln(3)
}

// fitCell truncates cell text to the column width with an ellipsis
func (r *pdfRenderer) fitCell(cell string, width float64) string {
	if r.pdf.GetStringWidth(cell) <= width {
		return cell
	}
	runes := []rune(cell)
	for len(runes) > 1 && r.pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
