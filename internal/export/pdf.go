package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"go_arena/internal/domain/board"
	"go_arena/internal/domain/game"
)

const (
	pageWidth   = 210.0
	margin      = 20.0
	diagramSize = pageWidth - 2*margin
	columns     = "ABCDEFGHJKLMNOPQRSTUVWXYZ"
)

// WriteGamePDF renders the final position of a game as a board diagram,
// followed by the result and the move list.
func WriteGamePDF(w io.Writer, record game.Game, final *board.Board) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s vs %s", record.PlayerBlack, record.PlayerWhite), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, fmt.Sprintf("Black: %s   White: %s", record.PlayerBlack, record.PlayerWhite), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, summary(record), "", 1, "C", false, 0, "")

	top := pdf.GetY() + 8
	drawBoard(pdf, final, margin, top)

	pdf.AddPage()
	pdf.SetFont("Courier", "", 10)
	pdf.MultiCell(0, 5, moveList(record), "", "L", false)

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func summary(record game.Game) string {
	text := fmt.Sprintf("%dx%d, komi %g, %d moves", record.BoardSize, record.BoardSize, record.Komi, len(record.Moves))
	switch {
	case record.Error != "":
		return text + ", aborted: " + record.Error
	case record.Winner == "draw":
		return text + ", draw"
	case record.Winner != "":
		return fmt.Sprintf("%s, %s wins (%s, score %+.1f)", text, record.Winner, record.Reason, record.Score)
	}
	return text
}

func drawBoard(pdf *gofpdf.Fpdf, b *board.Board, left, top float64) {
	size := b.Size()
	step := diagramSize / float64(size+1)
	x := func(col int) float64 { return left + step*float64(col+1) }
	y := func(row int) float64 { return top + step*float64(row+1) }

	pdf.SetFillColor(220, 179, 92)
	pdf.Rect(left, top, diagramSize, diagramSize, "F")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	for i := 0; i < size; i++ {
		pdf.Line(x(0), y(i), x(size-1), y(i))
		pdf.Line(x(i), y(0), x(i), y(size-1))
	}

	pdf.SetFont("Helvetica", "", 7)
	for i := 0; i < size; i++ {
		pdf.Text(x(i)-1, top+step*0.5, string(columns[i]))
		pdf.Text(left+step*0.2, y(i)+1, fmt.Sprintf("%d", size-i))
	}

	radius := step * 0.46
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			switch b.At(row, col) {
			case board.Black:
				pdf.SetFillColor(0, 0, 0)
				pdf.Circle(x(col), y(row), radius, "FD")
			case board.White:
				pdf.SetFillColor(255, 255, 255)
				pdf.Circle(x(col), y(row), radius, "FD")
			}
		}
	}
}

// moveList numbers the moves in GTP notation, five per line.
func moveList(record game.Game) string {
	var sb strings.Builder
	for i, m := range record.Moves {
		text := m.Coordinates
		if bm, err := m.ToBoard(record.BoardSize); err == nil {
			text = bm.Point.GTP(record.BoardSize)
		}
		fmt.Fprintf(&sb, "%3d. %s %-6s", i+1, m.Color, text)
		if (i+1)%5 == 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
