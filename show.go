package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bodul/dailygames/internal/crossword"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	blackStyle = lipgloss.NewStyle().
			Width(4).
			Background(lipgloss.Color("0")).
			Foreground(lipgloss.Color("0"))
	whiteStyle = lipgloss.NewStyle().
			Width(4).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("15"))
	headStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	clueStyle = lipgloss.NewStyle().PaddingLeft(2)
)

// renderPuzzle draws the grid and the clue lists for a terminal.
func renderPuzzle(p *crossword.Puzzle, dayIndex int, date time.Time, withSolution bool) string {
	rows := make([]string, p.Size())
	for r := range rows {
		cells := make([]string, p.Size())
		for c := range cells {
			cells[c] = renderCell(p, r, c, withSolution)
		}
		rows[r] = lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}
	grid := lipgloss.JoinVertical(lipgloss.Left, rows...)

	clues := lipgloss.JoinVertical(lipgloss.Left,
		headStyle.Render("Across"),
		renderClues(p.Across()),
		"",
		headStyle.Render("Down"),
		renderClues(p.Down()),
	)

	title := titleStyle.Render(fmt.Sprintf("Daily crossword for %s (#%d, %dx%d)",
		date.Format(dateLayout), dayIndex, p.Size(), p.Size()))

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.JoinHorizontal(lipgloss.Top, grid, "    ", clues),
	)
}

func renderCell(p *crossword.Puzzle, row, col int, withSolution bool) string {
	cell, _ := p.Cell(row, col)
	if cell.IsBlack() {
		return blackStyle.Render("####")
	}

	var b strings.Builder
	if n, ok := cell.Number(); ok {
		fmt.Fprintf(&b, "%-2d", n)
	} else {
		b.WriteString("  ")
	}
	if withSolution {
		l, _ := cell.Letter()
		b.WriteRune(l)
	} else {
		b.WriteString(".")
	}
	return whiteStyle.Render(b.String())
}

func renderClues(clues []crossword.Clue) string {
	lines := make([]string, len(clues))
	for i, c := range clues {
		lines[i] = clueStyle.Render(fmt.Sprintf("%2d. %s (%d)", c.Number, c.Text, c.Len()))
	}
	return strings.Join(lines, "\n")
}
