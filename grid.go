package main

import "github.com/bodul/dailygames/internal/crossword"

// CellView is how a cell is sent to clients. Letter is only filled in when
// the solution may be shown.
type CellView struct {
	Black  bool   `json:"black"`
	Number int    `json:"number,omitempty"`
	Letter string `json:"letter,omitempty"`
}

// ClueView is a clue without its answer.
type ClueView struct {
	Number    int                 `json:"number"`
	Text      string              `json:"text"`
	Row       int                 `json:"row"`
	Col       int                 `json:"col"`
	Direction crossword.Direction `json:"direction"`
	Length    int                 `json:"length"`
}

// PuzzleView is the renderable form of a puzzle.
type PuzzleView struct {
	Size     int          `json:"size"`
	DayIndex int          `json:"day_index"`
	Date     string       `json:"date"`
	Cells    [][]CellView `json:"cells"`
	Across   []ClueView   `json:"across"`
	Down     []ClueView   `json:"down"`
}

func newClueView(c crossword.Clue) ClueView {
	return ClueView{
		Number:    c.Number,
		Text:      c.Text,
		Row:       c.Row,
		Col:       c.Col,
		Direction: c.Direction,
		Length:    c.Len(),
	}
}

func newClueViews(clues []crossword.Clue) []ClueView {
	views := make([]ClueView, len(clues))
	for i, c := range clues {
		views[i] = newClueView(c)
	}
	return views
}

func newPuzzleView(p *crossword.Puzzle, dayIndex int, date string, withSolution bool) PuzzleView {
	v := PuzzleView{
		Size:     p.Size(),
		DayIndex: dayIndex,
		Date:     date,
		Cells:    make([][]CellView, p.Size()),
		Across:   newClueViews(p.Across()),
		Down:     newClueViews(p.Down()),
	}
	for r := range v.Cells {
		v.Cells[r] = make([]CellView, p.Size())
		for c := range v.Cells[r] {
			cell, _ := p.Cell(r, c)
			if cell.IsBlack() {
				v.Cells[r][c] = CellView{Black: true}
				continue
			}
			n, _ := cell.Number()
			cv := CellView{Number: n}
			if withSolution {
				l, _ := cell.Letter()
				cv.Letter = string(l)
			}
			v.Cells[r][c] = cv
		}
	}
	return v
}
