// Package crossword implements the crossword engine: an immutable puzzle
// model, the mutable input grid and cursor of a solving session, and the
// answer verifier.
//
// The engine is synchronous and not safe for concurrent use. Callers that
// share a Session between goroutines must serialise access themselves.
package crossword

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidPuzzle is returned by NewPuzzle for structurally broken definitions.
var ErrInvalidPuzzle = errors.New("invalid puzzle")

// BlackMarker marks a black cell in a Definition grid row.
const BlackMarker = '#'

// Direction is the axis along which an answer is written.
type Direction uint8

const (
	Across Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "across"
}

// Toggle returns the other axis.
func (d Direction) Toggle() Direction {
	if d == Across {
		return Down
	}
	return Across
}

// step returns the row/col increment of one forward step along d.
func (d Direction) step() (int, int) {
	if d == Down {
		return 1, 0
	}
	return 0, 1
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "across", "a":
		*d = Across
	case "down", "d":
		*d = Down
	default:
		return fmt.Errorf("unknown direction %q", b)
	}
	return nil
}

// Pos is a 0-based grid coordinate.
type Pos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Cell is either black or white. The zero value is a black cell; only white
// cells carry a letter and, optionally, a clue number.
type Cell struct {
	white  bool
	letter rune
	number int
}

// BlackCell returns a cell that is not part of any answer.
func BlackCell() Cell {
	return Cell{}
}

// WhiteCell returns an answer cell. A number <= 0 means the cell is unnumbered.
func WhiteCell(letter rune, number int) Cell {
	if number < 0 {
		number = 0
	}
	return Cell{white: true, letter: letter, number: number}
}

func (c Cell) IsBlack() bool { return !c.white }

// Letter returns the solution letter of a white cell.
func (c Cell) Letter() (rune, bool) {
	return c.letter, c.white
}

// Number returns the clue number printed in a white cell, if any.
func (c Cell) Number() (int, bool) {
	return c.number, c.white && c.number > 0
}

// Clue is a hint bound to one straight-line answer.
type Clue struct {
	Number    int       `json:"number"`
	Text      string    `json:"text"`
	Answer    string    `json:"-"`
	Row       int       `json:"row"`
	Col       int       `json:"col"`
	Direction Direction `json:"direction"`
}

// Start returns the coordinate of the answer's first letter.
func (c Clue) Start() Pos {
	return Pos{Row: c.Row, Col: c.Col}
}

// Len returns the answer length in letters.
func (c Clue) Len() int {
	return utf8.RuneCountInString(c.Answer)
}

// Cells returns the coordinates covered by the answer, in writing order.
func (c Clue) Cells() []Pos {
	dr, dc := c.Direction.step()
	cells := make([]Pos, c.Len())
	for i := range cells {
		cells[i] = Pos{Row: c.Row + i*dr, Col: c.Col + i*dc}
	}
	return cells
}

// Covers reports whether pos lies on the answer's span.
func (c Clue) Covers(pos Pos) bool {
	n := c.Len()
	if c.Direction == Across {
		return pos.Row == c.Row && pos.Col >= c.Col && pos.Col < c.Col+n
	}
	return pos.Col == c.Col && pos.Row >= c.Row && pos.Row < c.Row+n
}

// ClueDefinition is the stored form of a clue; its direction comes from the
// list it appears in.
type ClueDefinition struct {
	Number int    `yaml:"number" json:"number"`
	Text   string `yaml:"clue" json:"clue"`
	Answer string `yaml:"answer" json:"answer"`
	Row    int    `yaml:"row" json:"row"`
	Col    int    `yaml:"col" json:"col"`
}

// Definition is the static, serialisable description of a puzzle.
// Grid rows spell the solution with BlackMarker for black cells.
type Definition struct {
	Size   int              `yaml:"size" json:"size"`
	Grid   []string         `yaml:"grid" json:"grid"`
	Across []ClueDefinition `yaml:"across" json:"across"`
	Down   []ClueDefinition `yaml:"down" json:"down"`
}

// Puzzle is an immutable size×size crossword.
type Puzzle struct {
	size   int
	grid   [][]Cell
	across []Clue
	down   []Clue
}

// NewPuzzle validates the structure of def and builds the puzzle. Clue numbers
// are stamped onto their start cells. Whether each answer actually matches the
// letters along its span is a property of the content and is not checked here.
func NewPuzzle(def Definition) (*Puzzle, error) {
	if def.Size <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidPuzzle, def.Size)
	}
	if len(def.Grid) != def.Size {
		return nil, fmt.Errorf("%w: %d rows for size %d", ErrInvalidPuzzle, len(def.Grid), def.Size)
	}

	p := &Puzzle{size: def.Size, grid: make([][]Cell, def.Size)}
	for r, line := range def.Grid {
		runes := []rune(strings.ToUpper(line))
		if len(runes) != def.Size {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidPuzzle, r, len(runes), def.Size)
		}
		p.grid[r] = make([]Cell, def.Size)
		for c, ch := range runes {
			switch {
			case ch == BlackMarker:
				p.grid[r][c] = BlackCell()
			case ch >= 'A' && ch <= 'Z':
				p.grid[r][c] = WhiteCell(ch, 0)
			default:
				return nil, fmt.Errorf("%w: unexpected %q at %v", ErrInvalidPuzzle, ch, Pos{r, c})
			}
		}
	}

	var err error
	if p.across, err = p.buildClues(def.Across, Across); err != nil {
		return nil, err
	}
	if p.down, err = p.buildClues(def.Down, Down); err != nil {
		return nil, err
	}
	return p, nil
}

// MustPuzzle is like NewPuzzle but panics on error. It is meant for
// compiled-in content.
func MustPuzzle(def Definition) *Puzzle {
	p, err := NewPuzzle(def)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Puzzle) buildClues(defs []ClueDefinition, dir Direction) ([]Clue, error) {
	clues := make([]Clue, 0, len(defs))
	for _, d := range defs {
		start := Pos{Row: d.Row, Col: d.Col}
		if d.Number <= 0 {
			return nil, fmt.Errorf("%w: %s clue at %v has number %d", ErrInvalidPuzzle, dir, start, d.Number)
		}
		if !p.IsWhite(start) {
			return nil, fmt.Errorf("%w: %d %s starts on a black or missing cell %v", ErrInvalidPuzzle, d.Number, dir, start)
		}
		answer := strings.ToUpper(strings.TrimSpace(d.Answer))
		if answer == "" {
			return nil, fmt.Errorf("%w: %d %s has no answer", ErrInvalidPuzzle, d.Number, dir)
		}

		cell := &p.grid[start.Row][start.Col]
		if cell.number != 0 && cell.number != d.Number {
			return nil, fmt.Errorf("%w: cell %v numbered both %d and %d", ErrInvalidPuzzle, start, cell.number, d.Number)
		}
		cell.number = d.Number

		clues = append(clues, Clue{
			Number:    d.Number,
			Text:      d.Text,
			Answer:    answer,
			Row:       d.Row,
			Col:       d.Col,
			Direction: dir,
		})
	}
	return clues, nil
}

func (p *Puzzle) Size() int { return p.size }

func (p *Puzzle) inBounds(row, col int) bool {
	return row >= 0 && row < p.size && col >= 0 && col < p.size
}

// Cell returns the cell at (row, col). ok is false when out of range.
func (p *Puzzle) Cell(row, col int) (Cell, bool) {
	if !p.inBounds(row, col) {
		return Cell{}, false
	}
	return p.grid[row][col], true
}

// IsWhite reports whether pos is inside the grid and accepts letters.
func (p *Puzzle) IsWhite(pos Pos) bool {
	c, ok := p.Cell(pos.Row, pos.Col)
	return ok && !c.IsBlack()
}

// WhiteCount returns the number of answer cells.
func (p *Puzzle) WhiteCount() int {
	n := 0
	for _, row := range p.grid {
		for _, c := range row {
			if !c.IsBlack() {
				n++
			}
		}
	}
	return n
}

// Across returns the across clues in order.
func (p *Puzzle) Across() []Clue {
	return append([]Clue(nil), p.across...)
}

// Down returns the down clues in order.
func (p *Puzzle) Down() []Clue {
	return append([]Clue(nil), p.down...)
}

func (p *Puzzle) clues(dir Direction) []Clue {
	if dir == Down {
		return p.down
	}
	return p.across
}

// Clue looks a clue up by number and direction.
func (p *Puzzle) Clue(number int, dir Direction) (Clue, bool) {
	for _, c := range p.clues(dir) {
		if c.Number == number {
			return c, true
		}
	}
	return Clue{}, false
}

// ClueAt returns the clue along dir whose answer covers pos.
func (p *Puzzle) ClueAt(pos Pos, dir Direction) (Clue, bool) {
	for _, c := range p.clues(dir) {
		if c.Covers(pos) {
			return c, true
		}
	}
	return Clue{}, false
}

// Scan walks from `from` in steps of (dRow, dCol) and returns the first white
// cell strictly after it. It stops at the grid edge and never wraps.
func (p *Puzzle) Scan(from Pos, dRow, dCol int) (Pos, bool) {
	if dRow == 0 && dCol == 0 {
		return from, false
	}
	r, c := from.Row+dRow, from.Col+dCol
	for p.inBounds(r, c) {
		if p.grid[r][c].white {
			return Pos{Row: r, Col: c}, true
		}
		r += dRow
		c += dCol
	}
	return from, false
}
