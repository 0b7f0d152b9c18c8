package crossword

import (
	"strings"
	"unicode/utf8"
)

// Outcome tells the caller what an action did. Ignored actions leave the
// session untouched.
type Outcome uint8

const (
	Applied Outcome = iota
	IgnoredOutOfRange
	IgnoredBlackCell
	IgnoredMultiChar
	IgnoredNoTarget
	IgnoredNoSelection
	IgnoredComplete
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case IgnoredOutOfRange:
		return "out_of_range"
	case IgnoredBlackCell:
		return "black_cell"
	case IgnoredMultiChar:
		return "multi_char"
	case IgnoredNoTarget:
		return "no_target"
	case IgnoredNoSelection:
		return "no_selection"
	case IgnoredComplete:
		return "complete"
	}
	return "unknown"
}

func (o Outcome) Ignored() bool { return o != Applied }

// Session is one solver's game on one puzzle.
type Session struct {
	puzzle   *Puzzle
	input    *InputGrid
	nav      navigator
	last     *Result
	complete bool
}

// NewSession starts an empty session on p with the cursor unset and typing
// across.
func NewSession(p *Puzzle) *Session {
	return &Session{
		puzzle: p,
		input:  NewInputGrid(p.Size()),
	}
}

func (s *Session) Puzzle() *Puzzle { return s.puzzle }

// Complete reports whether a check has found the puzzle solved. A complete
// session no longer accepts edits.
func (s *Session) Complete() bool { return s.complete }

func (s *Session) Cursor() Cursor { return s.nav.cursor() }

// Entry returns what was typed at pos.
func (s *Session) Entry(pos Pos) string { return s.input.Get(pos) }

// target validates that (row, col) is an editable white cell.
func (s *Session) target(row, col int) (Pos, Outcome) {
	pos := Pos{Row: row, Col: col}
	cell, ok := s.puzzle.Cell(row, col)
	if !ok {
		return pos, IgnoredOutOfRange
	}
	if cell.IsBlack() {
		return pos, IgnoredBlackCell
	}
	return pos, Applied
}

// EnterCharacter records value at (row, col) and advances the cursor to the
// next white cell in the typing direction. Input longer than one character is
// rejected as a whole. An empty value clears the cell without moving.
func (s *Session) EnterCharacter(row, col int, value string) Outcome {
	if s.complete {
		return IgnoredComplete
	}
	pos, out := s.target(row, col)
	if out.Ignored() {
		return out
	}
	if utf8.RuneCountInString(value) > 1 {
		return IgnoredMultiChar
	}

	s.input.set(pos, strings.ToUpper(value))
	if value == "" {
		return Applied
	}
	if next, ok := s.nav.forward(s.puzzle, pos); ok {
		s.nav.selectCell(next)
	}
	return Applied
}

// Backspace clears a non-empty cell in place. On an empty cell it moves the
// cursor back to the previous white cell in the typing direction.
func (s *Session) Backspace(row, col int) Outcome {
	pos, out := s.target(row, col)
	if out.Ignored() {
		return out
	}
	if s.input.Get(pos) != "" {
		if s.complete {
			return IgnoredComplete
		}
		s.input.set(pos, "")
		return Applied
	}
	prev, ok := s.nav.backward(s.puzzle, pos)
	if !ok {
		return IgnoredNoTarget
	}
	s.nav.selectCell(prev)
	return Applied
}

// Move steps the cursor to the nearest white cell in the arrow's direction.
// The typing direction is not changed.
func (s *Session) Move(a Arrow) Outcome {
	if !s.nav.hasSelected {
		return IgnoredNoSelection
	}
	dr, dc := a.Delta()
	next, ok := s.puzzle.Scan(s.nav.selected, dr, dc)
	if !ok {
		return IgnoredNoTarget
	}
	s.nav.selectCell(next)
	return Applied
}

// Select puts the cursor on a white cell. The typing direction is not changed.
func (s *Session) Select(row, col int) Outcome {
	pos, out := s.target(row, col)
	if out.Ignored() {
		return out
	}
	s.nav.selectCell(pos)
	return Applied
}

// ToggleDirection flips the typing direction and returns the new one.
func (s *Session) ToggleDirection() Direction {
	s.nav.direction = s.nav.direction.Toggle()
	return s.nav.direction
}

// ActiveClue returns the clue under the cursor in the typing direction.
func (s *Session) ActiveClue() (Clue, bool) {
	if !s.nav.hasSelected {
		return Clue{}, false
	}
	return s.puzzle.ClueAt(s.nav.selected, s.nav.direction)
}

// Check verifies the current input. A solved result makes the session
// complete.
func (s *Session) Check() Result {
	res := Verify(s.puzzle, s.input)
	s.last = &res
	if res.Solved {
		s.complete = true
	}
	return Result{Status: res.Status.clone(), Solved: res.Solved, Correct: res.Correct, Total: res.Total}
}

// LastResult returns the most recent Check result, if any.
func (s *Session) LastResult() (Result, bool) {
	if s.last == nil {
		return Result{}, false
	}
	r := *s.last
	r.Status = r.Status.clone()
	return r, true
}

// Reset empties the input, clears the cursor and forgets any verdict.
func (s *Session) Reset() {
	s.input.clear()
	s.nav = navigator{}
	s.last = nil
	s.complete = false
}

// Snapshot is a copy of the session state for rendering.
type Snapshot struct {
	Size     int           `json:"size"`
	Input    [][]string    `json:"input"`
	Cursor   Cursor        `json:"cursor"`
	Status   CellStatusMap `json:"status,omitempty"`
	Checked  bool          `json:"checked"`
	Complete bool          `json:"complete"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Size:     s.puzzle.Size(),
		Input:    s.input.Rows(),
		Cursor:   s.nav.cursor(),
		Complete: s.complete,
	}
	if s.last != nil {
		snap.Status = s.last.Status.clone()
		snap.Checked = true
	}
	return snap
}
