package crossword

import (
	"fmt"
	"strings"
)

// Status is the verdict for one cell.
type Status uint8

const (
	Unknown Status = iota
	Correct
	Incorrect
)

func (s Status) String() string {
	switch s {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "correct":
		*s = Correct
	case "incorrect":
		*s = Incorrect
	case "unknown", "":
		*s = Unknown
	default:
		return fmt.Errorf("unknown status %q", b)
	}
	return nil
}

// CellStatusMap holds one Status per cell. Black cells stay Unknown.
type CellStatusMap [][]Status

// At returns the status at pos, Unknown when out of range.
func (m CellStatusMap) At(pos Pos) Status {
	if pos.Row < 0 || pos.Row >= len(m) || pos.Col < 0 || pos.Col >= len(m[pos.Row]) {
		return Unknown
	}
	return m[pos.Row][pos.Col]
}

func (m CellStatusMap) clone() CellStatusMap {
	if m == nil {
		return nil
	}
	cp := make(CellStatusMap, len(m))
	for i, row := range m {
		cp[i] = append([]Status(nil), row...)
	}
	return cp
}

// Result is the outcome of verifying an input grid against a puzzle.
type Result struct {
	Status  CellStatusMap `json:"status"`
	Solved  bool          `json:"solved"`
	Correct int           `json:"correct"`
	Total   int           `json:"total"`
}

// Verify compares every white cell of in against p. Comparison is
// case-insensitive; an empty entry is Incorrect. Verify never fails: a grid
// of another size simply reads as empty where it does not overlap.
func Verify(p *Puzzle, in *InputGrid) Result {
	res := Result{Status: make(CellStatusMap, p.size)}
	for r := 0; r < p.size; r++ {
		res.Status[r] = make([]Status, p.size)
		for c := 0; c < p.size; c++ {
			letter, white := p.grid[r][c].Letter()
			if !white {
				continue
			}
			res.Total++
			if strings.EqualFold(in.Get(Pos{Row: r, Col: c}), string(letter)) {
				res.Status[r][c] = Correct
				res.Correct++
			} else {
				res.Status[r][c] = Incorrect
			}
		}
	}
	res.Solved = res.Correct == res.Total
	return res
}
