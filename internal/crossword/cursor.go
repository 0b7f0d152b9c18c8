package crossword

import (
	"fmt"
	"strings"
)

// Arrow is a geometric navigation key. Unlike typing, arrows move along the
// screen axes regardless of the current typing direction.
type Arrow uint8

const (
	ArrowLeft Arrow = iota
	ArrowRight
	ArrowUp
	ArrowDown
)

var arrowNames = [...]string{"left", "right", "up", "down"}

func (a Arrow) String() string {
	if int(a) < len(arrowNames) {
		return arrowNames[a]
	}
	return fmt.Sprintf("Arrow(%d)", uint8(a))
}

// Delta returns the row/col increment of one step in the arrow's direction.
func (a Arrow) Delta() (int, int) {
	switch a {
	case ArrowLeft:
		return 0, -1
	case ArrowRight:
		return 0, 1
	case ArrowUp:
		return -1, 0
	case ArrowDown:
		return 1, 0
	}
	return 0, 0
}

func (a Arrow) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Arrow) UnmarshalText(b []byte) error {
	name := strings.TrimPrefix(strings.ToLower(string(b)), "arrow")
	for i, n := range arrowNames {
		if n == name {
			*a = Arrow(i)
			return nil
		}
	}
	return fmt.Errorf("unknown arrow %q", b)
}

// Cursor is the selected cell and the typing direction.
type Cursor struct {
	Selected  *Pos      `json:"selected"`
	Direction Direction `json:"direction"`
}

// navigator tracks the cursor of one session.
type navigator struct {
	selected    Pos
	hasSelected bool
	direction   Direction
}

func (n *navigator) cursor() Cursor {
	c := Cursor{Direction: n.direction}
	if n.hasSelected {
		sel := n.selected
		c.Selected = &sel
	}
	return c
}

func (n *navigator) selectCell(pos Pos) {
	n.selected = pos
	n.hasSelected = true
}

// forward scans from pos in the typing direction.
func (n *navigator) forward(p *Puzzle, pos Pos) (Pos, bool) {
	dr, dc := n.direction.step()
	return p.Scan(pos, dr, dc)
}

// backward scans from pos against the typing direction.
func (n *navigator) backward(p *Puzzle, pos Pos) (Pos, bool) {
	dr, dc := n.direction.step()
	return p.Scan(pos, -dr, -dc)
}
