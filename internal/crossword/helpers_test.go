package crossword

import "testing"

// dailyZero mirrors the first puzzle of the built-in pool.
//
//	   0 1 2 3 4 5 6
//	0: C O L D # S U
//	1: A # # # # U N
//	2: T R E E # # #
//	3: # E # # B I R
//	4: D O G # A # D
//	5: A # # M K E #
//	6: Y # # O # # #
func dailyZero(t *testing.T) *Puzzle {
	t.Helper()
	p, err := NewPuzzle(Definition{
		Size: 7,
		Grid: []string{
			"COLD#SU",
			"A####UN",
			"TREE###",
			"#E##BIR",
			"DOG#A#D",
			"A##MKE#",
			"Y##O###",
		},
		Across: []ClueDefinition{
			{Number: 1, Text: "Opposite of hot", Answer: "COLD", Row: 0, Col: 0},
			{Number: 2, Text: "Bright star in the sky", Answer: "SUN", Row: 0, Col: 5},
			{Number: 3, Text: "Large plant with trunk", Answer: "TREE", Row: 2, Col: 0},
			{Number: 4, Text: "Flying animal", Answer: "BIRD", Row: 3, Col: 4},
			{Number: 5, Text: "Common pet that barks", Answer: "DOG", Row: 4, Col: 0},
			{Number: 6, Text: "To create or build", Answer: "MAKE", Row: 5, Col: 3},
		},
		Down: []ClueDefinition{
			{Number: 1, Text: "Feline pet", Answer: "CAT", Row: 0, Col: 0},
			{Number: 2, Text: "Bright yellow color", Answer: "SUNNY", Row: 0, Col: 5},
			{Number: 4, Text: "Loaf of ___", Answer: "BREAD", Row: 3, Col: 4},
			{Number: 5, Text: "24 hours", Answer: "DAY", Row: 4, Col: 0},
		},
	})
	if err != nil {
		t.Fatalf("build puzzle: %v", err)
	}
	return p
}

// solve types the solution letter into every white cell, skipping skip.
func solve(s *Session, skip ...Pos) {
	p := s.Puzzle()
	for r := 0; r < p.Size(); r++ {
	cells:
		for c := 0; c < p.Size(); c++ {
			for _, sk := range skip {
				if sk == (Pos{Row: r, Col: c}) {
					continue cells
				}
			}
			cell, _ := p.Cell(r, c)
			if letter, ok := cell.Letter(); ok {
				s.EnterCharacter(r, c, string(letter))
			}
		}
	}
}
