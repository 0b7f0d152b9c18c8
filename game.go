package main

import (
	"sync"
	"time"

	"github.com/bodul/dailygames/internal/crossword"
	"github.com/bodul/dailygames/internal/trivia"
)

// GameState is what clients receive after every crossword action.
type GameState struct {
	crossword.Snapshot
	ActiveClue *ClueView `json:"active_clue,omitempty"`
}

// GameSession is one crossword solving session. The engine session is not
// goroutine-safe, so every access goes through mu.
type GameSession struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	DayIndex  int       `json:"day_index"`
	CreatedAt time.Time `json:"created_at"`

	mu      sync.Mutex
	puzzle  *crossword.Puzzle
	session *crossword.Session
}

func newGameSession(id string, p *crossword.Puzzle, dayIndex int, date string) *GameSession {
	return &GameSession{
		ID:        id,
		Date:      date,
		DayIndex:  dayIndex,
		CreatedAt: time.Now(),
		puzzle:    p,
		session:   crossword.NewSession(p),
	}
}

// Puzzle returns the immutable puzzle the session is played on.
func (g *GameSession) Puzzle() *crossword.Puzzle { return g.puzzle }

// View returns the puzzle view, with letters once the puzzle is solved.
func (g *GameSession) View() PuzzleView {
	g.mu.Lock()
	complete := g.session.Complete()
	g.mu.Unlock()
	return newPuzzleView(g.puzzle, g.DayIndex, g.Date, complete)
}

// Enter types value at (row, col).
func (g *GameSession) Enter(row, col int, value string) (crossword.Outcome, GameState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := g.session.EnterCharacter(row, col, value)
	return out, g.stateLocked()
}

func (g *GameSession) Backspace(row, col int) (crossword.Outcome, GameState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := g.session.Backspace(row, col)
	return out, g.stateLocked()
}

func (g *GameSession) Select(row, col int) (crossword.Outcome, GameState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := g.session.Select(row, col)
	return out, g.stateLocked()
}

func (g *GameSession) Move(a crossword.Arrow) (crossword.Outcome, GameState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := g.session.Move(a)
	return out, g.stateLocked()
}

func (g *GameSession) Toggle() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.session.ToggleDirection()
	return g.stateLocked()
}

// Check verifies the grid.
func (g *GameSession) Check() (crossword.Result, GameState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	res := g.session.Check()
	return res, g.stateLocked()
}

// State returns a copy of the current state.
func (g *GameSession) State() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

// Pattern returns the letters typed along a clue, '_' for blanks. It always
// has c.Len() characters, even where the answer runs over black cells.
func (g *GameSession) Pattern(c crossword.Clue) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	b := make([]byte, 0, c.Len())
	for _, pos := range c.Cells() {
		v := ""
		if g.puzzle.IsWhite(pos) {
			v = g.session.Entry(pos)
		}
		if v == "" {
			b = append(b, '_')
		} else {
			b = append(b, v...)
		}
	}
	return string(b)
}

func (g *GameSession) stateLocked() GameState {
	st := GameState{Snapshot: g.session.Snapshot()}
	if c, ok := g.session.ActiveClue(); ok {
		v := newClueView(c)
		st.ActiveClue = &v
	}
	return st
}

// TriviaSession is one run through a day's trivia set.
type TriviaSession struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	DayIndex  int       `json:"day_index"`
	CreatedAt time.Time `json:"created_at"`

	game *trivia.Game
}

func (t *TriviaSession) Answer(choice int) (trivia.AnswerResult, error) {
	return t.game.Answer(choice)
}

func (t *TriviaSession) Reset() { t.game.Reset() }

func (t *TriviaSession) State() trivia.Snapshot { return t.game.Snapshot() }
