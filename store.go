package main

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bodul/dailygames/internal/crossword"
	"github.com/bodul/dailygames/internal/daily"
	"github.com/bodul/dailygames/internal/trivia"
)

const dateLayout = "2006-01-02"

var ErrEmptyPool = errors.New("content pool is empty")

// Store holds the content pools and all live sessions in memory.
type Store struct {
	puzzles    []*crossword.Puzzle
	triviaSets [][]trivia.Question

	mu      sync.RWMutex
	games   map[string]*GameSession
	quizzes map[string]*TriviaSession
}

// NewStore creates an empty store over the given pools.
func NewStore(puzzles []*crossword.Puzzle, triviaSets [][]trivia.Question) (*Store, error) {
	if len(puzzles) == 0 || len(triviaSets) == 0 {
		return nil, ErrEmptyPool
	}
	return &Store{
		puzzles:    puzzles,
		triviaSets: triviaSets,
		games:      make(map[string]*GameSession),
		quizzes:    make(map[string]*TriviaSession),
	}, nil
}

// PuzzleFor returns the puzzle of the day for date and its pool index.
func (s *Store) PuzzleFor(date time.Time) (*crossword.Puzzle, int) {
	return daily.Pick(s.puzzles, date)
}

// TriviaFor returns the trivia set of the day for date and its pool index.
func (s *Store) TriviaFor(date time.Time) ([]trivia.Question, int) {
	return daily.Pick(s.triviaSets, date)
}

// CreateGame starts a crossword session on the puzzle of the day.
func (s *Store) CreateGame(date time.Time) *GameSession {
	p, idx := s.PuzzleFor(date)
	game := newGameSession(uuid.NewString(), p, idx, date.Format(dateLayout))

	s.mu.Lock()
	s.games[game.ID] = game
	s.mu.Unlock()

	return game
}

// GetGame returns a game session by ID, or nil if not found.
func (s *Store) GetGame(id string) *GameSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.games[id]
}

// ListGames returns all crossword sessions, most recent first.
func (s *Store) ListGames() []*GameSession {
	s.mu.RLock()
	list := make([]*GameSession, 0, len(s.games))
	for _, g := range s.games {
		list = append(list, g)
	}
	s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

// CreateTrivia starts a trivia run on the set of the day. onAdvance, if set,
// is called after every delayed advance.
func (s *Store) CreateTrivia(date time.Time, onAdvance func(*TriviaSession, trivia.Snapshot), opts ...trivia.Option) *TriviaSession {
	set, idx := s.TriviaFor(date)
	ts := &TriviaSession{
		ID:        uuid.NewString(),
		Date:      date.Format(dateLayout),
		DayIndex:  idx,
		CreatedAt: time.Now(),
	}
	if onAdvance != nil {
		opts = append(opts, trivia.WithOnAdvance(func(snap trivia.Snapshot) { onAdvance(ts, snap) }))
	}
	ts.game = trivia.NewGame(set, opts...)

	s.mu.Lock()
	s.quizzes[ts.ID] = ts
	s.mu.Unlock()

	return ts
}

// GetTrivia returns a trivia session by ID, or nil if not found.
func (s *Store) GetTrivia(id string) *TriviaSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quizzes[id]
}

// Close stops pending trivia timers.
func (s *Store) Close() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.quizzes {
		q.game.Stop()
	}
}
