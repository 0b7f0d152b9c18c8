package main

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodul/dailygames/internal/content"
	"github.com/bodul/dailygames/internal/crossword"
	"github.com/bodul/dailygames/internal/trivia"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(content.Puzzles(), content.TriviaSets())
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func day(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 9, 30, 0, 0, time.UTC)
}

func TestNewStoreEmptyPool(t *testing.T) {
	_, err := NewStore(nil, content.TriviaSets())
	assert.True(t, errors.Is(err, ErrEmptyPool))

	_, err = NewStore(content.Puzzles(), nil)
	assert.True(t, errors.Is(err, ErrEmptyPool))
}

func TestPuzzleForRotatesDaily(t *testing.T) {
	s := newTestStore(t)

	for _, tc := range []struct {
		date time.Time
		want int
	}{
		{day(time.January, 1), 0},
		{day(time.January, 2), 1},
		{day(time.January, 3), 2},
		{day(time.January, 4), 0},
		{day(time.January, 5), 1},
	} {
		_, idx := s.PuzzleFor(tc.date)
		assert.Equal(t, tc.want, idx, tc.date.Format(dateLayout))
		_, tidx := s.TriviaFor(tc.date)
		assert.Equal(t, tc.want, tidx, "trivia shares the day index")
	}

	p, _ := s.PuzzleFor(day(time.January, 1))
	assert.Equal(t, 7, p.Size())
}

func TestCreateAndGetGame(t *testing.T) {
	s := newTestStore(t)

	game := s.CreateGame(day(time.January, 2))
	require.NotEmpty(t, game.ID)
	assert.Equal(t, "2025-01-02", game.Date)
	assert.Equal(t, 1, game.DayIndex)
	assert.Same(t, game, s.GetGame(game.ID))
	assert.Nil(t, s.GetGame("nonexistent"))

	other := s.CreateGame(day(time.January, 2))
	assert.NotEqual(t, game.ID, other.ID)
	assert.Same(t, game.Puzzle(), other.Puzzle(), "sessions share the immutable puzzle")
}

func TestStoreListGames(t *testing.T) {
	s := newTestStore(t)
	first := s.CreateGame(day(time.January, 1))
	second := s.CreateGame(day(time.January, 1))
	second.CreatedAt = first.CreatedAt.Add(time.Second)

	list := s.ListGames()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "most recent first")
}

func TestGameSessionPattern(t *testing.T) {
	s := newTestStore(t)
	game := s.CreateGame(day(time.January, 1))

	game.Enter(0, 0, "c")
	game.Enter(0, 2, "l")

	clue, ok := game.Puzzle().Clue(1, crossword.Across)
	require.True(t, ok)
	assert.Equal(t, "C_L_", game.Pattern(clue))
}

func TestGameSessionPatternOverBlackCells(t *testing.T) {
	s := newTestStore(t)
	game := s.CreateGame(day(time.January, 1))

	game.Enter(0, 5, "S")
	game.Enter(3, 5, "I")

	// SUNNY runs from (0,5) over the black cells at (2,5) and (4,5).
	clue, ok := game.Puzzle().Clue(2, crossword.Down)
	require.True(t, ok)
	pattern := game.Pattern(clue)
	assert.Equal(t, "S__I_", pattern)
	assert.Len(t, pattern, clue.Len())
}

func TestGameSessionViewHidesSolution(t *testing.T) {
	s := newTestStore(t)
	game := s.CreateGame(day(time.January, 1))

	v := game.View()
	assert.Empty(t, v.Cells[0][0].Letter)
	assert.Equal(t, 1, v.Cells[0][0].Number)
	assert.True(t, v.Cells[0][4].Black)
	require.Len(t, v.Across, 6)
	assert.Equal(t, ClueView{Number: 1, Text: "Opposite of hot", Direction: crossword.Across, Length: 4}, v.Across[0])
}

func TestCreateTrivia(t *testing.T) {
	s := newTestStore(t)

	advanced := make(chan trivia.Snapshot, 1)
	ts := s.CreateTrivia(day(time.January, 3), func(got *TriviaSession, snap trivia.Snapshot) {
		assert.Equal(t, "2025-01-03", got.Date)
		advanced <- snap
	}, trivia.WithAdvanceDelay(time.Millisecond))

	assert.Equal(t, 2, ts.DayIndex)
	assert.Same(t, ts, s.GetTrivia(ts.ID))
	assert.Nil(t, s.GetTrivia("nonexistent"))

	_, err := ts.Answer(0)
	require.NoError(t, err)

	select {
	case snap := <-advanced:
		assert.Equal(t, 1, snap.Current)
	case <-time.After(time.Second):
		t.Fatal("trivia did not advance")
	}
}

func TestStoreCloseStopsTimers(t *testing.T) {
	s := newTestStore(t)

	fired := make(chan struct{}, 1)
	ts := s.CreateTrivia(day(time.January, 1), func(*TriviaSession, trivia.Snapshot) {
		fired <- struct{}{}
	}, trivia.WithAdvanceDelay(20*time.Millisecond))

	_, err := ts.Answer(1)
	require.NoError(t, err)
	s.Close()

	select {
	case <-fired:
		t.Fatal("advance fired after Close")
	case <-time.After(60 * time.Millisecond):
	}
	assert.Equal(t, 0, ts.State().Current)
}

func TestConcurrentAccess(t *testing.T) {
	s := newTestStore(t)
	game := s.CreateGame(day(time.January, 1))

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			game.Select(i%7, i%7)
			game.Enter(i%7, i%7, "A")
			game.State()
			s.CreateGame(day(time.January, 1+i%3))
			s.ListGames()
		}(i)
	}
	wg.Wait()
	assert.Len(t, s.ListGames(), 101)
}
