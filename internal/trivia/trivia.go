// Package trivia scores a daily set of multiple-choice questions.
//
// Each question can be answered once. After an answer the game waits a fixed
// delay before moving on, so the player can see whether they were right.
package trivia

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultAdvanceDelay is how long an answered question stays on screen.
const DefaultAdvanceDelay = 1500 * time.Millisecond

var (
	ErrAlreadyAnswered = errors.New("question already answered")
	ErrInvalidChoice   = errors.New("invalid choice")
	ErrFinished        = errors.New("trivia finished")
)

// Question is a single-answer multiple-choice question.
type Question struct {
	Prompt  string   `yaml:"question" json:"question"`
	Options []string `yaml:"options" json:"options"`
	Correct int      `yaml:"correct" json:"-"`
}

// Validate checks that the question has options and that Correct points at one.
func (q Question) Validate() error {
	if q.Prompt == "" {
		return errors.New("empty question")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%q: need at least 2 options, got %d", q.Prompt, len(q.Options))
	}
	if q.Correct < 0 || q.Correct >= len(q.Options) {
		return fmt.Errorf("%q: correct index %d out of range", q.Prompt, q.Correct)
	}
	return nil
}

// Scheduler runs f after d and returns a function that cancels it.
type Scheduler func(d time.Duration, f func()) (cancel func())

func afterFunc(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// Option configures a Game.
type Option func(*Game)

// WithAdvanceDelay overrides DefaultAdvanceDelay.
func WithAdvanceDelay(d time.Duration) Option {
	return func(g *Game) { g.delay = d }
}

// WithScheduler replaces the timer used for the delayed advance.
func WithScheduler(s Scheduler) Option {
	return func(g *Game) { g.schedule = s }
}

// WithOnAdvance registers a callback invoked after each delayed advance.
// It runs on the scheduler's goroutine, outside the game lock.
func WithOnAdvance(f func(Snapshot)) Option {
	return func(g *Game) { g.onAdvance = f }
}

// Game is one run through a question set. It is safe for concurrent use.
type Game struct {
	mu        sync.Mutex
	questions []Question
	current   int
	selected  int
	score     int
	answered  []bool
	complete  bool

	// gen identifies the current run; Reset bumps it so that an advance
	// scheduled by an earlier run is dropped.
	gen    uint64
	cancel func()

	delay     time.Duration
	schedule  Scheduler
	onAdvance func(Snapshot)
}

// NewGame starts a game on questions, which must not be empty.
func NewGame(questions []Question, opts ...Option) *Game {
	g := &Game{
		questions: questions,
		selected:  -1,
		answered:  make([]bool, len(questions)),
		delay:     DefaultAdvanceDelay,
		schedule:  afterFunc,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AnswerResult describes a scored answer.
type AnswerResult struct {
	Question int  `json:"question"`
	Choice   int  `json:"choice"`
	Correct  bool `json:"correct"`
	Answer   int  `json:"answer"`
	Score    int  `json:"score"`
}

// Answer scores choice for the current question and schedules the advance.
func (g *Game) Answer(choice int) (AnswerResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.complete {
		return AnswerResult{}, ErrFinished
	}
	if g.answered[g.current] {
		return AnswerResult{}, ErrAlreadyAnswered
	}
	q := g.questions[g.current]
	if choice < 0 || choice >= len(q.Options) {
		return AnswerResult{}, fmt.Errorf("%w: %d of %d options", ErrInvalidChoice, choice, len(q.Options))
	}

	g.answered[g.current] = true
	g.selected = choice
	correct := choice == q.Correct
	if correct {
		g.score++
	}

	gen := g.gen
	g.cancel = g.schedule(g.delay, func() { g.advance(gen) })

	return AnswerResult{
		Question: g.current,
		Choice:   choice,
		Correct:  correct,
		Answer:   q.Correct,
		Score:    g.score,
	}, nil
}

func (g *Game) advance(gen uint64) {
	g.mu.Lock()
	if gen != g.gen || g.complete {
		g.mu.Unlock()
		return
	}
	if g.current < len(g.questions)-1 {
		g.current++
		g.selected = -1
	} else {
		g.complete = true
	}
	g.cancel = nil
	snap := g.snapshot()
	cb := g.onAdvance
	g.mu.Unlock()

	if cb != nil {
		cb(snap)
	}
}

// Reset starts the set over and drops any pending advance.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopLocked()
	g.current = 0
	g.selected = -1
	g.score = 0
	g.complete = false
	for i := range g.answered {
		g.answered[i] = false
	}
}

// Stop drops any pending advance without touching the score.
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopLocked()
}

func (g *Game) stopLocked() {
	g.gen++
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

// Snapshot is a copy of the game state for rendering. The correct answer of
// the current question is only revealed once it has been answered.
type Snapshot struct {
	Current  int      `json:"current"`
	Total    int      `json:"total"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Selected *int     `json:"selected"`
	Answer   *int     `json:"answer,omitempty"`
	Score    int      `json:"score"`
	Answered []bool   `json:"answered"`
	Complete bool     `json:"complete"`
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() Snapshot {
	q := g.questions[g.current]
	s := Snapshot{
		Current:  g.current,
		Total:    len(g.questions),
		Question: q.Prompt,
		Options:  append([]string(nil), q.Options...),
		Score:    g.score,
		Answered: append([]bool(nil), g.answered...),
		Complete: g.complete,
	}
	if g.selected >= 0 {
		sel := g.selected
		s.Selected = &sel
	}
	if g.answered[g.current] {
		ans := q.Correct
		s.Answer = &ans
	}
	return s
}
