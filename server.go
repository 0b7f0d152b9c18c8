package main

import (
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/bodul/dailygames/internal/crossword"
	"github.com/bodul/dailygames/internal/trivia"
)

//go:embed frontend
var frontendFS embed.FS

const maxBodySize = 64 << 10

// rateLimiter is a simple per-IP token bucket rate limiter. Stale visitors
// are swept on access instead of by a background goroutine.
type rateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*bucket
	rate      int           // tokens per interval
	interval  time.Duration // refill interval
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	tokens   int
	lastSeen time.Time
}

func newRateLimiter(rate int, interval time.Duration) *rateLimiter {
	return &rateLimiter{
		visitors:  make(map[string]*bucket),
		rate:      rate,
		interval:  interval,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	b, ok := rl.visitors[key]
	if !ok {
		rl.visitors[key] = &bucket{tokens: rl.rate - 1, lastSeen: now}
		return true
	}

	// Refill tokens based on elapsed time.
	refill := int(now.Sub(b.lastSeen) / rl.interval)
	if refill > 0 {
		b.tokens += refill * rl.rate
		if b.tokens > rl.rate {
			b.tokens = rl.rate
		}
		b.lastSeen = now
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

func (rl *rateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < time.Minute {
		return
	}
	rl.lastSweep = now
	for key, b := range rl.visitors {
		if now.Sub(b.lastSeen) > 5*time.Minute {
			delete(rl.visitors, key)
		}
	}
}

// Server is the main HTTP server.
type Server struct {
	mux    *http.ServeMux
	store  *Store
	hinter Hinter
	sse    *Broadcaster
	log    *zap.Logger

	now         func() time.Time
	triviaDelay time.Duration
	actionRL    *rateLimiter
	hintRL      *rateLimiter
}

// NewServer creates a configured HTTP server. hinter may be nil, in which
// case the hint endpoint answers 503.
func NewServer(store *Store, hinter Hinter, log *zap.Logger, cfg Config) *Server {
	delay, err := cfg.AdvanceDelay()
	if err != nil {
		delay = trivia.DefaultAdvanceDelay
	}
	s := &Server{
		mux:         http.NewServeMux(),
		store:       store,
		hinter:      hinter,
		sse:         NewBroadcaster(log),
		log:         log,
		now:         time.Now,
		triviaDelay: delay,
		actionRL:    newRateLimiter(cfg.Limits.ActionsPerSecond, time.Second),
		hintRL:      newRateLimiter(cfg.Limits.HintsPerMinute, time.Minute),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	// Puzzle API
	s.mux.HandleFunc("GET /api/puzzles/today", s.handleTodayPuzzle)

	// Crossword API
	s.mux.HandleFunc("POST /api/games", s.handleCreateGame)
	s.mux.HandleFunc("GET /api/games", s.handleListGames)
	s.mux.HandleFunc("GET /api/games/{id}", s.handleGetGame)
	s.mux.HandleFunc("POST /api/games/{id}/enter", s.handleEnter)
	s.mux.HandleFunc("POST /api/games/{id}/backspace", s.handleBackspace)
	s.mux.HandleFunc("POST /api/games/{id}/select", s.handleSelect)
	s.mux.HandleFunc("POST /api/games/{id}/move", s.handleMove)
	s.mux.HandleFunc("POST /api/games/{id}/toggle", s.handleToggle)
	s.mux.HandleFunc("POST /api/games/{id}/check", s.handleCheck)
	s.mux.HandleFunc("POST /api/games/{id}/hint", s.handleHint)
	s.mux.HandleFunc("GET /api/games/{id}/events", s.handleGameEvents)

	// Trivia API
	s.mux.HandleFunc("POST /api/trivia", s.handleCreateTrivia)
	s.mux.HandleFunc("GET /api/trivia/{id}", s.handleGetTrivia)
	s.mux.HandleFunc("POST /api/trivia/{id}/answer", s.handleTriviaAnswer)
	s.mux.HandleFunc("POST /api/trivia/{id}/reset", s.handleTriviaReset)
	s.mux.HandleFunc("GET /api/trivia/{id}/events", s.handleTriviaEvents)

	// Frontend static files
	frontendDir, _ := fs.Sub(frontendFS, "frontend")
	fileServer := http.FileServer(http.FS(frontendDir))
	s.mux.HandleFunc("GET /game/{id}", s.handleGamePage)
	s.mux.Handle("GET /", fileServer)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
	s.log.Debug("request", zap.String("method", r.Method), zap.String("path", r.URL.Path))
	s.mux.ServeHTTP(w, r)
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.store.Close()
}

// --- Puzzle handlers ---

// GET /api/puzzles/today: the puzzle of the day, without answers.
func (s *Server) handleTodayPuzzle(w http.ResponseWriter, r *http.Request) {
	date, err := s.parseDate(r.URL.Query().Get("date"))
	if err != nil {
		jsonError(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	p, idx := s.store.PuzzleFor(date)
	writeJSON(w, http.StatusOK, newPuzzleView(p, idx, date.Format(dateLayout), false))
}

// --- Crossword handlers ---

type gameResponse struct {
	*GameSession
	Puzzle PuzzleView `json:"puzzle"`
	State  GameState  `json:"state"`
}

type actionResponse struct {
	Outcome string    `json:"outcome"`
	State   GameState `json:"state"`
}

type cellRequest struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Value string `json:"value"`
}

// POST /api/games: start a crossword session for a date (default today).
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	date, err := s.parseDate(req.Date)
	if err != nil {
		jsonError(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	game := s.store.CreateGame(date)
	s.log.Info("crossword started",
		zap.String("game", game.ID),
		zap.String("date", game.Date),
		zap.Int("day_index", game.DayIndex))

	writeJSON(w, http.StatusCreated, gameResponse{
		GameSession: game,
		Puzzle:      game.View(),
		State:       game.State(),
	})
}

// GET /api/games: list all crossword sessions.
func (s *Server) handleListGames(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListGames())
}

// GET /api/games/{id}: puzzle and current state.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Game not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, gameResponse{
		GameSession: game,
		Puzzle:      game.View(),
		State:       game.State(),
	})
}

// actionGame resolves the game of an action request and applies the action
// rate limit.
func (s *Server) actionGame(w http.ResponseWriter, r *http.Request) *GameSession {
	if !s.actionRL.allow(clientIP(r)) {
		jsonError(w, "Too many requests, try again later", http.StatusTooManyRequests)
		return nil
	}
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Game not found", http.StatusNotFound)
		return nil
	}
	return game
}

// respondAction publishes applied actions to the game's subscribers and
// returns the new state. Ignored actions are not errors: the state is
// returned unchanged along with the reason.
func (s *Server) respondAction(w http.ResponseWriter, game *GameSession, event string, out crossword.Outcome, st GameState, fields map[string]any) {
	if !out.Ignored() {
		if fields == nil {
			fields = make(map[string]any, 1)
		}
		fields["state"] = st
		s.sse.Publish(game.ID, event, fields)
	} else {
		s.log.Debug("action ignored",
			zap.String("game", game.ID),
			zap.String("event", event),
			zap.Stringer("reason", out))
	}
	writeJSON(w, http.StatusOK, actionResponse{Outcome: out.String(), State: st})
}

// POST /api/games/{id}/enter: type a letter (or "" to clear).
func (s *Server) handleEnter(w http.ResponseWriter, r *http.Request) {
	game := s.actionGame(w, r)
	if game == nil {
		return
	}

	var req cellRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// A single character must be a letter; longer input is left to the
	// engine, which ignores it whole.
	value := strings.ToUpper(req.Value)
	if utf8.RuneCountInString(value) == 1 && (value < "A" || value > "Z") {
		jsonError(w, "Invalid value: a letter A-Z or empty", http.StatusBadRequest)
		return
	}

	out, st := game.Enter(req.Row, req.Col, value)
	s.respondAction(w, game, "cell_update", out, st, map[string]any{
		"row":   req.Row,
		"col":   req.Col,
		"value": value,
	})
}

// POST /api/games/{id}/backspace
func (s *Server) handleBackspace(w http.ResponseWriter, r *http.Request) {
	game := s.actionGame(w, r)
	if game == nil {
		return
	}
	var req cellRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, st := game.Backspace(req.Row, req.Col)
	s.respondAction(w, game, "cell_update", out, st, map[string]any{
		"row": req.Row,
		"col": req.Col,
	})
}

// POST /api/games/{id}/select: click on a cell.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	game := s.actionGame(w, r)
	if game == nil {
		return
	}
	var req cellRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, st := game.Select(req.Row, req.Col)
	s.respondAction(w, game, "cursor", out, st, nil)
}

// POST /api/games/{id}/move: arrow key navigation.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	game := s.actionGame(w, r)
	if game == nil {
		return
	}
	var req struct {
		Arrow *crossword.Arrow `json:"arrow"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Arrow == nil {
		jsonError(w, "Field 'arrow' is required", http.StatusBadRequest)
		return
	}
	out, st := game.Move(*req.Arrow)
	s.respondAction(w, game, "cursor", out, st, nil)
}

// POST /api/games/{id}/toggle: switch between across and down.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	game := s.actionGame(w, r)
	if game == nil {
		return
	}
	st := game.Toggle()
	s.respondAction(w, game, "cursor", crossword.Applied, st, nil)
}

// POST /api/games/{id}/check: verify the grid.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	game := s.actionGame(w, r)
	if game == nil {
		return
	}

	res, st := game.Check()
	s.sse.Publish(game.ID, "checked", map[string]any{
		"solved":  res.Solved,
		"correct": res.Correct,
		"total":   res.Total,
		"state":   st,
	})
	if res.Solved {
		s.log.Info("crossword solved", zap.String("game", game.ID), zap.String("date", game.Date))
	}

	writeJSON(w, http.StatusOK, struct {
		Result crossword.Result `json:"result"`
		State  GameState        `json:"state"`
		Puzzle PuzzleView       `json:"puzzle"`
	}{res, st, game.View()})
}

// POST /api/games/{id}/hint: ask for a hint on a clue.
func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	if s.hinter == nil {
		jsonError(w, "Hints are not configured", http.StatusServiceUnavailable)
		return
	}
	if !s.hintRL.allow(clientIP(r)) {
		jsonError(w, "Too many requests, try again later", http.StatusTooManyRequests)
		return
	}
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Game not found", http.StatusNotFound)
		return
	}

	var req struct {
		Number    int                 `json:"number"`
		Direction crossword.Direction `json:"direction"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	clue, ok := game.Puzzle().Clue(req.Number, req.Direction)
	if !ok {
		jsonError(w, "Clue not found", http.StatusNotFound)
		return
	}

	hint, err := s.hinter.Hint(r.Context(), HintRequest{
		Clue:    clue.Text,
		Length:  clue.Len(),
		Pattern: game.Pattern(clue),
		Answer:  clue.Answer,
	})
	if err != nil {
		s.log.Error("hint failed",
			zap.String("game", game.ID),
			zap.Int("clue", clue.Number),
			zap.Stringer("direction", clue.Direction),
			zap.Error(err))
		jsonError(w, "Could not get a hint", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"number":    clue.Number,
		"direction": clue.Direction,
		"hint":      hint,
	})
}

// GET /api/games/{id}/events: SSE stream.
func (s *Server) handleGameEvents(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Game not found", http.StatusNotFound)
		return
	}
	s.sse.ServeSSE(w, r, game.ID, func() string {
		evt, _ := json.Marshal(map[string]any{
			"type":  "game_state",
			"state": game.State(),
		})
		return string(evt)
	})
}

// --- Trivia handlers ---

type triviaResponse struct {
	*TriviaSession
	State trivia.Snapshot `json:"state"`
}

// POST /api/trivia: start the trivia of a date (default today).
func (s *Server) handleCreateTrivia(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	date, err := s.parseDate(req.Date)
	if err != nil {
		jsonError(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	ts := s.store.CreateTrivia(date, s.onTriviaAdvance, trivia.WithAdvanceDelay(s.triviaDelay))
	s.log.Info("trivia started",
		zap.String("trivia", ts.ID),
		zap.String("date", ts.Date),
		zap.Int("day_index", ts.DayIndex))

	writeJSON(w, http.StatusCreated, triviaResponse{TriviaSession: ts, State: ts.State()})
}

func (s *Server) onTriviaAdvance(ts *TriviaSession, snap trivia.Snapshot) {
	s.sse.Publish(ts.ID, "trivia_advance", map[string]any{"state": snap})
	if snap.Complete {
		s.log.Info("trivia finished",
			zap.String("trivia", ts.ID),
			zap.Int("score", snap.Score),
			zap.Int("total", snap.Total))
	}
}

// GET /api/trivia/{id}
func (s *Server) handleGetTrivia(w http.ResponseWriter, r *http.Request) {
	ts := s.store.GetTrivia(r.PathValue("id"))
	if ts == nil {
		jsonError(w, "Trivia not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, triviaResponse{TriviaSession: ts, State: ts.State()})
}

// POST /api/trivia/{id}/answer: answer the current question.
func (s *Server) handleTriviaAnswer(w http.ResponseWriter, r *http.Request) {
	if !s.actionRL.allow(clientIP(r)) {
		jsonError(w, "Too many requests, try again later", http.StatusTooManyRequests)
		return
	}
	ts := s.store.GetTrivia(r.PathValue("id"))
	if ts == nil {
		jsonError(w, "Trivia not found", http.StatusNotFound)
		return
	}

	var req struct {
		Choice *int `json:"choice"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Choice == nil {
		jsonError(w, "Field 'choice' is required", http.StatusBadRequest)
		return
	}

	res, err := ts.Answer(*req.Choice)
	switch {
	case errors.Is(err, trivia.ErrInvalidChoice):
		jsonError(w, "Invalid choice", http.StatusBadRequest)
		return
	case errors.Is(err, trivia.ErrAlreadyAnswered), errors.Is(err, trivia.ErrFinished):
		jsonError(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		s.log.Error("trivia answer", zap.String("trivia", ts.ID), zap.Error(err))
		jsonError(w, "Internal error", http.StatusInternalServerError)
		return
	}

	st := ts.State()
	s.sse.Publish(ts.ID, "trivia_answer", map[string]any{"result": res, "state": st})
	writeJSON(w, http.StatusOK, map[string]any{"result": res, "state": st})
}

// POST /api/trivia/{id}/reset: play the set again.
func (s *Server) handleTriviaReset(w http.ResponseWriter, r *http.Request) {
	ts := s.store.GetTrivia(r.PathValue("id"))
	if ts == nil {
		jsonError(w, "Trivia not found", http.StatusNotFound)
		return
	}
	ts.Reset()
	st := ts.State()
	s.sse.Publish(ts.ID, "trivia_state", map[string]any{"state": st})
	writeJSON(w, http.StatusOK, triviaResponse{TriviaSession: ts, State: st})
}

// GET /api/trivia/{id}/events: SSE stream.
func (s *Server) handleTriviaEvents(w http.ResponseWriter, r *http.Request) {
	ts := s.store.GetTrivia(r.PathValue("id"))
	if ts == nil {
		jsonError(w, "Trivia not found", http.StatusNotFound)
		return
	}
	s.sse.ServeSSE(w, r, ts.ID, func() string {
		evt, _ := json.Marshal(map[string]any{
			"type":  "trivia_state",
			"state": ts.State(),
		})
		return string(evt)
	})
}

// --- Frontend page handlers ---

// GET /game/{id}: serve the game page.
func (s *Server) handleGamePage(w http.ResponseWriter, _ *http.Request) {
	data, _ := frontendFS.ReadFile("frontend/game.html")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// --- Helpers ---

func (s *Server) parseDate(v string) (time.Time, error) {
	now := s.now()
	if v == "" {
		return now, nil
	}
	return time.ParseInLocation(dateLayout, v, now.Location())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "Invalid request", http.StatusBadRequest)
		return false
	}
	return true
}

// decodeOptionalJSON is like decodeJSON but accepts an empty body.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "Invalid request", http.StatusBadRequest)
		return false
	}
	return true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
