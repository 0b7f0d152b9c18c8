// Package content holds the compiled-in daily puzzle and trivia pools.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bodul/dailygames/internal/crossword"
	"github.com/bodul/dailygames/internal/trivia"
)

var (
	//go:embed puzzles.yaml
	puzzlesYAML []byte

	//go:embed trivia.yaml
	triviaYAML []byte
)

var (
	builtinPuzzles = mustLoad(LoadPuzzles(bytes.NewReader(puzzlesYAML)))
	builtinTrivia  = mustLoad(LoadTrivia(bytes.NewReader(triviaYAML)))
)

func mustLoad[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Sprintf("content: builtin pool: %v", err))
	}
	return v
}

// Puzzles returns the built-in crossword pool in its versioned order.
func Puzzles() []*crossword.Puzzle {
	return append([]*crossword.Puzzle(nil), builtinPuzzles...)
}

// TriviaSets returns the built-in trivia pool; each entry is one day's set.
func TriviaSets() [][]trivia.Question {
	return append([][]trivia.Question(nil), builtinTrivia...)
}

// LoadPuzzles decodes a YAML list of crossword definitions.
func LoadPuzzles(r io.Reader) ([]*crossword.Puzzle, error) {
	var defs []crossword.Definition
	if err := yaml.NewDecoder(r).Decode(&defs); err != nil {
		return nil, fmt.Errorf("decode puzzles: %w", err)
	}
	if len(defs) == 0 {
		return nil, errors.New("puzzle pool is empty")
	}
	pool := make([]*crossword.Puzzle, 0, len(defs))
	for i, def := range defs {
		p, err := crossword.NewPuzzle(def)
		if err != nil {
			return nil, fmt.Errorf("puzzle %d: %w", i, err)
		}
		pool = append(pool, p)
	}
	return pool, nil
}

// LoadTrivia decodes a YAML list of question sets.
func LoadTrivia(r io.Reader) ([][]trivia.Question, error) {
	var sets [][]trivia.Question
	if err := yaml.NewDecoder(r).Decode(&sets); err != nil {
		return nil, fmt.Errorf("decode trivia: %w", err)
	}
	if len(sets) == 0 {
		return nil, errors.New("trivia pool is empty")
	}
	for i, set := range sets {
		if len(set) == 0 {
			return nil, fmt.Errorf("trivia set %d is empty", i)
		}
		for j, q := range set {
			if err := q.Validate(); err != nil {
				return nil, fmt.Errorf("trivia set %d question %d: %w", i, j, err)
			}
		}
	}
	return sets, nil
}

// LoadPuzzleFile reads a puzzle pool from disk.
func LoadPuzzleFile(path string) ([]*crossword.Puzzle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadPuzzles(f)
}

// LoadTriviaFile reads a trivia pool from disk.
func LoadTriviaFile(path string) ([][]trivia.Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadTrivia(f)
}
