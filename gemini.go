package main

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/genai"
)

// Hinter produces a nudge for a clue without giving the answer away.
type Hinter interface {
	Hint(ctx context.Context, req HintRequest) (string, error)
}

// HintRequest describes the clue being asked about. Answer is never sent to
// the model; it is only used to scrub the reply.
type HintRequest struct {
	Clue    string
	Length  int
	Pattern string
	Answer  string
}

const hintPrompt = `You help someone solve an easy daily crossword.

Clue: %q
Answer length: %d letters
Letters found so far: %s (underscores are unknown)

Give ONE short hint, at most 20 words, that makes the answer easier to find.
Never write the answer itself or spell any of its letters.
Reply with the hint only, without quotes or markdown.`

func buildHintPrompt(req HintRequest) string {
	pattern := req.Pattern
	if pattern == "" {
		pattern = strings.Repeat("_", req.Length)
	}
	return fmt.Sprintf(hintPrompt, req.Clue, req.Length, pattern)
}

// scrubAnswer masks any case-insensitive occurrence of the answer in a
// model reply.
func scrubAnswer(text, answer string) string {
	if answer == "" {
		return text
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(answer))
	return re.ReplaceAllLiteralString(text, strings.Repeat("_", len(answer)))
}

// Hint asks Gemini Flash for a hint about a clue.
func (g *GeminiClient) Hint(ctx context.Context, req HintRequest) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: buildHintPrompt(req)}},
		}},
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr(float32(0.7)),
			TopP:        genai.Ptr(float32(0.95)),
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("empty gemini response")
	}
	return scrubAnswer(text, strings.ToUpper(req.Answer)), nil
}
