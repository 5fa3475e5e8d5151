// Package history bounds and renders conversation history for prompt
// assembly.
package history

import (
	"strings"
	"unicode/utf8"

	"github.com/lexhaus/lexchat/internal/domain"
)

const (
	// DefaultMaxTurns is the number of most recent turns kept.
	DefaultMaxTurns = 20
	// DefaultMaxChars is the cumulative content budget after the turn cap.
	DefaultMaxChars = 4000

	previewChars = 200
	emptyHistory = "No previous conversation."
)

// Service truncates conversation history to fixed bounds and renders it
// as a readable transcript.
type Service struct {
	maxTurns int
	maxChars int
}

// New creates a history service. Non-positive limits fall back to the
// defaults.
func New(maxTurns, maxChars int) *Service {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Service{maxTurns: maxTurns, maxChars: maxChars}
}

// Truncate keeps the most recent turns within the turn cap, then drops
// whole turns from the oldest end of that window until the cumulative
// content length fits the character budget. Order stays chronological.
func (s *Service) Truncate(turns []domain.Turn) []domain.Turn {
	if len(turns) > s.maxTurns {
		turns = turns[len(turns)-s.maxTurns:]
	}

	total := 0
	for _, t := range turns {
		total += utf8.RuneCountInString(t.Content)
	}

	start := 0
	for start < len(turns) && total > s.maxChars {
		total -= utf8.RuneCountInString(turns[start].Content)
		start++
	}

	out := make([]domain.Turn, len(turns)-start)
	copy(out, turns[start:])
	return out
}

// Render produces a transcript with a bounded preview per turn. Empty
// history renders as a fixed sentinel so the prompt always carries a
// context note.
func (s *Service) Render(turns []domain.Turn) string {
	if len(turns) == 0 {
		return emptyHistory
	}

	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		label := "Question"
		if t.Role == domain.RoleAssistant {
			label = "Answer"
		}
		lines = append(lines, label+": "+preview(t.Content))
	}
	return strings.Join(lines, "\n")
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewChars {
		return content
	}
	runes := []rune(content)
	return string(runes[:previewChars]) + "..."
}
