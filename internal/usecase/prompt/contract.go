package prompt

import "github.com/lexhaus/lexchat/internal/domain"

// HistoryRenderer renders truncated history into a transcript string.
type HistoryRenderer interface {
	Render(turns []domain.Turn) string
}
