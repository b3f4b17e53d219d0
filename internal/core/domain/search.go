package domain

import "time"

// SearchHit is one ranked full-text search match. Snippet carries the
// matching fragment with the matched terms wrapped in <mark> tags.
type SearchHit struct {
	ConversationID int64
	MessageID      int64
	Title          string
	Snippet        string

	// Rank is the bm25 relevance score; lower means more relevant.
	Rank float64

	CreatedAt time.Time
}
