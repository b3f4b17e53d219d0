package domain

import "time"

// GrimoireEntry is a knowledge-base note: reference material the user
// curates alongside conversations (prompt snippets, research notes,
// documentation excerpts).
type GrimoireEntry struct {
	// ID is the database row identifier. Zero until persisted.
	ID int64

	// Title is the entry title.
	Title string

	// Content is the entry body.
	Content string

	// Category groups related entries. Optional.
	Category string

	// Tags are free-form labels for filtering.
	Tags []string

	// AccessedCount increments on every read; used to surface frequently
	// used entries.
	AccessedCount int

	// LastAccessed is when the entry was last read. Zero if never.
	LastAccessed time.Time

	// CreatedAt is when the entry was created.
	CreatedAt time.Time

	// UpdatedAt is when the entry was last modified.
	UpdatedAt time.Time
}

// NewGrimoireEntry creates an unpersisted entry.
func NewGrimoireEntry(title, content, category string) GrimoireEntry {
	now := time.Now().UTC()
	return GrimoireEntry{
		Title:     title,
		Content:   content,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
