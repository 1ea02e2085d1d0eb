// Package deck implements the shared card collection used by team play:
// parsing, chunked transfer, and the pending-action merge that resolves
// concurrent edits from teammates.
package deck

import (
	"fmt"
	"strings"
)

// Card is one playing card. ID is a client-assigned key stable for the
// card's lifetime; removals and attribute changes reference it. Suit and
// rank are single characters ("S", "T" for ten); enhancement, edition and
// seal are free-form effect keys.
type Card struct {
	ID          string
	Suit        string
	Rank        string
	Enhancement string
	Edition     string
	Seal        string
}

// ParseCard reads the "id-suit-rank-enhancement-edition-seal" wire form.
// Suit keeps only its first character; rank "10" normalizes to "T".
func ParseCard(s string) (Card, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 6 {
		return Card{}, fmt.Errorf("deck: bad card %q", s)
	}
	return Card{
		ID:          parts[0],
		Suit:        firstChar(parts[1]),
		Rank:        normalizeRank(parts[2]),
		Enhancement: parts[3],
		Edition:     parts[4],
		Seal:        parts[5],
	}, nil
}

func (c Card) String() string {
	return strings.Join([]string{c.ID, c.Suit, c.Rank, c.Enhancement, c.Edition, c.Seal}, "-")
}

func firstChar(s string) string {
	if s == "" {
		return s
	}
	return s[:1]
}

func normalizeRank(s string) string {
	if s == "10" {
		return "T"
	}
	return firstChar(s)
}

// Field identifies one mutable card attribute. The declaration order is
// the fixed tie-break priority for same-timestamp changes.
type Field int

const (
	FieldSuit Field = iota
	FieldRank
	FieldEnhancement
	FieldEdition
	FieldSeal
)

func (f Field) String() string {
	switch f {
	case FieldSuit:
		return "suit"
	case FieldRank:
		return "rank"
	case FieldEnhancement:
		return "enhancement"
	case FieldEdition:
		return "edition"
	case FieldSeal:
		return "seal"
	}
	return "unknown"
}
