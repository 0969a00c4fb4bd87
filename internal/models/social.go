package models

import "time"

// Comment is a note left on a photo. Comments are append-only.
type Comment struct {
	ID        string    `json:"id"`
	PhotoID   string    `json:"photo_id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Edited    bool      `json:"edited"`
}

// ReactionKind is one of a closed set of reactions.
type ReactionKind string

const (
	ReactionLike  ReactionKind = "like"
	ReactionLove  ReactionKind = "love"
	ReactionLaugh ReactionKind = "laugh"
	ReactionWow   ReactionKind = "wow"
	ReactionSad   ReactionKind = "sad"
)

// Valid reports whether k is a known reaction kind.
func (k ReactionKind) Valid() bool {
	switch k {
	case ReactionLike, ReactionLove, ReactionLaugh, ReactionWow, ReactionSad:
		return true
	}
	return false
}

// Reaction is a user's single reaction to a photo. There is at most one per
// (PhotoID, AuthorID); reacting again replaces Kind.
type Reaction struct {
	ID        string       `json:"id"`
	PhotoID   string       `json:"photo_id"`
	AuthorID  string       `json:"author_id"`
	Kind      ReactionKind `json:"kind"`
	CreatedAt time.Time    `json:"created_at"`
}
