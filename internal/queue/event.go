// Package queue defines the activity events exchanged over the message
// broker and the consumer that records them.
package queue

import "time"

// Activity event types.
const (
	UserRegistered    = "user.registered"
	RecipeCreated     = "recipe.created"
	RecipeUpdated     = "recipe.updated"
	RecipeDeleted     = "recipe.deleted"
	RecipeDeactivated = "recipe.deactivated"
	CommentAdded      = "comment.added"
	RatingAdded       = "rating.added"
)

// ActivityEvent is published after a successful write.  It carries enough
// for downstream consumers to log or notify without reading the database.
type ActivityEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	UserID     uint64    `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	RecipeID   uint64    `json:"recipe_id,omitempty"`
	Title      string    `json:"title,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
