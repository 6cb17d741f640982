package domain

import (
	"strings"
	"time"
)

// Priority is the urgency tag on a card.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority maps a free-text priority value to a Priority.
// Invalid or empty values default to medium rather than erroring, because
// priorities frequently arrive from loosely-extracted assistant slots.
func ParsePriority(s string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow
	case PriorityHigh:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// IsValid returns true for one of the three closed priority values.
func (p Priority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Card is an individual task within a list. Position is the dense 0-based
// rank among the list's cards. CreatedBy is immutable after creation;
// Contributors accumulates every user who created, edited, or moved the
// card, deduplicated by user.
type Card struct {
	Entity
	ListID       string        `json:"list_id"`
	Title        string        `json:"title"`
	Description  string        `json:"description,omitempty"`
	Position     int           `json:"position"`
	Priority     Priority      `json:"priority"`
	Checklist    []string      `json:"checklist"`
	CreatedBy    string        `json:"created_by"`
	Contributors []Contributor `json:"contributors,omitempty"`
}

// Contributor records that a user touched a card, and when.
type Contributor struct {
	UserID        string    `json:"user_id"`
	ContributedAt time.Time `json:"contributed_at"`
}

// HasContributor reports whether the user is already recorded on the card.
func (c *Card) HasContributor(userID string) bool {
	for _, contrib := range c.Contributors {
		if contrib.UserID == userID {
			return true
		}
	}
	return false
}

// AddContributor records a user on the card if not already present.
// Returns true if the contributor was added.
func (c *Card) AddContributor(userID string) bool {
	if c.HasContributor(userID) {
		return false
	}
	c.Contributors = append(c.Contributors, Contributor{
		UserID:        userID,
		ContributedAt: time.Now(),
	})
	return true
}
