package domain

import "time"

// Membership links a non-owner collaborator to a board. The board owner is
// implicit from Board.OwnerID and never has a membership row.
type Membership struct {
	Entity
	BoardID  string    `json:"board_id"`
	UserID   string    `json:"user_id"`
	Role     BoardRole `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}
