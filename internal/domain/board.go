package domain

// Board is a top-level workspace owned by exactly one user and optionally
// shared with members. A board exclusively owns its lists; deleting a board
// cascades to lists, cards, memberships, and invitations.
type Board struct {
	Entity
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"owner_id"`
}

// IsOwnedBy returns true if the given user owns this board.
func (b *Board) IsOwnedBy(userID string) bool {
	return b.OwnerID == userID
}

// BoardRole tags a user's relationship to a board.
type BoardRole string

const (
	// BoardRoleOwner is implicit from Board.OwnerID and never stored as a
	// membership row.
	BoardRoleOwner BoardRole = "owner"
	// BoardRoleMember is a non-owner collaborator.
	BoardRoleMember BoardRole = "member"
)
