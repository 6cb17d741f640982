package domain

import "time"

// InvitationStatus is the lifecycle state of a board invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Invitation asks a user to join a board. At most one pending invitation may
// exist per (board, invitee) pair. Accepting creates a membership and flips
// the status; declining only flips the status.
type Invitation struct {
	Entity
	BoardID     string           `json:"board_id"`
	InviterID   string           `json:"inviter_id"`
	InviteeID   string           `json:"invitee_id"`
	Message     string           `json:"message,omitempty"`
	Status      InvitationStatus `json:"status"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}

// IsPending returns true if the invitation awaits a response.
func (i *Invitation) IsPending() bool {
	return i.Status == InvitationPending
}

// Respond flips the invitation to the given terminal status and stamps the
// response time. Returns false if the invitation was already responded to.
func (i *Invitation) Respond(status InvitationStatus) bool {
	if !i.IsPending() || status == InvitationPending {
		return false
	}
	now := time.Now()
	i.Status = status
	i.RespondedAt = &now
	i.Touch()
	return true
}
