package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktiles/tasktiles-server/internal/domain"
	domainerrors "github.com/tasktiles/tasktiles-server/internal/errors"
)

func TestInviteOnlyOwner(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	carol := e.user(t, "carol")

	b := e.board(t, alice, "Work")
	e.share(t, b, alice, bob)

	_, err := e.invitations.Invite(ctx, bob.ID, CreateInvitationRequest{
		BoardID:  b.ID,
		Username: carol.Username,
	})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrForbidden))
}

func TestInviteDuplicatePendingRejected(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	b := e.board(t, alice, "Work")

	_, err := e.invitations.Invite(ctx, alice.ID, CreateInvitationRequest{
		BoardID:  b.ID,
		Username: bob.Username,
	})
	require.NoError(t, err)

	_, err = e.invitations.Invite(ctx, alice.ID, CreateInvitationRequest{
		BoardID:  b.ID,
		Username: bob.Username,
	})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrAlreadyExists))
}

func TestAcceptCreatesMembership(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	b := e.board(t, alice, "Work")

	inv, err := e.invitations.Invite(ctx, alice.ID, CreateInvitationRequest{
		BoardID:  b.ID,
		Username: bob.Username,
		Message:  "join me",
	})
	require.NoError(t, err)

	accepted, err := e.invitations.Accept(ctx, inv.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationAccepted, accepted.Status)
	require.NotNil(t, accepted.RespondedAt)

	members, err := e.invitations.ListMembers(ctx, b.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, bob.ID, members[0].UserID)
	assert.Equal(t, domain.BoardRoleMember, members[0].Role)

	// A resolved invitation cannot be answered again.
	_, err = e.invitations.Decline(ctx, inv.ID, bob.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidState))
}

func TestDeclineLeavesNoMembership(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	b := e.board(t, alice, "Work")

	inv, err := e.invitations.Invite(ctx, alice.ID, CreateInvitationRequest{
		BoardID:  b.ID,
		Username: bob.Username,
	})
	require.NoError(t, err)

	declined, err := e.invitations.Decline(ctx, inv.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationDeclined, declined.Status)

	members, err := e.invitations.ListMembers(ctx, b.ID, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, members)

	_, err = e.boards.GetBoard(ctx, b.ID, bob.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestOnlyInviteeSeesInvitation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	mallory := e.user(t, "mallory")
	b := e.board(t, alice, "Work")

	inv, err := e.invitations.Invite(ctx, alice.ID, CreateInvitationRequest{
		BoardID:  b.ID,
		Username: bob.Username,
	})
	require.NoError(t, err)

	_, err = e.invitations.Accept(ctx, inv.ID, mallory.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	received, err := e.invitations.ListReceived(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, received, 1)

	sent, err := e.invitations.ListSent(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, sent, 1)
}

func TestRemoveMember(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	carol := e.user(t, "carol")
	b := e.board(t, alice, "Work")
	e.share(t, b, alice, bob)
	e.share(t, b, alice, carol)

	// A member can leave but not evict others.
	err := e.invitations.RemoveMember(ctx, b.ID, carol.ID, bob.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrForbidden))

	require.NoError(t, e.invitations.RemoveMember(ctx, b.ID, bob.ID, bob.ID))

	// The owner can remove anyone.
	require.NoError(t, e.invitations.RemoveMember(ctx, b.ID, carol.ID, alice.ID))

	members, err := e.invitations.ListMembers(ctx, b.ID, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
}
