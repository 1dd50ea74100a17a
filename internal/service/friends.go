package service

import (
	"errors"

	"github.com/hexxt-git/knowdown/internal/game"
	"github.com/hexxt-git/knowdown/internal/storage"
)

var (
	ErrSelfInvite        = errors.New("cannot send a friend invite to yourself")
	ErrUserNotFound      = errors.New("user not found")
	ErrAlreadyFriends    = errors.New("already friends with this user")
	ErrInviteExists      = errors.New("a friend invite already exists between these users")
	ErrInviteNotFound    = errors.New("friend invite not found")
	ErrNotInviteReceiver = errors.New("only the receiver can respond to this invite")
	ErrInviteProcessed   = errors.New("friend invite was already processed")
)

// FriendsRepo is the slice of the repository friend management needs.
type FriendsRepo interface {
	GetUserBySubject(subject string) (*game.User, error)
	AreFriends(subjectA, subjectB string) (bool, error)
	FindInviteBetween(subjectA, subjectB string) (*game.FriendInvite, error)
	CreateInvite(invite *game.FriendInvite) error
	GetInviteByID(id uint) (*game.FriendInvite, error)
	SaveInvite(invite *game.FriendInvite) error
	CreateFriendship(subjectA, subjectB string) error
	GetFriendSubjects(subject string) ([]string, error)
	GetPendingInvitesFor(subject string) ([]game.FriendInvite, error)
	GetUsersWithCardCounts(subjects []string) ([]storage.UserWithCardCount, error)
}

// PendingInvite decorates an invite with the sender's display name for
// listing.
type PendingInvite struct {
	game.FriendInvite
	SenderName string `json:"senderName"`
}

// SendInvite creates a pending friend invite from sender to receiver.
func SendInvite(repo FriendsRepo, senderSubject, receiverSubject string) (*game.FriendInvite, error) {
	if senderSubject == receiverSubject {
		return nil, ErrSelfInvite
	}
	receiver, err := repo.GetUserBySubject(receiverSubject)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}

	friends, err := repo.AreFriends(senderSubject, receiverSubject)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, ErrAlreadyFriends
	}

	existing, err := repo.FindInviteBetween(senderSubject, receiverSubject)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == game.InvitePending {
		return nil, ErrInviteExists
	}

	invite := &game.FriendInvite{
		SenderSubject:   senderSubject,
		ReceiverSubject: receiverSubject,
		Status:          game.InvitePending,
	}
	if err := repo.CreateInvite(invite); err != nil {
		return nil, err
	}
	return invite, nil
}

// RespondToInvite accepts or rejects a pending invite. Accepting creates
// the friendship in both directions. Only the receiver may respond, and
// only while the invite is still pending.
func RespondToInvite(repo FriendsRepo, receiverSubject string, inviteID uint, accept bool) (*game.FriendInvite, error) {
	invite, err := repo.GetInviteByID(inviteID)
	if err != nil {
		return nil, err
	}
	if invite == nil {
		return nil, ErrInviteNotFound
	}
	if invite.ReceiverSubject != receiverSubject {
		return nil, ErrNotInviteReceiver
	}
	if invite.Status != game.InvitePending {
		return nil, ErrInviteProcessed
	}

	if accept {
		invite.Status = game.InviteAccepted
	} else {
		invite.Status = game.InviteBlocked
	}
	if err := repo.SaveInvite(invite); err != nil {
		return nil, err
	}
	if accept {
		if err := repo.CreateFriendship(invite.SenderSubject, invite.ReceiverSubject); err != nil {
			return nil, err
		}
	}
	return invite, nil
}

// ListFriends returns the player's friends with their card counts.
func ListFriends(repo FriendsRepo, subject string) ([]storage.UserWithCardCount, error) {
	subjects, err := repo.GetFriendSubjects(subject)
	if err != nil {
		return nil, err
	}
	if len(subjects) == 0 {
		return []storage.UserWithCardCount{}, nil
	}
	return repo.GetUsersWithCardCounts(subjects)
}

// ListPendingInvites returns the invites waiting on the player, each
// annotated with the sender's display name.
func ListPendingInvites(repo FriendsRepo, subject string) ([]PendingInvite, error) {
	invites, err := repo.GetPendingInvitesFor(subject)
	if err != nil {
		return nil, err
	}
	out := make([]PendingInvite, 0, len(invites))
	for _, inv := range invites {
		name := inv.SenderSubject
		sender, err := repo.GetUserBySubject(inv.SenderSubject)
		if err == nil && sender != nil && sender.DisplayName != "" {
			name = sender.DisplayName
		}
		out = append(out, PendingInvite{FriendInvite: inv, SenderName: name})
	}
	return out, nil
}
