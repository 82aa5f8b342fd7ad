package group

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyExists = errors.New("user is already a member of this group")
	ErrNotAuthorized       = errors.New("not authorized to perform this action")
	ErrNoInvitation        = errors.New("no pending invitation for this group")
)

// Store is the persistence surface the service depends on.
type Store interface {
	Create(ctx context.Context, creatorID string, req *CreateGroupRequest) (*Group, error)
	GetByID(ctx context.Context, id string) (*Group, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*Group, int, error)
	Update(ctx context.Context, id string, req *UpdateGroupRequest) (*Group, error)
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, groupID string, req *AddMemberRequest) (*Member, error)
	GetMembers(ctx context.Context, groupID string) ([]*Member, error)
	GetMember(ctx context.Context, groupID, userID string) (*Member, error)
	UpdateMember(ctx context.Context, groupID, userID string, req *UpdateMemberRequest) (*Member, error)
	RemoveMember(ctx context.Context, groupID, userID string) error
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
}

// Notifier tells a user they were invited to a group.
type Notifier interface {
	GroupInvite(ctx context.Context, recipientID, groupID, groupName string)
}

type Service struct {
	store    Store
	notifier Notifier
}

func NewService(store Store, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// Create creates the group with the creator as a joined admin.
func (s *Service) Create(ctx context.Context, creatorID string, req *CreateGroupRequest) (*Group, error) {
	g, err := s.store.Create(ctx, creatorID, req)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("group_id", g.ID).
		Str("creator_id", creatorID).
		Msg("group created")
	return g, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Group, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) GetByIDWithMembers(ctx context.Context, id string) (*Group, []*Member, error) {
	g, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	members, err := s.store.GetMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return g, members, nil
}

func (s *Service) ListByUserID(ctx context.Context, userID string, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.store.ListByUserID(ctx, userID, perPage, (page-1)*perPage)
}

// Update changes group fields. Only admins may update.
func (s *Service) Update(ctx context.Context, id, requesterID string, req *UpdateGroupRequest) (*Group, error) {
	if err := s.requireAdmin(ctx, id, requesterID); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, id, req)
}

// Delete removes the group and all memberships. Only admins may delete.
func (s *Service) Delete(ctx context.Context, id, requesterID string) error {
	if err := s.requireAdmin(ctx, id, requesterID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("group_id", id).Msg("group deleted")
	return nil
}

// AddMember invites a user to the group. Any joined member may invite.
func (s *Service) AddMember(ctx context.Context, groupID, requesterID string, req *AddMemberRequest) (*Member, error) {
	ok, err := s.store.IsMember(ctx, groupID, requesterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAuthorized
	}

	g, err := s.store.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	m, err := s.store.AddMember(ctx, groupID, req)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("group_id", groupID).
		Str("user_id", req.UserID).
		Msg("member invited")

	if s.notifier != nil {
		s.notifier.GroupInvite(ctx, req.UserID, g.ID, g.Name)
	}
	return m, nil
}

func (s *Service) GetMembers(ctx context.Context, groupID string) ([]*Member, error) {
	if _, err := s.store.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.GetMembers(ctx, groupID)
}

// UpdateMember changes a member's role. Only admins may change roles.
func (s *Service) UpdateMember(ctx context.Context, groupID, userID, requesterID string, req *UpdateMemberRequest) (*Member, error) {
	if err := s.requireAdmin(ctx, groupID, requesterID); err != nil {
		return nil, err
	}
	return s.store.UpdateMember(ctx, groupID, userID, req)
}

// RemoveMember removes a member. Admins may remove anyone; members may
// remove themselves.
func (s *Service) RemoveMember(ctx context.Context, groupID, userID, requesterID string) error {
	if userID != requesterID {
		if err := s.requireAdmin(ctx, groupID, requesterID); err != nil {
			return err
		}
	}
	return s.store.RemoveMember(ctx, groupID, userID)
}

// AcceptInvitation flips the caller's own membership from INVITED to JOINED.
func (s *Service) AcceptInvitation(ctx context.Context, groupID, userID string) (*Member, error) {
	m, err := s.store.GetMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if m.Status != MemberStatusInvited {
		return nil, ErrNoInvitation
	}

	joined := MemberStatusJoined
	updated, err := s.store.UpdateMember(ctx, groupID, userID, &UpdateMemberRequest{Status: &joined})
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().
		Str("group_id", groupID).
		Str("user_id", userID).
		Msg("invitation accepted")
	return updated, nil
}

// IsMember satisfies the settlement service's membership check.
func (s *Service) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	return s.store.IsMember(ctx, groupID, userID)
}

func (s *Service) requireAdmin(ctx context.Context, groupID, userID string) error {
	m, err := s.store.GetMember(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return ErrNotAuthorized
		}
		return err
	}
	if m.Role != MemberRoleAdmin || m.Status != MemberStatusJoined {
		return ErrNotAuthorized
	}
	return nil
}
