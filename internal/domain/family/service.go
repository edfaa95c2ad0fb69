package family

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	invitationdomain "koffa/internal/domain/invitation"
)

type Service struct {
	repo Repository
	cfg  Config
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return NewServiceWithConfig(repo, Config{
		PrecreateInvitation: true,
		InvitationTTL:       invitationdomain.DefaultTTL,
	})
}

func NewServiceWithConfig(repo Repository, cfg Config) *Service {
	if cfg.InvitationTTL <= 0 {
		cfg.InvitationTTL = invitationdomain.DefaultTTL
	}

	return &Service{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
}

func (s *Service) GetFamilyByUser(ctx context.Context, userID string) (*Family, error) {
	return s.repo.GetFamilyByUser(ctx, userID)
}

// CreateFamily inserts the family, its owner membership and the owner's
// profile link, then provisions the first invitation, all in one transaction.
func (s *Service) CreateFamily(ctx context.Context, userID, name string) (*Created, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	var result Created
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		inFamily, err := tx.IsUserInFamily(ctx, userID)
		if err != nil {
			return err
		}
		if inFamily {
			return ErrAlreadyInFamily
		}

		family := Family{
			ID:        uuid.NewString(),
			Name:      name,
			CreatedBy: userID,
		}
		if err := tx.CreateFamily(ctx, &family); err != nil {
			return fmt.Errorf("create family: %w", err)
		}

		member := FamilyMember{
			ID:       uuid.NewString(),
			FamilyID: family.ID,
			UserID:   userID,
			Role:     RoleOwner,
		}
		if err := tx.AddMember(ctx, &member); err != nil {
			return fmt.Errorf("add owner: %w", err)
		}

		if err := tx.SetProfileFamily(ctx, userID, &family.ID); err != nil {
			return fmt.Errorf("link profile: %w", err)
		}

		if s.cfg.PrecreateInvitation {
			issued, err := invitationdomain.Issue(ctx, tx.CreateInvitation, family.ID, userID, s.now().Add(s.cfg.InvitationTTL))
			if err != nil {
				return fmt.Errorf("provision invitation: %w", err)
			}
			result.Invitation = issued
		}

		result.Family = family
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *Service) UpdateFamily(ctx context.Context, userID, name string) (*Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	member, err := s.repo.GetMemberByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if member.Role != RoleOwner {
		return nil, ErrNotOwner
	}

	family, err := s.repo.GetFamilyByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFamilyName(ctx, family.ID, name); err != nil {
		return nil, err
	}

	family.Name = name
	return family, nil
}

func (s *Service) ListMembers(ctx context.Context, userID string) ([]FamilyMemberProfile, error) {
	family, err := s.repo.GetFamilyByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.repo.ListMembersWithProfiles(ctx, family.ID)
}

// LeaveFamily removes the caller. An owner hands the family to the longest
// standing member; a sole owner takes the family down with them.
func (s *Service) LeaveFamily(ctx context.Context, userID string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		member, err := tx.GetMemberByUser(ctx, userID)
		if err != nil {
			return err
		}

		if member.Role == RoleOwner {
			successor, err := tx.GetSuccessor(ctx, member.FamilyID, userID)
			switch {
			case errors.Is(err, ErrMemberNotFound):
				if err := tx.DeleteMember(ctx, member.FamilyID, userID); err != nil {
					return err
				}
				if err := tx.SetProfileFamily(ctx, userID, nil); err != nil {
					return err
				}
				return tx.DeleteFamily(ctx, member.FamilyID)
			case err != nil:
				return err
			}

			if err := tx.UpdateMemberRole(ctx, member.FamilyID, successor.UserID, RoleOwner); err != nil {
				return err
			}
		}

		if err := tx.DeleteMember(ctx, member.FamilyID, userID); err != nil {
			return err
		}
		return tx.SetProfileFamily(ctx, userID, nil)
	})
}

func (s *Service) RemoveMember(ctx context.Context, actorID, memberID string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		actor, err := tx.GetMemberByUser(ctx, actorID)
		if err != nil {
			return err
		}
		if actor.Role != RoleOwner {
			return ErrNotOwner
		}
		if actorID == memberID {
			return ErrCannotRemoveOwner
		}

		target, err := tx.GetMember(ctx, actor.FamilyID, memberID)
		if err != nil {
			return err
		}
		if target.Role == RoleOwner {
			return ErrCannotRemoveOwner
		}

		if err := tx.DeleteMember(ctx, actor.FamilyID, memberID); err != nil {
			return err
		}
		return tx.SetProfileFamily(ctx, memberID, nil)
	})
}
