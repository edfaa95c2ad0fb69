package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	familydomain "koffa/internal/domain/family"
)

type FamilyService interface {
	GetFamilyByUser(ctx context.Context, userID string) (*familydomain.Family, error)
	ListMembers(ctx context.Context, userID string) ([]familydomain.FamilyMemberProfile, error)
}

type Service struct {
	store    Store
	families FamilyService
	now      func() time.Time
}

func NewService(store Store, families FamilyService) *Service {
	return &Service{
		store:    store,
		families: families,
		now:      time.Now,
	}
}

// Get returns the caller's family settings reconciled with the current
// membership: newcomers get role defaults, departed members are dropped and
// the owner is always admin.
func (s *Service) Get(ctx context.Context, userID string) (*Settings, error) {
	current, _, err := s.load(ctx, userID)
	return current, err
}

func (s *Service) UpdateMember(ctx context.Context, actorID, memberID string, update MemberUpdate) (*Settings, error) {
	current, ownerID, err := s.load(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if current.Members[actorID].Role != RoleAdmin {
		return nil, ErrForbidden
	}

	target, ok := current.Members[memberID]
	if !ok {
		return nil, ErrMemberNotFound
	}

	if update.Role != nil {
		role := *update.Role
		if !role.Valid() {
			return nil, ErrInvalidRole
		}
		if memberID == ownerID && role != RoleAdmin {
			return nil, ErrOwnerMustBeAdmin
		}
		if role != target.Role {
			target = MemberSettings{Role: role, Permissions: DefaultPermissions(role)}
		}
	}

	for area, access := range update.Permissions {
		if !area.Valid() || !access.Valid() {
			return nil, fmt.Errorf("%w: %s=%s", ErrInvalidPermission, area, access)
		}
		target.Permissions[area] = access
	}

	current.Members[memberID] = target
	current.UpdatedAt = s.now().UTC()

	if err := s.store.Save(ctx, current); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	return current, nil
}

func (s *Service) Can(ctx context.Context, userID string, area Area, need Access) (bool, error) {
	current, _, err := s.load(ctx, userID)
	if err != nil {
		return false, err
	}

	member, ok := current.Members[userID]
	if !ok {
		return false, nil
	}
	return member.Permissions[area].Allows(need), nil
}

func (s *Service) load(ctx context.Context, userID string) (*Settings, string, error) {
	family, err := s.families.GetFamilyByUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	members, err := s.families.ListMembers(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	stored, err := s.store.Load(ctx, family.ID)
	if err != nil && !errors.Is(err, ErrSettingsNotFound) {
		return nil, "", fmt.Errorf("load settings: %w", err)
	}

	current := &Settings{FamilyID: family.ID, Members: make(map[string]MemberSettings, len(members))}
	if stored != nil {
		current.UpdatedAt = stored.UpdatedAt
	}

	ownerID := ""
	for _, member := range members {
		var known MemberSettings
		found := false
		if stored != nil {
			known, found = stored.Members[member.UserID]
		}

		if member.Role == familydomain.RoleOwner {
			ownerID = member.UserID
			if !found || known.Role != RoleAdmin {
				known = MemberSettings{Role: RoleAdmin, Permissions: DefaultPermissions(RoleAdmin)}
			}
		} else if !found || !known.Role.Valid() {
			known = MemberSettings{Role: RoleMember, Permissions: DefaultPermissions(RoleMember)}
		}

		current.Members[member.UserID] = fillPermissions(known)
	}

	return current, ownerID, nil
}

// fillPermissions adds role defaults for areas a stored document predates.
func fillPermissions(member MemberSettings) MemberSettings {
	defaults := DefaultPermissions(member.Role)
	permissions := clonePermissions(member.Permissions)
	for area, access := range defaults {
		if _, ok := permissions[area]; !ok {
			permissions[area] = access
		}
	}
	member.Permissions = permissions
	return member
}
