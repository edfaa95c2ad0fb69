package family

import (
	"context"
	"errors"
	"testing"
	"time"

	invitationdomain "koffa/internal/domain/invitation"
)

type fakeFamilyRepo struct {
	families    map[string]*Family
	members     map[string]*FamilyMember
	profiles    map[string]*string
	invitations []*invitationdomain.Invitation
	clock       time.Time

	invitationErr error
}

func newFakeFamilyRepo() *fakeFamilyRepo {
	return &fakeFamilyRepo{
		families: make(map[string]*Family),
		members:  make(map[string]*FamilyMember),
		profiles: make(map[string]*string),
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *fakeFamilyRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeFamilyRepo) GetFamilyByUser(ctx context.Context, userID string) (*Family, error) {
	member, ok := r.members[userID]
	if !ok {
		return nil, ErrFamilyNotFound
	}
	family, ok := r.families[member.FamilyID]
	if !ok {
		return nil, ErrFamilyNotFound
	}
	copied := *family
	return &copied, nil
}

func (r *fakeFamilyRepo) GetMemberByUser(ctx context.Context, userID string) (*FamilyMember, error) {
	member, ok := r.members[userID]
	if !ok {
		return nil, ErrFamilyNotFound
	}
	return member, nil
}

func (r *fakeFamilyRepo) GetMember(ctx context.Context, familyID, userID string) (*FamilyMember, error) {
	member, ok := r.members[userID]
	if !ok || member.FamilyID != familyID {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

func (r *fakeFamilyRepo) GetSuccessor(ctx context.Context, familyID, excludeUserID string) (*FamilyMember, error) {
	var found *FamilyMember
	for _, member := range r.members {
		if member.FamilyID != familyID || member.UserID == excludeUserID {
			continue
		}
		if found == nil || member.JoinedAt.Before(found.JoinedAt) {
			found = member
		}
	}
	if found == nil {
		return nil, ErrMemberNotFound
	}
	return found, nil
}

func (r *fakeFamilyRepo) ListMembersWithProfiles(ctx context.Context, familyID string) ([]FamilyMemberProfile, error) {
	result := make([]FamilyMemberProfile, 0)
	for _, member := range r.members {
		if member.FamilyID == familyID {
			result = append(result, FamilyMemberProfile{
				UserID:   member.UserID,
				Role:     member.Role,
				JoinedAt: member.JoinedAt,
			})
		}
	}
	return result, nil
}

func (r *fakeFamilyRepo) CreateFamily(ctx context.Context, family *Family) error {
	r.families[family.ID] = family
	return nil
}

func (r *fakeFamilyRepo) AddMember(ctx context.Context, member *FamilyMember) error {
	if _, ok := r.members[member.UserID]; ok {
		return ErrAlreadyInFamily
	}
	if member.JoinedAt.IsZero() {
		r.clock = r.clock.Add(time.Minute)
		member.JoinedAt = r.clock
	}
	r.members[member.UserID] = member
	return nil
}

func (r *fakeFamilyRepo) UpdateFamilyName(ctx context.Context, familyID, name string) error {
	family, ok := r.families[familyID]
	if !ok {
		return ErrFamilyNotFound
	}
	family.Name = name
	return nil
}

func (r *fakeFamilyRepo) UpdateMemberRole(ctx context.Context, familyID, userID, role string) error {
	member, ok := r.members[userID]
	if !ok || member.FamilyID != familyID {
		return ErrMemberNotFound
	}
	member.Role = role
	return nil
}

func (r *fakeFamilyRepo) DeleteFamily(ctx context.Context, familyID string) error {
	delete(r.families, familyID)
	return nil
}

func (r *fakeFamilyRepo) DeleteMember(ctx context.Context, familyID, userID string) error {
	member, ok := r.members[userID]
	if ok && member.FamilyID == familyID {
		delete(r.members, userID)
	}
	return nil
}

func (r *fakeFamilyRepo) IsUserInFamily(ctx context.Context, userID string) (bool, error) {
	_, ok := r.members[userID]
	return ok, nil
}

func (r *fakeFamilyRepo) SetProfileFamily(ctx context.Context, userID string, familyID *string) error {
	r.profiles[userID] = familyID
	return nil
}

func (r *fakeFamilyRepo) CreateInvitation(ctx context.Context, invitation *invitationdomain.Invitation) error {
	if r.invitationErr != nil {
		return r.invitationErr
	}
	r.invitations = append(r.invitations, invitation)
	return nil
}

func (r *fakeFamilyRepo) addMember(familyID, userID, role string) {
	_ = r.AddMember(context.Background(), &FamilyMember{ID: "m-" + userID, FamilyID: familyID, UserID: userID, Role: role})
}

func TestCreateFamilySuccess(t *testing.T) {
	repo := newFakeFamilyRepo()
	svc := NewService(repo)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	result, err := svc.CreateFamily(context.Background(), "user-u", "  Smith Family  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Family.Name != "Smith Family" {
		t.Fatalf("expected name trimmed, got %q", result.Family.Name)
	}
	if result.Family.CreatedBy != "user-u" {
		t.Fatalf("expected creator user-u, got %q", result.Family.CreatedBy)
	}

	owners := 0
	for _, member := range repo.members {
		if member.FamilyID == result.Family.ID {
			if member.Role != RoleOwner || member.UserID != "user-u" {
				t.Fatalf("unexpected member %+v", member)
			}
			owners++
		}
	}
	if owners != 1 {
		t.Fatalf("expected exactly one owner row, got %d", owners)
	}

	linked := repo.profiles["user-u"]
	if linked == nil || *linked != result.Family.ID {
		t.Fatalf("expected profile linked to %s, got %v", result.Family.ID, linked)
	}

	if len(repo.invitations) != 1 || result.Invitation == nil {
		t.Fatalf("expected one provisioned invitation")
	}
	issued := repo.invitations[0]
	if issued.FamilyID != result.Family.ID || issued.CreatedBy != "user-u" || issued.IsUsed {
		t.Fatalf("unexpected invitation %+v", issued)
	}
	if !issued.ExpiresAt.Equal(now.Add(invitationdomain.DefaultTTL)) {
		t.Fatalf("expected default ttl, got %v", issued.ExpiresAt)
	}
}

func TestCreateFamilyWithoutInvitation(t *testing.T) {
	repo := newFakeFamilyRepo()
	svc := NewServiceWithConfig(repo, Config{PrecreateInvitation: false})

	result, err := svc.CreateFamily(context.Background(), "user-1", "Fam")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Invitation != nil || len(repo.invitations) != 0 {
		t.Fatalf("expected no invitation")
	}
}

func TestCreateFamilyInvitationFailure(t *testing.T) {
	repo := newFakeFamilyRepo()
	boom := errors.New("insert failed")
	repo.invitationErr = boom

	svc := NewService(repo)
	_, err := svc.CreateFamily(context.Background(), "user-1", "Fam")
	if !errors.Is(err, boom) {
		t.Fatalf("expected insert error, got %v", err)
	}
}

func TestCreateFamilyNameRequired(t *testing.T) {
	svc := NewService(newFakeFamilyRepo())
	_, err := svc.CreateFamily(context.Background(), "user-1", "   ")
	if !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestCreateFamilyAlreadyInFamily(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.families["fam-1"] = &Family{ID: "fam-1", Name: "Fam", CreatedBy: "owner"}
	repo.addMember("fam-1", "user-1", RoleMember)

	svc := NewService(repo)
	_, err := svc.CreateFamily(context.Background(), "user-1", "Name")
	if !errors.Is(err, ErrAlreadyInFamily) {
		t.Fatalf("expected ErrAlreadyInFamily, got %v", err)
	}
}

func TestLeaveFamilyOwnerTransfers(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.families["fam-1"] = &Family{ID: "fam-1", Name: "Fam", CreatedBy: "owner"}
	repo.addMember("fam-1", "owner", RoleOwner)
	repo.addMember("fam-1", "user-2", RoleMember)
	repo.addMember("fam-1", "user-3", RoleMember)

	svc := NewService(repo)
	if err := svc.LeaveFamily(context.Background(), "owner"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.families["fam-1"] == nil {
		t.Fatalf("family should not be deleted")
	}
	member := repo.members["user-2"]
	if member == nil || member.Role != RoleOwner {
		t.Fatalf("expected user-2 to be owner, got %+v", member)
	}
	if repo.members["user-3"].Role != RoleMember {
		t.Fatalf("expected user-3 to stay member")
	}
	if _, ok := repo.members["owner"]; ok {
		t.Fatalf("expected owner membership deleted")
	}
	if linked, ok := repo.profiles["owner"]; !ok || linked != nil {
		t.Fatalf("expected owner profile unlinked")
	}
}

func TestLeaveFamilyOwnerSolo(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.families["fam-1"] = &Family{ID: "fam-1", Name: "Fam", CreatedBy: "owner"}
	repo.addMember("fam-1", "owner", RoleOwner)

	svc := NewService(repo)
	if err := svc.LeaveFamily(context.Background(), "owner"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.families["fam-1"]; ok {
		t.Fatalf("expected family deleted")
	}
	if _, ok := repo.members["owner"]; ok {
		t.Fatalf("expected owner membership deleted")
	}
}

func TestLeaveFamilyMember(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.families["fam-1"] = &Family{ID: "fam-1", Name: "Fam", CreatedBy: "owner"}
	repo.addMember("fam-1", "owner", RoleOwner)
	repo.addMember("fam-1", "user-2", RoleMember)

	svc := NewService(repo)
	if err := svc.LeaveFamily(context.Background(), "user-2"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.members["user-2"]; ok {
		t.Fatalf("expected membership deleted")
	}
	if repo.members["owner"].Role != RoleOwner {
		t.Fatalf("owner must stay owner")
	}
}

func TestLeaveFamilyNotMember(t *testing.T) {
	svc := NewService(newFakeFamilyRepo())
	err := svc.LeaveFamily(context.Background(), "nobody")
	if !errors.Is(err, ErrFamilyNotFound) {
		t.Fatalf("expected ErrFamilyNotFound, got %v", err)
	}
}

func TestUpdateFamily(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.families["fam-1"] = &Family{ID: "fam-1", Name: "Fam", CreatedBy: "user-1"}
	repo.addMember("fam-1", "user-1", RoleOwner)

	svc := NewService(repo)
	result, err := svc.UpdateFamily(context.Background(), "user-1", "New Name")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Name != "New Name" {
		t.Fatalf("expected updated name, got %q", result.Name)
	}
	if repo.families["fam-1"].Name != "New Name" {
		t.Fatalf("expected stored name updated")
	}
}

func TestUpdateFamilyNotOwner(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.families["fam-1"] = &Family{ID: "fam-1", Name: "Fam", CreatedBy: "owner"}
	repo.addMember("fam-1", "owner", RoleOwner)
	repo.addMember("fam-1", "user-1", RoleMember)

	svc := NewService(repo)
	_, err := svc.UpdateFamily(context.Background(), "user-1", "Mine now")
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestListMembers(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.families["fam-1"] = &Family{ID: "fam-1", Name: "Fam", CreatedBy: "user-1"}
	repo.addMember("fam-1", "user-1", RoleOwner)
	repo.addMember("fam-1", "user-2", RoleMember)

	svc := NewService(repo)
	members, err := svc.ListMembers(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
}

func TestRemoveMemberNotOwner(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.families["fam-1"] = &Family{ID: "fam-1", Name: "Fam", CreatedBy: "owner"}
	repo.addMember("fam-1", "owner", RoleOwner)
	repo.addMember("fam-1", "user-1", RoleMember)
	repo.addMember("fam-1", "user-2", RoleMember)

	svc := NewService(repo)
	err := svc.RemoveMember(context.Background(), "user-1", "user-2")
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestRemoveMemberCannotRemoveOwner(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.families["fam-1"] = &Family{ID: "fam-1", Name: "Fam", CreatedBy: "owner"}
	repo.addMember("fam-1", "owner", RoleOwner)
	repo.addMember("fam-1", "user-1", RoleMember)

	svc := NewService(repo)
	err := svc.RemoveMember(context.Background(), "owner", "owner")
	if !errors.Is(err, ErrCannotRemoveOwner) {
		t.Fatalf("expected ErrCannotRemoveOwner, got %v", err)
	}
}

func TestRemoveMemberOtherFamily(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.families["fam-1"] = &Family{ID: "fam-1", Name: "Fam", CreatedBy: "owner"}
	repo.families["fam-2"] = &Family{ID: "fam-2", Name: "Other", CreatedBy: "other"}
	repo.addMember("fam-1", "owner", RoleOwner)
	repo.addMember("fam-2", "stranger", RoleMember)

	svc := NewService(repo)
	err := svc.RemoveMember(context.Background(), "owner", "stranger")
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestRemoveMemberSuccess(t *testing.T) {
	repo := newFakeFamilyRepo()
	repo.families["fam-1"] = &Family{ID: "fam-1", Name: "Fam", CreatedBy: "owner"}
	repo.addMember("fam-1", "owner", RoleOwner)
	repo.addMember("fam-1", "user-1", RoleMember)

	svc := NewService(repo)
	if err := svc.RemoveMember(context.Background(), "owner", "user-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.members["user-1"]; ok {
		t.Fatalf("expected member removed")
	}
	if linked, ok := repo.profiles["user-1"]; !ok || linked != nil {
		t.Fatalf("expected profile unlinked")
	}
}
