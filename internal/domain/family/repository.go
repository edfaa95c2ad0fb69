package family

import (
	"context"

	invitationdomain "koffa/internal/domain/invitation"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	GetFamilyByUser(ctx context.Context, userID string) (*Family, error)
	GetMemberByUser(ctx context.Context, userID string) (*FamilyMember, error)
	GetMember(ctx context.Context, familyID, userID string) (*FamilyMember, error)
	GetSuccessor(ctx context.Context, familyID, excludeUserID string) (*FamilyMember, error)
	ListMembersWithProfiles(ctx context.Context, familyID string) ([]FamilyMemberProfile, error)
	CreateFamily(ctx context.Context, family *Family) error
	AddMember(ctx context.Context, member *FamilyMember) error
	UpdateFamilyName(ctx context.Context, familyID, name string) error
	UpdateMemberRole(ctx context.Context, familyID, userID, role string) error
	DeleteFamily(ctx context.Context, familyID string) error
	DeleteMember(ctx context.Context, familyID, userID string) error
	IsUserInFamily(ctx context.Context, userID string) (bool, error)
	SetProfileFamily(ctx context.Context, userID string, familyID *string) error
	CreateInvitation(ctx context.Context, invitation *invitationdomain.Invitation) error
}
