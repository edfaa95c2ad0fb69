package invitation

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	CreateInvitation(ctx context.Context, invitation *Invitation) error
	GetUnusedByCode(ctx context.Context, code string) (*Invitation, error)
	MarkUsed(ctx context.Context, invitationID string) (bool, error)
	ListByFamily(ctx context.Context, familyID string, activeAt *time.Time) ([]Invitation, error)
	IsCodeValid(ctx context.Context, code string) (bool, error)
	GetFamilyIDByUser(ctx context.Context, userID string) (string, error)
	IsUserInFamily(ctx context.Context, userID string) (bool, error)
	AddMember(ctx context.Context, familyID, userID, role string) error
	SetProfileFamily(ctx context.Context, userID, familyID string) error
}

type Sender interface {
	SendInvitation(ctx context.Context, notice Notice) error
}

type noopSender struct{}

func (noopSender) SendInvitation(context.Context, Notice) error {
	return nil
}
