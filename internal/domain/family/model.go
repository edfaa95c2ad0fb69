package family

import (
	"time"

	invitationdomain "koffa/internal/domain/invitation"
)

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

type Family struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	CreatedBy string    `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// FamilyMember rows are unique per user: a user belongs to one family at most.
type FamilyMember struct {
	ID       string    `gorm:"type:uuid;primaryKey"`
	FamilyID string    `gorm:"type:uuid;not null;index"`
	UserID   string    `gorm:"type:uuid;not null;uniqueIndex"`
	Role     string    `gorm:"type:varchar(16);not null"`
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

type FamilyMemberProfile struct {
	UserID    string
	Role      string
	JoinedAt  time.Time
	Username  *string
	AvatarURL *string
}

type Created struct {
	Family     Family
	Invitation *invitationdomain.Invitation
}

type Config struct {
	PrecreateInvitation bool
	InvitationTTL       time.Duration
}
