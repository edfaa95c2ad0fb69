package invitation

import "time"

const (
	DefaultTTL = 7 * 24 * time.Hour

	joinRole = "member"
)

type Invitation struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Code      string    `gorm:"size:8;not null;uniqueIndex"`
	FamilyID  string    `gorm:"type:uuid;not null;index"`
	CreatedBy string    `gorm:"type:uuid;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	IsUsed    bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// IsExpired reports whether the invitation is no longer redeemable at now.
// An expiry equal to now counts as expired.
func (i Invitation) IsExpired(now time.Time) bool {
	return !i.ExpiresAt.After(now)
}

type Verification struct {
	Valid      bool
	FamilyID   string
	Error      string
	Invitation *Invitation

	reason error
}

// Err returns the sentinel behind a negative verification, nil when valid.
func (v Verification) Err() error {
	return v.reason
}

type Redemption struct {
	Success  bool
	FamilyID string
}

type Config struct {
	TTL time.Duration
}

type ListFilter struct {
	IncludeInactive bool
}

// Notice is what gets mailed to someone invited by address.
type Notice struct {
	To          string
	InvitedBy   string
	DisplayCode string
	ExpiresAt   time.Time
}
