package invitation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	familydomain "koffa/internal/domain/family"
	invitationdomain "koffa/internal/domain/invitation"
	"koffa/internal/repository/postgres/dberr"
	profilerepo "koffa/internal/repository/postgres/profile"
)

type PostgresRepository struct {
	db       *gorm.DB
	profiles *profilerepo.PostgresRepository
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db, profiles: profilerepo.NewPostgres(db)}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(invitationdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewPostgres(tx))
	})
}

// CreateInvitation runs the insert in its own savepoint so a code collision
// leaves an enclosing transaction usable for the next attempt.
func (r *PostgresRepository) CreateInvitation(ctx context.Context, invitation *invitationdomain.Invitation) error {
	invitation.ExpiresAt = invitation.ExpiresAt.UTC()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(invitation).Error
	})
	if dberr.IsUniqueViolation(err) {
		return invitationdomain.ErrCodeTaken
	}
	return err
}

func (r *PostgresRepository) GetUnusedByCode(ctx context.Context, code string) (*invitationdomain.Invitation, error) {
	var invitation invitationdomain.Invitation
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_used = ?", code, false).
		First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invitationdomain.ErrInvitationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// MarkUsed flips is_used only if nobody got there first. It reports false when
// the invitation was already consumed.
func (r *PostgresRepository) MarkUsed(ctx context.Context, invitationID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&invitationdomain.Invitation{}).
		Where("id = ? AND is_used = ?", invitationID, false).
		Update("is_used", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *PostgresRepository) ListByFamily(ctx context.Context, familyID string, activeAt *time.Time) ([]invitationdomain.Invitation, error) {
	query := r.db.WithContext(ctx).Where("family_id = ?", familyID)
	if activeAt != nil {
		query = query.Where("is_used = ? AND expires_at > ?", false, activeAt.UTC())
	}

	var invitations []invitationdomain.Invitation
	if err := query.Order("created_at desc").Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

// IsCodeValid asks the database-side is_valid_invite_code function, which is
// callable without a session.
func (r *PostgresRepository) IsCodeValid(ctx context.Context, code string) (bool, error) {
	var valid bool
	if err := r.db.WithContext(ctx).Raw("SELECT is_valid_invite_code(?)", code).Scan(&valid).Error; err != nil {
		return false, err
	}
	return valid, nil
}

func (r *PostgresRepository) GetFamilyIDByUser(ctx context.Context, userID string) (string, error) {
	var member familydomain.FamilyMember
	err := r.db.WithContext(ctx).Select("family_id").Where("user_id = ?", userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", invitationdomain.ErrFamilyNotFound
	}
	if err != nil {
		return "", err
	}
	return member.FamilyID, nil
}

func (r *PostgresRepository) IsUserInFamily(ctx context.Context, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&familydomain.FamilyMember{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) AddMember(ctx context.Context, familyID, userID, role string) error {
	member := familydomain.FamilyMember{
		ID:       uuid.NewString(),
		FamilyID: familyID,
		UserID:   userID,
		Role:     role,
	}
	err := r.db.WithContext(ctx).Create(&member).Error
	if dberr.IsUniqueViolation(err) {
		return invitationdomain.ErrAlreadyInFamily
	}
	return err
}

func (r *PostgresRepository) SetProfileFamily(ctx context.Context, userID, familyID string) error {
	return r.profiles.SetFamily(ctx, userID, &familyID)
}
