package family

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	familydomain "koffa/internal/domain/family"
	invitationdomain "koffa/internal/domain/invitation"
	"koffa/internal/repository/postgres/dberr"
	invitationrepo "koffa/internal/repository/postgres/invitation"
	profilerepo "koffa/internal/repository/postgres/profile"
)

type PostgresRepository struct {
	db          *gorm.DB
	profiles    *profilerepo.PostgresRepository
	invitations *invitationrepo.PostgresRepository
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{
		db:          db,
		profiles:    profilerepo.NewPostgres(db),
		invitations: invitationrepo.NewPostgres(db),
	}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(familydomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewPostgres(tx))
	})
}

func (r *PostgresRepository) GetFamilyByUser(ctx context.Context, userID string) (*familydomain.Family, error) {
	var family familydomain.Family
	err := r.db.WithContext(ctx).
		Table("families").
		Joins("join family_members on family_members.family_id = families.id").
		Where("family_members.user_id = ?", userID).
		Limit(1).
		First(&family).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, familydomain.ErrFamilyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &family, nil
}

func (r *PostgresRepository) GetMemberByUser(ctx context.Context, userID string) (*familydomain.FamilyMember, error) {
	var member familydomain.FamilyMember
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, familydomain.ErrFamilyNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *PostgresRepository) GetMember(ctx context.Context, familyID, userID string) (*familydomain.FamilyMember, error) {
	var member familydomain.FamilyMember
	if err := r.db.WithContext(ctx).Where("family_id = ? AND user_id = ?", familyID, userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, familydomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// GetSuccessor returns the longest standing member other than excludeUserID.
func (r *PostgresRepository) GetSuccessor(ctx context.Context, familyID, excludeUserID string) (*familydomain.FamilyMember, error) {
	var member familydomain.FamilyMember
	err := r.db.WithContext(ctx).
		Where("family_id = ? AND user_id <> ?", familyID, excludeUserID).
		Order("joined_at asc").
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, familydomain.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *PostgresRepository) ListMembersWithProfiles(ctx context.Context, familyID string) ([]familydomain.FamilyMemberProfile, error) {
	type memberRow struct {
		UserID    string    `gorm:"column:user_id"`
		Role      string    `gorm:"column:role"`
		JoinedAt  time.Time `gorm:"column:joined_at"`
		Username  *string   `gorm:"column:username"`
		AvatarURL *string   `gorm:"column:avatar_url"`
	}

	var rows []memberRow
	if err := r.db.WithContext(ctx).
		Table("family_members").
		Select("family_members.user_id, family_members.role, family_members.joined_at, profiles.username, profiles.avatar_url").
		Joins("left join profiles on profiles.id = family_members.user_id").
		Where("family_members.family_id = ?", familyID).
		Order("family_members.joined_at asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	members := make([]familydomain.FamilyMemberProfile, 0, len(rows))
	for _, row := range rows {
		members = append(members, familydomain.FamilyMemberProfile{
			UserID:    row.UserID,
			Role:      row.Role,
			JoinedAt:  row.JoinedAt,
			Username:  row.Username,
			AvatarURL: row.AvatarURL,
		})
	}
	return members, nil
}

func (r *PostgresRepository) CreateFamily(ctx context.Context, family *familydomain.Family) error {
	return r.db.WithContext(ctx).Create(family).Error
}

func (r *PostgresRepository) AddMember(ctx context.Context, member *familydomain.FamilyMember) error {
	err := r.db.WithContext(ctx).Create(member).Error
	if dberr.IsUniqueViolation(err) {
		return familydomain.ErrAlreadyInFamily
	}
	return err
}

func (r *PostgresRepository) UpdateFamilyName(ctx context.Context, familyID, name string) error {
	return r.db.WithContext(ctx).Model(&familydomain.Family{}).Where("id = ?", familyID).Update("name", name).Error
}

func (r *PostgresRepository) UpdateMemberRole(ctx context.Context, familyID, userID, role string) error {
	return r.db.WithContext(ctx).Model(&familydomain.FamilyMember{}).
		Where("family_id = ? AND user_id = ?", familyID, userID).
		Update("role", role).Error
}

// DeleteFamily drops the family with its invitations and memberships.
func (r *PostgresRepository) DeleteFamily(ctx context.Context, familyID string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("family_id = ?", familyID).Delete(&invitationdomain.Invitation{}).Error; err != nil {
		return err
	}
	if err := db.Where("family_id = ?", familyID).Delete(&familydomain.FamilyMember{}).Error; err != nil {
		return err
	}
	if err := db.Exec("DELETE FROM family_settings WHERE family_id = ?", familyID).Error; err != nil {
		return err
	}
	return db.Delete(&familydomain.Family{}, "id = ?", familyID).Error
}

func (r *PostgresRepository) DeleteMember(ctx context.Context, familyID, userID string) error {
	return r.db.WithContext(ctx).Delete(&familydomain.FamilyMember{}, "family_id = ? AND user_id = ?", familyID, userID).Error
}

func (r *PostgresRepository) IsUserInFamily(ctx context.Context, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&familydomain.FamilyMember{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) SetProfileFamily(ctx context.Context, userID string, familyID *string) error {
	return r.profiles.SetFamily(ctx, userID, familyID)
}

func (r *PostgresRepository) CreateInvitation(ctx context.Context, invitation *invitationdomain.Invitation) error {
	return r.invitations.CreateInvitation(ctx, invitation)
}
