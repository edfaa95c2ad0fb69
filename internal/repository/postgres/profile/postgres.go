package profile

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	profiledomain "koffa/internal/domain/profile"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) UpsertProfile(ctx context.Context, profile *profiledomain.Profile) error {
	updates := map[string]interface{}{}
	if profile.Username != nil {
		updates["username"] = profile.Username
	}
	if profile.AvatarURL != nil {
		updates["avatar_url"] = profile.AvatarURL
	}

	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: len(updates) == 0,
	}
	if len(updates) > 0 {
		onConflict.DoUpdates = clause.Assignments(updates)
	}

	return r.db.WithContext(ctx).
		Omit("family_id").
		Clauses(onConflict).
		Create(profile).Error
}

func (r *PostgresRepository) GetProfile(ctx context.Context, userID string) (*profiledomain.Profile, error) {
	var profile profiledomain.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, profiledomain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// SetFamily points the profile at familyID, or clears the link when nil. A
// missing profile row is created.
func (r *PostgresRepository) SetFamily(ctx context.Context, userID string, familyID *string) error {
	profile := profiledomain.Profile{ID: userID, FamilyID: familyID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"family_id": familyID}),
		}).
		Create(&profile).Error
}
