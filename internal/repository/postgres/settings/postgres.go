package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	settingsdomain "koffa/internal/domain/settings"
)

// Row is the family_settings record: one JSON document per family.
type Row struct {
	FamilyID  string    `gorm:"type:uuid;primaryKey"`
	Data      []byte    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Row) TableName() string {
	return "family_settings"
}

type PostgresStore struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Load(ctx context.Context, familyID string) (*settingsdomain.Settings, error) {
	var row Row
	err := s.db.WithContext(ctx).Where("family_id = ?", familyID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, settingsdomain.ErrSettingsNotFound
	}
	if err != nil {
		return nil, err
	}

	members := make(map[string]settingsdomain.MemberSettings)
	if err := json.Unmarshal(row.Data, &members); err != nil {
		return nil, fmt.Errorf("decode settings for family %s: %w", familyID, err)
	}

	return &settingsdomain.Settings{
		FamilyID:  row.FamilyID,
		Members:   members,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (s *PostgresStore) Save(ctx context.Context, settings *settingsdomain.Settings) error {
	data, err := json.Marshal(settings.Members)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	row := Row{
		FamilyID:  settings.FamilyID,
		Data:      data,
		UpdatedAt: settings.UpdatedAt.UTC(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "family_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&row).Error
}
