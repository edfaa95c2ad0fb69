package profile

import "time"

type Profile struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Username  *string   `gorm:"type:text"`
	AvatarURL *string   `gorm:"type:text"`
	FamilyID  *string   `gorm:"type:uuid;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
