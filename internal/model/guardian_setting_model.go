package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GuardianSetting struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"` // guardian.Settings as JSON
	UpdatedBy string         `gorm:"type:varchar(255)"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (GuardianSetting) TableName() string {
	return "guardian_settings"
}
