package entity

import (
	"time"

	"github.com/google/uuid"

	"chat-guardian-be/pkg/guardian"
)

// GuardianSetting is the persisted pipeline configuration. A single row is
// kept; every chat turn reads a snapshot of it.
type GuardianSetting struct {
	Id        uuid.UUID
	Settings  guardian.Settings
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
