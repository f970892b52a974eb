package contract

import (
	"context"

	"chat-guardian-be/internal/entity"
)

// GuardianSettingRepository manages the single persisted settings row.
type GuardianSettingRepository interface {
	// Get returns the settings row, or nil when none has been saved yet.
	Get(ctx context.Context) (*entity.GuardianSetting, error)
	// Save creates the row on first write and updates it afterwards.
	Save(ctx context.Context, setting *entity.GuardianSetting) error
}
