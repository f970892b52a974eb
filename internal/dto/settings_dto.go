package dto

import (
	"time"

	"chat-guardian-be/pkg/guardian"
)

type GetSettingsResponse struct {
	Settings  guardian.Settings `json:"settings"`
	UpdatedBy string            `json:"updated_by,omitempty"`
	UpdatedAt *time.Time        `json:"updated_at,omitempty"`
}

type UpdateSettingsRequest struct {
	Settings guardian.Settings `json:"settings" validate:"required"`
}
