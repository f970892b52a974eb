package mapper

import (
	"encoding/json"
	"time"

	"chat-guardian-be/internal/entity"
	"chat-guardian-be/internal/model"
	"chat-guardian-be/pkg/guardian"
)

type SettingMapper struct{}

func NewSettingMapper() *SettingMapper {
	return &SettingMapper{}
}

func (m *SettingMapper) ToEntity(s *model.GuardianSetting) (*entity.GuardianSetting, error) {
	if s == nil {
		return nil, nil
	}

	// Missing knobs in the stored payload fall back through Normalized at
	// read time, so defaults here only seed brand-new rows.
	settings := guardian.DefaultSettings()
	if len(s.Payload) > 0 {
		if err := json.Unmarshal(s.Payload, &settings); err != nil {
			return nil, err
		}
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.GuardianSetting{
		Id:        s.Id,
		Settings:  settings,
		UpdatedBy: s.UpdatedBy,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (m *SettingMapper) ToModel(s *entity.GuardianSetting) (*model.GuardianSetting, error) {
	if s == nil {
		return nil, nil
	}

	payload, err := json.Marshal(s.Settings)
	if err != nil {
		return nil, err
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.GuardianSetting{
		Id:        s.Id,
		Payload:   payload,
		UpdatedBy: s.UpdatedBy,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
	}, nil
}
