package mapper

import (
	"testing"
	"time"

	"chat-guardian-be/internal/entity"
	"chat-guardian-be/internal/model"
	"chat-guardian-be/pkg/guardian"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestSettingToEntitySeedsDefaultsForMissingKnobs(t *testing.T) {
	m := NewSettingMapper()

	// Stored payload only overrides two knobs; the rest must come from the
	// shipped defaults, not zero values.
	row := &model.GuardianSetting{
		Id:        uuid.New(),
		Payload:   datatypes.JSON(`{"double_pass": true, "min_query_length": 25}`),
		CreatedAt: time.Now(),
	}

	setting, err := m.ToEntity(row)
	require.NoError(t, err)
	require.NotNil(t, setting)

	assert.True(t, setting.Settings.DoublePass)
	assert.Equal(t, 25, setting.Settings.MinQueryLength)
	assert.Equal(t, guardian.DefaultSettings().TopK, setting.Settings.TopK)
	assert.Equal(t, guardian.DefaultSettings().DefaultMessage, setting.Settings.DefaultMessage)
}

func TestSettingToEntityRejectsBrokenPayload(t *testing.T) {
	m := NewSettingMapper()

	row := &model.GuardianSetting{
		Id:      uuid.New(),
		Payload: datatypes.JSON(`{not json`),
	}

	setting, err := m.ToEntity(row)
	assert.Error(t, err)
	assert.Nil(t, setting)
}

func TestSettingRoundTrip(t *testing.T) {
	m := NewSettingMapper()

	settings := guardian.DefaultSettings()
	settings.UTMSource = "assistant"
	settings.DoublePass = true
	settings.DefaultMessages = map[string]string{"de": "Tut mir leid."}

	now := time.Now()
	original := &entity.GuardianSetting{
		Id:        uuid.New(),
		Settings:  settings,
		UpdatedBy: "admin",
		CreatedAt: now,
		UpdatedAt: &now,
	}

	row, err := m.ToModel(original)
	require.NoError(t, err)

	back, err := m.ToEntity(row)
	require.NoError(t, err)

	assert.Equal(t, original.Id, back.Id)
	assert.Equal(t, original.UpdatedBy, back.UpdatedBy)
	assert.Equal(t, settings.UTMSource, back.Settings.UTMSource)
	assert.Equal(t, settings.DefaultMessages["de"], back.Settings.DefaultMessages["de"])
}

func TestSettingNilPassthrough(t *testing.T) {
	m := NewSettingMapper()

	setting, err := m.ToEntity(nil)
	require.NoError(t, err)
	assert.Nil(t, setting)

	row, err := m.ToModel(nil)
	require.NoError(t, err)
	assert.Nil(t, row)
}
