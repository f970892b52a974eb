package mapper

import (
	"testing"
	"time"

	"chat-guardian-be/internal/entity"
	"chat-guardian-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestChatMessageRoundTripKeepsSources(t *testing.T) {
	m := NewChatMapper()

	now := time.Now()
	original := &entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          "Here is what I found.",
		Role:          "model",
		ChatSessionId: uuid.New(),
		Outcome:       "ACCEPT",
		Sources: []entity.SourceRef{
			{Url: "https://docs.example.com/faq", Label: "FAQ"},
			{Url: "https://docs.example.com/setup", Label: "Setup Guide"},
		},
		CreatedAt: now,
	}

	row := m.ChatMessageToModel(original)
	require.NotNil(t, row)

	back := m.ChatMessageToEntity(row)
	require.NotNil(t, back)

	assert.Equal(t, original.Id, back.Id)
	assert.Equal(t, original.Outcome, back.Outcome)
	require.Len(t, back.Sources, 2)
	assert.Equal(t, "FAQ", back.Sources[0].Label)
	assert.Equal(t, "https://docs.example.com/setup", back.Sources[1].Url)
}

func TestChatMessageToEntityToleratesBrokenSourcesColumn(t *testing.T) {
	m := NewChatMapper()

	row := &model.ChatMessage{
		Id:            uuid.New(),
		Chat:          "hello",
		Role:          "model",
		ChatSessionId: uuid.New(),
		Sources:       datatypes.JSON(`{broken`),
		CreatedAt:     time.Now(),
	}

	msg := m.ChatMessageToEntity(row)
	require.NotNil(t, msg)
	assert.Equal(t, "hello", msg.Chat)
	assert.Empty(t, msg.Sources)
}

func TestChatSessionRoundTrip(t *testing.T) {
	m := NewChatMapper()

	now := time.Now()
	original := &entity.ChatSession{
		Id:          uuid.New(),
		UserId:      uuid.New(),
		Title:       "How do I reset my password",
		BrowserLang: "de-DE",
		CreatedAt:   now,
		UpdatedAt:   &now,
	}

	back := m.ChatSessionToEntity(m.ChatSessionToModel(original))
	require.NotNil(t, back)

	assert.Equal(t, original.Id, back.Id)
	assert.Equal(t, original.UserId, back.UserId)
	assert.Equal(t, original.BrowserLang, back.BrowserLang)
	assert.False(t, back.IsDeleted)
}

func TestChatSessionSoftDeleteMapping(t *testing.T) {
	m := NewChatMapper()

	deleted := time.Now()
	original := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    uuid.New(),
		Title:     "old session",
		CreatedAt: deleted.Add(-time.Hour),
		DeletedAt: &deleted,
	}

	back := m.ChatSessionToEntity(m.ChatSessionToModel(original))
	require.NotNil(t, back)
	assert.True(t, back.IsDeleted)
	require.NotNil(t, back.DeletedAt)
}
