package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	BrowserLang string `json:"browser_lang,omitempty" validate:"max=35"`
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type SourceDTO struct {
	Url   string `json:"url"`
	Label string `json:"label"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID   `json:"id"`
	Role      string      `json:"role"`
	Chat      string      `json:"chat"`
	Outcome   string      `json:"outcome,omitempty"`
	Sources   []SourceDTO `json:"sources,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

type SendChatRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Chat          string    `json:"chat" validate:"required_without=AudioData"`
	// AudioData carries a base64 audio data URI; when present it is
	// transcribed and the transcription replaces Chat.
	AudioData   string `json:"audio_data,omitempty"`
	BrowserLang string `json:"browser_lang,omitempty" validate:"max=35"`
}

type SendChatResponseChat struct {
	Id        uuid.UUID   `json:"id"`
	Chat      string      `json:"chat"`
	Role      string      `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	Sources   []SourceDTO `json:"sources,omitempty"`
}

type SendChatResponse struct {
	ChatSessionId    uuid.UUID             `json:"chat_session_id"`
	ChatSessionTitle string                `json:"title"`
	Outcome          string                `json:"outcome"`
	Bypassed         bool                  `json:"bypassed,omitempty"`
	Sent             *SendChatResponseChat `json:"sent"`
	Reply            *SendChatResponseChat `json:"reply"`
}

type DeleteSessionRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
}

type OpenFormRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	FormName      string    `json:"form_name" validate:"required,max=100"`
}

type CloseFormRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
}
