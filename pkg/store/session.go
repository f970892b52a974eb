package store

import "time"

// FormSession marks a chat session as being inside a multi-turn form. While
// one is open the context gate is bypassed so form answers are never blocked.
type FormSession struct {
	SessionID string    `json:"session_id"`
	FormName  string    `json:"form_name"`
	OpenedAt  time.Time `json:"opened_at"`
}
