package guardian

// Settings is the immutable per-turn configuration snapshot. It is loaded
// once per invocation and never mutated by the pipeline.
type Settings struct {
	DoublePass                   bool              `json:"double_pass"`
	UTMSource                    string            `json:"utm_source"`
	DefaultMessage               string            `json:"default_message"`
	DefaultMessages              map[string]string `json:"default_messages,omitempty"`
	PanicButtonEnabled           bool              `json:"panic_button_enabled"`
	PanicButtonText              string            `json:"panic_button_text"`
	MinQueryLength               int               `json:"min_query_length"`
	MaxQueryLen                  int               `json:"max_query_len"` // 0 disables the upper bound
	UseConversationHistory       bool              `json:"use_conversation_history"`
	ConversationHistoryLength    int               `json:"conversation_history_length"`
	MaxQueryLength               int               `json:"max_query_length"` // augmented search query cap
	MinSourceChar                int               `json:"min_source_char"`
	RemoveInlineLinksFromSources bool              `json:"remove_inline_links_from_sources"`
	SuggestionFirst              bool              `json:"suggestion_first"`
	HandleAudio                  bool              `json:"handle_audio"`
	TopK                         int               `json:"top_k"`
}

const (
	defaultMinQueryLength            = 10
	defaultMaxQueryLen               = 500
	defaultMaxQueryLength            = 1000
	defaultConversationHistoryLength = 3
	defaultMinSourceChar             = 100
	defaultTopK                      = 10
)

// DefaultSettings mirrors the shipped plugin defaults.
func DefaultSettings() Settings {
	return Settings{
		DoublePass:                false,
		UTMSource:                 "",
		DefaultMessage:            "Sorry, I can't help you. To answer adequately: • Write short, complete sentences • Express one request at a time",
		PanicButtonEnabled:        false,
		PanicButtonText:           "Sorry, I'm under maintenance right now. Please try again later.",
		MinQueryLength:            defaultMinQueryLength,
		MaxQueryLen:               defaultMaxQueryLen,
		UseConversationHistory:    true,
		ConversationHistoryLength: defaultConversationHistoryLength,
		MaxQueryLength:            defaultMaxQueryLength,
		MinSourceChar:             defaultMinSourceChar,
		TopK:                      defaultTopK,
	}
}

// Normalized returns a copy with zero or negative knobs replaced by sane
// defaults, so a half-filled settings row never disables the pipeline.
func (s Settings) Normalized() Settings {
	if s.MinQueryLength <= 0 {
		s.MinQueryLength = defaultMinQueryLength
	}
	if s.MaxQueryLength <= 0 {
		s.MaxQueryLength = defaultMaxQueryLength
	}
	if s.ConversationHistoryLength < 0 {
		s.ConversationHistoryLength = 0
	}
	if s.MinSourceChar < 0 {
		s.MinSourceChar = 0
	}
	if s.MaxQueryLen < 0 {
		s.MaxQueryLen = 0
	}
	if s.TopK <= 0 {
		s.TopK = defaultTopK
	}
	if s.DefaultMessage == "" {
		s.DefaultMessage = DefaultSettings().DefaultMessage
	}
	if s.PanicButtonText == "" {
		s.PanicButtonText = DefaultSettings().PanicButtonText
	}
	return s
}
