package constant

const (
	ChatMessageRoleUser  = "user"
	ChatMessageRoleModel = "model"

	// Greeting inserted when a session is created.
	ChatSessionGreeting = "Hi, how can I help you ?"

	DefaultSessionTitle = "Unnamed session"

	// Reply for voice messages when audio handling is switched off.
	AudioUnsupportedMessage = "Sorry, I can't process voice messages right now. Please type your question instead."

	ChatOutcomeAudioUnsupported = "AUDIO_UNSUPPORTED"
)
