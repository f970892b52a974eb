package service

import (
	"context"
	"strings"
	"testing"

	"chat-guardian-be/internal/constant"
	"chat-guardian-be/pkg/guardian"
	"chat-guardian-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProvider struct {
	reply   string
	history []llm.Message
}

func (p *recordingProvider) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	p.history = history
	return p.reply, nil
}

func (p *recordingProvider) Generate(_ context.Context, _ string, _ ...llm.Option) (string, error) {
	return p.reply, nil
}

func TestReplyGeneratorMapsRoles(t *testing.T) {
	provider := &recordingProvider{reply: "sure"}
	g := newReplyGenerator(provider)

	history := []guardian.Turn{
		{Role: constant.ChatMessageRoleUser, Text: "how do I export my data?"},
		{Role: constant.ChatMessageRoleModel, Text: "Use the export page."},
	}

	got, err := g.Generate(context.Background(), "and as CSV?", history)
	require.NoError(t, err)
	assert.Equal(t, "sure", got)

	require.Len(t, provider.history, 3)
	assert.Equal(t, "user", provider.history[0].Role)
	assert.Equal(t, "assistant", provider.history[1].Role)
	assert.Equal(t, "user", provider.history[2].Role)
	assert.Equal(t, "and as CSV?", provider.history[2].Content)
}

func TestSessionTitleFromTruncatesAtRuneBoundary(t *testing.T) {
	long := strings.Repeat("ä", 100)
	title := sessionTitleFrom(long)

	assert.Equal(t, strings.Repeat("ä", 80)+"...", title)
}

func TestSessionTitleFromShortMessage(t *testing.T) {
	assert.Equal(t, "reset password", sessionTitleFrom("reset password"))
	assert.Equal(t, constant.DefaultSessionTitle, sessionTitleFrom(""))
}

func TestSourcesToDTOOmitsEmpty(t *testing.T) {
	assert.Nil(t, sourcesToDTO(nil))

	out := sourcesToDTO(sourcesToEntity([]guardian.Source{
		{URL: "https://docs.example.com/faq", Label: "FAQ"},
	}))
	require.Len(t, out, 1)
	assert.Equal(t, "FAQ", out[0].Label)
}
