package translate

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"chat-guardian-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

type fakeProvider struct {
	reply string
	err   error

	lastPrompt string
}

func (f *fakeProvider) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	return f.reply, f.err
}

func (f *fakeProvider) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	f.lastPrompt = prompt
	return f.reply, f.err
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestMatchLanguageTranslates(t *testing.T) {
	provider := &fakeProvider{reply: "  Tut mir leid, ich kann nicht helfen.  "}
	tr := New(provider, discardLogger())

	got := tr.MatchLanguage(context.Background(), "Sorry, I can't help.", "Wie setze ich mein Passwort zurück?")

	assert.Equal(t, "Tut mir leid, ich kann nicht helfen.", got)
	assert.Contains(t, provider.lastPrompt, "Wie setze ich mein Passwort zurück?")
	assert.Contains(t, provider.lastPrompt, "Sorry, I can't help.")
}

func TestMatchLanguageKeepsOriginalOnError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("model overloaded")}
	tr := New(provider, discardLogger())

	got := tr.MatchLanguage(context.Background(), "Sorry, I can't help.", "Bonjour")
	assert.Equal(t, "Sorry, I can't help.", got)
}

func TestMatchLanguageKeepsOriginalOnEmptyTranslation(t *testing.T) {
	provider := &fakeProvider{reply: "   "}
	tr := New(provider, discardLogger())

	got := tr.MatchLanguage(context.Background(), "Sorry, I can't help.", "Bonjour")
	assert.Equal(t, "Sorry, I can't help.", got)
}

func TestMatchLanguageSkipsWithoutProviderOrInput(t *testing.T) {
	tr := New(nil, discardLogger())
	assert.Equal(t, "text", tr.MatchLanguage(context.Background(), "text", "ref"))

	provider := &fakeProvider{reply: "should not be used"}
	tr = New(provider, discardLogger())
	assert.Equal(t, "", tr.MatchLanguage(context.Background(), "", "ref"))
	assert.Equal(t, "text", tr.MatchLanguage(context.Background(), "text", "   "))
}
