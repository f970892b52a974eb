// Package translate rewrites assistant text into the language of a reference
// text, so canned replies follow the user's language.
package translate

import (
	"context"
	"fmt"
	"log"
	"strings"

	"chat-guardian-be/pkg/llm"
)

const promptTemplate = `You are a helpful translator.
I will provide you with a reference text and a text to translate.
Your goal is to translate the "Text to translate" into the same language as the "Reference text".

Reference text: "%s"

Text to translate: "%s"

Only output the translated text, nothing else. Do not add explanations.`

type Translator struct {
	provider llm.LLMProvider
	logger   *log.Logger
}

func New(provider llm.LLMProvider, logger *log.Logger) *Translator {
	return &Translator{provider: provider, logger: logger}
}

// MatchLanguage translates text into the language of reference. Translation
// is best-effort: any failure returns the original text unchanged, since a
// reply in the wrong language beats no reply.
func (t *Translator) MatchLanguage(ctx context.Context, text, reference string) string {
	if t.provider == nil || strings.TrimSpace(text) == "" || strings.TrimSpace(reference) == "" {
		return text
	}

	prompt := fmt.Sprintf(promptTemplate, reference, text)

	translated, err := t.provider.Generate(ctx, prompt)
	if err != nil {
		t.logger.Printf("[TRANSLATE] translation failed, keeping original text: %v", err)
		return text
	}

	translated = strings.TrimSpace(translated)
	if translated == "" {
		t.logger.Printf("[TRANSLATE] empty translation, keeping original text")
		return text
	}

	return translated
}
