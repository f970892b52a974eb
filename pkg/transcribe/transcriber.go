// Package transcribe converts user-recorded audio into text through the
// Gemini generateContent endpoint.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidDataURI is returned when the payload is not a base64 audio data
// URI of the form data:audio/<subtype>;base64,<data>.
var ErrInvalidDataURI = errors.New("invalid audio data URI")

var dataURIRe = regexp.MustCompile(`^data:(audio/[a-zA-Z0-9.-]+);base64,(.+)$`)

const transcriptionPrompt = "Transcribe the following audio exactly as it is spoken. Do not add any description or timestamp."

type Transcriber struct {
	APIKey string
	Model  string
	Client *http.Client
}

func New(apiKey string) *Transcriber {
	return &Transcriber{
		APIKey: apiKey,
		Model:  "gemini-2.5-flash",
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type transcribePart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *transcribeInline `json:"inline_data,omitempty"`
}

type transcribeInline struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type transcribeRequest struct {
	Contents []struct {
		Parts []transcribePart `json:"parts"`
	} `json:"contents"`
}

type transcribeResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Transcribe turns an audio data URI into plain text.
func (t *Transcriber) Transcribe(ctx context.Context, audioDataURI string) (string, error) {
	m := dataURIRe.FindStringSubmatch(audioDataURI)
	if m == nil {
		return "", ErrInvalidDataURI
	}
	mimeType, base64Data := m[1], m[2]

	var payload transcribeRequest
	payload.Contents = append(payload.Contents, struct {
		Parts []transcribePart `json:"parts"`
	}{
		Parts: []transcribePart{
			{Text: transcriptionPrompt},
			{InlineData: &transcribeInline{MimeType: mimeType, Data: base64Data}},
		},
	})

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent", t.Model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", t.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var result transcribeResponse
	if err := json.Unmarshal(bodyBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("transcription returned no candidates")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}
