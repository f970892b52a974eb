package transcribe

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTripFunc lets tests intercept the outbound Gemini call.
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestTranscriber(fn roundTripFunc) *Transcriber {
	tr := New("test-key")
	tr.Client = &http.Client{Transport: fn}
	return tr
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestTranscribeRejectsNonAudioURI(t *testing.T) {
	tr := New("test-key")

	for _, uri := range []string{
		"",
		"not a data uri",
		"data:image/png;base64,AAAA",
		"data:audio/webm,no-base64-marker",
	} {
		_, err := tr.Transcribe(context.Background(), uri)
		assert.ErrorIs(t, err, ErrInvalidDataURI, "uri %q", uri)
	}
}

func TestTranscribeSendsInlineAudio(t *testing.T) {
	var captured transcribeRequest
	tr := newTestTranscriber(func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "test-key", req.Header.Get("x-goog-api-key"))

		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		return jsonResponse(http.StatusOK, `{
			"candidates": [{"content": {"parts": [{"text": "  hello world  "}]}}]
		}`), nil
	})

	got, err := tr.Transcribe(context.Background(), "data:audio/webm;base64,QUJD")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)

	require.Len(t, captured.Contents, 1)
	parts := captured.Contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, transcriptionPrompt, parts[0].Text)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "audio/webm", parts[1].InlineData.MimeType)
	assert.Equal(t, "QUJD", parts[1].InlineData.Data)
}

func TestTranscribeErrorsOnBadStatus(t *testing.T) {
	tr := newTestTranscriber(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusServiceUnavailable, `{"error": {"message": "overloaded"}}`), nil
	})

	_, err := tr.Transcribe(context.Background(), "data:audio/mp3;base64,QUJD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestTranscribeErrorsOnNoCandidates(t *testing.T) {
	tr := newTestTranscriber(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"candidates": []}`), nil
	})

	_, err := tr.Transcribe(context.Background(), "data:audio/mp3;base64,QUJD")
	assert.Error(t, err)
}
