package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-os/internal/common/config"
	"trip-os/internal/common/logger"
	"trip-os/internal/models"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	return NewClient(config.TTSConfig{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		DefaultVoiceID: "voice-default",
		ModelID:        "eleven_multilingual_v2",
		Timeout:        2000,
	}, logger.NewTestLogger(t))
}

func TestSynthesize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/voice-9", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("xi-api-key"))
		assert.Equal(t, "audio/mpeg", r.Header.Get("Accept"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello traveller", body["text"])
		assert.Equal(t, "eleven_multilingual_v2", body["model_id"])

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("MPEG-BYTES"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	audio, err := client.Synthesize(context.Background(), "hello traveller", "voice-9")

	require.NoError(t, err)
	assert.Equal(t, []byte("MPEG-BYTES"), audio)
}

func TestSynthesizeDefaultVoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/voice-default", r.URL.Path)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Synthesize(context.Background(), "hi", "")
	require.NoError(t, err)
}

func TestSynthesizeEmptyText(t *testing.T) {
	client := newTestClient(t, "http://unused")
	_, err := client.Synthesize(context.Background(), "", "voice-9")
	assert.ErrorIs(t, err, ErrMissingText)
}

func TestSynthesizeUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid key"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Synthesize(context.Background(), "hi", "voice-9")
	assert.ErrorIs(t, err, ErrSynthesisFailed)
}

func TestBuildBriefing(t *testing.T) {
	trip := &models.Trip{
		Destination: "Rome",
		TotalBudget: 1500,
		Currency:    "EUR",
		Days: []models.TripDay{
			{
				Title: "Ancient Rome",
				Events: []models.TripEvent{
					{Title: "Colosseum tour"},
				},
			},
			{Title: "Vatican"},
		},
	}

	text := BuildBriefing(trip)

	assert.Contains(t, text, "Welcome to your Trip O S briefing for Rome.")
	assert.Contains(t, text, "2 day journey")
	assert.Contains(t, text, "1500 EUR")
	assert.Contains(t, text, "focusing on Ancient Rome")
	assert.Contains(t, text, "Highlights include Colosseum tour")
	assert.Contains(t, text, "Have a wonderful trip!")
}

func TestBuildBriefingNoDays(t *testing.T) {
	text := BuildBriefing(&models.Trip{Destination: "Oslo"})

	assert.Contains(t, text, "0 day journey")
	assert.Contains(t, text, "USD")
	assert.NotContains(t, text, "first day")
}
