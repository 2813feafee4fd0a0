// internal/tts/client.go
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"trip-os/internal/common/config"
	"trip-os/internal/common/logger"
)

var (
	ErrSynthesisFailed = errors.New("TTS_FAILED")
	ErrMissingText     = errors.New("TTS_MISSING_TEXT")
)

// Client talks to the ElevenLabs text-to-speech API.
type Client struct {
	baseURL        string
	apiKey         string
	defaultVoiceID string
	modelID        string
	httpClient     *http.Client
	logger         logger.Logger
}

func NewClient(cfg config.TTSConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		defaultVoiceID: cfg.DefaultVoiceID,
		modelID:        cfg.ModelID,
		httpClient: &http.Client{
			Timeout: config.GetDuration(cfg.Timeout),
		},
		logger: log.WithFields(map[string]interface{}{"component": "tts-client"}),
	}
}

// Synthesize converts text to MPEG audio. An empty voiceID selects
// the configured default voice.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if text == "" {
		return nil, ErrMissingText
	}
	if voiceID == "" {
		voiceID = c.defaultVoiceID
	}

	payload, err := json.Marshal(map[string]interface{}{
		"text":     text,
		"model_id": c.modelID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("tts upstream error", map[string]interface{}{
			"status": resp.StatusCode,
			"detail": string(detail),
		})
		return nil, fmt.Errorf("%w: upstream returned %d", ErrSynthesisFailed, resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	return audio, nil
}
