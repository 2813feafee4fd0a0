// internal/assistant/client.go
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"trip-os/internal/common/config"
	"trip-os/internal/common/logger"
	"trip-os/internal/models"
)

var (
	ErrSessionFailed = errors.New("ASSISTANT_SESSION_FAILED")
	ErrSendFailed    = errors.New("ASSISTANT_SEND_FAILED")
	ErrListFailed    = errors.New("ASSISTANT_LIST_FAILED")
	ErrReplyTimeout  = errors.New("ASSISTANT_TIMEOUT")
)

const maxRequestAttempts = 3

// Client talks to the conversational assistant platform over its
// webhook-scoped chat API. All requests carry the per-user key.
type Client struct {
	baseURL    string
	webhookID  string
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(cfg config.AssistantConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		webhookID: cfg.WebhookID,
		httpClient: &http.Client{
			Timeout: config.GetDuration(cfg.Timeout),
		},
		logger: log.WithFields(map[string]interface{}{"component": "assistant-client"}),
	}
}

// CreateUser registers a fresh chat identity and returns its id and
// the secret key that authenticates subsequent calls.
func (c *Client) CreateUser(ctx context.Context) (userID, userKey string, err error) {
	var out struct {
		User struct {
			ID  string `json:"id"`
			Key string `json:"key"`
		} `json:"user"`
		Key string `json:"key"`
	}

	if err := c.doJSON(ctx, http.MethodPost, "/users", "", map[string]interface{}{}, &out); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrSessionFailed, err)
	}

	key := out.Key
	if key == "" {
		key = out.User.Key
	}
	if out.User.ID == "" || key == "" {
		return "", "", fmt.Errorf("%w: user create response missing id or key", ErrSessionFailed)
	}
	return out.User.ID, key, nil
}

// CreateConversation opens a new conversation for the given user key.
func (c *Client) CreateConversation(ctx context.Context, userKey string) (string, error) {
	var out struct {
		Conversation struct {
			ID string `json:"id"`
		} `json:"conversation"`
	}

	if err := c.doJSON(ctx, http.MethodPost, "/conversations", userKey, map[string]interface{}{"body": map[string]interface{}{}}, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSessionFailed, err)
	}
	if out.Conversation.ID == "" {
		return "", fmt.Errorf("%w: conversation create response missing id", ErrSessionFailed)
	}
	return out.Conversation.ID, nil
}

// SendMessage posts a text message into the conversation and returns
// the created message.
func (c *Client) SendMessage(ctx context.Context, userKey, conversationID, text string) (*models.Message, error) {
	body := map[string]interface{}{
		"conversationId": conversationID,
		"payload": map[string]interface{}{
			"type": "text",
			"text": text,
		},
	}

	var out struct {
		Message wireMessage `json:"message"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/messages", userKey, body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	msg := out.Message.toModel(conversationID)
	return &msg, nil
}

// ListMessages returns the conversation history, newest first, with
// context-update frames filtered out.
func (c *Client) ListMessages(ctx context.Context, userKey, conversationID string) ([]models.Message, error) {
	var out struct {
		Messages []wireMessage `json:"messages"`
	}

	path := fmt.Sprintf("/conversations/%s/messages", conversationID)
	if err := c.doJSON(ctx, http.MethodGet, path, userKey, nil, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListFailed, err)
	}

	messages := make([]models.Message, 0, len(out.Messages))
	for _, wm := range out.Messages {
		m := wm.toModel(conversationID)
		if IsContextUpdate(m.Text) {
			continue
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// wireMessage is the chat API's message shape.
type wireMessage struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	CreatedAt string `json:"createdAt"`
	Payload   struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"payload"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func (wm wireMessage) toModel(conversationID string) models.Message {
	createdAt, _ := time.Parse(time.RFC3339, wm.CreatedAt)
	return models.Message{
		ID:             wm.ID,
		ConversationID: conversationID,
		UserID:         wm.UserID,
		Text:           wm.Payload.Text,
		Metadata:       wm.Metadata,
		CreatedAt:      createdAt,
	}
}

// doJSON performs one API call with bounded retries and exponential
// backoff. Context cancellation stops the retry loop immediately.
func (c *Client) doJSON(ctx context.Context, method, path, userKey string, body, out interface{}) error {
	url := fmt.Sprintf("%s/%s%s", c.baseURL, c.webhookID, path)

	var lastErr error
	for attempt := 1; attempt <= maxRequestAttempts; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			c.logger.Debug("retrying assistant request", map[string]interface{}{
				"attempt": attempt,
				"path":    path,
			})
		}

		lastErr = c.doOnce(ctx, method, url, userKey, body, out)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, method, url, userKey string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if userKey != "" {
		req.Header.Set("x-user-key", userKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("assistant API returned %d: %s", resp.StatusCode, string(payload))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
