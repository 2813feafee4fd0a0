// internal/assistant/poller.go
package assistant

import (
	"context"
	"fmt"
	"time"

	"trip-os/internal/common/config"
	"trip-os/internal/common/logger"
	"trip-os/internal/common/metrics"
	"trip-os/internal/models"
)

// Poller waits for an assistant reply with a fixed interval and a
// fixed attempt budget. The assistant platform offers no push channel
// at this API tier, so polling it is.
type Poller struct {
	client      *Client
	interval    time.Duration
	maxAttempts int
	logger      logger.Logger
}

func NewPoller(client *Client, cfg config.PipelineConfig, log logger.Logger) *Poller {
	return &Poller{
		client:      client,
		interval:    config.GetDuration(cfg.PollInterval),
		maxAttempts: cfg.PollMaxAttempts,
		logger:      log.WithFields(map[string]interface{}{"component": "assistant-poller"}),
	}
}

// AwaitReply polls the conversation until a message authored by
// someone other than the sending user arrives after sentAt, or the
// attempt budget runs out (ErrReplyTimeout).
func (p *Poller) AwaitReply(ctx context.Context, session *models.ChatSession, sentAt time.Time) (*models.Message, error) {
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.interval):
		}

		messages, err := p.client.ListMessages(ctx, session.UserKey, session.ConversationID)
		if err != nil {
			p.logger.Warn("poll attempt failed", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
			})
			continue
		}

		if reply := findReply(messages, session.UserID, sentAt); reply != nil {
			metrics.AssistantPollAttempts.Observe(float64(attempt))
			return reply, nil
		}
	}

	metrics.AssistantPollAttempts.Observe(float64(p.maxAttempts))
	return nil, fmt.Errorf("%w: no reply after %d attempts", ErrReplyTimeout, p.maxAttempts)
}

// findReply picks the newest message from another author created
// after the sent timestamp.
func findReply(messages []models.Message, userID string, sentAt time.Time) *models.Message {
	for i := range messages {
		m := messages[i]
		if m.IsFrom(userID) {
			continue
		}
		if !m.CreatedAt.After(sentAt) {
			continue
		}
		return &m
	}
	return nil
}
