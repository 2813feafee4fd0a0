// internal/server/chat.go
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trip-os/internal/assistant"
	commonerrors "trip-os/internal/common/errors"
	"trip-os/internal/common/logger"
	"trip-os/internal/common/observability"
	"trip-os/internal/models"
	"trip-os/internal/search"
	"trip-os/internal/store"
	"trip-os/internal/tripdata"
	"trip-os/pkg/schemas"
)

// AssistantAPI is the subset of the assistant client the chat flow needs.
type AssistantAPI interface {
	CreateUser(ctx context.Context) (userID, userKey string, err error)
	CreateConversation(ctx context.Context, userKey string) (string, error)
	SendMessage(ctx context.Context, userKey, conversationID, text string) (*models.Message, error)
}

// ReplyPoller waits for the assistant's answer to a sent message.
type ReplyPoller interface {
	AwaitReply(ctx context.Context, session *models.ChatSession, sentAt time.Time) (*models.Message, error)
}

// SessionStore persists per-user assistant identities.
type SessionStore interface {
	Get(ctx context.Context, userID string) (*models.ChatSession, error)
	Save(ctx context.Context, userID string, session *models.ChatSession) error
}

// TripStore persists trip documents.
type TripStore interface {
	Create(ctx context.Context, trip *models.Trip) (*models.Trip, error)
	Get(ctx context.Context, id string) (*models.Trip, error)
	ListByUser(ctx context.Context, userID string) ([]models.Trip, error)
	Patch(ctx context.Context, id string, patch map[string]interface{}) (*models.Trip, error)
	AppendLog(ctx context.Context, id, message string) (*models.Trip, error)
	Delete(ctx context.Context, id string) error
}

// TripIndex maintains the trip search projection.
type TripIndex interface {
	IndexTrip(ctx context.Context, trip *models.Trip) error
	DeleteTrip(ctx context.Context, tripID string) error
	Search(ctx context.Context, userID, query string, size int) ([]search.TripDocument, error)
}

// ChatResult is what one round trip through the assistant produces.
type ChatResult struct {
	Reply string       `json:"reply"`
	Trip  *models.Trip `json:"trip,omitempty"`
}

// ChatService orchestrates one chat round: ensure a session, deliver
// the message, await the reply, run it through the normalization
// pipeline, and persist whatever valid trip comes out.
type ChatService struct {
	assistant AssistantAPI
	poller    ReplyPoller
	sessions  SessionStore
	pipeline  *tripdata.Pipeline
	trips     TripStore
	index     TripIndex
	obs       *observability.Observability
	logger    logger.Logger
}

func NewChatService(
	assistantAPI AssistantAPI,
	poller ReplyPoller,
	sessions SessionStore,
	pipeline *tripdata.Pipeline,
	trips TripStore,
	index TripIndex,
	obs *observability.Observability,
	log logger.Logger,
) *ChatService {
	return &ChatService{
		assistant: assistantAPI,
		poller:    poller,
		sessions:  sessions,
		pipeline:  pipeline,
		trips:     trips,
		index:     index,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "chat-service"}),
	}
}

// Send delivers one user message and returns the assistant's reply,
// plus the updated trip when the reply carried a valid itinerary.
// tripID may be empty; a valid itinerary then creates a new trip.
func (s *ChatService) Send(ctx context.Context, userID, tripID, text string) (*ChatResult, error) {
	start := time.Now()

	session, err := s.ensureSession(ctx, userID, tripID)
	if err != nil {
		s.recordOutcome(ctx, start, "session_failed")
		return nil, err
	}

	sent, err := s.assistant.SendMessage(ctx, session.UserKey, session.ConversationID, text)
	if err != nil {
		s.recordOutcome(ctx, start, "send_failed")
		return nil, commonerrors.NewAssistantSendFailedError(err)
	}

	sentAt := sent.CreatedAt
	if sentAt.IsZero() {
		sentAt = time.Now().UTC()
	}

	reply, err := s.poller.AwaitReply(ctx, session, sentAt)
	if err != nil {
		s.recordOutcome(ctx, start, "timeout")
		if errors.Is(err, assistant.ErrReplyTimeout) {
			return nil, commonerrors.NewAssistantTimeoutError(0)
		}
		return nil, err
	}

	trip, displayText := s.pipeline.Process(reply.Text, anyMetadata(reply))
	if trip == nil {
		s.recordOutcome(ctx, start, "text_only")
		return &ChatResult{Reply: displayText}, nil
	}

	persisted, err := s.persistTrip(ctx, userID, tripID, trip)
	if err != nil {
		// The reply itself is still useful; surface it with a warning.
		s.logger.Warn("trip persistence failed", map[string]interface{}{
			"userId": userID,
			"tripId": tripID,
			"error":  err.Error(),
		})
		s.recordOutcome(ctx, start, "persist_failed")
		return &ChatResult{Reply: displayText}, nil
	}

	s.syncAfterUpdate(ctx, session, persisted)
	s.recordOutcome(ctx, start, "trip_updated")
	return &ChatResult{Reply: displayText, Trip: persisted}, nil
}

// ensureSession returns the stored session or bootstraps a fresh one.
// On a brand-new session with an existing trip, current trip state is
// pushed as a context update so the assistant knows where we left off.
func (s *ChatService) ensureSession(ctx context.Context, userID, tripID string) (*models.ChatSession, error) {
	session, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, commonerrors.NewSessionStoreFailedError(err)
	}
	if session != nil && session.IsComplete() {
		return session, nil
	}

	assistantUserID, userKey, err := s.assistant.CreateUser(ctx)
	if err != nil {
		return nil, commonerrors.NewAssistantSessionFailedError(err)
	}
	conversationID, err := s.assistant.CreateConversation(ctx, userKey)
	if err != nil {
		return nil, commonerrors.NewAssistantSessionFailedError(err)
	}

	session = &models.ChatSession{
		UserID:         assistantUserID,
		UserKey:        userKey,
		ConversationID: conversationID,
	}
	if err := s.sessions.Save(ctx, userID, session); err != nil {
		return nil, commonerrors.NewSessionStoreFailedError(err)
	}

	if tripID != "" {
		if trip, err := s.trips.Get(ctx, tripID); err == nil {
			s.pushContextUpdate(ctx, session, trip)
		}
	}

	s.logger.Info("chat session created", map[string]interface{}{
		"userId":         userID,
		"conversationId": conversationID,
	})
	return session, nil
}

// persistTrip gates the mapped trip on the document schema and then
// creates or patches the stored record.
func (s *ChatService) persistTrip(ctx context.Context, userID, tripID string, trip *models.Trip) (*models.Trip, error) {
	if err := schemas.ValidateTripDocument(trip); err != nil {
		return nil, commonerrors.NewTripValidationFailedError(err.Error())
	}

	if tripID == "" {
		trip.UserID = userID
		created, err := s.trips.Create(ctx, trip)
		if err != nil {
			return nil, err
		}
		return s.appendLogQuietly(ctx, created, fmt.Sprintf("Trip to %s created", created.Destination)), nil
	}

	patched, err := s.trips.Patch(ctx, tripID, map[string]interface{}{
		"destination": trip.Destination,
		"duration":    trip.Duration,
		"totalBudget": trip.TotalBudget,
		"currency":    trip.Currency,
		"days":        trip.Days,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, commonerrors.NewTripNotFoundError(tripID)
		}
		return nil, err
	}
	return s.appendLogQuietly(ctx, patched, "Itinerary updated by assistant"), nil
}

func (s *ChatService) appendLogQuietly(ctx context.Context, trip *models.Trip, message string) *models.Trip {
	updated, err := s.trips.AppendLog(ctx, trip.ID, message)
	if err != nil {
		s.logger.Warn("trip log append failed", map[string]interface{}{
			"tripId": trip.ID,
			"error":  err.Error(),
		})
		return trip
	}
	return updated
}

// syncAfterUpdate refreshes the search projection and pushes the new
// trip state back into the conversation. Both are best effort.
func (s *ChatService) syncAfterUpdate(ctx context.Context, session *models.ChatSession, trip *models.Trip) {
	if err := s.index.IndexTrip(ctx, trip); err != nil {
		s.logger.Warn("search index update failed", map[string]interface{}{
			"tripId": trip.ID,
			"error":  err.Error(),
		})
	}
	s.pushContextUpdate(ctx, session, trip)
}

func (s *ChatService) pushContextUpdate(ctx context.Context, session *models.ChatSession, trip *models.Trip) {
	frame, err := assistant.BuildContextUpdate(trip)
	if err != nil {
		return
	}
	if _, err := s.assistant.SendMessage(ctx, session.UserKey, session.ConversationID, frame); err != nil {
		s.logger.Warn("context update delivery failed", map[string]interface{}{
			"conversationId": session.ConversationID,
			"error":          err.Error(),
		})
	}
}

func (s *ChatService) recordOutcome(ctx context.Context, start time.Time, status string) {
	if s.obs == nil {
		return
	}
	s.obs.RecordMessageProcessed(ctx, status)
	s.obs.RecordMessageDuration(ctx, time.Since(start), status)
}

func anyMetadata(m *models.Message) interface{} {
	if m.Metadata == nil {
		return nil
	}
	return m.Metadata
}
