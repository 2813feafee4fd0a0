package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-os/internal/assistant"
	"trip-os/internal/common/config"
	commonerrors "trip-os/internal/common/errors"
	"trip-os/internal/common/logger"
	"trip-os/internal/models"
	"trip-os/internal/tripdata"
)

// ====== chat fakes ======

type fakeAssistant struct {
	sent       []string
	sendErr    error
	sessionErr error
	userCount  int
	convCount  int
}

func (f *fakeAssistant) CreateUser(context.Context) (string, string, error) {
	if f.sessionErr != nil {
		return "", "", f.sessionErr
	}
	f.userCount++
	return fmt.Sprintf("asst-user-%d", f.userCount), fmt.Sprintf("key-%d", f.userCount), nil
}

func (f *fakeAssistant) CreateConversation(_ context.Context, _ string) (string, error) {
	if f.sessionErr != nil {
		return "", f.sessionErr
	}
	f.convCount++
	return fmt.Sprintf("conv-%d", f.convCount), nil
}

func (f *fakeAssistant) SendMessage(_ context.Context, _, _, text string) (*models.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, text)
	return &models.Message{ID: "sent-1", CreatedAt: time.Now().UTC()}, nil
}

type fakePoller struct {
	reply *models.Message
	err   error
}

func (f *fakePoller) AwaitReply(context.Context, *models.ChatSession, time.Time) (*models.Message, error) {
	return f.reply, f.err
}

type fakeSessions struct {
	sessions map[string]*models.ChatSession
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]*models.ChatSession{}}
}

func (f *fakeSessions) Get(_ context.Context, userID string) (*models.ChatSession, error) {
	return f.sessions[userID], nil
}

func (f *fakeSessions) Save(_ context.Context, userID string, session *models.ChatSession) error {
	f.sessions[userID] = session
	return nil
}

// ====== fixture ======

type chatFixture struct {
	service   *ChatService
	assistant *fakeAssistant
	poller    *fakePoller
	sessions  *fakeSessions
	trips     *fakeTripStore
	index     *fakeTripIndex
}

func newChatFixture(t *testing.T) *chatFixture {
	log := logger.NewTestLogger(t)
	f := &chatFixture{
		assistant: &fakeAssistant{},
		poller:    &fakePoller{},
		sessions:  newFakeSessions(),
		trips:     newFakeTripStore(),
		index:     &fakeTripIndex{},
	}
	pipeline := tripdata.NewPipeline(
		tripdata.NewMapper(nil, log),
		tripdata.NewValidator(log),
	)
	f.service = NewChatService(f.assistant, f.poller, f.sessions, pipeline, f.trips, f.index, nil, log)
	return f
}

const romeReply = `Here's your plan! {
	"destination": "Rome",
	"duration": "2 days",
	"budget": {"total": 500, "currency": "EUR"},
	"days": [
		{"day": 1, "date": "2026-09-01", "title": "Arrival", "events": [
			{"id": "e1", "time": "09:00", "title": "Colosseum", "type": "activity", "cost": 20}
		]}
	]
}`

func replyMessage(text string) *models.Message {
	return &models.Message{
		ID:        "reply-1",
		UserID:    "asst-bot",
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// ====== tests ======

func TestChatSendCreatesTrip(t *testing.T) {
	f := newChatFixture(t)
	f.poller.reply = replyMessage(romeReply)

	result, err := f.service.Send(context.Background(), "u1", "", "plan me a trip to Rome")
	require.NoError(t, err)

	assert.Equal(t, "Here's your plan!", result.Reply)
	require.NotNil(t, result.Trip)
	assert.Equal(t, "Rome", result.Trip.Destination)
	assert.Equal(t, "u1", result.Trip.UserID)
	assert.NotEmpty(t, result.Trip.ID)

	// creation log recorded, search projection refreshed
	require.NotEmpty(t, result.Trip.Logs)
	assert.Contains(t, result.Trip.Logs[0].Message, "Rome")
	assert.Contains(t, f.index.indexed, result.Trip.ID)

	// new trip state pushed back into the conversation
	var sawContextUpdate bool
	for _, sent := range f.assistant.sent {
		if strings.HasPrefix(sent, assistant.ContextUpdatePrefix) {
			sawContextUpdate = true
		}
	}
	assert.True(t, sawContextUpdate)
}

func TestChatSendReusesSession(t *testing.T) {
	f := newChatFixture(t)
	f.poller.reply = replyMessage("Sure, where to?")

	_, err := f.service.Send(context.Background(), "u1", "", "hi")
	require.NoError(t, err)
	_, err = f.service.Send(context.Background(), "u1", "", "hello again")
	require.NoError(t, err)

	assert.Equal(t, 1, f.assistant.userCount)
	assert.Equal(t, 1, f.assistant.convCount)
}

func TestChatSendTextOnlyReply(t *testing.T) {
	f := newChatFixture(t)
	f.poller.reply = replyMessage("What dates were you thinking of?")

	result, err := f.service.Send(context.Background(), "u1", "", "plan a trip")
	require.NoError(t, err)

	assert.Equal(t, "What dates were you thinking of?", result.Reply)
	assert.Nil(t, result.Trip)
	assert.Empty(t, f.trips.trips)
}

func TestChatSendUpdatesExistingTrip(t *testing.T) {
	f := newChatFixture(t)
	existing, err := f.trips.Create(context.Background(), storedTrip("u1"))
	require.NoError(t, err)

	updated := strings.Replace(romeReply, `"destination": "Rome"`, `"destination": "Florence"`, 1)
	f.poller.reply = replyMessage(updated)

	result, err := f.service.Send(context.Background(), "u1", existing.ID, "move it to Florence")
	require.NoError(t, err)

	require.NotNil(t, result.Trip)
	assert.Equal(t, existing.ID, result.Trip.ID)
	assert.Equal(t, "Florence", result.Trip.Destination)
	require.NotEmpty(t, result.Trip.Logs)
	assert.Equal(t, "Itinerary updated by assistant", result.Trip.Logs[len(result.Trip.Logs)-1].Message)
}

func TestChatSendUnknownTripID(t *testing.T) {
	f := newChatFixture(t)
	f.poller.reply = replyMessage(romeReply)

	result, err := f.service.Send(context.Background(), "u1", "ghost", "update it")
	require.NoError(t, err)

	// reply still returned, nothing persisted
	assert.Equal(t, "Here's your plan!", result.Reply)
	assert.Nil(t, result.Trip)
}

func TestChatSendTimeout(t *testing.T) {
	f := newChatFixture(t)
	f.poller.err = fmt.Errorf("%w: no reply after 30 attempts", assistant.ErrReplyTimeout)

	_, err := f.service.Send(context.Background(), "u1", "", "hello?")

	var stdErr *commonerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, commonerrors.ErrCodeAssistantTimeout, stdErr.Code)
}

func TestChatSendSessionBootstrapFailure(t *testing.T) {
	f := newChatFixture(t)
	f.assistant.sessionErr = fmt.Errorf("upstream unavailable")

	_, err := f.service.Send(context.Background(), "u1", "", "hi")

	var stdErr *commonerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, commonerrors.ErrCodeAssistantSessionFailed, stdErr.Code)
}

// ====== handler wiring ======

func TestChatSendHandler(t *testing.T) {
	chat := newChatFixture(t)
	chat.poller.reply = replyMessage(romeReply)

	srv := New(
		config.ServerConfig{Address: ":0", ShutdownTimeout: 1000},
		chat.service,
		chat.trips,
		chat.index,
		&fakeSynthesizer{},
		map[string]HealthChecker{},
		logger.NewTestLogger(t),
	)
	f := &serverFixture{server: srv, trips: chat.trips, index: chat.index}

	rec := f.do(t, http.MethodPost, "/api/chat/send", chatSendRequest{
		UserID:  "u1",
		Message: "plan me a trip to Rome",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reply":"Here's your plan!"`)
	assert.Contains(t, rec.Body.String(), `"destination":"Rome"`)
}

func TestChatSendHandlerValidation(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/chat/send", chatSendRequest{UserID: "u1"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_REQUEST")
}
