package store

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-os/internal/common/logger"
	"trip-os/internal/models"
)

func newTestStore(t *testing.T) (*TripStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewTripStore(db, logger.NewTestLogger(t)), mock
}

func tripRows(trips ...models.Trip) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "destination", "title", "summary", "duration",
		"total_budget", "currency", "days", "budget", "logs", "created_at", "updated_at",
	})
	for _, trip := range trips {
		days, _ := json.Marshal(trip.Days)
		budget, _ := json.Marshal(trip.Budget)
		logs, _ := json.Marshal(trip.Logs)
		rows.AddRow(
			trip.ID, trip.UserID, trip.Destination, trip.Title, trip.Summary,
			trip.Duration, trip.TotalBudget, trip.Currency,
			days, budget, logs, trip.CreatedAt, trip.UpdatedAt,
		)
	}
	return rows
}

func sampleTrip() models.Trip {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return models.Trip{
		ID:          "t1",
		UserID:      "u1",
		Destination: "Rome",
		Title:       "Rome long weekend",
		Duration:    "2 days",
		TotalBudget: 500,
		Currency:    "EUR",
		Days: []models.TripDay{
			{Day: 1, Date: "Day 1", Title: "Arrival", Events: []models.TripEvent{
				{ID: "e1", Time: "09:00", Title: "Colosseum", Type: "activity", Cost: 20},
			}, TotalCost: 20},
		},
		Logs:      []models.TripLog{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateAssignsIdentity(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO trips")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	trip := sampleTrip()
	trip.ID = ""

	created, err := s.Create(context.Background(), &trip)
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	s, mock := newTestStore(t)
	want := sampleTrip()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + tripColumns + " FROM trips WHERE id = $1")).
		WithArgs("t1").
		WillReturnRows(tripRows(want))

	got, err := s.Get(context.Background(), "t1")
	require.NoError(t, err)

	assert.Equal(t, "Rome", got.Destination)
	require.Len(t, got.Days, 1)
	assert.Equal(t, "Colosseum", got.Days[0].Events[0].Title)
}

func TestGetNotFound(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + tripColumns + " FROM trips WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(tripRows())

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByUser(t *testing.T) {
	s, mock := newTestStore(t)

	first := sampleTrip()
	second := sampleTrip()
	second.ID = "t2"
	second.Destination = "Oslo"

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs("u1").
		WillReturnRows(tripRows(second, first))

	trips, err := s.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, "Oslo", trips[0].Destination)
	assert.Equal(t, "Rome", trips[1].Destination)
}

func TestPatchMergesFields(t *testing.T) {
	s, mock := newTestStore(t)
	existing := sampleTrip()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("t1").
		WillReturnRows(tripRows(existing))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE trips SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	patched, err := s.Patch(context.Background(), "t1", map[string]interface{}{
		"title":     "Rome, revised",
		"id":        "hijacked",
		"createdAt": "2000-01-01T00:00:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, "Rome, revised", patched.Title)
	assert.Equal(t, "t1", patched.ID, "id is not patchable")
	assert.Equal(t, existing.CreatedAt, patched.CreatedAt, "createdAt is not patchable")
	assert.True(t, patched.UpdatedAt.After(existing.UpdatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendLog(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("t1").
		WillReturnRows(tripRows(sampleTrip()))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE trips SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := s.AppendLog(context.Background(), "t1", "Added day 3 in Florence")
	require.NoError(t, err)

	require.Len(t, updated.Logs, 1)
	assert.Equal(t, "Added day 3 in Florence", updated.Logs[0].Message)
	assert.NotEmpty(t, updated.Logs[0].ID)
}

func TestDelete(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM trips WHERE id = $1")).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, s.Delete(context.Background(), "t1"))
}

func TestDeleteMissing(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM trips WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.Delete(context.Background(), "missing"), ErrNotFound)
}
