// internal/store/trips.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trip-os/internal/common/logger"
	"trip-os/internal/models"
)

var (
	ErrNotFound     = errors.New("TRIP_NOT_FOUND")
	ErrInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrQueryFailed  = errors.New("DATABASE_QUERY_FAILED")
)

const tripColumns = `id, user_id, destination, title, summary, duration, total_budget, currency, days, budget, logs, created_at, updated_at`

// TripStore persists trip documents in Postgres. The itinerary, budget,
// and log history are stored as JSONB so the document shape can evolve
// without migrations; identity and timestamps are assigned here, never
// taken from the caller.
type TripStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewTripStore(db *sql.DB, log logger.Logger) *TripStore {
	return &TripStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "trip-store"}),
	}
}

// Create inserts a new trip document, assigning id and timestamps.
func (s *TripStore) Create(ctx context.Context, trip *models.Trip) (*models.Trip, error) {
	now := time.Now().UTC()
	trip.ID = uuid.NewString()
	trip.CreatedAt = now
	trip.UpdatedAt = now
	if trip.Logs == nil {
		trip.Logs = []models.TripLog{}
	}

	days, budget, logs, err := marshalDocumentFields(trip)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}

	query := `INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = s.db.ExecContext(ctx, query,
		trip.ID, trip.UserID, trip.Destination, trip.Title, trip.Summary,
		trip.Duration, trip.TotalBudget, trip.Currency,
		days, budget, logs, trip.CreatedAt, trip.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}

	s.logger.Info("trip created", map[string]interface{}{
		"tripId": trip.ID,
		"userId": trip.UserID,
	})
	return trip, nil
}

// Get returns one trip by id, or ErrNotFound.
func (s *TripStore) Get(ctx context.Context, id string) (*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return trip, nil
}

// ListByUser returns the user's trips, newest first.
func (s *TripStore) ListByUser(ctx context.Context, userID string) ([]models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	trips := []models.Trip{}
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}
		trips = append(trips, *trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return trips, nil
}

// Patch merges the given fields into the stored document and bumps
// updated_at. Identity and creation time are never patchable.
func (s *TripStore) Patch(ctx context.Context, id string, patch map[string]interface{}) (*models.Trip, error) {
	trip, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyPatch(trip, patch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	trip.UpdatedAt = time.Now().UTC()

	if err := s.write(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// AppendLog adds one line to the trip's change history.
func (s *TripStore) AppendLog(ctx context.Context, id, message string) (*models.Trip, error) {
	trip, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	trip.Logs = append(trip.Logs, models.TripLog{
		ID:        uuid.NewString(),
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
	trip.UpdatedAt = time.Now().UTC()

	if err := s.write(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// Delete removes a trip document.
func (s *TripStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TripStore) write(ctx context.Context, trip *models.Trip) error {
	days, budget, logs, err := marshalDocumentFields(trip)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	query := `UPDATE trips SET destination = $2, title = $3, summary = $4, duration = $5,
		total_budget = $6, currency = $7, days = $8, budget = $9, logs = $10, updated_at = $11
		WHERE id = $1`

	_, err = s.db.ExecContext(ctx, query,
		trip.ID, trip.Destination, trip.Title, trip.Summary, trip.Duration,
		trip.TotalBudget, trip.Currency, days, budget, logs, trip.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return nil
}

// applyPatch merges a partial document onto the trip via a JSON
// round-trip, dropping the fields the store owns.
func applyPatch(trip *models.Trip, patch map[string]interface{}) error {
	cleaned := make(map[string]interface{}, len(patch))
	for k, v := range patch {
		switch k {
		case "id", "userId", "createdAt", "updatedAt":
			continue
		}
		cleaned[k] = v
	}

	encoded, err := json.Marshal(cleaned)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, trip)
}

func marshalDocumentFields(trip *models.Trip) (days, budget, logs []byte, err error) {
	if days, err = json.Marshal(trip.Days); err != nil {
		return nil, nil, nil, err
	}
	if budget, err = json.Marshal(trip.Budget); err != nil {
		return nil, nil, nil, err
	}
	if logs, err = json.Marshal(trip.Logs); err != nil {
		return nil, nil, nil, err
	}
	return days, budget, logs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrip(row rowScanner) (*models.Trip, error) {
	var trip models.Trip
	var days, budget, logs []byte

	err := row.Scan(
		&trip.ID, &trip.UserID, &trip.Destination, &trip.Title, &trip.Summary,
		&trip.Duration, &trip.TotalBudget, &trip.Currency,
		&days, &budget, &logs, &trip.CreatedAt, &trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(days, &trip.Days); err != nil {
		return nil, err
	}
	if len(budget) > 0 && string(budget) != "null" {
		if err := json.Unmarshal(budget, &trip.Budget); err != nil {
			return nil, err
		}
	}
	if err := json.Unmarshal(logs, &trip.Logs); err != nil {
		return nil, err
	}
	return &trip, nil
}
