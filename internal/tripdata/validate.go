// internal/tripdata/validate.go
package tripdata

import (
	"fmt"

	"trip-os/internal/common/logger"
	"trip-os/internal/models"
)

// Validator is the structural gate in front of application state.
// A trip that fails any check is discarded wholesale; there is no
// partial acceptance.
type Validator struct {
	logger logger.Logger
}

func NewValidator(log logger.Logger) *Validator {
	return &Validator{
		logger: log.WithFields(map[string]interface{}{"component": "trip-validator"}),
	}
}

// Validate reports whether the trip satisfies every structural
// invariant. The first failing field is logged for diagnostics.
func (v *Validator) Validate(trip *models.Trip) bool {
	if reason := checkTrip(trip); reason != "" {
		v.logger.Warn("trip rejected", map[string]interface{}{"reason": reason})
		return false
	}
	return true
}

func checkTrip(trip *models.Trip) string {
	if trip == nil {
		return "trip is nil"
	}
	if trip.Destination == "" {
		return "destination is empty"
	}
	if trip.Duration == "" {
		return "duration is empty"
	}
	if len(trip.Days) == 0 {
		return "days is empty"
	}

	for i, day := range trip.Days {
		if reason := checkDay(day); reason != "" {
			return fmt.Sprintf("day %d: %s", i, reason)
		}
	}
	return ""
}

func checkDay(day models.TripDay) string {
	if day.Day == 0 {
		return "day number is missing"
	}
	if day.Date == "" {
		return "date is empty"
	}
	if day.Title == "" {
		return "title is empty"
	}
	if len(day.Events) == 0 {
		return "events is empty"
	}

	for i, event := range day.Events {
		if reason := checkEvent(event); reason != "" {
			return fmt.Sprintf("event %d: %s", i, reason)
		}
	}
	return ""
}

func checkEvent(event models.TripEvent) string {
	if event.ID == "" {
		return "id is empty"
	}
	if event.Time == "" {
		return "time is empty"
	}
	if event.Title == "" {
		return "title is empty"
	}
	if event.Type == "" {
		return "type is empty"
	}
	return ""
}
