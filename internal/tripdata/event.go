// internal/tripdata/event.go
package tripdata

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"trip-os/internal/models"
)

// eventTypeSynonyms maps raw type strings to canonical categories.
// Unlisted inputs fall back to CategoryActivity.
var eventTypeSynonyms = map[string]string{
	"food":       CategoryFood,
	"restaurant": CategoryFood,
	"dining":     CategoryFood,

	"transport": CategoryTransport,
	"flight":    CategoryTransport,
	"train":     CategoryTransport,
	"bus":       CategoryTransport,
	"taxi":      CategoryTransport,

	"accommodation": CategoryAccommodation,
	"hotel":         CategoryAccommodation,
	"stay":          CategoryAccommodation,

	"activity": CategoryActivity,
}

// NormalizeEventType lower-cases a raw type value and resolves it
// through the synonym table.
func NormalizeEventType(raw interface{}) string {
	s, ok := raw.(string)
	if !ok {
		return CategoryActivity
	}
	if canonical, ok := eventTypeSynonyms[strings.ToLower(strings.TrimSpace(s))]; ok {
		return canonical
	}
	return CategoryActivity
}

// MapEvent converts one raw assistant-supplied event into a canonical
// record, applying defaults for every absent field. Missing ids get a
// generated UUID so downstream consumers can rely on them as keys.
func MapEvent(raw map[string]interface{}) models.TripEvent {
	return models.TripEvent{
		ID:          stringField(raw, "id", uuid.NewString()),
		Type:        NormalizeEventType(rawValue(raw, "type")),
		Time:        stringField(raw, "time", DefaultEventTime),
		Title:       stringField(raw, "title", DefaultEventTitle),
		Description: stringField(raw, "description", DefaultEventDescription),
		Location:    stringField(raw, "location", DefaultEventLocation),
		Cost:        NormalizeCost(rawValue(raw, "cost")),
		Duration:    stringField(raw, "duration", DefaultEventDuration),
	}
}

func rawValue(raw map[string]interface{}, key string) interface{} {
	if raw == nil {
		return nil
	}
	return raw[key]
}

// stringField coerces raw[key] to a string, falling back when the
// field is absent, empty, or not representable.
func stringField(raw map[string]interface{}, key, fallback string) string {
	v := rawValue(raw, key)
	switch s := v.(type) {
	case string:
		if s == "" {
			return fallback
		}
		return s
	case float64, int, int64:
		return fmt.Sprintf("%v", s)
	default:
		return fallback
	}
}
