// internal/tripdata/day.go
package tripdata

import (
	"fmt"
	"regexp"
	"strconv"

	"trip-os/internal/models"
)

var firstIntPattern = regexp.MustCompile(`\d+`)

// MapDay converts one raw day object at positional index into a
// canonical record, delegating each event to MapEvent.
func MapDay(raw map[string]interface{}, index int) models.TripDay {
	dayNumber := deriveDayNumber(raw, index)

	events := mapEvents(rawValue(raw, "events"))

	totalCost, trusted := numericField(raw, "totalCost")
	if !trusted {
		totalCost = sumCosts(events)
	}

	return models.TripDay{
		Day:       dayNumber,
		Date:      deriveDayDate(raw, dayNumber),
		Title:     deriveDayTitle(raw),
		Events:    events,
		TotalCost: totalCost,
	}
}

// deriveDayNumber resolves the 1-based day index, in priority order:
// numeric day field, first integer in the label, first integer in the
// id, then positional index + 1.
func deriveDayNumber(raw map[string]interface{}, index int) int {
	if n, ok := numericField(raw, "day"); ok {
		return int(n)
	}
	if n, ok := firstIntIn(rawValue(raw, "label")); ok {
		return n
	}
	if n, ok := firstIntIn(rawValue(raw, "id")); ok {
		return n
	}
	return index + 1
}

func deriveDayTitle(raw map[string]interface{}) string {
	for _, key := range []string{"title", "focus", "label"} {
		if s, ok := rawValue(raw, key).(string); ok && s != "" {
			return s
		}
	}
	return DefaultDayTitle
}

func deriveDayDate(raw map[string]interface{}, dayNumber int) string {
	for _, key := range []string{"date", "label"} {
		if s, ok := rawValue(raw, key).(string); ok && s != "" {
			return s
		}
	}
	return fmt.Sprintf("Day %d", dayNumber)
}

func mapEvents(raw interface{}) []models.TripEvent {
	list, ok := raw.([]interface{})
	if !ok {
		return []models.TripEvent{}
	}
	events := make([]models.TripEvent, 0, len(list))
	for _, item := range list {
		m, _ := item.(map[string]interface{})
		events = append(events, MapEvent(m))
	}
	return events
}

func sumCosts(events []models.TripEvent) float64 {
	var total float64
	for _, e := range events {
		total += e.Cost
	}
	return total
}

// numericField reads raw[key] as a float64 when the value is numeric.
func numericField(raw map[string]interface{}, key string) (float64, bool) {
	switch v := rawValue(raw, key).(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// firstIntIn extracts the first integer substring from a string value.
func firstIntIn(raw interface{}) (int, bool) {
	s, ok := raw.(string)
	if !ok {
		return 0, false
	}
	match := firstIntPattern.FindString(s)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}
