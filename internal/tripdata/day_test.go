package tripdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapDayNumberInference(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]interface{}
		index    int
		expected int
	}{
		{
			name:     "numeric day field wins",
			raw:      map[string]interface{}{"day": 5.0, "label": "Day 2"},
			index:    0,
			expected: 5,
		},
		{
			name:     "label digits",
			raw:      map[string]interface{}{"label": "Day 3"},
			index:    0,
			expected: 3,
		},
		{
			name:     "id digits",
			raw:      map[string]interface{}{"id": "day-7-tokyo"},
			index:    0,
			expected: 7,
		},
		{
			name:     "positional fallback",
			raw:      map[string]interface{}{"title": "Arrival"},
			index:    2,
			expected: 3,
		},
		{
			name:     "non-numeric label falls through to index",
			raw:      map[string]interface{}{"label": "Arrival day"},
			index:    0,
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := MapDay(tt.raw, tt.index)
			assert.Equal(t, tt.expected, day.Day)
		})
	}
}

func TestMapDayTitleFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]interface{}
		expected string
	}{
		{"title wins", map[string]interface{}{"title": "Old Town", "focus": "Food"}, "Old Town"},
		{"focus second", map[string]interface{}{"focus": "Food"}, "Food"},
		{"label third", map[string]interface{}{"label": "Day 1"}, "Day 1"},
		{"fixed fallback", map[string]interface{}{}, DefaultDayTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapDay(tt.raw, 0).Title)
		})
	}
}

func TestMapDayDateFallbacks(t *testing.T) {
	assert.Equal(t, "2026-09-01", MapDay(map[string]interface{}{"date": "2026-09-01"}, 0).Date)
	assert.Equal(t, "Day 4", MapDay(map[string]interface{}{"label": "Day 4"}, 0).Date)
	assert.Equal(t, "Day 1", MapDay(map[string]interface{}{}, 0).Date)
}

func TestMapDayTotalCost(t *testing.T) {
	events := []interface{}{
		map[string]interface{}{"id": "e1", "cost": 30.0},
		map[string]interface{}{"id": "e2", "cost": 20.0},
	}

	t.Run("computed from events when absent", func(t *testing.T) {
		day := MapDay(map[string]interface{}{"events": events}, 0)
		assert.Equal(t, 50.0, day.TotalCost)
	})

	t.Run("trusted when numeric", func(t *testing.T) {
		day := MapDay(map[string]interface{}{"events": events, "totalCost": 75.0}, 0)
		assert.Equal(t, 75.0, day.TotalCost)
	})

	t.Run("non-numeric declared total is recomputed", func(t *testing.T) {
		day := MapDay(map[string]interface{}{"events": events, "totalCost": "lots"}, 0)
		assert.Equal(t, 50.0, day.TotalCost)
	})
}

func TestMapDayEvents(t *testing.T) {
	day := MapDay(map[string]interface{}{
		"events": []interface{}{
			map[string]interface{}{"id": "a", "title": "First"},
			"not an object",
			map[string]interface{}{"id": "b", "title": "Second"},
		},
	}, 0)

	require.Len(t, day.Events, 3)
	assert.Equal(t, "First", day.Events[0].Title)
	assert.Equal(t, DefaultEventTitle, day.Events[1].Title)
	assert.Equal(t, "Second", day.Events[2].Title)
}

func TestMapDayNoEvents(t *testing.T) {
	day := MapDay(map[string]interface{}{"day": 1.0}, 0)
	assert.NotNil(t, day.Events)
	assert.Empty(t, day.Events)
}
