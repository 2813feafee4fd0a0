// internal/tripdata/trip.go
package tripdata

import (
	"fmt"
	"math"

	"trip-os/internal/common/logger"
	"trip-os/internal/common/metrics"
	"trip-os/internal/models"
)

// MapperConfig holds tuning knobs for trip mapping.
type MapperConfig struct {
	// BudgetTolerance is the maximum allowed gap between itemized costs
	// and the stated budget before reconciliation rescales every event.
	BudgetTolerance float64
}

// Mapper converts raw assistant payloads into canonical trips.
type Mapper struct {
	config *MapperConfig
	logger logger.Logger
}

func NewMapper(config *MapperConfig, log logger.Logger) *Mapper {
	if config == nil {
		config = &MapperConfig{}
	}
	if config.BudgetTolerance <= 0 {
		config.BudgetTolerance = DefaultBudgetTolerance
	}
	return &Mapper{
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "trip-mapper"}),
	}
}

// MapTrip converts a raw trip payload into a canonical Trip, or nil
// when the input is not an object or mapping fails. The mapper never
// panics outward; the assistant is an untrusted, approximate source
// and a broken payload just means "no usable trip data".
func (m *Mapper) MapTrip(raw interface{}) (trip *models.Trip) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("trip mapping panicked", map[string]interface{}{
				"panic": fmt.Sprintf("%v", r),
			})
			trip = nil
		}
	}()

	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}

	budget, _ := rawValue(obj, "budget").(map[string]interface{})

	currency := stringField(budget, "currency", "")
	if currency == "" {
		currency = stringField(obj, "currency", DefaultCurrency)
	}

	totalBudget, ok := numericField(budget, "total")
	if !ok {
		totalBudget, _ = numericField(obj, "totalBudget")
	}

	days := mapDays(rawValue(obj, "days"))

	trip = &models.Trip{
		Destination: stringField(obj, "destination", DefaultDestination),
		Duration:    deriveDuration(obj, len(days)),
		TotalBudget: totalBudget,
		Currency:    currency,
		Days:        days,
	}

	m.reconcileBudget(trip)
	return trip
}

func mapDays(raw interface{}) []models.TripDay {
	list, ok := raw.([]interface{})
	if !ok {
		return []models.TripDay{}
	}
	days := make([]models.TripDay, 0, len(list))
	for i, item := range list {
		d, _ := item.(map[string]interface{})
		days = append(days, MapDay(d, i))
	}
	return days
}

func deriveDuration(raw map[string]interface{}, dayCount int) string {
	if s := stringField(raw, "duration", ""); s != "" {
		return s
	}
	if dayCount > 0 {
		return fmt.Sprintf("%d days", dayCount)
	}
	return DefaultTripDuration
}

// reconcileBudget rescales every event cost uniformly so the itemized
// sum matches the stated budget, then recomputes the day totals. Costs
// already within tolerance, or trips without a positive budget and a
// positive itemized sum, pass through unscaled.
func (m *Mapper) reconcileBudget(trip *models.Trip) {
	var actualTotal float64
	for _, day := range trip.Days {
		for _, event := range day.Events {
			actualTotal += event.Cost
		}
	}

	if actualTotal <= 0 || trip.TotalBudget <= 0 {
		return
	}
	if math.Abs(actualTotal-trip.TotalBudget) <= m.config.BudgetTolerance {
		return
	}

	scale := trip.TotalBudget / actualTotal
	metrics.BudgetScaleFactor.Observe(scale)
	m.logger.Debug("rescaling event costs", map[string]interface{}{
		"actualTotal": actualTotal,
		"totalBudget": trip.TotalBudget,
		"scale":       scale,
	})

	for di := range trip.Days {
		var dayTotal float64
		for ei := range trip.Days[di].Events {
			scaled := math.Round(trip.Days[di].Events[ei].Cost * scale)
			trip.Days[di].Events[ei].Cost = scaled
			dayTotal += scaled
		}
		trip.Days[di].TotalCost = dayTotal
	}
}
