// internal/tripdata/pipeline.go
package tripdata

import (
	"trip-os/internal/common/metrics"
	"trip-os/internal/models"
)

// Pipeline chains extraction, mapping, and validation over one
// assistant response.
type Pipeline struct {
	mapper    *Mapper
	validator *Validator
}

func NewPipeline(mapper *Mapper, validator *Validator) *Pipeline {
	return &Pipeline{mapper: mapper, validator: validator}
}

// Process returns the accepted trip, or nil when the reply carries no
// usable trip data, together with the display text (the reply with any
// embedded payload stripped).
func (p *Pipeline) Process(reply string, metadata interface{}) (*models.Trip, string) {
	displayText := StripPayload(reply)

	payload := ExtractTripPayload(reply, metadata)
	if payload == nil {
		metrics.RepliesExtracted.WithLabelValues("miss").Inc()
		return nil, displayText
	}
	metrics.RepliesExtracted.WithLabelValues("hit").Inc()

	trip := p.mapper.MapTrip(payload)
	if trip == nil {
		metrics.TripsMapped.WithLabelValues("failed").Inc()
		return nil, displayText
	}
	metrics.TripsMapped.WithLabelValues("mapped").Inc()

	if !p.validator.Validate(trip) {
		metrics.TripsValidated.WithLabelValues("rejected").Inc()
		return nil, displayText
	}
	metrics.TripsValidated.WithLabelValues("accepted").Inc()

	return trip, displayText
}
