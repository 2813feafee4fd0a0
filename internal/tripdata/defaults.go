// internal/tripdata/defaults.go
package tripdata

// Ambient defaults applied during mapping. Lifted into named constants
// so tests can assert against them instead of literals.
const (
	DefaultEventTime        = "00:00"
	DefaultEventTitle       = "Untitled Event"
	DefaultEventDescription = ""
	DefaultEventLocation    = ""
	DefaultEventDuration    = "1h"

	DefaultDayTitle = "Daily Itinerary"

	DefaultDestination  = "Unknown Destination"
	DefaultCurrency     = "USD"
	DefaultTripDuration = "0 days"

	// DefaultBudgetTolerance is the reconciliation dead zone: itemized
	// costs within one currency unit of the stated budget pass unscaled.
	DefaultBudgetTolerance = 1.0

	// DefaultStrippedReply replaces a reply that was nothing but payload.
	DefaultStrippedReply = "I've updated your itinerary."
)

// CategoryActivity and friends form the closed event category set.
const (
	CategoryActivity      = "activity"
	CategoryFood          = "food"
	CategoryTransport     = "transport"
	CategoryAccommodation = "accommodation"
	CategoryRest          = "rest"
)
