// internal/tts/briefing.go
package tts

import (
	"fmt"
	"strings"

	"trip-os/internal/models"
)

// BuildBriefing composes the spoken trip briefing. "Trip O S" is
// spelled out so the voice reads the product name letter by letter.
func BuildBriefing(trip *models.Trip) string {
	currency := trip.Currency
	if currency == "" {
		currency = "USD"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Welcome to your Trip O S briefing for %s. ", trip.Destination)
	fmt.Fprintf(&b, "You have a %d day journey ahead with a total budget of %g %s. ",
		len(trip.Days), trip.TotalBudget, currency)

	if len(trip.Days) > 0 {
		firstDay := trip.Days[0]
		fmt.Fprintf(&b, "On your first day, you'll be focusing on %s. ", firstDay.Title)
		if len(firstDay.Events) > 0 {
			fmt.Fprintf(&b, "Highlights include %s. ", firstDay.Events[0].Title)
		}
	}

	b.WriteString("I've optimized your itinerary for the best experience. Have a wonderful trip!")
	return b.String()
}
