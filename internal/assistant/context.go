// internal/assistant/context.go
package assistant

import (
	"encoding/json"
	"strings"

	"trip-os/internal/models"
)

// ContextUpdatePrefix frames serialized trip state pushed into the
// conversation so the assistant stays aware of out-of-band edits.
// Framed messages are hidden from history listings.
const ContextUpdatePrefix = "[CONTEXT_UPDATE]"

// BuildContextUpdate serializes the current trip into a framed
// context message.
func BuildContextUpdate(trip *models.Trip) (string, error) {
	encoded, err := json.Marshal(trip)
	if err != nil {
		return "", err
	}
	return ContextUpdatePrefix + " " + string(encoded), nil
}

// IsContextUpdate reports whether a message carries framed trip state
// rather than conversational text.
func IsContextUpdate(text string) bool {
	return strings.HasPrefix(text, ContextUpdatePrefix)
}
