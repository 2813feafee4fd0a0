package tripdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTripPayloadFromMetadata(t *testing.T) {
	metadata := map[string]interface{}{
		"type":        "trip",
		"destination": "Lisbon",
	}

	payload := ExtractTripPayload("ignored reply", metadata)
	require.NotNil(t, payload)
	assert.Equal(t, "Lisbon", payload["destination"])
}

func TestExtractTripPayloadSkipsTextMetadata(t *testing.T) {
	metadata := map[string]interface{}{"type": "text"}

	payload := ExtractTripPayload(`{"destination":"Rome"}`, metadata)
	require.NotNil(t, payload)
	assert.Equal(t, "Rome", payload["destination"], "falls through to the reply")
}

func TestExtractTripPayloadEmbeddedJSON(t *testing.T) {
	reply := `Here's your updated plan: {"destination":"Kyoto","days":[]} enjoy!`

	payload := ExtractTripPayload(reply, nil)
	require.NotNil(t, payload)
	assert.Equal(t, "Kyoto", payload["destination"])
}

func TestExtractTripPayloadWholeReply(t *testing.T) {
	payload := ExtractTripPayload(`{"destination":"Oslo"}`, nil)
	require.NotNil(t, payload)
	assert.Equal(t, "Oslo", payload["destination"])
}

func TestExtractTripPayloadNoPayload(t *testing.T) {
	assert.Nil(t, ExtractTripPayload("Sounds like a great idea!", nil))
	assert.Nil(t, ExtractTripPayload("", nil))
	assert.Nil(t, ExtractTripPayload("broken { json", nil))
	assert.Nil(t, ExtractTripPayload("[1, 2, 3]", nil), "arrays are not trip payloads")
}

func TestStripPayload(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text untouched",
			input:    "Sounds like a great idea!",
			expected: "Sounds like a great idea!",
		},
		{
			name:     "fenced block removed",
			input:    "Updated! ```json\n{\"destination\":\"Rome\"}\n```",
			expected: "Updated!",
		},
		{
			name:     "bare trailing json removed",
			input:    "Here you go: {\"destination\":\"Rome\"}",
			expected: "Here you go:",
		},
		{
			name:     "payload-only reply becomes acknowledgement",
			input:    `{"destination":"Rome"}`,
			expected: DefaultStrippedReply,
		},
		{
			name:     "empty reply becomes acknowledgement",
			input:    "",
			expected: DefaultStrippedReply,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripPayload(tt.input))
		})
	}
}
