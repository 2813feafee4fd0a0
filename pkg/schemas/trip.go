// pkg/schemas/trip.go
package schemas

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"trip-os/internal/models"
)

// tripDocumentSchema guards the persistence boundary. The in-pipeline
// validator decides whether a mapped trip is usable at all; this
// schema additionally pins the document shape we are willing to store.
var tripDocumentSchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"destination", "duration", "days"},
	"properties": map[string]interface{}{
		"destination": map[string]interface{}{"type": "string", "minLength": 1},
		"duration":    map[string]interface{}{"type": "string", "minLength": 1},
		"totalBudget": map[string]interface{}{"type": "number", "minimum": 0},
		"currency":    map[string]interface{}{"type": "string"},
		"days": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items": map[string]interface{}{
				"type":     "object",
				"required": []string{"day", "date", "title", "events"},
				"properties": map[string]interface{}{
					"day":       map[string]interface{}{"type": "integer", "minimum": 1},
					"date":      map[string]interface{}{"type": "string", "minLength": 1},
					"title":     map[string]interface{}{"type": "string", "minLength": 1},
					"totalCost": map[string]interface{}{"type": "number"},
					"events": map[string]interface{}{
						"type":     "array",
						"minItems": 1,
						"items": map[string]interface{}{
							"type":     "object",
							"required": []string{"id", "time", "title", "type"},
							"properties": map[string]interface{}{
								"id":    map[string]interface{}{"type": "string", "minLength": 1},
								"time":  map[string]interface{}{"type": "string", "minLength": 1},
								"title": map[string]interface{}{"type": "string", "minLength": 1},
								"type": map[string]interface{}{
									"type": "string",
									"enum": []string{"activity", "food", "transport", "accommodation", "rest"},
								},
								"description": map[string]interface{}{"type": "string"},
								"location":    map[string]interface{}{"type": "string"},
								"cost":        map[string]interface{}{"type": "number", "minimum": 0},
								"duration":    map[string]interface{}{"type": "string"},
							},
						},
					},
				},
			},
		},
	},
}

// ValidateTripDocument checks a trip against the document schema and
// returns a single error listing every violation.
func ValidateTripDocument(trip *models.Trip) error {
	schemaLoader := gojsonschema.NewGoLoader(tripDocumentSchema)
	documentLoader := gojsonschema.NewGoLoader(trip)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return fmt.Errorf("trip document invalid: %s", strings.Join(violations, "; "))
}
