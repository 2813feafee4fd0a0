// internal/tripdata/cost.go
package tripdata

import (
	"encoding/json"
	"math"
)

// NormalizeCost coerces a raw cost value of unknown shape into a
// non-negative amount. Plain numbers pass through, objects contribute
// their numeric "amount" field, everything else is 0. Currency is not
// interpreted here.
func NormalizeCost(raw interface{}) float64 {
	switch v := raw.(type) {
	case float64:
		return sanitizeAmount(v)
	case int:
		return sanitizeAmount(float64(v))
	case int64:
		return sanitizeAmount(float64(v))
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0
		}
		return sanitizeAmount(n)
	case map[string]interface{}:
		return NormalizeCost(v["amount"])
	default:
		return 0
	}
}

func sanitizeAmount(n float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return 0
	}
	return n
}
