package steps

import "math"

// Progress derives the 0-100 completion percentage for an admission record.
// A step only counts once every field it owns is complete; partially filled
// steps contribute nothing. Rounding is half-up because the resulting
// number is user visible and must match the historical behaviour exactly
// (one of eight steps reads 13, seven of eight reads 88).
func Progress(values Values) int {
	completed := 0
	for _, schema := range registry {
		if schema.Complete(values) {
			completed++
		}
	}
	return int(math.Floor(float64(completed*100)/float64(len(registry)) + 0.5))
}
