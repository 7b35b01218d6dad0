package random

import (
	"math"
	"math/rand"
	"time"
)

// Randomize applies ±percent randomization to value
// Example: Randomize(100, 1.0) returns value in range [99, 101]
func Randomize(value float64, percent float64) float64 {
	if percent <= 0 {
		return value
	}

	// Calculate variance
	variance := value * (percent / 100.0)

	// Generate random offset in range [-variance, +variance]
	offset := (rand.Float64()*2 - 1) * variance

	// Apply offset and round to reasonable precision
	result := value + offset
	return math.Round(result*100) / 100
}

// Jitter applies ±percent randomization to a duration, never below zero
func Jitter(d time.Duration, percent float64) time.Duration {
	if d <= 0 {
		return d
	}
	result := time.Duration(Randomize(float64(d), percent))
	if result < 0 {
		return 0
	}
	return result
}
