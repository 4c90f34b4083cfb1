package domain

import "math"

// Round2 rounds a money amount to the nearest cent.
func Round2(n float64) float64 {
	return math.Round(n*100) / 100
}
