package strategy

import "math"

// DefaultLevelTolerance is the absolute price distance within which a level counts as touched.
const DefaultLevelTolerance = 1.0

// NearLevels returns the levels within tolerance of price, in configuration order.
func NearLevels(price float64, levels []float64, tolerance float64) []float64 {
	var near []float64
	for _, lv := range levels {
		if math.Abs(price-lv) <= tolerance {
			near = append(near, lv)
		}
	}
	return near
}
