package utils

import "math"

// NormalizeL2 scales x in place to unit length. Zero vectors are left alone.
func NormalizeL2(x []float32) {
	var sumSq float64
	for _, v := range x {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sumSq))
	for i := range x {
		x[i] *= inv
	}
}
