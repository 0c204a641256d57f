// Package similarity holds the vector math shared by the matchers.
package similarity

import "math"

// Cosine returns the cosine similarity of a and b in [-1,1]. Vectors of
// different or zero length and zero-norm vectors yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(-1, math.Min(1, cos))
}

// Clamp01 clamps x to [0,1]. NaN becomes 0.
func Clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}

// Score is Cosine clamped to [0,1]; negative similarity means no compatibility.
func Score(a, b []float32) float64 {
	return Clamp01(Cosine(a, b))
}
