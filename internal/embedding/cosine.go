package embedding

import "math"

// cosineEpsilon keeps the denominator positive for zero vectors.
const cosineEpsilon = 1e-12

// Cosine returns the cosine similarity of a and b. Callers pass vectors of equal
// length; a longer vector only contributes its extra entries to its norm.
func Cosine(a, b Vector) float64 {
	n := min(len(a), len(b))
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
	}
	for _, x := range a {
		normA += float64(x) * float64(x)
	}
	for _, y := range b {
		normB += float64(y) * float64(y)
	}
	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + cosineEpsilon)
}

// Percent converts a similarity to an integer percentage in [0, 100],
// rounding half to even.
func Percent(similarity float64) int {
	if math.IsNaN(similarity) {
		return 0
	}
	p := int(math.RoundToEven(similarity * 100))
	return max(0, min(100, p))
}
