// Package vector holds the dense-matrix helpers shared by the catalogue
// matchers and the embedding answerer.
package vector

import "math"

func Dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var s float32
	for i := 0; i < n; i++ {
		s += a[i] * b[i]
	}
	return s
}

// Normalize returns a unit-length copy of v. Zero vectors are returned as is.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		copy(out, v)
		return out
	}
	inv := float32(1 / math.Sqrt(sum))
	for i, x := range v {
		out[i] = x * inv
	}
	return out
}

func Cosine(a, b []float32) float32 {
	return Dot(Normalize(a), Normalize(b))
}

// SquaredDistance is the squared Euclidean distance between a and b.
func SquaredDistance(a, b []float32) float32 {
	var s float32
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func Add(a, b []float32) []float32 {
	out := make([]float32, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

// Nearest returns the row of unit-normalised matrix with the highest cosine
// similarity to q, preferring the lower row on ties. Returns -1 for an empty matrix.
func Nearest(q []float32, matrix [][]float32) (int, float32) {
	q = Normalize(q)
	best, bestScore := -1, float32(math.Inf(-1))
	for i, row := range matrix {
		if s := Dot(q, row); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best, bestScore
}
