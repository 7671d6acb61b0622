package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// State is a point in phase space. Methods never modify the receiver.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Distance is the Euclidean distance between two states of equal length.
func (s State) Distance(other State) float64 { return floats.Distance(s, other, 2) }
