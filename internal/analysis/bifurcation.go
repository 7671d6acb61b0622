package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/dpsim/internal/dynamo"
)

// BifurcationPoint is the set of section values seen for one parameter
// value.
type BifurcationPoint struct {
	Param  float64
	Values []float64
}

// BifurcationDiagram sweeps paramName over [paramMin, paramMax] and, for
// each value, records the distinct values of stateIndex at the upward
// crossings of component 0 through zero. The first transient time units
// of every run are discarded. The original parameter is restored.
func BifurcationDiagram(
	sys dynamo.System,
	integ dynamo.Integrator,
	paramName string,
	paramMin, paramMax float64,
	paramSteps int,
	stateIndex int,
	x0 dynamo.State,
	dt, transient, record float64,
) ([]BifurcationPoint, error) {
	tunable, ok := sys.(dynamo.Configurable)
	if !ok {
		return nil, fmt.Errorf("system has no tunable parameters")
	}
	original, ok := tunable.GetParams()[paramName]
	if !ok {
		return nil, fmt.Errorf("unknown param: %s", paramName)
	}
	defer tunable.SetParam(paramName, original)

	if paramSteps < 2 {
		paramSteps = 2
	}
	paramStep := (paramMax - paramMin) / float64(paramSteps-1)

	results := make([]BifurcationPoint, 0, paramSteps)
	for i := 0; i < paramSteps; i++ {
		param := paramMin + float64(i)*paramStep
		if err := tunable.SetParam(paramName, param); err != nil {
			return results, err
		}

		var err error
		start := x0
		if transient > 0 {
			if start, err = dynamo.Advance(integ, sys, x0, 0, transient, dt); err != nil {
				return results, fmt.Errorf("%s=%g: %w", paramName, param, err)
			}
		}
		section, err := GeneratePoincareSection(sys, integ, start, 0, 0, stateIndex, stateIndex, dt, record)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", paramName, param, err)
		}

		values := make([]float64, 0, len(section.Points))
		seen := make(map[int]bool)
		for _, p := range section.Points {
			key := int(math.Round(p.X * 1000))
			if !seen[key] {
				seen[key] = true
				values = append(values, p.X)
			}
		}

		results = append(results, BifurcationPoint{Param: param, Values: values})
	}

	return results, nil
}

// BifurcationToASCII converts bifurcation data to ASCII art
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	points := make([]Point, 0, len(data))
	for i, p := range data {
		col := float64(i)
		for _, v := range p.Values {
			points = append(points, Point{X: col, Y: v})
		}
	}
	if len(points) == 0 {
		return ""
	}
	return PhasePortraitToASCII(&PhasePortrait2D{Points: points}, width, height)
}
