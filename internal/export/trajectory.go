package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Sample is one recorded frame with its derived geometry.
type Sample struct {
	Time   float64 `json:"t"`
	Phi1   float64 `json:"phi1"`
	Phi2   float64 `json:"phi2"`
	Omega1 float64 `json:"omega1"`
	Omega2 float64 `json:"omega2"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Energy float64 `json:"energy"`
}

// Trajectory derives positions and energy for every state of a result.
func Trajectory(result *dynamo.Result, sys *physics.DoublePendulum, pivot r2.Vec) ([]Sample, error) {
	if len(result.States) != len(result.Times) {
		return nil, fmt.Errorf("%w: %d states, %d times", dynamo.ErrDimensionMismatch, len(result.States), len(result.Times))
	}

	samples := make([]Sample, len(result.States))
	for i, x := range result.States {
		s, err := physics.StateFromVector(x)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		b1, b2 := physics.Positions(sys.Params, s, pivot)
		samples[i] = Sample{
			Time: result.Times[i],
			Phi1: s.Phi1, Phi2: s.Phi2,
			Omega1: s.Omega1, Omega2: s.Omega2,
			X1: b1.X, Y1: b1.Y,
			X2: b2.X, Y2: b2.Y,
			Energy: sys.Energy(x),
		}
	}
	return samples, nil
}

var csvHeader = []string{"t", "phi1", "phi2", "omega1", "omega2", "x1", "y1", "x2", "y2", "energy"}

func WriteCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	row := make([]string, len(csvHeader))
	for _, s := range samples {
		for i, v := range []float64{s.Time, s.Phi1, s.Phi2, s.Omega1, s.Omega2, s.X1, s.Y1, s.X2, s.Y2, s.Energy} {
			row[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Run is the JSON document written for a batch run.
type Run struct {
	Params      physics.Params     `json:"params"`
	Gravity     float64            `json:"gravity"`
	Integrator  string             `json:"integrator"`
	Step        float64            `json:"step"`
	Horizon     float64            `json:"horizon"`
	Duration    float64            `json:"duration"`
	Frames      int                `json:"frames"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
	Samples     []Sample           `json:"samples"`
}

func WriteJSON(w io.Writer, run *Run) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(run)
}
