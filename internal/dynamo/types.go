package dynamo

// System is a first-order ODE dX/dt = f(X, t). Derive must not mutate x
// and reports invalid input or blown-up rates as errors.
type System interface {
	Derive(x State, t float64) (State, error)
	StateDim() int
}

// Hamiltonian systems expose their total energy.
type Hamiltonian interface {
	Energy(x State) float64
}

// Configurable systems expose named physical parameters.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Integrator advances x by a single step of size dt.
type Integrator interface {
	Step(sys System, x State, t, dt float64) (State, error)
}

// Metric accumulates a scalar over the frames of a run.
type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

// Config drives a batch run. Each frame integrates Horizon time units in
// sub-steps of Dt, mirroring one render tick of the live view.
type Config struct {
	Dt            float64
	Horizon       float64
	Duration      float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{Dt: 0.01, Horizon: 0.1, Duration: 10, ValidateState: true}
}

// Result holds the frame-boundary samples of a run. On failure it holds
// the frames completed before the error.
type Result struct {
	States      []State
	Times       []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}
