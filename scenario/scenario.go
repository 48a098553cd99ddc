// Package scenario loads and validates YAML descriptions of a linear
// control scenario: continuous dynamics matrices, sampling period, horizon,
// initial state, position indices and quadratic cost weights. It builds the
// dynsys objects the rest of the module consumes.
package scenario

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/ltvtools/dyngame/dynsys"
	"github.com/ltvtools/dyngame/gonumext"
)

const (
	DefaultTs      = 0.1
	DefaultHorizon = 50
)

// Config is the YAML representation of a scenario.
type Config struct {
	Name string `yaml:"name"`
	// A and B are the continuous dynamics, row by row.
	A [][]float64 `yaml:"a"`
	B [][]float64 `yaml:"b"`
	// Ts is the sampling period used when discretizing.
	Ts      float64 `yaml:"ts"`
	Horizon int     `yaml:"horizon"`
	// Method selects the discretization: euler, exact or augmented.
	Method  string    `yaml:"method"`
	X0      []float64 `yaml:"x0"`
	XYIndex []int     `yaml:"xy_index"`
	XIndex  []int     `yaml:"x_index,omitempty"`
	Cost    Cost      `yaml:"cost"`
}

// Cost holds diagonal quadratic weights: state, control and terminal.
type Cost struct {
	Q  []float64 `yaml:"q"`
	R  []float64 `yaml:"r"`
	Qf []float64 `yaml:"qf"`
}

// DoubleIntegrator returns the canonical double integrator scenario: state
// [position, velocity], a single force input. Its dynamics matrix is
// singular, so the exact inverse discretization is undefined for it and
// the default method is augmented.
func DoubleIntegrator() *Config {
	return &Config{
		Name:    "double-integrator",
		A:       [][]float64{{0, 1}, {0, 0}},
		B:       [][]float64{{0}, {1}},
		Ts:      DefaultTs,
		Horizon: DefaultHorizon,
		Method:  "augmented",
		X0:      []float64{1, 0},
		XYIndex: []int{0, 1},
		Cost: Cost{
			Q:  []float64{1, 1},
			R:  []float64{0.1},
			Qf: []float64{10, 10},
		},
	}
}

// DampedOscillator returns a damped harmonic oscillator scenario. Its
// dynamics matrix is invertible, so every discretization method applies.
func DampedOscillator() *Config {
	return &Config{
		Name:    "damped-oscillator",
		A:       [][]float64{{0, 1}, {-1, -0.2}},
		B:       [][]float64{{0}, {1}},
		Ts:      DefaultTs,
		Horizon: 100,
		Method:  "exact",
		X0:      []float64{1, 0},
		XYIndex: []int{0, 1},
		Cost: Cost{
			Q:  []float64{1, 1},
			R:  []float64{1},
			Qf: []float64{1, 1},
		},
	}
}

// Presets maps preset names to their constructors.
var Presets = map[string]func() *Config{
	"double-integrator": DoubleIntegrator,
	"damped-oscillator": DampedOscillator,
}

// Load reads and validates a scenario file, filling unset fields from the
// double integrator defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DoubleIntegrator()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("scenario: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the scenario as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks internal consistency of the scenario.
func (c *Config) Validate() error {
	nx := len(c.A)
	if nx == 0 {
		return fmt.Errorf("scenario %q: missing dynamics matrix", c.Name)
	}
	for i, row := range c.A {
		if len(row) != nx {
			return fmt.Errorf("scenario %q: a row %d has %d entries, want %d", c.Name, i, len(row), nx)
		}
	}
	if len(c.B) != nx {
		return fmt.Errorf("scenario %q: b has %d rows, want %d", c.Name, len(c.B), nx)
	}
	nu := len(c.B[0])
	for i, row := range c.B {
		if len(row) != nu {
			return fmt.Errorf("scenario %q: b row %d has %d entries, want %d", c.Name, i, len(row), nu)
		}
	}
	if c.Ts <= 0 {
		return fmt.Errorf("scenario %q: ts must be positive", c.Name)
	}
	if c.Horizon < 1 {
		return fmt.Errorf("scenario %q: horizon must be at least 1", c.Name)
	}
	if _, err := c.DiscretizeMethod(); err != nil {
		return err
	}
	if len(c.X0) != nx {
		return fmt.Errorf("scenario %q: x0 has length %d, want %d", c.Name, len(c.X0), nx)
	}
	if len(c.XYIndex) != 2 {
		return fmt.Errorf("scenario %q: xy_index needs exactly 2 entries", c.Name)
	}
	for _, id := range append(append([]int(nil), c.XYIndex...), c.XIndex...) {
		if id < 0 || id >= nx {
			return fmt.Errorf("scenario %q: state index %d outside [0, %d)", c.Name, id, nx)
		}
	}
	if len(c.Cost.Q) != nx || len(c.Cost.Qf) != nx {
		return fmt.Errorf("scenario %q: q and qf need %d weights", c.Name, nx)
	}
	if len(c.Cost.R) != nu {
		return fmt.Errorf("scenario %q: r needs %d weights", c.Name, nu)
	}
	return nil
}

// DiscretizeMethod parses the method field.
func (c *Config) DiscretizeMethod() (dynsys.Method, error) {
	switch c.Method {
	case "", "euler":
		return dynsys.Euler, nil
	case "exact":
		return dynsys.Exact, nil
	case "augmented":
		return dynsys.Augmented, nil
	}
	return 0, fmt.Errorf("scenario %q: unknown method %q", c.Name, c.Method)
}

// Continuous builds the continuous-time LinearSystem of the scenario.
func (c *Config) Continuous() (*dynsys.LinearSystem, error) {
	nx := len(c.A)
	nu := len(c.B[0])
	a := mat.NewDense(nx, nx, nil)
	for i, row := range c.A {
		a.SetRow(i, row)
	}
	b := mat.NewDense(nx, nu, nil)
	for i, row := range c.B {
		b.SetRow(i, row)
	}
	return dynsys.NewContinuousSystem(a, b)
}

// BuildLTV discretizes the scenario dynamics with its method and replicates
// the step across the horizon. A time-varying outer loop overwrites
// individual steps as it re-linearizes.
func (c *Config) BuildLTV() (*dynsys.LTVSystem, error) {
	cont, err := c.Continuous()
	if err != nil {
		return nil, err
	}
	method, err := c.DiscretizeMethod()
	if err != nil {
		return nil, err
	}
	step, err := dynsys.Discretize(cont, c.Ts, method)
	if err != nil {
		return nil, err
	}
	steps := make([]*dynsys.LinearSystem, c.Horizon)
	for k := range steps {
		steps[k] = step
	}
	return dynsys.NewLTVSystem(steps)
}

// BuildLTI discretizes the scenario dynamics and wraps them with the
// scenario's position indices.
func (c *Config) BuildLTI() (*dynsys.LTISystem, error) {
	cont, err := c.Continuous()
	if err != nil {
		return nil, err
	}
	method, err := c.DiscretizeMethod()
	if err != nil {
		return nil, err
	}
	step, err := dynsys.Discretize(cont, c.Ts, method)
	if err != nil {
		return nil, err
	}
	return dynsys.NewLTISystem(step, [2]int{c.XYIndex[0], c.XYIndex[1]}, c.XIndex)
}

// InitialState returns x0 as a vector.
func (c *Config) InitialState() *mat.VecDense {
	return mat.NewVecDense(len(c.X0), append([]float64(nil), c.X0...))
}

// CostMatrices expands the diagonal weights into full matrices.
func (c *Config) CostMatrices() (Q, R, Qf *mat.Dense) {
	return gonumext.Diag(c.Cost.Q), gonumext.Diag(c.Cost.R), gonumext.Diag(c.Cost.Qf)
}
