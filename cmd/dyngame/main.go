package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/ltvtools/dyngame/dynsys"
	"github.com/ltvtools/dyngame/lqr"
	"github.com/ltvtools/dyngame/scenario"
	"github.com/ltvtools/dyngame/simulate"
	"github.com/ltvtools/dyngame/trajplot"
)

var (
	configFile string
	preset     string
	plotPath   string
	noiseStd   float64
	seed       uint64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dyngame",
		Short: "linear and time-varying dynamics toolbox",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "scenario YAML file")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "double-integrator", "scenario preset when no config file is given")

	discretizeCmd := &cobra.Command{
		Use:   "discretize",
		Short: "print the discretized transition matrices under every method",
		RunE:  runDiscretize,
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "roll out the scenario under a finite-horizon LQR policy",
		RunE:  runSimulate,
	}
	simulateCmd.Flags().StringVar(&plotPath, "plot", "", "write an XY trajectory plot to this PNG file")
	simulateCmd.Flags().Float64Var(&noiseStd, "noise", 0, "process noise standard deviation")
	simulateCmd.Flags().Uint64Var(&seed, "seed", 1, "process noise seed")

	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "write the selected preset as a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadScenario()
			if err != nil {
				return err
			}
			return scenario.Save(args[0], cfg)
		},
	}

	rootCmd.AddCommand(discretizeCmd, simulateCmd, initCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadScenario() (*scenario.Config, error) {
	if configFile != "" {
		return scenario.Load(configFile)
	}
	build, ok := scenario.Presets[preset]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q", preset)
	}
	return build(), nil
}

func runDiscretize(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario()
	if err != nil {
		return err
	}
	cont, err := cfg.Continuous()
	if err != nil {
		return err
	}
	fmt.Printf("scenario %s, Ts = %v\n", cfg.Name, cfg.Ts)
	for _, method := range []dynsys.Method{dynsys.Euler, dynsys.Exact, dynsys.Augmented} {
		sampled, err := dynsys.Discretize(cont, cfg.Ts, method)
		if errors.Is(err, dynsys.ErrSingularDynamics) {
			fmt.Printf("\n%s: undefined, dynamics matrix is singular\n", method)
			continue
		}
		if err != nil {
			return err
		}
		fmt.Printf("\n%s:\nPhi =\n%v\nGamma =\n%v\n", method,
			mat.Formatted(sampled.SystemMatrix()), mat.Formatted(sampled.ControlMatrix()))
	}
	return nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario()
	if err != nil {
		return err
	}
	ltv, err := cfg.BuildLTV()
	if err != nil {
		return err
	}
	Q, R, Qf := cfg.CostMatrices()
	gains, err := lqr.Solve(ltv, Q, R, Qf)
	if err != nil {
		return err
	}

	var opts []simulate.Option
	if noiseStd > 0 {
		opts = append(opts, simulate.WithProcessNoise(noiseStd, seed))
	}
	tr, err := simulate.Rollout(ltv, cfg.InitialState(), lqr.NewRegulator(gains, nil), opts...)
	if err != nil {
		return err
	}

	lti, err := cfg.BuildLTI()
	if err != nil {
		return err
	}
	xy := lti.XYIndex()
	fmt.Printf("scenario %s: %d steps of %v s\n\n", cfg.Name, ltv.Horizon(), ltv.SamplingPeriod())
	fmt.Println(trajplot.Ascii(tr, xy[0], fmt.Sprintf("state[%d]", xy[0])))
	fmt.Println()
	fmt.Println(trajplot.Ascii(tr, xy[1], fmt.Sprintf("state[%d]", xy[1])))

	if plotPath != "" {
		if err := trajplot.SavePNG(plotPath, tr, xy); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", plotPath)
	}
	return nil
}
