package main

import (
	"fmt"
	"os"

	"github.com/san-kum/tanksim/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	debug bool
	log   = zap.NewNop().Sugar()
)

// main registers the commands and exits with status 1 if one fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "tanksim",
		Short:         "PID-controlled tank level simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !debug {
				return nil
			}
			l, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			log = l.Sugar()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = log.Sync()
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scenario and print the result",
		Args:  cobra.NoArgs,
		RunE:  runScenario,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().StringVar(&format, "format", "text", "output format: text, csv or json")
	runCmd.Flags().BoolVar(&plot, "plot", false, "draw level and forcing charts (text format)")
	runCmd.Flags().BoolVar(&events, "events", false, "write the controller trace instead of the plant trace (csv format)")
	runCmd.Flags().IntVar(&plotWidth, "width", 80, "chart width")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "run a scenario and write one artifact to a file",
		Args:  cobra.NoArgs,
		RunE:  exportScenario,
	}
	addScenarioFlags(exportCmd)
	exportCmd.Flags().StringVar(&what, "what", "plant", "artifact: plant, events, json or svg")
	exportCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search controller gains by tracking error",
		Args:  cobra.NoArgs,
		RunE:  tuneScenario,
	}
	addScenarioFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&sweeps, "sweep", []string{"kp=0.5:20:8", "ki=0:2:5"}, "gain range as name=lo:hi:n")
	tuneCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (default GOMAXPROCS)")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "run one scenario with several integrators",
		RunE:  compareIntegrators,
	}
	addScenarioFlags(compareCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available scenario presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-12s kp=%g ki=%g kd=%g setpoints=%v t=[%g, %g)\n",
					name, p.PID.Kp, p.PID.Ki, p.PID.Kd, p.Trajectory.Values, p.Time.Start, p.Time.End)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, exportCmd, tuneCmd, compareCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
