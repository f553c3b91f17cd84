package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/san-kum/tanksim/internal/config"
	"github.com/san-kum/tanksim/internal/export"
	"github.com/san-kum/tanksim/internal/metrics"
	"github.com/san-kum/tanksim/internal/sim"
	"github.com/san-kum/tanksim/internal/trajectory"
	"github.com/san-kum/tanksim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	format    string
	plot      bool
	events    bool
	plotWidth int
	what      string
	outPath   string
)

type run struct {
	cfg     *config.Config
	sim     *sim.Simulator
	res     *sim.Result
	summary metrics.Summary
}

func simulate(cfg *config.Config) (*run, error) {
	s, err := cfg.NewSimulator(log)
	if err != nil {
		return nil, err
	}
	if err := s.Run(); err != nil {
		return nil, err
	}
	res, err := s.Result()
	if err != nil {
		return nil, err
	}
	return &run{
		cfg:     cfg,
		sim:     s,
		res:     res,
		summary: metrics.Compute(res, s.Schedule(), s.Limits()),
	}, nil
}

func (r *run) document() (*export.Document, error) {
	values, bounds, err := r.sim.Trajectory()
	if err != nil {
		return nil, err
	}
	return export.NewDocument(r.cfg.Integrator, r.res, values, bounds, &r.summary), nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	r, err := simulate(cfg)
	if err != nil {
		return err
	}

	switch format {
	case "csv":
		if events {
			return export.WriteEventsCSV(os.Stdout, r.res)
		}
		return export.WriteCSV(os.Stdout, r.res, r.sim.Schedule())
	case "json":
		doc, err := r.document()
		if err != nil {
			return err
		}
		return export.WriteJSON(os.Stdout, doc)
	case "text":
		printText(os.Stdout, r)
		return nil
	default:
		return fmt.Errorf("unknown format: %s (want text, csv or json)", format)
	}
}

func printText(w io.Writer, r *run) {
	title := "tank run"
	if preset != "" {
		title = preset
	}
	fmt.Fprintln(w, viz.Summary(title, r.summary, r.res.Stats, r.res.FF))

	if !plot {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, viz.PlotLevel(r.res, r.sim.Schedule(), plotWidth, 12))
	fmt.Fprintln(w)
	fmt.Fprintln(w, viz.PlotForcing(r.res, plotWidth, 6))
	fmt.Fprintln(w)

	last := len(r.res.T) - 1
	var cur trajectory.Cursor
	sp := r.sim.Schedule().SetpointAt(r.res.T[last], &cur)
	capacity := max(sp, 1.0)
	for _, v := range r.sim.Schedule().Values() {
		capacity = max(capacity, v)
	}
	for _, h := range r.res.H {
		capacity = max(capacity, h)
	}
	fmt.Fprintf(w, "t = %.2f  h = %.3f  setpoint = %.3f\n", r.res.T[last], r.res.H[last], sp)
	fmt.Fprint(w, viz.TankFrame(r.res.H[last], sp, 1.1*capacity, 16, 8))
	fmt.Fprintf(w, "level held at full forcing: %.3f\n", r.sim.Tank().Equilibrium(r.sim.Limits().High))
}

func exportScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	r, err := simulate(cfg)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch what {
	case "plant":
		return export.WriteCSV(w, r.res, r.sim.Schedule())
	case "events":
		return export.WriteEventsCSV(w, r.res)
	case "json":
		doc, err := r.document()
		if err != nil {
			return err
		}
		return export.WriteJSON(w, doc)
	case "svg":
		values, bounds, err := r.sim.Trajectory()
		if err != nil {
			return err
		}
		return export.WriteSVG(w, r.res, values, bounds, 800, 400)
	default:
		return fmt.Errorf("unknown artifact: %s (want plant, events, json or svg)", what)
	}
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"rk45", "rk4"}
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "integrator\tIAE\tfinal h\taccepted\trejected\tevaluations")
	for _, name := range args {
		c := cfg.Clone()
		c.Integrator = name
		r, err := simulate(c)
		if err != nil {
			fmt.Fprintf(tw, "%s\terror: %v\t\t\t\t\n", name, err)
			continue
		}
		st := r.res.Stats
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%d\t%d\t%d\n",
			name, r.summary.IAE, r.res.H[len(r.res.H)-1], st.Accepted, st.Rejected, st.Evaluations)
	}
	return tw.Flush()
}
