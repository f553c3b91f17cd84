package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/tanksim/internal/optim"
	"github.com/spf13/cobra"
)

var (
	sweeps  []string
	workers int
)

// parseSweep reads "name=lo:hi:n" into a gain name and its grid.
func parseSweep(s string) (string, []float64, error) {
	name, rng, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("bad sweep %q: want name=lo:hi:n", s)
	}
	parts := strings.Split(rng, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("bad sweep %q: want name=lo:hi:n", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("bad sweep %q: %w", s, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("bad sweep %q: %w", s, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("bad sweep %q: count must be a positive integer", s)
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func tuneScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(sweeps))
	ranges := make([][]float64, 0, len(sweeps))
	for _, s := range sweeps {
		name, grid, err := parseSweep(s)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, grid)
	}

	g := optim.NewGridSearch(names, ranges).WithWorkers(workers)
	res, err := g.Search(cmd.Context(), optim.IAEObjective(cfg, log))
	if err != nil {
		return err
	}

	ranked := make([]optim.Candidate, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		if c.Err == nil {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score < ranked[j].Score })

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tIAE\n", strings.Join(names, "\t"))
	for i, c := range ranked {
		if i == 10 {
			break
		}
		for _, n := range names {
			fmt.Fprintf(tw, "%.4g\t", c.Params[n])
		}
		fmt.Fprintf(tw, "%.4f\n", c.Score)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d candidates, %d failed\n", len(res.Candidates), res.Failed)
	return nil
}
