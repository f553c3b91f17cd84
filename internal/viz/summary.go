package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/tanksim/internal/metrics"
	"github.com/san-kum/tanksim/internal/sim"
)

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, MetricLabel.Render(label), MetricValue.Render(value))
}

// Summary renders the tracking metrics and solver statistics of a run.
func Summary(title string, s metrics.Summary, stats sim.Stats, ff []float64) string {
	var b strings.Builder
	b.WriteString(Title.Render(title) + "\n")
	b.WriteString(Separator(40) + "\n")

	b.WriteString(row("IAE", fmt.Sprintf("%.4f", s.IAE)) + "\n")
	b.WriteString(row("ISE", fmt.Sprintf("%.4f", s.ISE)) + "\n")
	b.WriteString(row("max |e|", fmt.Sprintf("%.4f", s.MaxAbsError)) + "\n")
	b.WriteString(row("final e", fmt.Sprintf("%.4f", s.FinalError)) + "\n")
	b.WriteString(row(fmt.Sprintf("in band ±%.1f", metrics.DefaultBand), fmt.Sprintf("%.1f%%", 100*s.InBand)) + "\n")
	b.WriteString(row("level", fmt.Sprintf("%.3f ± %.3f", s.MeanLevel, s.StdLevel)) + "\n")

	b.WriteString(Separator(40) + "\n")
	b.WriteString(row("updates", fmt.Sprintf("%d (%.1f/s)", s.Updates, s.UpdateRate)) + "\n")
	b.WriteString(row("effort", fmt.Sprintf("%.4f (peak %.3f)", s.ControlEffort, s.PeakForcing)) + "\n")
	b.WriteString(row("saturated", ProgressBar(s.SaturationRatio, 20)+fmt.Sprintf(" %.1f%%", 100*s.SaturationRatio)) + "\n")
	b.WriteString(row("forcing", Sparkline(ff, 30)) + "\n")

	b.WriteString(Separator(40) + "\n")
	b.WriteString(row("steps", fmt.Sprintf("%d accepted, %d rejected", stats.Accepted, stats.Rejected)) + "\n")
	b.WriteString(row("evaluations", fmt.Sprintf("%d", stats.Evaluations)))

	return Panel.Render(b.String())
}
