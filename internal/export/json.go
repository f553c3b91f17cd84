package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/tanksim/internal/metrics"
	"github.com/san-kum/tanksim/internal/sim"
)

type Document struct {
	Integrator string           `json:"integrator,omitempty"`
	Trajectory TrajectorySeries `json:"trajectory"`
	Plant      PlantSeries      `json:"plant"`
	Controller ControllerSeries `json:"controller"`
	Stats      sim.Stats        `json:"stats"`
	Summary    *metrics.Summary `json:"summary,omitempty"`
}

type TrajectorySeries struct {
	Values     []float64 `json:"values"`
	Boundaries []float64 `json:"boundaries"`
}

type PlantSeries struct {
	T []float64 `json:"t"`
	H []float64 `json:"h"`
}

type ControllerSeries struct {
	T []float64 `json:"t"`
	E []float64 `json:"e"`
	F []float64 `json:"f"`
}

// NewDocument collects a finished run into an exportable document.
func NewDocument(integrator string, res *sim.Result, values, boundaries []float64, summary *metrics.Summary) *Document {
	return &Document{
		Integrator: integrator,
		Trajectory: TrajectorySeries{Values: values, Boundaries: boundaries},
		Plant:      PlantSeries{T: res.T, H: res.H},
		Controller: ControllerSeries{T: res.TT, E: res.EE, F: res.FF},
		Stats:      res.Stats,
		Summary:    summary,
	}
}

func WriteJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
