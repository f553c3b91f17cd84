package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/tanksim/internal/sim"
	"github.com/san-kum/tanksim/internal/trajectory"
)

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteCSV writes the dense plant trace, one row per output time. When sched
// is non-nil a setpoint column is added.
func WriteCSV(w io.Writer, res *sim.Result, sched *trajectory.Schedule) error {
	cw := csv.NewWriter(w)

	header := []string{"t", "h"}
	if sched != nil {
		header = append(header, "setpoint")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	var c trajectory.Cursor
	row := make([]string, len(header))
	for i, t := range res.T {
		row[0] = ftoa(t)
		row[1] = ftoa(res.H[i])
		if sched != nil {
			row[2] = ftoa(sched.SetpointAt(t, &c))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteEventsCSV writes the controller trace, one row per fired update.
func WriteEventsCSV(w io.Writer, res *sim.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"t", "error", "forcing"}); err != nil {
		return err
	}
	for i := range res.TT {
		if err := cw.Write([]string{ftoa(res.TT[i]), ftoa(res.EE[i]), ftoa(res.FF[i])}); err != nil {
			return fmt.Errorf("write event %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
