package optim

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/san-kum/tanksim/internal/config"
	"github.com/san-kum/tanksim/internal/dynamo"
)

func TestGridSearch_Points(t *testing.T) {
	g := NewGridSearch([]string{"kp", "ki"}, [][]float64{{1, 2, 3}, {0.1, 0.2}})
	pts := g.Points()
	if len(pts) != 6 {
		t.Fatalf("expected 6 points, got %d", len(pts))
	}
	if pts[0]["kp"] != 1 || pts[0]["ki"] != 0.1 || pts[5]["kp"] != 3 || pts[5]["ki"] != 0.2 {
		t.Errorf("unexpected ordering: %v", pts)
	}
}

func TestGridSearch_FindsMinimum(t *testing.T) {
	g := NewGridSearch([]string{"x", "y"}, [][]float64{Linspace(-2, 2, 9), Linspace(-2, 2, 9)}).WithWorkers(4)

	var calls atomic.Int32
	res, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		calls.Add(1)
		return math.Pow(p["x"]-1, 2) + math.Pow(p["y"]+0.5, 2), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 81 {
		t.Errorf("expected 81 evaluations, got %d", calls.Load())
	}
	if res.Best.Params["x"] != 1 || res.Best.Params["y"] != -0.5 {
		t.Errorf("unexpected best %v", res.Best.Params)
	}
	if res.Best.Score != 0 || res.Failed != 0 {
		t.Errorf("unexpected score %v, failed %d", res.Best.Score, res.Failed)
	}
}

func TestGridSearch_SkipsFailures(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2, 3}})
	boom := errors.New("boom")

	res, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		if p["x"] == 1 {
			return 0, boom
		}
		if p["x"] == 3 {
			return math.NaN(), nil
		}
		return p["x"], nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed != 2 || res.Best.Params["x"] != 2 {
		t.Errorf("unexpected result: failed %d best %v", res.Failed, res.Best.Params)
	}
	if !errors.Is(res.Candidates[0].Err, boom) {
		t.Errorf("failure not recorded: %v", res.Candidates[0].Err)
	}
}

func TestGridSearch_AllFail(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2}})
	_, err := g.Search(context.Background(), func(context.Context, map[string]float64) (float64, error) {
		return 0, errors.New("nope")
	})
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("expected ErrNoCandidate, got %v", err)
	}
}

func TestGridSearch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2}})
	_, err := g.Search(ctx, func(context.Context, map[string]float64) (float64, error) { return 0, nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGridSearch_MismatchedRanges(t *testing.T) {
	g := NewGridSearch([]string{"x", "y"}, [][]float64{{1}})
	if _, err := g.Search(context.Background(), nil); err == nil {
		t.Error("expected error")
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("Linspace[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if len(Linspace(3, 4, 1)) != 1 {
		t.Error("expected single value")
	}
}

func TestIAEObjective(t *testing.T) {
	base := config.GetPreset("convergence")
	base.Time.End = 10
	base.Trajectory.Values = []float64{5}
	base.Trajectory.Times = []float64{0}

	g := NewGridSearch([]string{"kp"}, [][]float64{{0.5, 2}}).WithWorkers(2)
	res, err := g.Search(context.Background(), IAEObjective(base, nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.Best.Params["kp"] != 2 {
		t.Errorf("stiffer gain should track better, got best %v", res.Best.Params)
	}
	if base.PID.Kp != 2 {
		t.Error("objective must not modify the base scenario")
	}
}

func TestIAEObjective_RejectsUnknownGain(t *testing.T) {
	obj := IAEObjective(config.DefaultConfig(), nil)
	_, err := obj(context.Background(), map[string]float64{"target": 1})
	if !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}
