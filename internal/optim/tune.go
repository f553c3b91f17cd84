package optim

import (
	"context"

	"github.com/san-kum/tanksim/internal/config"
	"github.com/san-kum/tanksim/internal/metrics"
	"go.uber.org/zap"
)

// IAEObjective scores a gain set by the integrated absolute tracking error of
// the scenario. Each call runs its own simulator.
func IAEObjective(base *config.Config, logger *zap.SugaredLogger) Objective {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg := base.Clone()
		for name, v := range params {
			if err := cfg.SetGain(name, v); err != nil {
				return 0, err
			}
		}

		s, err := cfg.NewSimulator(nil)
		if err != nil {
			return 0, err
		}
		if err := s.Run(); err != nil {
			logger.Debugw("candidate failed", "params", params, "error", err)
			return 0, err
		}

		res, err := s.Result()
		if err != nil {
			return 0, err
		}
		sum := metrics.Compute(res, s.Schedule(), s.Limits())
		logger.Debugw("candidate scored", "params", params, "iae", sum.IAE)
		return sum.IAE, nil
	}
}
