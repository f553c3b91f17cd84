package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/tanksim/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "rk45", cfg.Integrator)
	assert.Equal(t, DefaultArea, cfg.Tank.SurfaceArea)
	assert.Equal(t, []float64{0, 20, 40, 60, 80}, cfg.Trajectory.Times)
	require.NoError(t, cfg.Validate())
}

func TestPresets_Valid(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			require.NotNil(t, cfg)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("deadband")
	require.NotNil(t, cfg)
	assert.Equal(t, 0.05, cfg.PID.Deadband)
	assert.Equal(t, []float64{5, 7.6, 2}, cfg.Trajectory.Values)

	cfg.Trajectory.Values[0] = 99
	assert.Equal(t, 5.0, Presets["deadband"].Trajectory.Values[0], "preset must not be shared")

	assert.Nil(t, GetPreset("nonexistent"))
}

func TestListPresets(t *testing.T) {
	assert.Equal(t, []string{"convergence", "deadband", "reference"}, ListPresets())
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Integrator = "leapfrog"
	cfg.Tank.SurfaceArea = 0
	cfg.Saturation = SaturationConfig{Low: 7, High: 0}
	cfg.InitialLevel = -1
	cfg.Trajectory.Times = []float64{0}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 5)
	assert.ErrorIs(t, err, dynamo.ErrConfiguration)
	assert.ErrorIs(t, err, dynamo.ErrSchedule)
}

func TestValidate_TimeSpan(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Time = TimeConfig{Start: 10, End: 10}
	assert.ErrorIs(t, cfg.Validate(), dynamo.ErrConfiguration)
}

func TestValidate_NonFiniteTimeSpan(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Time.End = math.Inf(1)
	cfg.Tank.SurfaceArea = 0

	err := cfg.Validate()
	assert.ErrorIs(t, err, dynamo.ErrConfiguration)
	assert.Len(t, multierr.Errors(err), 2)

	path := filepath.Join(t.TempDir(), "inf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("time:\n  end: .inf\n"), 0644))
	_, err = Load(path)
	assert.ErrorIs(t, err, dynamo.ErrConfiguration)
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")

	cfg := GetPreset("reference")
	cfg.Solver.MaxStep = 0.005
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := "pid:\n  kp: 5\n  ki: 0.8\n  anti_windup: 0.1\ntime:\n  end: 50\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.PID.Kp)
	assert.Equal(t, 50.0, cfg.Time.End)
	assert.Equal(t, DefaultArea, cfg.Tank.SurfaceArea)
	assert.Equal(t, DefaultHigh, cfg.Saturation.High)
}

func TestLoadOver_KeepsBaseFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gain.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pid:\n  kp: 4\n  ki: 0.8\n  anti_windup: 0.2\n  deadband: 0.05\n"), 0644))

	base := GetPreset("deadband")
	cfg, err := LoadOver(base, path)
	require.NoError(t, err)
	assert.Equal(t, 4.0, cfg.PID.Kp)
	assert.Equal(t, []float64{5, 7.6, 2}, cfg.Trajectory.Values)
	assert.Equal(t, 30.0, cfg.Time.End)

	assert.Equal(t, 2.0, base.PID.Kp)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tank:\n  surface_area: -1\n"), 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, dynamo.ErrConfiguration)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewSimulator_Runs(t *testing.T) {
	cfg := GetPreset("deadband")
	cfg.Time.End = 5

	s, err := cfg.NewSimulator(nil)
	require.NoError(t, err)
	require.NoError(t, s.Run())

	tt, _, _, _, _, err := s.Output()
	require.NoError(t, err)
	assert.Len(t, tt, 500)
}

func TestOptions_UnknownIntegrator(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Integrator = "verlet"
	_, err := cfg.Options()
	assert.ErrorIs(t, err, dynamo.ErrConfiguration)
}

func TestSetGain(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.SetGain("kd", 0.5))
	require.NoError(t, cfg.SetGain("deadband", 0.05))
	assert.Equal(t, 0.5, cfg.PID.Kd)
	assert.Equal(t, 0.05, cfg.PID.Deadband)
	assert.Equal(t, DefaultKp, cfg.PID.Kp)

	assert.ErrorIs(t, cfg.SetGain("anti_windup", -1), dynamo.ErrConfiguration)
	assert.Equal(t, DefaultAntiWindup, cfg.PID.AntiWindup)
	assert.ErrorIs(t, cfg.SetGain("target", 1), dynamo.ErrConfiguration)
}
