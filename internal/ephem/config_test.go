package ephem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, SiderealLahiri, cfg.DefaultSidereal)
	assert.Equal(t, TidalAutomatic, cfg.DefaultTidal)
	assert.InDelta(t, 36525.0, cfg.MaxSearchDays, 0)
	assert.Equal(t, KnownBodies(), cfg.AllowedBodies)
}

func TestConfigStepFor(t *testing.T) {
	cfg := DefaultConfig()

	assert.InDelta(t, 0.1, cfg.StepFor(Moon), 0)
	assert.InDelta(t, 0.5, cfg.StepFor(Sun), 0)
	assert.InDelta(t, 0.5, cfg.StepFor(Mars), 0)
	assert.InDelta(t, 1.0, cfg.StepFor(Saturn), 0)

	// Missing class falls back to the outer step, then to 1.0.
	cfg.StepDays = map[BodyClass]float64{ClassOuter: 2.0}
	assert.InDelta(t, 2.0, cfg.StepFor(Moon), 0)
	cfg.StepDays = nil
	assert.InDelta(t, 1.0, cfg.StepFor(Moon), 0)
}

func TestConfigAllowed(t *testing.T) {
	cfg := Config{AllowedBodies: []Body{Sun, Moon}}

	assert.True(t, cfg.Allowed(Sun))
	assert.True(t, cfg.Allowed(Moon))
	assert.False(t, cfg.Allowed(Mars))
}

func TestParseConfigOverrides(t *testing.T) {
	data := []byte(`
allowed_bodies: [Sun, Moon, Mercury]
default_sidereal: krishnamurti
default_tidal: de431
max_search_days: 3650
step_days:
  fast: 0.05
`)
	cfg, err := ParseConfig(data)
	require.NoError(t, err)

	assert.Equal(t, []Body{Sun, Moon, Mercury}, cfg.AllowedBodies)
	assert.Equal(t, SiderealKrishnamurti, cfg.DefaultSidereal)
	assert.Equal(t, TidalDE431, cfg.DefaultTidal)
	assert.InDelta(t, 3650.0, cfg.MaxSearchDays, 0)
	assert.InDelta(t, 0.05, cfg.StepDays[ClassFast], 0)

	// Unset fields inherit from the defaults.
	assert.InDelta(t, DefaultToleranceFloorDays, cfg.ToleranceFloorDays, 0)
}

func TestParseConfigRejectsUnknownField(t *testing.T) {
	_, err := ParseConfig([]byte("max_serch_days: 10\n"))
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeConfiguration))
}

func TestParseConfigRejectsUnknownBody(t *testing.T) {
	_, err := ParseConfig([]byte("allowed_bodies: [Sun, Vulcan]\n"))
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeConfiguration))
	assert.Contains(t, err.Error(), "Vulcan")
}

func TestParseConfigRejectsUnknownSiderealMode(t *testing.T) {
	_, err := ParseConfig([]byte("default_sidereal: galactic\n"))
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeConfiguration))
}

func TestConfigValidateRejectsBadStep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StepDays[ClassFast] = -0.1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step_days")

	cfg = DefaultConfig()
	cfg.StepDays[BodyClass("glacial")] = 1.0
	require.Error(t, cfg.Validate())
}

func TestTidalModelAcceleration(t *testing.T) {
	assert.InDelta(t, 0, TidalAutomatic.Acceleration(), 0)
	assert.InDelta(t, -25.80, TidalDE431.Acceleration(), 0)
	assert.InDelta(t, -25.826, TidalDE406.Acceleration(), 0)
}
