package ephem

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults for the search guardrails. MaxSearchDays bounds every continuous
// search window (~100 years); ToleranceFloorDays is the finest time
// resolution a search may request (~1 second).
const (
	DefaultMaxSearchDays      = 36525.0
	DefaultToleranceFloorDays = 1.0 / 86400.0
)

// Config is the explicit engine configuration surface. There are no hidden
// defaults: NewEngine fills unset fields from DefaultConfig and everything is
// inspectable afterwards.
type Config struct {
	// AllowedBodies restricts which bodies the gateway will compute. Empty
	// means all known bodies.
	AllowedBodies []Body

	// DefaultSidereal is the sidereal mode active outside any scope.
	DefaultSidereal SiderealMode

	// DefaultTidal is the tidal model active outside any scope.
	DefaultTidal TidalModel

	// MaxSearchDays is the guardrail on continuous search windows.
	MaxSearchDays float64

	// ToleranceFloorDays is the finest refinement tolerance a search may use.
	ToleranceFloorDays float64

	// StepDays maps a body class to its coarse sampling step in days.
	StepDays map[BodyClass]float64

	allowed map[Body]bool
}

// DefaultConfig returns the stock configuration: all known bodies, Lahiri
// sidereal mode, automatic tidal model, and class-tuned sampling steps
// (fine for the Moon, coarse for outer bodies).
func DefaultConfig() Config {
	return Config{
		AllowedBodies:      KnownBodies(),
		DefaultSidereal:    SiderealLahiri,
		DefaultTidal:       TidalAutomatic,
		MaxSearchDays:      DefaultMaxSearchDays,
		ToleranceFloorDays: DefaultToleranceFloorDays,
		StepDays: map[BodyClass]float64{
			ClassFast:  0.1,
			ClassInner: 0.5,
			ClassOuter: 1.0,
		},
	}
}

// Validate checks the configuration. Returns a ConfigurationError naming the
// first invalid field.
func (c *Config) Validate() error {
	for _, b := range c.AllowedBodies {
		if !b.Known() {
			return NewConfigurationError(fmt.Sprintf("allowed_bodies: unknown body id %d", int(b)))
		}
	}
	if !c.DefaultSidereal.Valid() {
		return NewConfigurationError(fmt.Sprintf("default_sidereal: invalid mode %d", int(c.DefaultSidereal)))
	}
	if c.MaxSearchDays <= 0 {
		return NewConfigurationError("max_search_days: must be positive")
	}
	if c.ToleranceFloorDays <= 0 {
		return NewConfigurationError("tolerance_floor_days: must be positive")
	}
	for class, step := range c.StepDays {
		switch class {
		case ClassFast, ClassInner, ClassOuter:
		default:
			return NewConfigurationError(fmt.Sprintf("step_days: unknown body class %q", class))
		}
		if step <= 0 {
			return NewConfigurationError(fmt.Sprintf("step_days[%s]: must be positive", class))
		}
	}

	// Freeze the allow-list into a lookup map here, so Allowed is a pure
	// read afterwards. The engine checks the allow-list before taking its
	// lock; any later mutation of c.allowed would race.
	c.allowed = make(map[Body]bool, len(c.AllowedBodies))
	for _, b := range c.AllowedBodies {
		c.allowed[b] = true
	}
	return nil
}

// Allowed reports whether body is in the configured allow-list. Read-only:
// concurrent calls are safe.
func (c *Config) Allowed(body Body) bool {
	if c.allowed != nil {
		return c.allowed[body]
	}
	for _, b := range c.AllowedBodies {
		if b == body {
			return true
		}
	}
	return false
}

// StepFor returns the coarse sampling step for a body, falling back to the
// outer-class step when the class is not in the table.
func (c *Config) StepFor(body Body) float64 {
	if step, ok := c.StepDays[body.Class()]; ok {
		return step
	}
	if step, ok := c.StepDays[ClassOuter]; ok {
		return step
	}
	return 1.0
}

// configFile is the YAML shape of a config file. Names are resolved to typed
// values during conversion so malformed files fail with field-level errors.
type configFile struct {
	AllowedBodies      []string           `yaml:"allowed_bodies"`
	DefaultSidereal    string             `yaml:"default_sidereal"`
	DefaultTidal       string             `yaml:"default_tidal"`
	MaxSearchDays      float64            `yaml:"max_search_days"`
	ToleranceFloorDays float64            `yaml:"tolerance_floor_days"`
	StepDays           map[string]float64 `yaml:"step_days"`
}

// LoadConfig reads a YAML config file. Unknown fields are rejected (catches
// typos), missing fields inherit from DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, WrapConfigurationError(fmt.Sprintf("failed to read config %s", path), err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML config bytes. See LoadConfig.
func ParseConfig(data []byte) (Config, error) {
	var file configFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return Config{}, WrapConfigurationError("failed to parse config YAML", err)
	}

	cfg := DefaultConfig()

	if len(file.AllowedBodies) > 0 {
		cfg.AllowedBodies = cfg.AllowedBodies[:0]
		for _, name := range file.AllowedBodies {
			b, err := ParseBody(name)
			if err != nil {
				return Config{}, NewConfigurationError(fmt.Sprintf("allowed_bodies: unknown body %q", name))
			}
			cfg.AllowedBodies = append(cfg.AllowedBodies, b)
		}
	}
	if file.DefaultSidereal != "" {
		mode, err := ParseSiderealMode(file.DefaultSidereal)
		if err != nil {
			return Config{}, err
		}
		cfg.DefaultSidereal = mode
	}
	if file.DefaultTidal != "" {
		model, err := ParseTidalModel(file.DefaultTidal)
		if err != nil {
			return Config{}, err
		}
		cfg.DefaultTidal = model
	}
	if file.MaxSearchDays != 0 {
		cfg.MaxSearchDays = file.MaxSearchDays
	}
	if file.ToleranceFloorDays != 0 {
		cfg.ToleranceFloorDays = file.ToleranceFloorDays
	}
	if len(file.StepDays) > 0 {
		cfg.StepDays = make(map[BodyClass]float64, len(file.StepDays))
		for class, step := range file.StepDays {
			cfg.StepDays[BodyClass(class)] = step
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
