package cli

import (
	"time"

	"github.com/roach88/sidereal/internal/ephem"
	"github.com/roach88/sidereal/internal/orbit"
)

// buildEngine constructs the gateway engine the commands compute through.
// The synthetic orbit provider keeps the CLI deterministic and free of
// ephemeris data files; a Swiss-backed provider plugs in through the same
// interface.
func buildEngine(opts *RootOptions) (*ephem.Engine, error) {
	cfg := ephem.DefaultConfig()
	if opts.Config != "" {
		loaded, err := ephem.LoadConfig(opts.Config)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "loading config", err)
		}
		cfg = loaded
	}

	eng, err := ephem.NewEngine(orbit.New(), cfg)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "initializing engine", err)
	}
	return eng, nil
}

// parseTime parses an RFC3339 timestamp into gateway time. An empty value
// means the current instant.
func parseTime(value string) (ephem.UTTime, error) {
	if value == "" {
		return ephem.NewUTTime(time.Now().UTC()), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return ephem.UTTime{}, WrapExitError(ExitCommandError, "parsing time", err)
	}
	return ephem.NewUTTime(t.UTC()), nil
}

// parseRange parses the from/to flags into a time range.
func parseRange(from, to string) (t0, t1 ephem.UTTime, err error) {
	if from == "" || to == "" {
		return t0, t1, NewExitError(ExitCommandError, "both --from and --to are required")
	}
	if t0, err = parseTime(from); err != nil {
		return t0, t1, err
	}
	if t1, err = parseTime(to); err != nil {
		return t0, t1, err
	}
	if !t0.Before(t1) {
		return t0, t1, NewExitError(ExitCommandError, "--from must precede --to")
	}
	return t0, t1, nil
}
