package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/sidereal/internal/ephem"
	"github.com/roach88/sidereal/internal/events"
	"github.com/roach88/sidereal/internal/search"
)

// eventPayload is the JSON shape of one detected event.
type eventPayload struct {
	Time      string            `json:"time"`
	JulianDay float64           `json:"julian_day"`
	Kind      string            `json:"kind"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// jdString renders a Julian Day as RFC3339.
func jdString(jd float64) string {
	return ephem.JulianDayUT(jd).String()
}

func toEventPayloads(results []search.EventResult) []eventPayload {
	out := make([]eventPayload, len(results))
	for i, r := range results {
		out[i] = eventPayload{
			Time:      jdString(r.JD),
			JulianDay: r.JD,
			Kind:      string(r.Kind),
			Metadata:  r.Metadata,
		}
	}
	return out
}

func printEvents(w io.Writer, payload []eventPayload) {
	if len(payload) == 0 {
		fmt.Fprintln(w, "no events")
		return
	}
	for _, e := range payload {
		fmt.Fprintf(w, "%s  %-14s", e.Time, e.Kind)
		keys := make([]string, 0, len(e.Metadata))
		for k := range e.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s=%s", k, e.Metadata[k])
		}
		fmt.Fprintln(w)
	}
}

// NewEventsCommand creates the events command group.
func NewEventsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Search a time range for astronomical events",
	}
	cmd.AddCommand(newIngressesCommand(opts))
	cmd.AddCommand(newStationsCommand(opts))
	cmd.AddCommand(newAspectsCommand(opts))
	cmd.AddCommand(newPhasesCommand(opts))
	return cmd
}

// runEvents wires the shared flag handling and output for a detector call.
func runEvents(cmd *cobra.Command, opts *RootOptions, from, to string,
	find func(d *events.Detector, t0, t1 ephem.UTTime) ([]search.EventResult, error)) error {

	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	t0, t1, err := parseRange(from, to)
	if err != nil {
		return err
	}
	eng, err := buildEngine(opts)
	if err != nil {
		return err
	}

	detector := events.New(eng, eng.Config(), events.WithEclipseSource(eng))
	results, err := find(detector, t0, t1)
	if err != nil {
		f.Error(errCode(err), err.Error(), nil)
		return NewExitError(ExitFailure, "event search failed")
	}

	payload := toEventPayloads(results)
	return f.SuccessText(payload, func(w io.Writer) { printEvents(w, payload) })
}

func newIngressesCommand(opts *RootOptions) *cobra.Command {
	var fromFlag, toFlag string
	cmd := &cobra.Command{
		Use:   "ingresses <body>",
		Short: "Find sign boundary crossings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := ephem.ParseBody(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "unknown body", err)
			}
			return runEvents(cmd, opts, fromFlag, toFlag,
				func(d *events.Detector, t0, t1 ephem.UTTime) ([]search.EventResult, error) {
					return d.ScanIngresses(body, t0, t1)
				})
		},
	}
	cmd.Flags().StringVar(&fromFlag, "from", "", "range start, RFC3339")
	cmd.Flags().StringVar(&toFlag, "to", "", "range end, RFC3339")
	return cmd
}

func newStationsCommand(opts *RootOptions) *cobra.Command {
	var fromFlag, toFlag string
	cmd := &cobra.Command{
		Use:   "stations <body>",
		Short: "Find retrograde and direct stations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := ephem.ParseBody(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "unknown body", err)
			}
			return runEvents(cmd, opts, fromFlag, toFlag,
				func(d *events.Detector, t0, t1 ephem.UTTime) ([]search.EventResult, error) {
					return d.ScanStations(body, t0, t1)
				})
		},
	}
	cmd.Flags().StringVar(&fromFlag, "from", "", "range start, RFC3339")
	cmd.Flags().StringVar(&toFlag, "to", "", "range end, RFC3339")
	return cmd
}

func newAspectsCommand(opts *RootOptions) *cobra.Command {
	var fromFlag, toFlag, aspectFlag string
	cmd := &cobra.Command{
		Use:   "aspects <body-a> <body-b>",
		Short: "Find exact aspect perfections between two bodies",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ephem.ParseBody(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "unknown body", err)
			}
			b, err := ephem.ParseBody(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "unknown body", err)
			}
			return runEvents(cmd, opts, fromFlag, toFlag,
				func(d *events.Detector, t0, t1 ephem.UTTime) ([]search.EventResult, error) {
					return d.ScanAspects(a, b, aspectFlag, t0, t1)
				})
		},
	}
	cmd.Flags().StringVar(&fromFlag, "from", "", "range start, RFC3339")
	cmd.Flags().StringVar(&toFlag, "to", "", "range end, RFC3339")
	cmd.Flags().StringVar(&aspectFlag, "aspect", "conjunction", "aspect name (conjunction|sextile|square|trine|opposition)")
	return cmd
}

func newPhasesCommand(opts *RootOptions) *cobra.Command {
	var fromFlag, toFlag string
	cmd := &cobra.Command{
		Use:   "phases <body-a> <body-b>",
		Short: "Find synodic phase boundaries between two bodies",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ephem.ParseBody(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "unknown body", err)
			}
			b, err := ephem.ParseBody(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "unknown body", err)
			}
			return runEvents(cmd, opts, fromFlag, toFlag,
				func(d *events.Detector, t0, t1 ephem.UTTime) ([]search.EventResult, error) {
					return d.SynodicPhases(a, b, t0, t1)
				})
		},
	}
	cmd.Flags().StringVar(&fromFlag, "from", "", "range start, RFC3339")
	cmd.Flags().StringVar(&toFlag, "to", "", "range end, RFC3339")
	return cmd
}
