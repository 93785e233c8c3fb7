package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/sidereal/internal/ephem"
	"github.com/roach88/sidereal/internal/partition"
	"github.com/roach88/sidereal/internal/rules"
)

// positionPayload is the JSON shape of a position query.
type positionPayload struct {
	Body           string  `json:"body"`
	Time           string  `json:"time"`
	JulianDay      float64 `json:"julian_day"`
	Longitude      float64 `json:"longitude"`
	Latitude       float64 `json:"latitude"`
	Distance       float64 `json:"distance"`
	SpeedLongitude float64 `json:"speed_longitude"`
	Retrograde     bool    `json:"retrograde"`
	Sign           string  `json:"sign"`
	NakshatraLord  string  `json:"nakshatra_lord"`
	SubLord        string  `json:"sub_lord"`
	Dignity        string  `json:"dignity"`
}

// NewPositionCommand creates the position command.
func NewPositionCommand(opts *RootOptions) *cobra.Command {
	var timeFlag string

	cmd := &cobra.Command{
		Use:   "position <body>",
		Short: "Compute a body's position at an instant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{
				Format:    opts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   opts.Verbose,
			}

			body, err := ephem.ParseBody(args[0])
			if err != nil {
				f.Error(errCode(err), err.Error(), nil)
				return NewExitError(ExitCommandError, "unknown body")
			}
			t, err := parseTime(timeFlag)
			if err != nil {
				return err
			}
			eng, err := buildEngine(opts)
			if err != nil {
				return err
			}

			pos, err := eng.Position(t, body)
			if err != nil {
				f.Error(errCode(err), err.Error(), nil)
				return NewExitError(ExitFailure, "position computation failed")
			}

			nak, _ := partition.NakshatraLord(pos.Longitude)
			_, sub, _ := partition.SubLord(pos.Longitude)
			payload := positionPayload{
				Body:           body.String(),
				Time:           t.String(),
				JulianDay:      t.JD(),
				Longitude:      pos.Longitude,
				Latitude:       pos.Latitude,
				Distance:       pos.Distance,
				SpeedLongitude: pos.SpeedLongitude,
				Retrograde:     pos.IsRetrograde,
				Sign:           ephem.SignOf(pos.Longitude).String(),
				NakshatraLord:  nak,
				SubLord:        sub,
				Dignity:        string(rules.CalcDignity(body, pos.Longitude).Type),
			}

			return f.SuccessText(payload, func(w io.Writer) {
				fmt.Fprintf(w, "%s at %s\n", payload.Body, payload.Time)
				fmt.Fprintf(w, "  longitude: %10.6f°  (%s)\n", payload.Longitude, payload.Sign)
				fmt.Fprintf(w, "  latitude:  %10.6f°\n", payload.Latitude)
				fmt.Fprintf(w, "  speed:     %10.6f°/day", payload.SpeedLongitude)
				if payload.Retrograde {
					fmt.Fprint(w, "  (retrograde)")
				}
				fmt.Fprintln(w)
				fmt.Fprintf(w, "  nakshatra lord: %s (sub-lord %s)\n", payload.NakshatraLord, payload.SubLord)
				fmt.Fprintf(w, "  dignity:   %s\n", payload.Dignity)
			})
		},
	}

	cmd.Flags().StringVar(&timeFlag, "time", "", "instant to compute, RFC3339 (default: now)")
	return cmd
}
