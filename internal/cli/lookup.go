package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/sidereal/internal/ephem"
	"github.com/roach88/sidereal/internal/partition"
)

// lookupPayload is the JSON shape of a partition lookup.
type lookupPayload struct {
	Longitude     float64 `json:"longitude"`
	Sign          string  `json:"sign"`
	SignLord      string  `json:"sign_lord"`
	NakshatraLord string  `json:"nakshatra_lord"`
	SubLord       string  `json:"sub_lord"`
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <longitude>",
		Short: "Resolve a longitude to its sign, nakshatra lord and sub-lord",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{
				Format:    opts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   opts.Verbose,
			}

			lon, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "parsing longitude", err)
			}

			nakLord, err := partition.NakshatraLord(lon)
			if err != nil {
				f.Error(errCode(err), err.Error(), nil)
				return NewExitError(ExitFailure, "lookup failed")
			}
			_, sub, err := partition.SubLord(lon)
			if err != nil {
				f.Error(errCode(err), err.Error(), nil)
				return NewExitError(ExitFailure, "lookup failed")
			}

			payload := lookupPayload{
				Longitude:     lon,
				Sign:          ephem.SignOf(lon).String(),
				SignLord:      partition.SignLord(lon),
				NakshatraLord: nakLord,
				SubLord:       sub,
			}

			return f.SuccessText(payload, func(w io.Writer) {
				fmt.Fprintf(w, "longitude %.6f°\n", payload.Longitude)
				fmt.Fprintf(w, "  sign:           %s (lord %s)\n", payload.Sign, payload.SignLord)
				fmt.Fprintf(w, "  nakshatra lord: %s\n", payload.NakshatraLord)
				fmt.Fprintf(w, "  sub-lord:       %s\n", payload.SubLord)
			})
		},
	}
	return cmd
}
