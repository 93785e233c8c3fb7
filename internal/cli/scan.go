package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/sidereal/internal/rules"
)

// matchPayload is the JSON shape of one rule match.
type matchPayload struct {
	Rule      string  `json:"rule"`
	Time      string  `json:"time"`
	JulianDay float64 `json:"julian_day"`
	Matched   int     `json:"matched_conditions"`
	Total     int     `json:"total_conditions"`
	Localized bool    `json:"localized"`
	Trigger   string  `json:"trigger,omitempty"`
}

// NewScanCommand creates the scan command.
func NewScanCommand(opts *RootOptions) *cobra.Command {
	var (
		fromFlag     string
		toFlag       string
		intervalFlag float64
	)

	cmd := &cobra.Command{
		Use:   "scan <rules-dir>",
		Short: "Scan a time range for event rule matches",
		Long: "Loads CUE rule files from a directory and reports every instant a rule\n" +
			"starts matching within the range. Transitions are refined below the scan\n" +
			"interval; the reported times are the actual onsets, not grid samples.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{
				Format:    opts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   opts.Verbose,
			}

			loaded, errs := LoadRules(args[0])
			if len(errs) > 0 {
				for _, e := range errs {
					f.Error(ErrCodeBadRule, e.Error(), nil)
				}
				return NewExitError(ExitCommandError, "rule loading failed")
			}
			f.Verbosef("loaded %d rules from %d files\n", len(loaded.Rules), loaded.FileCount)

			t0, t1, err := parseRange(fromFlag, toFlag)
			if err != nil {
				return err
			}
			eng, err := buildEngine(opts)
			if err != nil {
				return err
			}

			scanner := rules.NewScanner(eng)
			matches, err := scanner.ScanTimeRange(t0.JD(), t1.JD(), intervalFlag, loaded.Rules)
			if err != nil {
				f.Error(errCode(err), err.Error(), nil)
				return NewExitError(ExitFailure, "scan failed")
			}

			payload := make([]matchPayload, len(matches))
			for i, m := range matches {
				payload[i] = matchPayload{
					Rule:      m.RuleName,
					Time:      jdString(m.JD),
					JulianDay: m.JD,
					Matched:   m.MatchedConditions,
					Total:     m.TotalConditions,
					Localized: m.Localized,
					Trigger:   m.Trigger,
				}
			}

			return f.SuccessText(payload, func(w io.Writer) {
				if len(payload) == 0 {
					fmt.Fprintln(w, "no matches")
					return
				}
				for _, m := range payload {
					mark := " "
					if m.Localized {
						mark = "*"
					}
					fmt.Fprintf(w, "%s %s  %s (%d/%d conditions)\n", mark, m.Time, m.Rule, m.Matched, m.Total)
				}
			})
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "range start, RFC3339")
	cmd.Flags().StringVar(&toFlag, "to", "", "range end, RFC3339")
	cmd.Flags().Float64Var(&intervalFlag, "interval", 1.0, "coarse scan interval in days")
	return cmd
}
