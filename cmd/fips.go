package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sells-group/fips-geocoder/internal/fetcher"
	"github.com/sells-group/fips-geocoder/internal/fips"
	"github.com/sells-group/fips-geocoder/internal/resilience"
)

var (
	lookupState  string
	lookupCounty string
	fipsOutput   string
)

var fipsCmd = &cobra.Command{
	Use:   "fips",
	Short: "Inspect and refresh the FIPS reference data",
}

var fipsLookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Resolve a state and county name to FIPS codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("fips"); err != nil {
			return err
		}

		codes, err := newFIPSSource(cmd.Context(), cfg).Enrich(cmd.Context(), lookupState, lookupCounty)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), fipsOutput, codes)
	},
}

var fipsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many states and counties the reference data holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("fips"); err != nil {
			return err
		}

		tables, err := newFIPSSource(cmd.Context(), cfg).Wait(cmd.Context())
		if err != nil {
			return err
		}
		stats := tables.Stats()

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "State file:   %s\n", cfg.FIPS.StateFile)
		fmt.Fprintf(w, "County file:  %s\n", cfg.FIPS.CountyFile)
		fmt.Fprintf(w, "States:       %s\n", humanize.Comma(int64(stats.States)))
		fmt.Fprintf(w, "Counties:     %s\n", humanize.Comma(int64(stats.Counties)))
		fmt.Fprintf(w, "County sets:  %s\n", humanize.Comma(int64(len(tables.Counties))))
		return nil
	},
}

var fipsFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the Census state and county code files and rewrite the reference data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("fips"); err != nil {
			return err
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			Policy: resilience.NewPolicy("census", cfg.Resilience),
		})
		stats, err := fips.Refresh(cmd.Context(), f, fips.RefreshOptions{
			StateURL:   cfg.FIPS.StateSourceURL,
			CountyURL:  cfg.FIPS.CountySourceURL,
			StateFile:  cfg.FIPS.StateFile,
			CountyFile: cfg.FIPS.CountyFile,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s states to %s and %s counties to %s\n",
			humanize.Comma(int64(stats.States)), cfg.FIPS.StateFile,
			humanize.Comma(int64(stats.Counties)), cfg.FIPS.CountyFile)
		return nil
	},
}

func init() {
	fipsLookupCmd.Flags().StringVar(&lookupState, "state", "", "state name (e.g. California)")
	fipsLookupCmd.Flags().StringVar(&lookupCounty, "county", "", "county name (e.g. Los Angeles County)")
	fipsLookupCmd.Flags().StringVarP(&fipsOutput, "output", "o", "json", "output format: json or yaml")
	_ = fipsLookupCmd.MarkFlagRequired("state")

	fipsCmd.AddCommand(fipsLookupCmd, fipsStatsCmd, fipsFetchCmd)
	rootCmd.AddCommand(fipsCmd)
}
