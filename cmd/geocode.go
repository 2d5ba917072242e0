package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/fips-geocoder/internal/geocoding"
	"github.com/sells-group/fips-geocoder/pkg/location"
)

var (
	outputFormat   string
	suggestMax     int
	suggestBiasLon float64
	suggestBiasLat float64
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode <address>",
	Short: "Geocode an address and print it with FIPS codes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initService(cmd.Context(), "geocode")
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Service.Geocode(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), outputFormat, result)
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <partial address>",
	Short: "List autocomplete suggestions for a partial address",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initService(cmd.Context(), "geocode")
		if err != nil {
			return err
		}
		defer env.Close()

		var bias *location.Position
		if cmd.Flags().Changed("bias-lon") && cmd.Flags().Changed("bias-lat") {
			bias = &location.Position{Longitude: suggestBiasLon, Latitude: suggestBiasLat}
		}

		suggestions, err := env.Service.Suggest(cmd.Context(), strings.Join(args, " "), suggestMax, bias)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), outputFormat, map[string]any{"suggestions": suggestions})
	},
}

var placeCmd = &cobra.Command{
	Use:   "place <place-id>",
	Short: "Look up a place ID returned by suggest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initService(cmd.Context(), "geocode")
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Service.Place(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), outputFormat, result)
	},
}

func init() {
	for _, c := range []*cobra.Command{geocodeCmd, suggestCmd, placeCmd} {
		c.Flags().StringVarP(&outputFormat, "output", "o", "json", "output format: json or yaml")
		rootCmd.AddCommand(c)
	}
	suggestCmd.Flags().IntVar(&suggestMax, "max", geocoding.DefaultMaxSuggestions, "maximum number of suggestions")
	suggestCmd.Flags().Float64Var(&suggestBiasLon, "bias-lon", 0, "bias results toward this longitude")
	suggestCmd.Flags().Float64Var(&suggestBiasLat, "bias-lat", 0, "bias results toward this latitude")
}
