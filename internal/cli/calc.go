package cli

import (
	"fmt"
	"strconv"
	"strings"

	"safezone/internal/geo"

	"github.com/spf13/cobra"
)

// parsePoint "lat,lng"
func parsePoint(s string) (geo.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geo.Point{}, fmt.Errorf("invalid point %q, expected lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("invalid latitude in %q: %w", s, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("invalid longitude in %q: %w", s, err)
	}
	return geo.Point{Lat: lat, Lon: lng}, nil
}

// distanceCommand 本地计算，不访问服务端
func (a *app) distanceCommand() *cobra.Command {
	var radius float64
	cmd := &cobra.Command{
		Use:   "distance <lat,lng> <lat,lng>",
		Short: "Great-circle distance between two points; with --radius also containment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parsePoint(args[0])
			if err != nil {
				return err
			}
			to, err := parsePoint(args[1])
			if err != nil {
				return err
			}
			d := geo.Distance(from, to)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%.1f m)\n", geo.FormatDistance(d), d)
			if cmd.Flags().Changed("radius") {
				fmt.Fprintf(out, "inside %s zone: %t\n", geo.FormatDistance(radius), geo.Contains(from, radius, to))
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&radius, "radius", 0, "Zone radius in meters, centered on the first point")
	return cmd
}

func (a *app) radiusCommand() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "radius <meters>",
		Short: "Normalize a radius to [100, 5000], optionally moving N steps of 50m",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid radius %q: %w", args[0], err)
			}
			r = geo.AdjustRadius(r, float64(steps)*geo.RadiusStep)
			fmt.Fprintln(cmd.OutOrStdout(), geo.FormatDistance(r))
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "Number of 50m steps (negative shrinks)")
	return cmd
}

func (a *app) geocodeCommand() *cobra.Command {
	var reverse string
	cmd := &cobra.Command{
		Use:   "geocode [query]",
		Short: "Address suggestions, or the nearest address with --reverse lat,lng",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if reverse != "" {
				p, err := parsePoint(reverse)
				if err != nil {
					return err
				}
				res, err := a.client.Reverse(ctx, p.Lat, p.Lon)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%.5f, %.5f\n", res.Address, res.Lat, res.Lng)
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("query or --reverse is required")
			}
			list, err := a.client.Autocomplete(ctx, args[0])
			if err != nil {
				return err
			}
			for _, res := range list {
				fmt.Fprintf(out, "%s\t%.5f, %.5f\n", res.Address, res.Lat, res.Lng)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&reverse, "reverse", "", "Reverse geocode lat,lng")
	return cmd
}
