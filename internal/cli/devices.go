package cli

import (
	"fmt"
	"text/tabwriter"

	"safezone/internal/domain"
	"safezone/internal/geo"

	"github.com/spf13/cobra"
)

func (a *app) devicesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List devices and report locations",
	}
	cmd.AddCommand(a.devicesListCommand(), a.devicesLocateCommand(), a.devicesMockCommand())
	return cmd
}

func (a *app) devicesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			devices, err := a.client.ListDevices(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE\tOWNER\tSTATUS\tLOCATION")
			for _, d := range devices {
				loc := "-"
				if d.LastLocation != nil {
					loc = fmt.Sprintf("%.5f, %.5f", d.LastLocation.Lat, d.LastLocation.Lon)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Type, d.Owner.Name, d.Status, loc)
			}
			return tw.Flush()
		},
	}
}

func (a *app) devicesLocateCommand() *cobra.Command {
	var lat, lng, accuracy float64
	cmd := &cobra.Command{
		Use:   "locate <device-id>",
		Short: "Report a device location and print resulting geofence events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.UpdateLocation(cmd.Context(), args[0], domain.LocationUpdate{
				Latitude:  lat,
				Longitude: lng,
				Accuracy:  accuracy,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s at %.5f, %.5f\n", res.Device.Name, lat, lng)
			if len(res.Events) == 0 {
				fmt.Fprintln(out, "no geofence events")
			}
			for _, ev := range res.Events {
				printEvent(cmd, ev)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude")
	cmd.Flags().Float64Var(&accuracy, "accuracy", 0, "Accuracy in meters")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}

func (a *app) devicesMockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mock-locations",
		Short: "Show last device locations with nearest sample address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			locs, err := a.client.MockLocations(cmd.Context())
			if err != nil {
				return err
			}
			for _, l := range locs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.5f, %.5f\t%s\n", l.DeviceID, l.Latitude, l.Longitude, l.Address)
			}
			return nil
		},
	}
}

func printEvent(cmd *cobra.Command, ev domain.GeofenceEvent) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %-5s %s (%s) zone=%s distance=%s\n",
		ev.OccurredAt.Format("2006-01-02 15:04:05"),
		ev.Type, ev.DeviceName, ev.DeviceID, ev.ZoneName,
		geo.FormatDistance(ev.Distance),
	)
}

func (a *app) loginCommand() *cobra.Command {
	var phone, code string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with an SMS code; without --code a code is requested first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if code == "" {
				res, err := a.client.SendCode(ctx, phone)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s, valid for %ds. Run again with --code.\n", res.Message, res.ExpiresIn)
				return nil
			}
			res, err := a.client.VerifyCode(ctx, phone, code)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Logged in as %s (%s)\n", res.User.Name, res.User.Role)
			fmt.Fprintf(out, "export %s_TOKEN=%s\n", envPrefix, res.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&code, "code", "", "4-digit verification code")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}
