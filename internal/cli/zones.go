package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"safezone/internal/domain"
	"safezone/internal/geo"
	"safezone/internal/notification"
	"safezone/internal/rbac"
	"safezone/internal/wizard"

	"github.com/spf13/cobra"
)

func (a *app) zonesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zones",
		Short: "List and manage safe zones",
	}
	cmd.AddCommand(
		a.zonesListCommand(),
		a.zonesCreateCommand(),
		a.zonesUpdateCommand(),
		a.zonesToggleCommand(),
		a.zonesDeleteCommand(),
		a.zonesExportCommand(),
	)
	return cmd
}

func printZones(cmd *cobra.Command, zones []domain.Zone) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tRADIUS\tACTIVE\tNOTIFIED\tADDRESS")
	for _, z := range zones {
		s := notification.Summarize(z)
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\t%t\t%d/%d\t%s\n",
			z.ID, z.Icon, z.Name, z.Type,
			geo.FormatDistance(z.Coordinates.Radius),
			z.IsActive, s.Notified, s.Total, z.Address,
		)
	}
	_ = tw.Flush()
}

func (a *app) zonesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List zones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.store(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			printZones(cmd, s.Snapshot().Zones)
			return nil
		},
	}
}

func (a *app) zonesCreateCommand() *cobra.Command {
	var (
		name, icon, address string
		lat, lng, radius    float64
		steps               int
		devices             []string
		muted               []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a zone (name, location, radius, per-device notifications)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			d := wizard.New()

			if err := d.SetNameIcon(name, icon); err != nil {
				return err
			}

			center := geo.Point{Lat: lat, Lon: lng}
			if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
				res, err := a.client.Geocode(ctx, address)
				if err != nil {
					return fmt.Errorf("could not locate %q: %w", address, err)
				}
				center = res.Point()
				fmt.Fprintf(cmd.OutOrStdout(), "Located %q at %.5f, %.5f\n", res.Address, center.Lat, center.Lon)
			}
			if err := d.SetLocation(address, center); err != nil {
				return err
			}

			if cmd.Flags().Changed("radius") {
				d.SetRadius(radius)
			}
			d.AdjustRadius(steps)

			for _, id := range muted {
				d.SetNotification(id, false)
			}

			in, err := d.Build(devices)
			if err != nil {
				return err
			}

			s, err := a.store(ctx, cmd)
			if err != nil {
				return err
			}
			z, err := s.Create(ctx, in)
			if err != nil {
				return denied(err, rbac.ActionCreate)
			}
			printZones(cmd, []domain.Zone{z})
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "Zone name (2-40 characters)")
	f.StringVar(&icon, "icon", "", "Zone icon, one of "+fmt.Sprint(wizard.Icons))
	f.StringVar(&address, "address", "", "Address; geocoded when --lat/--lng are not given")
	f.Float64Var(&lat, "lat", 0, "Center latitude")
	f.Float64Var(&lng, "lng", 0, "Center longitude")
	f.Float64Var(&radius, "radius", geo.DefaultRadius, "Radius in meters, clamped to [100, 5000]")
	f.IntVar(&steps, "steps", 0, "Adjust radius by N steps of 50m (negative shrinks)")
	f.StringSliceVar(&devices, "device", nil, "Device id covered by the zone (repeatable)")
	f.StringSliceVar(&muted, "mute", nil, "Device id that should not be notified (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func (a *app) zonesUpdateCommand() *cobra.Command {
	var (
		name, address string
		radius        float64
		devices       []string
		notify        []string
		mute          []string
	)
	cmd := &cobra.Command{
		Use:   "update <zone-id>",
		Short: "Update zone fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.store(ctx, cmd)
			if err != nil {
				return err
			}
			z, err := findZone(s, args[0])
			if err != nil {
				return err
			}

			in := domain.InputFromZone(z)
			f := cmd.Flags()
			if f.Changed("name") {
				in.Name = name
			}
			if f.Changed("address") {
				in.Address = address
			}
			if f.Changed("radius") {
				in.Coordinates.Radius = radius
			}
			if f.Changed("device") {
				in.Devices = devices
			}
			if in.NotificationsByDevice == nil {
				in.NotificationsByDevice = map[string]bool{}
			}
			for _, id := range notify {
				in.NotificationsByDevice[id] = true
			}
			for _, id := range mute {
				in.NotificationsByDevice[id] = false
			}

			updated, err := s.Update(ctx, z.ID, in)
			if err != nil {
				return denied(err, rbac.ActionUpdate)
			}
			printZones(cmd, []domain.Zone{updated})
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "New name")
	f.StringVar(&address, "address", "", "New address")
	f.Float64Var(&radius, "radius", 0, "New radius in meters")
	f.StringSliceVar(&devices, "device", nil, "Replace covered devices")
	f.StringSliceVar(&notify, "notify", nil, "Enable notifications for device id")
	f.StringSliceVar(&mute, "mute", nil, "Disable notifications for device id")
	return cmd
}

func (a *app) zonesToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <zone-id>",
		Short: "Enable or disable a zone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.store(ctx, cmd)
			if err != nil {
				return err
			}
			if err := s.ToggleActive(ctx, args[0]); err != nil {
				return denied(err, rbac.ActionUpdate)
			}
			z, err := findZone(s, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s active=%t\n", z.Name, z.IsActive)
			return nil
		},
	}
}

func (a *app) zonesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <zone-id>",
		Short: "Delete a zone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.store(ctx, cmd)
			if err != nil {
				return err
			}
			if err := s.Delete(ctx, args[0]); err != nil {
				return denied(err, rbac.ActionDelete)
			}
			return nil
		},
	}
}

func (a *app) zonesExportCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download zones as an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.client.ExportZones(cmd.Context())
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "zones.xlsx", "Output file")
	return cmd
}
