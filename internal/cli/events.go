package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	commoncfg "safezone/common/config"
	"safezone/common/mqtt"
	commonredis "safezone/common/redis"
	"safezone/internal/domain"
	"safezone/internal/events"

	"github.com/spf13/cobra"
)

func (a *app) eventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow geofence events",
	}
	cmd.AddCommand(a.eventsTailCommand(), a.eventsWatchCommand())
	return cmd
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// eventsTailCommand 以消费者组读取 Redis Stream
func (a *app) eventsTailCommand() *cobra.Command {
	var group, consumer string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Read geofence events from the Redis stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			client := commonredis.NewRedisClient(&commoncfg.RedisConfig{
				Addr:     a.v.GetString("redis.addr"),
				Password: a.v.GetString("redis.password"),
				DB:       a.v.GetInt("redis.db"),
			})
			defer commonredis.Close(client)

			if consumer == "" {
				host, _ := os.Hostname()
				consumer = fmt.Sprintf("%s-%d", host, os.Getpid())
			}
			reader := events.NewStreamReader(client, a.v.GetString("stream"), group, consumer, a.logger)
			if err := reader.Init(ctx); err != nil {
				return err
			}

			for {
				evs, err := reader.Read(ctx, 10, 5*time.Second)
				if ctx.Err() != nil {
					return nil
				}
				if err != nil {
					return err
				}
				for _, ev := range evs {
					printEvent(cmd, ev)
				}
			}
		},
	}
	cmd.Flags().StringVar(&group, "group", "safezonectl", "Consumer group")
	cmd.Flags().StringVar(&consumer, "consumer", "", "Consumer name (default host-pid)")
	return cmd
}

// eventsWatchCommand 订阅 safezone/geofence/{deviceID}
func (a *app) eventsWatchCommand() *cobra.Command {
	var device string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Subscribe to geofence events over MQTT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			cfg := &commoncfg.MQTTConfig{
				Broker:   a.v.GetString("mqtt.broker"),
				ClientID: a.v.GetString("mqtt.client_id"),
				Username: a.v.GetString("mqtt.username"),
				Password: a.v.GetString("mqtt.password"),
				QoS:      byte(a.v.GetInt("mqtt.qos")),
			}
			client, err := mqtt.NewClient(cfg, a.logger)
			if err != nil {
				return err
			}
			defer client.Disconnect()

			topic := events.TopicPrefix + "+"
			if device != "" {
				topic = events.TopicPrefix + device
			}
			err = client.Subscribe(topic, client.QoS(), func(_ string, payload []byte) error {
				var ev domain.GeofenceEvent
				if err := json.Unmarshal(payload, &ev); err != nil {
					return fmt.Errorf("decode geofence event: %w", err)
				}
				printEvent(cmd, ev)
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s on %s\n", topic, cfg.Broker)
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&device, "device", "", "Only events of this device id")
	return cmd
}
