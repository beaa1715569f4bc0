// Package cli safezonectl 命令行：通过 zonestore 驱动 safezone-data 的区域管理。
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"safezone/common/logger"
	"safezone/internal/apiclient"
	"safezone/internal/domain"
	"safezone/internal/rbac"
	"safezone/internal/zonestore"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// envPrefix 环境变量前缀，如 SAFEZONE_SERVER、SAFEZONE_TOKEN
const envPrefix = "SAFEZONE"

// app 命令共享的依赖，在 PersistentPreRunE 中初始化
type app struct {
	v      *viper.Viper
	logger *zap.Logger
	client *apiclient.Client
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server", "http://localhost:3001")
	v.SetDefault("token", "")
	v.SetDefault("timeout", "10s")
	v.SetDefault("log.level", "warn")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("stream", "geofence:events:stream")
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "safezonectl")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.qos", 1)
}

// NewRootCommand 构建 safezonectl 命令树
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	setDefaults(a.v)

	var configFile string
	root := &cobra.Command{
		Use:           "safezonectl",
		Short:         "Manage safe zones and inspect geofence events",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(configFile)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file (json/yaml)")
	root.PersistentFlags().String("server", "", "safezone-data base URL")
	root.PersistentFlags().String("token", "", "Bearer token from `safezonectl login`")
	_ = a.v.BindPFlag("server", root.PersistentFlags().Lookup("server"))
	_ = a.v.BindPFlag("token", root.PersistentFlags().Lookup("token"))

	root.AddCommand(
		a.zonesCommand(),
		a.devicesCommand(),
		a.loginCommand(),
		a.distanceCommand(),
		a.radiusCommand(),
		a.geocodeCommand(),
		a.eventsCommand(),
	)
	return root
}

func (a *app) init(configFile string) error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if configFile == "" {
		configFile = os.Getenv("SAFEZONE_CONFIG")
	}
	if configFile != "" {
		a.v.SetConfigFile(configFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	log, err := logger.NewLogger(a.v.GetString("log.level"), "console", "safezonectl")
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	a.logger = log

	timeout, err := time.ParseDuration(a.v.GetString("timeout"))
	if err != nil {
		return fmt.Errorf("invalid timeout %q: %w", a.v.GetString("timeout"), err)
	}
	a.client = apiclient.New(a.v.GetString("server"), timeout, log)
	a.client.SetToken(a.v.GetString("token"))
	return nil
}

// cliNotifier 把 zonestore 的提示写到命令输出
type cliNotifier struct {
	cmd *cobra.Command
}

func (n cliNotifier) Success(title, message string) {
	fmt.Fprintf(n.cmd.OutOrStdout(), "✓ %s: %s\n", title, message)
}

func (n cliNotifier) Error(title, message string) {
	fmt.Fprintf(n.cmd.ErrOrStderr(), "✗ %s: %s\n", title, message)
}

// store 以当前会话用户创建 zonestore 并加载区域列表
func (a *app) store(ctx context.Context, cmd *cobra.Command) (*zonestore.Store, error) {
	me, err := a.client.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session user: %w", err)
	}
	s := zonestore.NewStore(a.client, cliNotifier{cmd: cmd}, &me, a.logger)
	if err := s.Fetch(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// denied 权限不足时 zonestore 静默返回 rbac.ErrDenied，命令行需要给出提示
func denied(err error, action rbac.Action) error {
	if errors.Is(err, rbac.ErrDenied) {
		return fmt.Errorf("your role is not allowed to %s zones", action)
	}
	return err
}

func findZone(s *zonestore.Store, id string) (domain.Zone, error) {
	z, ok := s.Snapshot().Find(id)
	if !ok {
		return domain.Zone{}, domain.ErrZoneNotFound
	}
	return z, nil
}
