package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	commoncfg "safezone/common/config"

	"github.com/joho/godotenv"
)

// Config safezone-data（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  commoncfg.DatabaseConfig
	// SeedData 启动时写入预置设备和区域
	SeedData bool

	RedisEnabled bool
	Redis        commoncfg.RedisConfig

	MQTTEnabled bool
	MQTT        commoncfg.MQTTConfig

	Log struct {
		Level  string
		Format string
	}

	Geofence GeofenceConfig
	Auth     AuthConfig

	// ZoneCacheTTL 区域列表缓存时间，0 表示不缓存
	ZoneCacheTTL time.Duration
}

// GeofenceConfig 越界判断配置
type GeofenceConfig struct {
	Stream   string         // 事件写入的 Redis Stream
	Timezone *time.Location // 计划（schedule）按此时区判断
	StateTTL time.Duration  // 设备-区域状态保存时间
}

// AuthConfig 验证码登录配置
type AuthConfig struct {
	CodeTTL  time.Duration
	TokenTTL time.Duration
	// DefaultUserID 未携带 token 时使用的会话用户
	DefaultUserID string
}

// Load 加载配置；当前目录存在 .env 时先载入（不覆盖已有环境变量）
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":3001")

	// DB 不可用时回退到内存 repo
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database = commoncfg.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "safezone",
		SSLMode:  "disable",
		MaxConns: 10,
		MaxIdle:  5,
	}
	cfg.Database.LoadFromEnv("DB")
	cfg.SeedData = getEnv("SEED_DATA", "true") == "true"

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "true") == "true"
	cfg.Redis = commoncfg.RedisConfig{Addr: "localhost:6379"}
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.MQTTEnabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT = commoncfg.MQTTConfig{
		Broker:   "tcp://localhost:1883",
		ClientID: "safezone-data",
		QoS:      1,
	}
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Geofence.Stream = getEnv("GEOFENCE_STREAM", "geofence:events:stream")
	tzName := getEnv("GEOFENCE_TIMEZONE", "Europe/Warsaw")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid GEOFENCE_TIMEZONE %q: %w", tzName, err)
	}
	cfg.Geofence.Timezone = loc
	cfg.Geofence.StateTTL = time.Duration(parseInt(getEnv("GEOFENCE_STATE_TTL_HOURS", "168"), 168)) * time.Hour

	cfg.Auth.CodeTTL = time.Duration(parseInt(getEnv("AUTH_CODE_TTL_SECONDS", "300"), 300)) * time.Second
	cfg.Auth.TokenTTL = time.Duration(parseInt(getEnv("AUTH_TOKEN_TTL_HOURS", "720"), 720)) * time.Hour
	cfg.Auth.DefaultUserID = getEnv("DEFAULT_USER_ID", "user1")

	cfg.ZoneCacheTTL = time.Duration(parseInt(getEnv("ZONE_CACHE_TTL_SECONDS", "30"), 30)) * time.Second

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
