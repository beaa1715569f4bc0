package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"safezone/common/database"
	"safezone/common/logger"
	"safezone/common/mqtt"
	commonredis "safezone/common/redis"
	"safezone/internal/config"
	"safezone/internal/events"
	"safezone/internal/geocode"
	httpapi "safezone/internal/http"
	"safezone/internal/repository"
	"safezone/internal/service"
	"safezone/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "safezone-data")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis：不可用时使用进程内 KV，事件只写日志
	var redisClient *redis.Client
	var kv store.KV = store.NewMemoryKV()
	if cfg.RedisEnabled {
		c := commonredis.NewRedisClient(&cfg.Redis)
		if err := commonredis.Ping(ctx, c); err == nil {
			redisClient = c
			kv = store.NewRedisKV(c)
			log.Info("Redis enabled for safezone-data", zap.String("addr", cfg.Redis.Addr))
		} else {
			log.Warn("Redis enabled but ping failed, falling back to memory KV", zap.Error(err))
			_ = commonredis.Close(c)
		}
	}

	var publishers events.MultiPublisher
	if redisClient != nil {
		publishers = append(publishers, events.NewRedisStreamPublisher(redisClient, cfg.Geofence.Stream, log))
	}
	var mqttClient *mqtt.Client
	if cfg.MQTTEnabled {
		if c, err := mqtt.NewClient(&cfg.MQTT, log); err == nil {
			mqttClient = c
			publishers = append(publishers, events.NewMQTTPublisher(c))
			log.Info("MQTT enabled for safezone-data", zap.String("broker", cfg.MQTT.Broker))
		} else {
			log.Warn("MQTT enabled but connection failed, geofence events will not be fanned out", zap.Error(err))
		}
	}
	var publisher events.Publisher = publishers
	if len(publishers) == 0 {
		publisher = events.NewLogPublisher(log)
	}

	// DB：不可用时使用内存 repo
	var db *sql.DB
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for safezone-data")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repositories", zap.Error(err))
		}
	}

	now := time.Now().UTC()
	var zonesRepo repository.ZonesRepository
	var devicesRepo repository.DevicesRepository
	if db != nil {
		if err := repository.EnsureSchema(ctx, db); err != nil {
			log.Fatal("Failed to ensure schema", zap.Error(err))
		}
		if cfg.SeedData {
			if err := repository.SeedPostgres(ctx, db, now); err != nil {
				log.Warn("Failed to seed database", zap.Error(err))
			}
		}
		zonesRepo = repository.NewPostgresZonesRepo(db, log)
		pgDevices := repository.NewPostgresDevicesRepo(db)
		pgDevices.SetLogger(log)
		devicesRepo = pgDevices
	} else if cfg.SeedData {
		zonesRepo = repository.NewMemoryZonesRepo(repository.SeedZones(now)...)
		devicesRepo = repository.NewMemoryDevicesRepo(repository.SeedDevices(now)...)
	} else {
		zonesRepo = repository.NewMemoryZonesRepo()
		devicesRepo = repository.NewMemoryDevicesRepo()
	}
	usersRepo := repository.NewMemoryUsersRepo(repository.SeedUsers()...)
	stateRepo := repository.NewKVGeofenceStateRepo(kv, cfg.Geofence.StateTTL)
	geocoder := geocode.New(nil)

	evaluator := service.NewGeofenceEvaluator(zonesRepo, stateRepo, publisher, cfg.Geofence.Timezone, log)
	zoneSvc := service.NewZoneService(zonesRepo, stateRepo, kv, cfg.ZoneCacheTTL, log)
	deviceSvc := service.NewDeviceService(devicesRepo, evaluator, geocoder, log)
	authSvc := service.NewAuthService(usersRepo, kv, cfg.Auth.CodeTTL, cfg.Auth.TokenTTL, cfg.Auth.DefaultUserID, log)

	router := httpapi.NewRouter(log)
	router.RegisterZoneRoutes(httpapi.NewZoneHandler(zoneSvc, authSvc, log))
	router.RegisterDeviceRoutes(httpapi.NewDeviceHandler(deviceSvc, log))
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(authSvc, log))
	router.RegisterGeocodeRoutes(httpapi.NewGeocodeHandler(geocoder, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	if redisClient != nil {
		_ = commonredis.Close(redisClient)
	}
	if db != nil {
		_ = database.Close(db)
	}
}
