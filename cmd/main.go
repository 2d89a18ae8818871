package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carrier-rate-engine/internal/config"
	"carrier-rate-engine/internal/delivery/http/handler"
	"carrier-rate-engine/internal/infrastructure/cache"
	"carrier-rate-engine/internal/infrastructure/database/postgres"
	"carrier-rate-engine/internal/infrastructure/events"
	"carrier-rate-engine/internal/logger"
	"carrier-rate-engine/internal/routes"
	"carrier-rate-engine/pkg/mqtt"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
	)

	if cfg.JWT.Secret == "" {
		logger.Warn("JWT secret is missing; admin endpoints are disabled. Set JWT_SECRET to enable them.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra := routes.Infrastructure{Health: map[string]handler.HealthCheck{}}

	if cfg.Database.Enabled {
		db, err := postgres.NewDB(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("Failed to close database connection", zap.Error(err))
			}
		}()
		infra.Config = postgres.NewConfigRepository(db)
		infra.Health["database"] = func(context.Context) error { return db.Health() }
	} else {
		logger.Info("Database not configured, reading pricing configuration from file",
			zap.String("pricing_file", cfg.Engine.PricingFile),
		)
	}

	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisQuoteCache(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				logger.Error("Failed to close redis connection", zap.Error(err))
			}
		}()
		infra.QuoteCache = redisCache
		infra.Health["redis"] = redisCache.Health
	}

	if cfg.MQTT.Enabled {
		client := mqtt.NewClient(&mqtt.Config{
			Broker:               cfg.MQTT.Broker,
			ClientID:             cfg.MQTT.ClientID,
			Username:             cfg.MQTT.Username,
			Password:             cfg.MQTT.Password,
			CleanSession:         true,
			KeepAlive:            30,
			ConnectTimeout:       10,
			AutoReconnect:        true,
			MaxReconnectInterval: time.Minute,
		}, logger.Named("mqtt"))
		if err := client.Connect(); err != nil {
			// quote events are best effort; rating keeps working without them
			logger.Error("Failed to connect to MQTT broker", zap.Error(err))
		} else {
			defer client.Disconnect()
			infra.Events = events.NewMQTTPublisher(client, cfg.MQTT.QuotesTopic, cfg.MQTT.QoS, logger.Named("events"))
		}
	}

	router := routes.SetupRoutes(ctx, cfg, infra)

	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	addr := net.JoinHostPort(host, port)

	// carrier calls are bounded by the engine timeout, so the write timeout leaves room for them
	writeTimeout := cfg.Engine.CarrierTimeout + 15*time.Second

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown Server ...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", zap.Error(err))
		return
	}

	logger.Info("Server exited properly")
}
