// main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	socketio "github.com/doquangtan/socket.io/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"matchcall/app/controllers"
	"matchcall/app/routes"
	"matchcall/app/services"
	"matchcall/config"
	"matchcall/database"
	"matchcall/logging"
	"matchcall/redis"
)

func main() {
	config.Load()
	logger := logging.New(os.Stdout, config.LogLevel, config.LogFormat)
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("❌ server stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	routeTable, err := services.NewRouteTable(services.RoutePaths{
		Call:     config.CallPath,
		Schedule: config.SchedulePath,
		Leave:    config.DashboardPath,
	})
	if err != nil {
		return err
	}

	// Redis carries matcher traffic, wait estimates, snapshots and socket bindings
	logger.Info("🔌 connecting to Redis", "addr", config.RedisURL)
	redisService := redis.NewService(redis.Options{
		Addr:     config.RedisURL,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})
	defer redisService.Close()
	if err := redisService.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("✅ Redis connected")

	// Cassandra and MongoDB are optional; the features they back report a
	// configuration error until they are reachable
	var scheduling services.SchedulingService
	var schedules controllers.ScheduleLister
	err = database.InitCassandra(database.CassandraOptions{
		Host:     config.CassandraHost,
		Port:     config.CassandraPort,
		Keyspace: config.CassandraKeyspace,
		Username: config.CassandraUsername,
		Password: config.CassandraPassword,
	})
	if err != nil {
		logger.Warn("⚠️ scheduling disabled", "error", err)
	} else {
		scheduler := services.NewCassandraScheduler(database.CassandraSession)
		scheduling = scheduler
		schedules = scheduler
	}

	io := socketio.New()
	messaging := services.NewMessagingService(services.NewSocketIOEmitter(io), redisService, logger)

	var profiles services.ProfileLookup
	if err := database.InitMongo(ctx, config.MongoURI, config.MongoDatabase, config.MongoProfilesCollection); err != nil {
		logger.Warn("⚠️ peer profiles disabled", "error", err)
	} else {
		profiles = services.NewProfileDirectory(database.ProfilesCollection, messaging)
	}

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		database.CloseAllConnections(closeCtx)
	}()

	sessions := services.NewSessionService(services.Capabilities{
		Navigator:  messaging,
		Routes:     routeTable,
		Matching:   services.NewRedisMatchingService(redisService),
		Scheduling: scheduling,
		Logger:     logger,
	}, services.SessionDeps{
		Store:    services.NewRedisSnapshotStore(redisService, config.SessionSnapshotTTL),
		Profiles: profiles,
		Notifier: messaging,
	})

	feed := services.NewMatchFeed(redisService, sessions, logger)
	go func() {
		if err := feed.Run(ctx); err != nil {
			logger.Error("match feed stopped", "error", err)
		}
	}()

	cron := services.NewCronService(sessions, redisService, messaging, logger)
	go func() {
		err := cron.Run(ctx, services.CronSchedule{
			WaitPollInterval: config.WaitPollInterval,
			CleanupInterval:  config.CleanupInterval,
			MaxIdle:          config.SessionMaxIdle,
		})
		if err != nil {
			logger.Error("cron stopped", "error", err)
		}
	}()

	app := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: true,
		ServerHeader:  "Fiber",
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			ctx.Status(code)
			return ctx.JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})
	app.Use(recover.New())
	app.Use(cors.New())

	// Socket.IO routes go before regular routes
	socketHandler := config.NewSocketHandler(io, sessions, messaging, []byte(config.JWTSecret), logger)
	socketHandler.SetupSocketRoutes(app)

	healthChecks := backendHealthChecks(redisService.Ping, scheduling != nil, profiles != nil)

	routes.SetupRoutes(app, routes.Dependencies{
		AppName:      config.AppName,
		AppVersion:   config.AppVersion,
		JWTSecret:    []byte(config.JWTSecret),
		FeedKey:      config.FeedAPIKey,
		Queue:        controllers.NewQueueController(sessions),
		Auth:         controllers.NewAuthController(services.NewCallTokenService(config.CallAPIKey, config.CallAPISecret, config.CallTokenTTL), profiles, schedules),
		Messaging:    controllers.NewMessagingController(feed),
		HealthChecks: healthChecks,
	})

	go func() {
		<-ctx.Done()
		logger.Info("🛑 shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Warn("shutdown failed", "error", err)
		}
	}()

	port := config.ServerPort
	logger.Info("🚀 server starting", "port", port)
	logger.Info("🔌 Socket.IO server available", "path", fmt.Sprintf(":%d/socket.io", port))
	return app.Listen(fmt.Sprintf(":%d", port))
}

// backendHealthChecks probes only the backends that came up; optional ones
// that failed at startup are reported by the features they disable
func backendHealthChecks(redisPing routes.HealthCheck, cassandraUp, mongoUp bool) map[string]routes.HealthCheck {
	checks := map[string]routes.HealthCheck{
		"redis": redisPing,
	}
	if cassandraUp {
		checks["cassandra"] = database.HealthCheck
	}
	if mongoUp {
		checks["mongo"] = database.MongoHealthCheck
	}
	return checks
}
