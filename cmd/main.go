package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"hotel_ops/internal/handlers"
	"hotel_ops/internal/jobs"
	"hotel_ops/internal/logger"
	"hotel_ops/internal/notify"
	"hotel_ops/internal/push"
	"hotel_ops/internal/realtime"
	"hotel_ops/internal/repository"
	"hotel_ops/internal/repository/db"
	"hotel_ops/internal/server"
	"hotel_ops/internal/service"
	"hotel_ops/internal/storage"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real environment wins
	_ = godotenv.Load()

	configErr := loadConfig()

	log := logger.Get(viper.GetString("log.level"))
	if configErr != nil {
		log.Warnw("config file not loaded; using defaults and environment", "err", configErr)
	}

	sqlDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	if rdb := openTimerRedis(ctx, log); rdb != nil {
		defer func() { _ = rdb.Close() }()
		repos.Timers = repository.NewTimerRedis(rdb)
	}

	hub := realtime.NewHub()
	notifiers := notify.Multi{notify.NewLogNotifier(log), notify.NewHubNotifier(hub)}
	if mq := dialMQTT(log); mq != nil {
		defer mq.Close()
		notifiers = append(notifiers, notify.NewMQTTNotifier(mq))
	}

	deps := service.Deps{
		Repos:        repos,
		Hub:          hub,
		Push:         push.NewExpoClient(viper.GetString("push.endpoint"), viper.GetDuration("push.timeout")),
		Notifier:     notifiers,
		Log:          log,
		TickInterval: viper.GetDuration("session.tick"),
	}
	if blobs := openBlobStore(ctx, log); blobs != nil {
		deps.Blobs = blobs
	}
	services := service.NewService(deps)
	defer services.Sessions.Close()

	// launch-time reminder sweep, then daily
	if n, err := services.Maintenance.CheckUpcomingMaintenance(ctx); err != nil {
		log.Errorw("initial maintenance check failed", "err", err)
	} else {
		log.Infow("initial maintenance check", "reminders", n)
	}
	scheduler := jobs.NewScheduler(log)
	if err := scheduler.Add(jobs.NewMaintenanceSweep(services.Maintenance, viper.GetString("maintenance.sweep_at"))); err != nil {
		log.Fatalw("failed to schedule maintenance sweep", "err", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// start HTTP server
	apiHandler := handlers.NewHandler(services, hub, log.Named("http"))
	srv := server.New(server.Options{
		ReadHeaderTimeout: viper.GetDuration("server.read_header_timeout"),
		WriteTimeout:      viper.GetDuration("server.write_timeout"),
		IdleTimeout:       viper.GetDuration("server.idle_timeout"),
	})
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.SetDefault("port", "8080")
	viper.SetDefault("log.level", logger.InfoLevel)
	viper.SetDefault("db.path", "hotel_ops.db")
	viper.SetDefault("timer.backend", "sqlite")
	viper.SetDefault("session.tick", time.Second)
	viper.SetDefault("push.timeout", 10*time.Second)
	viper.SetDefault("maintenance.sweep_at", "08:00")

	viper.SetEnvPrefix("HOTEL_OPS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	log.Infow("opening sqlite", "path", dbPath)
	return db.InitDB(dbPath)
}

// openTimerRedis returns a client when timer.backend is redis and the
// server answers; otherwise the SQLite timer store stays in place.
func openTimerRedis(ctx context.Context, log *logger.Logger) *redis.Client {
	if viper.GetString("timer.backend") != "redis" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     viper.GetString("redis.addr"),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warnw("redis unavailable; falling back to sqlite timers", "addr", viper.GetString("redis.addr"), "err", err)
		_ = rdb.Close()
		return nil
	}
	log.Infow("timer store", "backend", "redis", "addr", viper.GetString("redis.addr"))
	return rdb
}

func dialMQTT(log *logger.Logger) *notify.MQTTClient {
	broker := viper.GetString("mqtt.broker")
	if broker == "" {
		return nil
	}
	client, err := notify.DialMQTT(broker, viper.GetString("mqtt.client_id"), log)
	if err != nil {
		log.Warnw("mqtt unavailable; reminders stay local", "broker", broker, "err", err)
		return nil
	}
	return client
}

func openBlobStore(ctx context.Context, log *logger.Logger) *storage.S3Store {
	bucket := viper.GetString("s3.bucket")
	if bucket == "" {
		log.Infow("s3.bucket not set; report photos disabled")
		return nil
	}
	store, err := storage.NewS3Store(ctx, bucket, viper.GetString("s3.region"), viper.GetString("s3.public_base_url"))
	if err != nil {
		log.Warnw("s3 unavailable; report photos disabled", "err", err)
		return nil
	}
	return store
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
