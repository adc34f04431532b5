package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Scharxi/tasmo-admin-sub001/internal/handlers"
	"github.com/Scharxi/tasmo-admin-sub001/internal/logger"
	"github.com/Scharxi/tasmo-admin-sub001/internal/repository"
	"github.com/Scharxi/tasmo-admin-sub001/internal/repository/db"
	"github.com/Scharxi/tasmo-admin-sub001/internal/server"
	"github.com/Scharxi/tasmo-admin-sub001/internal/service"
	"github.com/Scharxi/tasmo-admin-sub001/internal/tasmota"

	"github.com/spf13/viper"
)

const defaultPollInterval = 30 * time.Second

// @title Tasmo Admin API
// @version 1.0
// @description Administration backend for Tasmota smart plugs: device inventory, power control, energy telemetry and workflows.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB
	database, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := database.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(database)
	transport := tasmota.NewClient(tasmota.Credentials{
		Username: viper.GetString("tasmota.username"),
		Password: viper.GetString("tasmota.password"),
	}, log)
	gateway := tasmota.NewFacade(transport, log)
	services := service.NewService(repos, gateway, service.Config{
		DeviceTimeout: viper.GetDuration("tasmota.timeout"),
		SigningKey:    viper.GetString("auth.signing_key"),
	}, log)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start telemetry poller (via composed service)
	go services.Poller.Run(ctx, pollInterval())

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "tasmo.db")
		dbPath = "tasmo.db"
	}
	return db.InitDB(dbPath)
}

func pollInterval() time.Duration {
	if d := viper.GetDuration("poller.interval"); d > 0 {
		return d
	}
	return defaultPollInterval
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
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
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
