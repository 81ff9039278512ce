package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"printer_monitor/internal/config"
	"printer_monitor/internal/handlers"
	"printer_monitor/internal/logger"
	"printer_monitor/internal/notify"
	"printer_monitor/internal/repository"
	"printer_monitor/internal/repository/db"
	"printer_monitor/internal/server"
	"printer_monitor/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// load configs/config.yml + PRINTER_MONITOR_* env
	cfg, err := config.Load("configs", ".")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.LogLevel)

	// open DB
	sqlDB, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DBPath)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	notifier, closers := buildNotifier(cfg.Notify, repos, log)
	defer closeAll(closers, log)

	services := service.NewService(repos, notifier, service.Options{
		Thresholds: service.Thresholds{
			ReachDelta:        cfg.Thresholds.ReachDelta,
			CooldownThreshold: cfg.Thresholds.CooldownThreshold,
		},
		Auth: service.AuthOptions{
			SigningKey:   cfg.Auth.SigningKey,
			TokenTTL:     cfg.Auth.TokenTTL,
			AdminKeyHash: cfg.Auth.AdminKeyHash,
		},
		Printers: cfg.Simulator.Printers,
		Log:      log,
	})
	apiHandler := handlers.NewHandler(services, log.Named("http"))

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Simulator.Enabled {
		log.Infow("simulator_started", "printers", cfg.Simulator.Printers, "tick", cfg.Simulator.Tick)
		go services.Simulator.Run(ctx, cfg.Simulator.Tick)
	}

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, services.HeaterTracker, log)
}

// buildNotifier assembles the configured transports into one fanout.
// A transport that fails to connect is logged and skipped.
func buildNotifier(cfg config.NotifyConfig, repos *repository.Repository, log *logger.Logger) (notify.Fanout, []io.Closer) {
	var (
		fanout  notify.Fanout
		closers []io.Closer
	)
	if cfg.Journal {
		fanout = append(fanout, notify.NewJournalNotifier(repos.Events))
	}
	if cfg.MQTT.Enabled {
		n, err := notify.NewMQTTNotifier(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.TopicPrefix)
		if err != nil {
			log.Errorw("mqtt_notifier_disabled", "err", err, "broker", cfg.MQTT.Broker)
		} else {
			fanout = append(fanout, n)
			closers = append(closers, n)
		}
	}
	if cfg.Kafka.Enabled {
		n, err := notify.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Errorw("kafka_notifier_disabled", "err", err, "brokers", cfg.Kafka.Brokers)
		} else {
			fanout = append(fanout, n)
			closers = append(closers, n)
		}
	}
	log.Infow("notifiers_configured", "count", len(fanout))
	return fanout, closers
}

func closeAll(closers []io.Closer, log *logger.Logger) {
	for _, c := range closers {
		if err := c.Close(); err != nil {
			log.Errorw("notifier_close_failed", "err", err)
		}
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http_server_listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, tracker service.HeaterTracker, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop simulator before the server so no snapshot lands mid-shutdown
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
	// deliver queued heater events before the notifiers are closed
	if err := tracker.Close(ctx); err != nil {
		log.Errorw("heater_events_not_drained", "err", err)
	}
}
