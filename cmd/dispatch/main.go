// Command dispatch runs the reminder dispatcher: a periodic sweep that
// delivers due reminders and reschedules them.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/zapponejosh/devotions-api/internal/config"
	"github.com/zapponejosh/devotions-api/internal/database"
	"github.com/zapponejosh/devotions-api/internal/devotion"
	"github.com/zapponejosh/devotions-api/internal/logger"
	"github.com/zapponejosh/devotions-api/internal/metrics"
	"github.com/zapponejosh/devotions-api/internal/reminder"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.Setup(cfg)
	log.Info("starting reminder dispatcher",
		slog.String("env", cfg.Env),
		slog.Duration("sweep_interval", cfg.SweepInterval),
	)

	if err := run(cfg, log); err != nil {
		log.Error("dispatcher exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	sink := metrics.NewPrometheus(prometheus.DefaultRegisterer)
	dispatcher := reminder.NewDispatcher(db, &logNotifier{log: log}, sink, log,
		reminder.WithSendTimeout(cfg.SendTimeout))

	// Metrics endpoint on the port above the API's.
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port+1)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Info("metrics listening", slog.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("metrics server", slog.Any("error", err))
		}
	}()

	c := cron.New()
	_, err = c.AddFunc(fmt.Sprintf("@every %s", cfg.SweepInterval), func() {
		if err := dispatcher.Sweep(context.Background()); err != nil {
			log.Error("sweep failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling sweep: %w", err)
	}
	c.Start()
	defer c.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	sig := <-stop
	log.Info("shutting down", slog.String("signal", sig.String()))
	return nil
}

// logNotifier writes deliveries to the log. Real transports (push, SMS,
// email providers) plug in behind the same interface.
type logNotifier struct {
	log *slog.Logger
}

func (n *logNotifier) Send(ctx context.Context, method string, user *database.User, r database.Reminder) error {
	name, ok := devotion.Names[r.Devotion]
	if !ok {
		name = r.Devotion
	}
	n.log.Info("reminder delivery",
		slog.String("method", method),
		slog.String("user_id", user.ID),
		slog.String("message", fmt.Sprintf("Time for %s! Read here: %s", name, devotion.URLs[r.Devotion])),
	)
	return nil
}
