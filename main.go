package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"writeq/internal/database"
	"writeq/internal/handlers"
	"writeq/internal/logging"
	"writeq/internal/metrics"
	"writeq/internal/middleware"
	"writeq/internal/startup"
	"writeq/internal/store"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics()

	// Calibrate the bound-parameter limit before opening the real database.
	maxVars, err := database.MaxSQLVariables()
	if err != nil {
		startup.LogFatal("Failed to probe SQL variable limit: %v", err)
	}
	logging.Info("SQLite variable limit: %d", maxVars)

	dbStart := time.Now()
	dbc, err := database.NewContext(config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to open database: %v", err)
	}
	logging.Info("Database ready at %s (%s)", dbc.Path(), time.Since(dbStart).Round(time.Millisecond))

	st, err := store.New(context.Background(), dbc, maxVars)
	if err != nil {
		startup.LogFatal("Failed to initialize store: %v", err)
	}

	collector := metrics.NewCollector(st, collectorPath(dbc.Path()), config.CollectInterval)
	collector.Start()

	h := handlers.New(st, dbc)
	router := h.Router()
	startup.LogRoutes(router)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(
		middleware.Metrics(middleware.DefaultMetricsConfig())(router))

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:    ":" + config.MetricsPort,
			Handler: metricsMux,
		}
		go func() {
			logging.Info("Metrics listening on :%s", config.MetricsPort)
			if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, collector, st, dbc)

	startup.LogServerStarted(config.Port, time.Since(startTime))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}

	// Give the shutdown goroutine time to drain the dispatcher before the
	// process exits.
	<-shutdownDone
}

var shutdownDone = make(chan struct{})

// handleShutdown drains the service in dependency order: stop accepting
// HTTP traffic, stop the gauge collector, release the store's read
// connection, then close the database context, which drains the write
// dispatcher. A leaked connection at this point is a bug and is logged
// loudly.
func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector,
	st *store.Store, dbc *database.DatabaseContext) {
	defer close(shutdownDone)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logging.Info("Received %s, shutting down", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("HTTP shutdown error: %v", err)
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logging.Error("Metrics shutdown error: %v", err)
		}
	}

	collector.Stop()

	if err := st.Close(); err != nil {
		logging.Error("Store close error: %v", err)
	}

	if err := dbc.Close(); err != nil {
		var leaked *database.ConnectionsLeakedError
		if errors.As(err, &leaked) {
			logging.Error("Connection leak at shutdown: %v", err)
		} else {
			logging.Error("Database close error: %v", err)
		}
		return
	}
	logging.Info("Database closed cleanly")
}

// collectorPath returns the on-disk path for file-size gauges, or empty for
// in-memory databases.
func collectorPath(path string) string {
	if database.IsSpecialPath(path) {
		return ""
	}
	return path
}
