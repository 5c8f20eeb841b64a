package startup

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"writeq/internal/logging"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	DatabasePath    string
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	LogHealthChecks bool
	CollectInterval time.Duration
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	databasePath := getEnv("DATABASE_PATH", "./writeq.sqlite")
	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", false)
	collectIntervalStr := getEnv("COLLECT_INTERVAL", "15s")

	logging.Info("  DATABASE_PATH:     %s", databasePath)
	logging.Info("  PORT:              %s", port)
	logging.Info("  METRICS_PORT:      %s", metricsPort)
	logging.Info("  METRICS_ENABLED:   %v", metricsEnabled)
	logging.Info("  LOG_HEALTH_CHECKS: %v", logHealthChecks)
	logging.Info("  COLLECT_INTERVAL:  %s", collectIntervalStr)
	logging.Info("  LOG_LEVEL:         %s", logging.GetLevel())

	collectInterval, err := time.ParseDuration(collectIntervalStr)
	if err != nil {
		logging.Warn("  Invalid COLLECT_INTERVAL, using default: 15s")
		collectInterval = 15 * time.Second
	}

	if databasePath == "" {
		return nil, fmt.Errorf("DATABASE_PATH must not be empty")
	}
	if _, err := strconv.Atoi(port); err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
	}
	if _, err := strconv.Atoi(metricsPort); err != nil {
		return nil, fmt.Errorf("invalid METRICS_PORT %q: %w", metricsPort, err)
	}

	return &Config{
		DatabasePath:    databasePath,
		Port:            port,
		MetricsPort:     metricsPort,
		MetricsEnabled:  metricsEnabled,
		LogHealthChecks: logHealthChecks,
		CollectInterval: collectInterval,
	}, nil
}

func printBanner() {
	logging.Printf("writeq %s (commit %s, built %s, %s)",
		Version, Commit, BuildTime, GoVersion)
	logging.Debug("Runtime: %s/%s, %d CPU(s)", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
}

// LogRoutes logs every route registered on the router.
func LogRoutes(router *mux.Router) {
	logging.Info("------------------------------------------------------------")
	logging.Info("ROUTES")
	logging.Info("------------------------------------------------------------")

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil {
			return nil // subrouters without a path template
		}
		methods, err := route.GetMethods()
		if err != nil {
			logging.Info("  ANY %s", path)
			return nil
		}
		logging.Info("  %s %s", strings.Join(methods, ","), path)
		return nil
	})
	if err != nil {
		logging.Warn("Failed to walk routes: %v", err)
	}
}

// LogServerStarted logs the final startup line.
func LogServerStarted(port string, elapsed time.Duration) {
	logging.Info("Listening on :%s (started in %s)", port, elapsed.Round(time.Millisecond))
}

// LogFatal logs the message and exits with a non-zero status.
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// getEnv returns the environment variable value or the default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool parses a boolean environment variable.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}
