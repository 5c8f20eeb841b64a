package startup

import (
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("WRITEQ_TEST_VAR", "set")

	if got := getEnv("WRITEQ_TEST_VAR", "default"); got != "set" {
		t.Errorf("getEnv(set var) = %q, want %q", got, "set")
	}
	if got := getEnv("WRITEQ_TEST_UNSET", "default"); got != "default" {
		t.Errorf("getEnv(unset var) = %q, want %q", got, "default")
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue bool
		expected     bool
	}{
		{"true", "true", false, true},
		{"one", "1", false, true},
		{"yes", "yes", false, true},
		{"on uppercase", "ON", false, true},
		{"false", "false", true, false},
		{"zero", "0", true, false},
		{"no", "no", true, false},
		{"off", "off", true, false},
		{"garbage keeps default true", "maybe", true, true},
		{"garbage keeps default false", "maybe", false, false},
		{"empty keeps default", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				t.Setenv("WRITEQ_TEST_BOOL", "")
			} else {
				t.Setenv("WRITEQ_TEST_BOOL", tt.value)
			}
			if got := getEnvBool("WRITEQ_TEST_BOOL", tt.defaultValue); got != tt.expected {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v",
					tt.value, tt.defaultValue, got, tt.expected)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"DATABASE_PATH", "PORT", "METRICS_PORT",
		"METRICS_ENABLED", "LOG_HEALTH_CHECKS", "COLLECT_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.DatabasePath != "./writeq.sqlite" {
		t.Errorf("DatabasePath = %q", config.DatabasePath)
	}
	if config.Port != "8080" {
		t.Errorf("Port = %q, want 8080", config.Port)
	}
	if config.MetricsPort != "9090" {
		t.Errorf("MetricsPort = %q, want 9090", config.MetricsPort)
	}
	if !config.MetricsEnabled {
		t.Error("MetricsEnabled = false, want true")
	}
	if config.CollectInterval != 15*time.Second {
		t.Errorf("CollectInterval = %v, want 15s", config.CollectInterval)
	}
}

func TestLoadConfigRejectsBadPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig accepted invalid PORT")
	}
}

func TestLoadConfigBadIntervalFallsBack(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("COLLECT_INTERVAL", "soon")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.CollectInterval != 15*time.Second {
		t.Errorf("CollectInterval = %v, want 15s fallback", config.CollectInterval)
	}
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	if info.Version == "" {
		t.Error("Version is empty")
	}
	if info.GoVersion == "" {
		t.Error("GoVersion is empty")
	}
	if info.OS == "" || info.Arch == "" {
		t.Error("OS/Arch not populated")
	}
}
