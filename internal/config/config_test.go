package config

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"LISTEN_ADDR", "RATE_LIMIT", "RATE_BURST", "METRICS_PATH", "GRID_DIR"} {
		t.Setenv(key, "")
	}
	c, err := Load("gateway", nil)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if c.ListenAddr != ":8080" || c.RateLimit != 1 || c.RateBurst != 3 || c.MetricsPath != "/metrics" || c.GridDir != "" {
		t.Errorf("defaults = %+v", c)
	}
}

func TestLoadEnvAndFlags(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("RATE_LIMIT", "2.5")
	t.Setenv("TOKEN_KEY", "secret")
	t.Setenv("ADMIN_PEER_ID", "42")

	c, err := Load("gateway", []string{"--listen-address=:9100", "--grid-dir", "/srv/grids"})
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if c.ListenAddr != ":9100" {
		t.Errorf("ListenAddr = %q, want flag value :9100", c.ListenAddr)
	}
	if c.GridDir != "/srv/grids" || c.RateLimit != 2.5 || c.TokenKey != "secret" || c.AdminPeerID != 42 {
		t.Errorf("config = %+v", c)
	}
}

func TestLoadBadNumber(t *testing.T) {
	t.Setenv("RATE_BURST", "many")
	if _, err := Load("gateway", nil); err == nil {
		t.Error("Load() with RATE_BURST=many: expected error")
	}
}

func TestSetupLogging(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)
	tests := []struct {
		level, format string
		ok            bool
	}{
		{"debug", "json", true},
		{"warn", "text", true},
		{"loud", "text", false},
		{"info", "xml", false},
	}
	for _, test := range tests {
		err := SetupLogging(test.level, test.format)
		if (err == nil) != test.ok {
			t.Errorf("SetupLogging(%q, %q) error = %v", test.level, test.format, err)
		}
	}
	if err := SetupLogging("debug", ""); err != nil || logrus.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, %v", logrus.GetLevel(), err)
	}
	logrus.SetFormatter(&logrus.TextFormatter{})
}
