package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

type Config struct {
	ListenAddr  string
	TLSCert     string
	TLSKey      string
	DatabaseURL string
	TokenKey    string
	GridDir     string
	StaticDir   string
	LogLevel    string
	LogFormat   string
	RateLimit   float64
	RateBurst   int
	MetricsPath string
	TokenBot    string
	AdminPeerID int64
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func envInt(key string, def int64) (int64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

// Load reads .env (if present) and the environment, then lets command line
// flags override them.
func Load(name string, args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	rate, err := envFloat("RATE_LIMIT", 1)
	if err != nil {
		return nil, err
	}
	burst, err := envInt("RATE_BURST", 3)
	if err != nil {
		return nil, err
	}
	peer, err := envInt("ADMIN_PEER_ID", 0)
	if err != nil {
		return nil, err
	}

	c := &Config{}
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVar(&c.ListenAddr, "listen-address", env("LISTEN_ADDR", ":8080"), "Address to serve the gateway on.")
	fs.StringVar(&c.TLSCert, "tls-cert", env("TLS_CERT", ""), "TLS certificate file. Plain HTTP when empty.")
	fs.StringVar(&c.TLSKey, "tls-key", env("TLS_KEY", ""), "TLS key file.")
	fs.StringVar(&c.DatabaseURL, "database-url", env("DATABASE_URL", ""), "Postgres connection string, or \"memory\".")
	fs.StringVar(&c.GridDir, "grid-dir", env("GRID_DIR", ""), "Directory with block1.csv..block3.csv. Bundled tables when empty.")
	fs.StringVar(&c.StaticDir, "static-dir", env("STATIC_DIR", "./static"), "Frontend files.")
	fs.StringVar(&c.LogLevel, "log-level", env("LOG_LEVEL", "info"), "Log level.")
	fs.StringVar(&c.LogFormat, "log-format", env("LOG_FORMAT", "text"), "Log format: text or json.")
	fs.Float64Var(&c.RateLimit, "rate-limit", rate, "Requests per second per client IP.")
	fs.IntVar(&c.RateBurst, "rate-burst", int(burst), "Request burst per client IP.")
	fs.StringVar(&c.MetricsPath, "web.telemetry-path", env("METRICS_PATH", "/metrics"), "Path under which to expose metrics.")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	c.TokenKey = os.Getenv("TOKEN_KEY")
	c.TokenBot = os.Getenv("TOKEN_BOT")
	c.AdminPeerID = peer
	return c, nil
}

// SetupLogging configures the standard logrus logger.
func SetupLogging(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	switch format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}
