package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Platform names the runtime host family the client is packaged for.
const (
	PlatformDesktop = "desktop"
	PlatformAndroid = "android"
)

type Config struct {
	Env      string
	Platform string
	// Hostname is the origin the client observes itself running on. It is
	// the environment signal fed to the endpoint resolver, not the server
	// address itself.
	Hostname string

	Endpoint EndpointConfig
	Session  SessionConfig
	HTTP     HTTPConfig
	Log      LogConfig
	Listing  ListingConfig
	Upload   UploadConfig
	Dev      DevServerConfig
}

// EndpointConfig feeds the environment-aware base URL resolution.
type EndpointConfig struct {
	LocalPort int
	TunnelURL string
}

// SessionConfig locates the durable session pair.
type SessionConfig struct {
	File string
}

type HTTPConfig struct {
	Timeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// ListingConfig tunes client-side pagination.
type ListingConfig struct {
	PageSize int
}

// UploadConfig tunes the synthetic progress reporting.
type UploadConfig struct {
	TickInterval time.Duration
	TickStep     int
	HighWater    int
}

// DevServerConfig configures the local development server.
type DevServerConfig struct {
	Port      int
	JWTSecret string
	TokenTTL  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Platform = v.GetString("PLATFORM")
	cfg.Hostname = v.GetString("CLIENT_HOSTNAME")

	cfg.Endpoint = EndpointConfig{
		LocalPort: v.GetInt("LOCAL_PORT"),
		TunnelURL: v.GetString("TUNNEL_URL"),
	}

	cfg.Session = SessionConfig{
		File: v.GetString("SESSION_FILE"),
	}

	cfg.HTTP = HTTPConfig{
		Timeout: parseDuration(v.GetString("HTTP_TIMEOUT"), 30*time.Second),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Listing = ListingConfig{
		PageSize: v.GetInt("PAGE_SIZE"),
	}

	cfg.Upload = UploadConfig{
		TickInterval: parseDuration(v.GetString("UPLOAD_TICK_INTERVAL"), 300*time.Millisecond),
		TickStep:     v.GetInt("UPLOAD_TICK_STEP"),
		HighWater:    v.GetInt("UPLOAD_HIGH_WATER"),
	}

	cfg.Dev = DevServerConfig{
		Port:      v.GetInt("DEVSERVER_PORT"),
		JWTSecret: v.GetString("DEVSERVER_JWT_SECRET"),
		TokenTTL:  parseDuration(v.GetString("DEVSERVER_TOKEN_TTL"), 24*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PLATFORM", PlatformDesktop)
	v.SetDefault("CLIENT_HOSTNAME", "localhost")

	v.SetDefault("LOCAL_PORT", 5000)
	v.SetDefault("TUNNEL_URL", "")

	v.SetDefault("SESSION_FILE", ".edushare/session.json")
	v.SetDefault("HTTP_TIMEOUT", "30s")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PAGE_SIZE", 4)

	v.SetDefault("UPLOAD_TICK_INTERVAL", "300ms")
	v.SetDefault("UPLOAD_TICK_STEP", 10)
	v.SetDefault("UPLOAD_HIGH_WATER", 90)

	v.SetDefault("DEVSERVER_PORT", 5000)
	v.SetDefault("DEVSERVER_JWT_SECRET", "dev_secret")
	v.SetDefault("DEVSERVER_TOKEN_TTL", "24h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
