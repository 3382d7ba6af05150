package config

import (
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	Backend BackendConfig
	Session SessionConfig
	Booking BookingConfig
	Notify  NotifyConfig
	Stub    StubConfig
}

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	// CredentialFile is the single named slot holding the bearer credential
	// across restarts.
	CredentialFile string
}

type BookingConfig struct {
	// ProcessingDelay is the bounded duration of the simulated payment step.
	ProcessingDelay time.Duration
}

type NotifyConfig struct {
	DismissAfter time.Duration
}

type StubConfig struct {
	Port         string
	JWTSecret    string
	TokenTTL     time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

func Load() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:8080/v1"),
			Timeout: getDuration("BACKEND_TIMEOUT", 30*time.Second),
		},
		Session: SessionConfig{
			CredentialFile: getEnv("CREDENTIAL_FILE", defaultCredentialFile()),
		},
		Booking: BookingConfig{
			ProcessingDelay: getDuration("PAYMENT_PROCESSING_DELAY", 1500*time.Millisecond),
		},
		Notify: NotifyConfig{
			DismissAfter: getDuration("NOTIFY_DISMISS_AFTER", 3*time.Second),
		},
		Stub: StubConfig{
			Port:         getEnv("STUB_PORT", "8080"),
			JWTSecret:    getEnv("JWT_SECRET", "dev-only-secret-change-in-prod"),
			TokenTTL:     getDuration("TOKEN_TTL", 24*time.Hour),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
	}
}

func defaultCredentialFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tour-agency-credential"
	}
	return filepath.Join(home, ".tour-agency", "credential")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
