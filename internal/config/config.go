package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds everything the service reads from the environment. It is
// built once in main and passed down; nothing else touches os.Getenv.
type Config struct {
	Port      string
	JWTSecret string

	// Postgres connection pieces, assembled into a DSN.
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	RedisAddr string

	// LiveKit credential minting.
	LiveKitAPIKey    string
	LiveKitAPISecret string
	LiveKitURL       string
	TokenTTL         time.Duration

	// Optional collaborators. Empty values degrade features rather than
	// failing startup: no Gemini key disables summaries, no Piper URL
	// makes speak-question report TTS unavailable.
	GeminiAPIKey string
	GeminiModel  string
	PiperURL     string

	// Timing knobs for the interview loop.
	PlaybackFallback      time.Duration
	InterQuestionPause    time.Duration
	CaptureRestartCap     int
	CaptureRestartBackoff time.Duration
	ListeningCap          time.Duration

	// Stale interview sweeper.
	SweepSchedule string
	SessionTTL    time.Duration
}

// Load reads configuration from environment variables with development
// defaults, then validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		JWTSecret: getEnv("JWT_SECRET", "dev"),

		DBHost:     getEnv("POSTGRES_HOST", "localhost"),
		DBUser:     getEnv("POSTGRES_USER", "postgres"),
		DBPassword: getEnv("POSTGRES_PASSWORD", "postgres"),
		DBName:     getEnv("POSTGRES_DB", "voicehire"),
		DBPort:     getEnv("POSTGRES_PORT", "5432"),
		DBSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		LiveKitAPIKey:    os.Getenv("LIVEKIT_API_KEY"),
		LiveKitAPISecret: os.Getenv("LIVEKIT_API_SECRET"),
		LiveKitURL:       getEnv("LIVEKIT_URL", "ws://localhost:7880"),
		TokenTTL:         getEnvDuration("LIVEKIT_TOKEN_TTL", 2*time.Hour),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		PiperURL:     os.Getenv("PIPER_URL"),

		PlaybackFallback:      getEnvDuration("SESSION_PLAYBACK_FALLBACK", 2*time.Second),
		InterQuestionPause:    getEnvDuration("SESSION_QUESTION_PAUSE", time.Second),
		CaptureRestartCap:     getEnvInt("SESSION_CAPTURE_RESTARTS", 5),
		CaptureRestartBackoff: getEnvDuration("SESSION_CAPTURE_BACKOFF", 500*time.Millisecond),
		ListeningCap:          getEnvDuration("SESSION_LISTENING_CAP", 60*time.Second),

		SweepSchedule: getEnv("SESSION_SWEEP_SCHEDULE", "*/10 * * * *"),
		SessionTTL:    getEnvDuration("SESSION_TTL", 2*time.Hour),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.CaptureRestartCap < 0 {
		return errors.New("SESSION_CAPTURE_RESTARTS must not be negative")
	}
	if c.ListeningCap <= 0 {
		return errors.New("SESSION_LISTENING_CAP must be positive")
	}
	return nil
}

// DSN assembles the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
