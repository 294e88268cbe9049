package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process configuration read from the environment.
type Config struct {
	Port string

	MongoURI      string
	MongoDatabase string
	// StoreDriver is "mongo" or "memory".
	StoreDriver string

	RedisAddr     string
	RedisPassword string

	JWTSecret        string
	BusinessTimezone string

	LogFile   string
	UploadDir string

	RatePerMinute int
	RateBurst     int

	EmailRetryInterval time.Duration
	NotifyTimeout      time.Duration

	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// Load reads .env if present and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	cfg := &Config{
		Port:               getEnv("PORT", ":8080"),
		MongoURI:           getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:      getEnv("MONGODB_DATABASE", "kartbooking"),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", "mongo")),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		BusinessTimezone:   getEnv("BUSINESS_TIMEZONE", "Europe/Tallinn"),
		LogFile:            getEnv("LOG_FILE", ""),
		UploadDir:          getEnv("UPLOAD_DIR", "static/uploads"),
		RatePerMinute:      getEnvInt("RATE_PER_MINUTE", 60),
		RateBurst:          getEnvInt("RATE_BURST", 10),
		EmailRetryInterval: getEnvDuration("EMAIL_RETRY_INTERVAL", 10*time.Minute),
		NotifyTimeout:      getEnvDuration("NOTIFY_TIMEOUT", 10*time.Second),
		AdminEmail:         getEnv("ADMIN_EMAIL", ""),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		AdminName:          getEnv("ADMIN_NAME", "Administrator"),
	}
	if cfg.Port[0] != ':' {
		cfg.Port = ":" + cfg.Port
	}
	if err := cfg.resolveJWTSecret(); err != nil {
		log.Fatal(err)
	}
	return cfg
}

var errNoJWTSecret = errors.New("JWT_SECRET must be set unless STORE_DRIVER=memory")

// resolveJWTSecret rejects a missing or placeholder secret. The memory driver
// gets a random secret that lives as long as the process.
func (c *Config) resolveJWTSecret() error {
	if c.JWTSecret != "" && c.JWTSecret != "defaultSecret" {
		return nil
	}
	if c.StoreDriver != "memory" {
		return errNoJWTSecret
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	c.JWTSecret = hex.EncodeToString(buf)
	log.Println("Warning: JWT_SECRET not set, using a random secret for this process")
	return nil
}

// Location resolves BusinessTimezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.BusinessTimezone)
	if err != nil {
		log.Printf("Warning: unknown BUSINESS_TIMEZONE %q, using UTC", c.BusinessTimezone)
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
