package config

import (
	"errors"
	"fmt"
	"log"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DBUrl            string
	Environment      string
	Port             string
	APISecretKey     string
	AllowedOrigins   []string
	ContextTimeout   time.Duration
	DBConnectTimeout time.Duration

	Media MediaConfig
	Email EmailConfig
	AWS   AWSConfig

	BookingRateLimitRPS   float64
	BookingRateLimitBurst int
	// TrustedProxies are peers whose X-Forwarded-For/X-Real-IP headers are believed.
	TrustedProxies []netip.Prefix
}

// MediaConfig selects where event images are stored.
type MediaConfig struct {
	Provider      string
	Folder        string
	LocalDir      string
	PublicBaseURL string
	S3Bucket      string
}

// EmailConfig configures booking confirmation emails.
type EmailConfig struct {
	Provider    string
	FromAddress string
	FromName    string
}

// AWSConfig holds credentials shared by the S3 and SES clients.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// Load loads configuration from environment variables
// It attempts to load from .env file if not in production
func Load() (*Config, error) {
	env := environment()
	loadDotEnv(env)

	cfg := &Config{
		Environment:    env,
		DBUrl:          os.Getenv("DATABASE_URL"),
		Port:           getEnv("PORT", "8080"),
		APISecretKey:   os.Getenv("API_SECRET_KEY"),
		AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		Media: MediaConfig{
			Provider:      getEnv("MEDIA_PROVIDER", "local"),
			Folder:        getEnv("MEDIA_FOLDER", "DevEvent"),
			LocalDir:      getEnv("MEDIA_LOCAL_DIR", "./uploads"),
			PublicBaseURL: os.Getenv("MEDIA_PUBLIC_BASE_URL"),
			S3Bucket:      os.Getenv("S3_BUCKET"),
		},
		Email: EmailConfig{
			Provider:    getEnv("EMAIL_PROVIDER", "noop"),
			FromAddress: os.Getenv("EMAIL_FROM_ADDRESS"),
			FromName:    getEnv("EMAIL_FROM_NAME", "DevEvent"),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
	}

	if cfg.DBUrl == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	var err error
	if cfg.ContextTimeout, err = getDuration("CONTEXT_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.DBConnectTimeout, err = getDuration("DB_CONNECT_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.BookingRateLimitRPS, err = getFloat("BOOKING_RATE_LIMIT_RPS", 1); err != nil {
		return nil, err
	}
	if cfg.BookingRateLimitBurst, err = getInt("BOOKING_RATE_LIMIT_BURST", 5); err != nil {
		return nil, err
	}
	if cfg.TrustedProxies, err = getPrefixes("TRUSTED_PROXIES"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AdminSecret returns API_SECRET_KEY without requiring the rest of the configuration.
func AdminSecret() string {
	loadDotEnv(environment())
	return os.Getenv("API_SECRET_KEY")
}

func environment() string {
	if env := os.Getenv("GO_ENV"); env != "" {
		return env
	}
	return "development"
}

// loadDotEnv reads .env outside production. In production .env might not exist
// and we rely on system environment variables.
func loadDotEnv(env string) {
	if env == "production" {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration such as 10s", key, s)
	}
	return d, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive number", key, s)
	}
	return f, nil
}

func getInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, s)
	}
	return n, nil
}

// getPrefixes parses a comma list of CIDRs or bare IPs.
func getPrefixes(key string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, item := range splitList(os.Getenv(key)) {
		if strings.Contains(item, "/") {
			p, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("invalid %s entry %q: %w", key, item, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q: %w", key, item, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
