package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	LogLevel string
	SiteURL  string
	// Locales served by the site, first one is the default
	Locales []string
	// Content store
	ContentBackend      string // "sanity" or "postgres"
	SanityProjectID     string
	SanityDataset       string
	SanityAPIVersion    string
	SanityToken         string
	SanityUseCDN        bool
	SanityTimeout       time.Duration
	DBUrl               string
	ContentCacheTTL     time.Duration
	ContentPageSizeMax  int
	ContentDefaultLimit int
	// Email delivery (Resend first, SMTP as fallback)
	ResendAPIKey   string
	ResendBaseURL  string
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	MailFrom       string
	ContactEmailTo string
	EmailTimeout   time.Duration
	// Redis/Upstash Configuration
	RedisURL      string
	RedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitGlobalThreshold int
	ContactRateLimit         int
	// Admin
	RevalidateJWTSecret string
	// CORS
	AllowedOrigins []string
}

func LoadConfig() (*Config, error) {
	// .env only exists locally; missing file is fine
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		SiteURL:  strings.TrimRight(getEnv("SITE_URL", "https://kondax.com"), "/"),
		Locales:  getEnvList("LOCALES", []string{"ja", "en"}),
		// Content store
		ContentBackend:      strings.ToLower(getEnv("CONTENT_BACKEND", "sanity")),
		SanityProjectID:     getEnv("SANITY_PROJECT_ID", "t62e3xha"),
		SanityDataset:       getEnv("SANITY_DATASET", "production"),
		SanityAPIVersion:    getEnv("SANITY_API_VERSION", "2023-01-01"),
		SanityToken:         getEnv("SANITY_TOKEN", ""),
		SanityUseCDN:        getEnvBool("SANITY_USE_CDN", false),
		SanityTimeout:       getEnvSeconds("SANITY_TIMEOUT_SECONDS", 10),
		DBUrl:               getEnv("DATABASE_URL", ""),
		ContentCacheTTL:     getEnvSeconds("CONTENT_CACHE_TTL_SECONDS", 60),
		ContentPageSizeMax:  getEnvInt("CONTENT_PAGE_SIZE_MAX", 50),
		ContentDefaultLimit: getEnvInt("CONTENT_DEFAULT_LIMIT", 5),
		// Email
		ResendAPIKey:   getEnv("RESEND_API_KEY", ""),
		ResendBaseURL:  strings.TrimRight(getEnv("RESEND_BASE_URL", "https://api.resend.com"), "/"),
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		MailFrom:       getEnv("MAIL_FROM", "noreply@kondax.com"),
		ContactEmailTo: getEnv("CONTACT_EMAIL_TO", "contact@kondax.com"),
		EmailTimeout:   getEnvSeconds("EMAIL_TIMEOUT_SECONDS", 15),
		// Redis
		RedisURL:      getEnv("REDIS_URL", getEnv("UPSTASH_REDIS_URL", "")),
		RedisPassword: getEnv("REDIS_PASSWORD", getEnv("UPSTASH_REDIS_PASSWORD", "")),
		// Rate limiting
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 120),
		ContactRateLimit:         getEnvInt("CONTACT_RATE_LIMIT", 5),
		// Admin
		RevalidateJWTSecret: getEnv("REVALIDATE_JWT_SECRET", ""),
		// CORS
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"https://kondax.com", "https://www.kondax.com"}),
	}

	if cfg.ContentBackend == "postgres" && cfg.DBUrl == "" {
		log.Println("WARNING: CONTENT_BACKEND=postgres but DATABASE_URL is missing. Content reads will fail.")
	}
	if cfg.ResendAPIKey == "" && cfg.SMTPHost == "" {
		log.Println("WARNING: neither RESEND_API_KEY nor SMTP_HOST configured. Contact form will be unavailable.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback and content is not cached.")
	}

	return cfg, nil
}

// DefaultLocale is the first configured locale.
func (c *Config) DefaultLocale() string {
	if len(c.Locales) == 0 {
		return "ja"
	}
	return c.Locales[0]
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}

// getEnvList splits a comma separated variable, dropping empty items
func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
