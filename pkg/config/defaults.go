// Package config provides centralized default values for couture-edge
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Upstream catalog API
	UpstreamBaseURL    string
	UpstreamTimeout    time.Duration
	CatalogPageSize    int
	CatalogMaxPages    int
	TrendingLimit      int
	PersonalizedLimit  int
	RecommendationTopN int

	// Snapshot store
	CatalogTTL    time.Duration
	SQLitePath    string
	TursoDatabase string
	TursoToken    string

	// Visitor identity
	VisitorCookieName   string
	SessionCookieName   string
	VisitorCookieMaxAge time.Duration
	CookieDomain        string

	// Behavior log caps
	PageViewLogCap     int
	SearchLogCap       int
	ProductViewLogCap  int
	CartActionLogCap   int
	ObservationListCap int

	// Default preference bounds
	DefaultPriceMin float64
	DefaultPriceMax float64

	// Sysop surface
	SysopPasswordHash string
	JWTSecret         string
	SysopTokenTTL     time.Duration
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "10000")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second)

	// Upstream catalog API
	UpstreamBaseURL = getEnvString("CATALOG_API_URL", "https://api.couture-collection.com/api")
	UpstreamTimeout = getEnvDuration("CATALOG_API_TIMEOUT", 15*time.Second)
	CatalogPageSize = getEnvInt("CATALOG_PAGE_SIZE", 100)
	CatalogMaxPages = getEnvInt("CATALOG_MAX_PAGES", 200)
	TrendingLimit = getEnvInt("TRENDING_LIMIT", 12)
	PersonalizedLimit = getEnvInt("PERSONALIZED_LIMIT", 10)
	RecommendationTopN = getEnvInt("RECOMMENDATION_TOP_N", 3)

	// Snapshot store
	CatalogTTL = getEnvDuration("CATALOG_CACHE_TTL", 10*time.Minute)
	SQLitePath = getEnvString("SQLITE_PATH", "data/couture-edge.db")
	TursoDatabase = getEnvString("TURSO_DATABASE_URL", "")
	TursoToken = getEnvString("TURSO_AUTH_TOKEN", "")

	// Visitor identity
	VisitorCookieName = getEnvString("VISITOR_COOKIE_NAME", "ce_uid")
	SessionCookieName = getEnvString("SESSION_COOKIE_NAME", "ce_sid")
	VisitorCookieMaxAge = getEnvDuration("VISITOR_COOKIE_MAX_AGE", 365*24*time.Hour)
	CookieDomain = getEnvString("COOKIE_DOMAIN", "")

	// Behavior log caps
	PageViewLogCap = getEnvInt("PAGE_VIEW_LOG_CAP", 50)
	SearchLogCap = getEnvInt("SEARCH_LOG_CAP", 20)
	ProductViewLogCap = getEnvInt("PRODUCT_VIEW_LOG_CAP", 100)
	CartActionLogCap = getEnvInt("CART_ACTION_LOG_CAP", 200)
	ObservationListCap = getEnvInt("OBSERVATION_LIST_CAP", 100)

	// Default preference bounds
	DefaultPriceMin = 0
	DefaultPriceMax = 10000

	// Sysop surface
	SysopPasswordHash = getEnvString("SYSOP_PASSWORD_HASH", "")
	JWTSecret = getEnvString("JWT_SECRET", "")
	SysopTokenTTL = getEnvDuration("SYSOP_TOKEN_TTL", 12*time.Hour)
}
