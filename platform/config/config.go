// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// GeminiConfig provides settings for the AI completion client.
type GeminiConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	GetGeminiFallbackModels() []string
	GetGeminiTimeout() time.Duration
	GetGeminiMaxAttempts() int
	GetGeminiRetryBaseDelay() time.Duration
}

// GeocodingConfig provides settings for the Nominatim geocoding client.
type GeocodingConfig interface {
	GetNominatimBaseURL() string
	GetGeoUserAgent() string
	GetGeoTimeout() time.Duration
}

// OverpassConfig provides settings for the Overpass spatial query client.
type OverpassConfig interface {
	GetOverpassBaseURL() string
	GetGeoUserAgent() string
	GetGeoTimeout() time.Duration
}

// HospitalSearchConfig provides settings for the hospital search orchestrator.
type HospitalSearchConfig interface {
	GetHospitalSearchRadiusKm() float64
	GetHospitalFallbackRadiusKm() float64
	IsTextSearchFallbackEnabled() bool
	GetMarkerIconURL() string
}

// UploadConfig provides settings for image upload handling.
type UploadConfig interface {
	GetUploadMaxFileSize() int64
}

// MinIOConfig provides settings for the optional MinIO upload archive.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketUploads() string
	IsMinIOEnabled() bool
}

// =============================================================================
// Config
// =============================================================================

// Config holds all application configuration, loaded from the environment.
type Config struct {
	Env      string
	HTTPAddr string

	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	GeminiAPIKey         string
	GeminiModel          string
	GeminiFallbackModels []string
	GeminiTimeout        time.Duration
	GeminiMaxAttempts    int
	GeminiRetryBaseDelay time.Duration

	NominatimBaseURL string
	OverpassBaseURL  string
	GeoUserAgent     string
	GeoTimeout       time.Duration

	HospitalSearchRadiusKm   float64
	HospitalFallbackRadiusKm float64
	TextSearchFallback       bool
	MarkerIconURL            string

	UploadMaxFileSize int64

	MinIOEndpoint      string
	MinIOAccessKey     string
	MinIOSecretKey     string
	MinIOUseSSL        bool
	MinioBucketUploads string
}

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// GeminiConfig implementation
func (c *Config) GetGeminiAPIKey() string                 { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string                  { return c.GeminiModel }
func (c *Config) GetGeminiFallbackModels() []string       { return c.GeminiFallbackModels }
func (c *Config) GetGeminiTimeout() time.Duration         { return c.GeminiTimeout }
func (c *Config) GetGeminiMaxAttempts() int               { return c.GeminiMaxAttempts }
func (c *Config) GetGeminiRetryBaseDelay() time.Duration  { return c.GeminiRetryBaseDelay }

// Geocoding/Overpass implementation
func (c *Config) GetNominatimBaseURL() string { return c.NominatimBaseURL }
func (c *Config) GetOverpassBaseURL() string  { return c.OverpassBaseURL }
func (c *Config) GetGeoUserAgent() string     { return c.GeoUserAgent }
func (c *Config) GetGeoTimeout() time.Duration { return c.GeoTimeout }

// HospitalSearchConfig implementation
func (c *Config) GetHospitalSearchRadiusKm() float64   { return c.HospitalSearchRadiusKm }
func (c *Config) GetHospitalFallbackRadiusKm() float64 { return c.HospitalFallbackRadiusKm }
func (c *Config) IsTextSearchFallbackEnabled() bool    { return c.TextSearchFallback }
func (c *Config) GetMarkerIconURL() string             { return c.MarkerIconURL }

// UploadConfig implementation
func (c *Config) GetUploadMaxFileSize() int64 { return c.UploadMaxFileSize }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string      { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string     { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string     { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool          { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketUploads() string { return c.MinioBucketUploads }
func (c *Config) IsMinIOEnabled() bool          { return c.MinIOEndpoint != "" }

// Load reads configuration from the environment (and an optional .env file).
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "true"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":3000"),

		CORSAllowAll:   corsAllowAll,
		CORSOrigins:    corsOrigins,
		CORSAllowCreds: strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),

		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "models/gemini-1.5-flash"),
		GeminiFallbackModels: splitCSV(getEnv("GEMINI_FALLBACK_MODELS", "models/gemini-1.5-flash,models/gemini-1.5-pro,models/gemini-pro,models/gemini-flash")),
		GeminiTimeout:        mustDuration(getEnv("GEMINI_TIMEOUT", "30s")),
		GeminiMaxAttempts:    mustInt(getEnv("GEMINI_MAX_ATTEMPTS", "4")),
		GeminiRetryBaseDelay: mustDuration(getEnv("GEMINI_RETRY_BASE_DELAY", "1s")),

		NominatimBaseURL: getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		OverpassBaseURL:  getEnv("OVERPASS_BASE_URL", "https://overpass-api.de/api/interpreter"),
		GeoUserAgent:     getEnv("GEO_USER_AGENT", "MediCare-AI-Hospital-Finder/1.0"),
		GeoTimeout:       mustDuration(getEnv("GEO_TIMEOUT", "10s")),

		HospitalSearchRadiusKm:   mustFloat(getEnv("HOSPITAL_SEARCH_RADIUS_KM", "7")),
		HospitalFallbackRadiusKm: mustFloat(getEnv("HOSPITAL_FALLBACK_RADIUS_KM", "10")),
		TextSearchFallback:       strings.EqualFold(getEnv("HOSPITAL_TEXT_SEARCH_FALLBACK", "false"), "true"),
		MarkerIconURL:            getEnv("HOSPITAL_MARKER_ICON_URL", ""),

		UploadMaxFileSize: mustInt64(getEnv("MAX_FILE_SIZE", "5242880")),

		MinIOEndpoint:      getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:     getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:        strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketUploads: getEnv("MINIO_BUCKET_UPLOADS", "medicare-uploads"),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.HospitalSearchRadiusKm <= 0 || cfg.HospitalFallbackRadiusKm <= 0 {
		return nil, fmt.Errorf("hospital search radii must be positive")
	}
	if cfg.HospitalFallbackRadiusKm < cfg.HospitalSearchRadiusKm {
		return nil, fmt.Errorf("HOSPITAL_FALLBACK_RADIUS_KM must not be smaller than HOSPITAL_SEARCH_RADIUS_KM")
	}
	if cfg.GeminiMaxAttempts < 1 {
		return nil, fmt.Errorf("GEMINI_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}

func mustDuration(value string) time.Duration {
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return parsed
}

func mustInt(value string) int {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return parsed
}

func mustInt64(value string) int64 {
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func mustFloat(value string) float64 {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return parsed
}
