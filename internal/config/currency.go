package config

import (
	"time"
)

type CurrencyConfig struct {
	APIBaseURL        string        `yaml:"api_base_url"`
	APIKey            string        `yaml:"api_key"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	ConversionTimeout time.Duration `yaml:"conversion_timeout"`
	MaxConcurrency    int           `yaml:"max_concurrency"`
}

type GeoConfig struct {
	APIBaseURL     string        `yaml:"api_base_url"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

func loadCurrencyConfig() *CurrencyConfig {
	return &CurrencyConfig{
		APIBaseURL:        getEnv("CURRENCY_API_BASE_URL", "https://open.er-api.com/v6"),
		APIKey:            getEnv("CURRENCY_API_KEY", ""),
		CacheTTL:          getEnvAsDuration("CURRENCY_CACHE_TTL", time.Hour),
		RequestTimeout:    getEnvAsDuration("CURRENCY_REQUEST_TIMEOUT", 5*time.Second),
		ConversionTimeout: getEnvAsDuration("CURRENCY_CONVERSION_TIMEOUT", 2*time.Second),
		MaxConcurrency:    getEnvAsInt("CURRENCY_MAX_CONCURRENCY", 8),
	}
}

func loadGeoConfig() *GeoConfig {
	return &GeoConfig{
		APIBaseURL:     getEnv("GEO_API_BASE_URL", "https://ipapi.co"),
		CacheTTL:       getEnvAsDuration("GEO_CACHE_TTL", 24*time.Hour),
		RequestTimeout: getEnvAsDuration("GEO_REQUEST_TIMEOUT", 3*time.Second),
	}
}
