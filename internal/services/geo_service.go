package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"bringalong/internal/config"
	"bringalong/internal/telemetry"
	"bringalong/pkg/cache"
	"bringalong/pkg/logger"
)

type GeoService interface {
	Detect(ctx context.Context, ip string) (*GeoLocation, error)
}

type GeoLocation struct {
	IP          string `json:"ip"`
	City        string `json:"city,omitempty"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	Currency    string `json:"currency,omitempty"`
}

type geoService struct {
	httpClient *http.Client
	baseURL    string
	cache      cache.Store
	cacheTTL   time.Duration
	logger     *logger.Logger
}

// ipLookupResponse is the IP-geolocation payload for GET {base}/{ip}/json/.
type ipLookupResponse struct {
	IP          string `json:"ip"`
	City        string `json:"city"`
	CountryName string `json:"country_name"`
	CountryCode string `json:"country_code"`
	Currency    string `json:"currency"`
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
}

func NewGeoService(cfg *config.GeoConfig, store cache.Store, log *logger.Logger) GeoService {
	if store == nil {
		store = cache.NewMemoryCache()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &geoService{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		cache:      store,
		cacheTTL:   cfg.CacheTTL,
		logger:     log,
	}
}

// Detect geolocates a public IP. Loopback, private and unparseable addresses
// return ErrUnsupportedAddress without a lookup.
func (s *geoService) Detect(ctx context.Context, ip string) (*GeoLocation, error) {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() || parsed.IsLinkLocalUnicast() {
		return nil, ErrUnsupportedAddress
	}
	ip = parsed.String()

	key := "geo:ip:" + ip

	var cached GeoLocation
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		telemetry.CacheLookups.WithLabelValues("geo", "hit").Inc()
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.WithError(err).WithField("key", key).Warn("Geo cache read failed")
	}
	telemetry.CacheLookups.WithLabelValues("geo", "miss").Inc()

	location, err := s.lookup(ctx, ip)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, location, s.cacheTTL); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Geo cache write failed")
	}

	return location, nil
}

func (s *geoService) lookup(ctx context.Context, ip string) (*GeoLocation, error) {
	apiURL := fmt.Sprintf("%s/%s/json/", s.baseURL, ip)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup ip: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation API returned status %d", resp.StatusCode)
	}

	var payload ipLookupResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse geolocation: %w", err)
	}
	if payload.Error {
		return nil, fmt.Errorf("geolocation API error: %s", payload.Reason)
	}

	return &GeoLocation{
		IP:          ip,
		City:        payload.City,
		Country:     payload.CountryName,
		CountryCode: payload.CountryCode,
		Currency:    strings.ToUpper(payload.Currency),
	}, nil
}
