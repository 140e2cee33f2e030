package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bringalong/internal/config"
	"bringalong/internal/telemetry"
	"bringalong/internal/utils"
	"bringalong/pkg/cache"
	"bringalong/pkg/logger"

	"golang.org/x/sync/singleflight"
)

type CurrencyService interface {
	Convert(ctx context.Context, amount float64, from, to string) (float64, error)
	GetRates(ctx context.Context, base string) (*ExchangeRates, error)
}

type ExchangeRates struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetchedAt"`
}

type currencyService struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cache      cache.Store
	cacheTTL   time.Duration
	logger     *logger.Logger

	// inflight collapses concurrent misses for one base into a single fetch.
	inflight singleflight.Group
}

// ratesResponse is the exchange-rate API payload for GET {base}/latest/{code}.
type ratesResponse struct {
	Result    string             `json:"result"`
	BaseCode  string             `json:"base_code"`
	Rates     map[string]float64 `json:"rates"`
	ErrorType string             `json:"error-type"`
}

func NewCurrencyService(cfg *config.CurrencyConfig, store cache.Store, log *logger.Logger) CurrencyService {
	if store == nil {
		store = cache.NewMemoryCache()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &currencyService{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		apiKey:     cfg.APIKey,
		cache:      store,
		cacheTTL:   cfg.CacheTTL,
		logger:     log,
	}
}

func (s *currencyService) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	from = utils.NormalizeCurrencyCode(from)
	to = utils.NormalizeCurrencyCode(to)
	if !utils.IsCurrencyCode(from) || !utils.IsCurrencyCode(to) {
		return 0, ErrInvalidCurrency
	}
	if from == to {
		return amount, nil
	}

	rates, err := s.GetRates(ctx, from)
	if err != nil {
		return 0, err
	}

	rate, ok := rates.Rates[to]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("%s to %s: %w", from, to, ErrUnsupportedRate)
	}

	return amount * rate, nil
}

func (s *currencyService) GetRates(ctx context.Context, base string) (*ExchangeRates, error) {
	base = utils.NormalizeCurrencyCode(base)
	if !utils.IsCurrencyCode(base) {
		return nil, ErrInvalidCurrency
	}

	key := "fx:rates:" + base

	if rates, ok := s.cachedRates(ctx, key); ok {
		return rates, nil
	}

	// The shared fetch outlives any single caller's deadline; each caller
	// still returns as soon as its own context is done.
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(key, func() (interface{}, error) {
		// a flight that just finished may have filled the cache
		var cached ExchangeRates
		if err := s.cache.Get(fetchCtx, key, &cached); err == nil {
			return &cached, nil
		}

		rates, err := s.fetchRates(fetchCtx, base)
		if err != nil {
			return nil, err
		}

		if err := s.cache.Set(fetchCtx, key, rates, s.cacheTTL); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Rate cache write failed")
		}
		return rates, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ExchangeRates), nil
	}
}

func (s *currencyService) cachedRates(ctx context.Context, key string) (*ExchangeRates, bool) {
	var cached ExchangeRates
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		telemetry.CacheLookups.WithLabelValues("fx", "hit").Inc()
		return &cached, true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.WithError(err).WithField("key", key).Warn("Rate cache read failed")
	}
	telemetry.CacheLookups.WithLabelValues("fx", "miss").Inc()
	return nil, false
}

func (s *currencyService) fetchRates(ctx context.Context, base string) (*ExchangeRates, error) {
	apiURL := fmt.Sprintf("%s/latest/%s", s.baseURL, base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange rate API returned status %d", resp.StatusCode)
	}

	var payload ratesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse exchange rates: %w", err)
	}
	if payload.Result != "success" {
		return nil, fmt.Errorf("exchange rate API error: %s", payload.ErrorType)
	}

	s.logger.WithFields(map[string]interface{}{
		"base":  base,
		"rates": len(payload.Rates),
	}).Debug("Fetched exchange rates")

	return &ExchangeRates{
		Base:      base,
		Rates:     payload.Rates,
		FetchedAt: time.Now().UTC(),
	}, nil
}
