package services

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bringalong/internal/config"
	"bringalong/pkg/cache"
	"bringalong/pkg/logger"
)

func newRatesServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/latest/USD":
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("Authorization = %q", got)
			}
			w.Write([]byte(`{"result":"success","base_code":"USD","rates":{"USD":1,"EUR":0.5,"INR":83.25}}`))
		case "/latest/XYZ":
			w.Write([]byte(`{"result":"error","error-type":"unsupported-code"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

// newSlowRatesServer answers every base with fixed rates after delay.
func newSlowRatesServer(t *testing.T, hits *int32, delay time.Duration) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		time.Sleep(delay)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":"success","base_code":"USD","rates":{"USD":1,"EUR":0.5,"INR":83.25}}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestCurrencyService(baseURL string) CurrencyService {
	return NewCurrencyService(&config.CurrencyConfig{
		APIBaseURL:     baseURL,
		APIKey:         "test-key",
		CacheTTL:       time.Hour,
		RequestTimeout: time.Second,
	}, cache.NewMemoryCache(), logger.NewNop())
}

func TestConvertUsesCachedRates(t *testing.T) {
	var hits int32
	svc := newTestCurrencyService(newRatesServer(t, &hits).URL)
	ctx := context.Background()

	eur, err := svc.Convert(ctx, 40, "usd", "EUR")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if eur != 20 {
		t.Errorf("40 USD = %v EUR, want 20", eur)
	}

	inr, err := svc.Convert(ctx, 2, "USD", "INR")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if math.Abs(inr-166.5) > 1e-9 {
		t.Errorf("2 USD = %v INR, want 166.5", inr)
	}

	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("rates API called %d times, want 1", n)
	}
}

func TestConvertSameCurrencySkipsLookup(t *testing.T) {
	var hits int32
	svc := newTestCurrencyService(newRatesServer(t, &hits).URL)

	got, err := svc.Convert(context.Background(), 12.5, "GBP", "gbp")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if got != 12.5 || atomic.LoadInt32(&hits) != 0 {
		t.Errorf("got %v with %d lookups, want 12.5 with none", got, hits)
	}
}

func TestConvertErrors(t *testing.T) {
	var hits int32
	svc := newTestCurrencyService(newRatesServer(t, &hits).URL)
	ctx := context.Background()

	tests := []struct {
		name     string
		from, to string
		want     error
	}{
		{"invalid code", "US", "EUR", ErrInvalidCurrency},
		{"missing rate", "USD", "JPY", ErrUnsupportedRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Convert(ctx, 1, tt.from, tt.to); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := svc.Convert(ctx, 1, "XYZ", "USD"); err == nil {
		t.Error("expected an error for an API error payload")
	}
	if _, err := svc.GetRates(ctx, "GBP"); err == nil {
		t.Error("expected an error for a non-200 response")
	}
}

func TestGetRatesSharesConcurrentFetches(t *testing.T) {
	var hits int32
	svc := newTestCurrencyService(newSlowRatesServer(t, &hits, 50*time.Millisecond).URL)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Convert(context.Background(), 10, "USD", "INR"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Convert failed: %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("rates API called %d times for one base, want 1", n)
	}
}

func TestGetRatesCallerDeadlineKeepsSharedFetch(t *testing.T) {
	var hits int32
	svc := newTestCurrencyService(newSlowRatesServer(t, &hits, 50*time.Millisecond).URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	if _, err := svc.GetRates(ctx, "USD"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the caller deadline, got %v", err)
	}

	rates, err := svc.GetRates(context.Background(), "USD")
	if err != nil {
		t.Fatalf("GetRates failed: %v", err)
	}
	if rates.Rates["EUR"] != 0.5 {
		t.Errorf("unexpected rates %v", rates.Rates)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("rates API called %d times, want 1", n)
	}
}
