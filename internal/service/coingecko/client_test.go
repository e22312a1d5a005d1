package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domrepo "CoinPulse/internal/domain/repository"
)

func TestCurrentPriceFromAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/simple/price") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"bitcoin":{"usd":50000.25}}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	if got := c.CurrentPrice(context.Background(), "btc", "usd"); got != 50000.25 {
		t.Fatalf("price = %v, want 50000.25", got)
	}
}

func TestCurrentPriceFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRetries(1))
	if got := c.CurrentPrice(context.Background(), "BTC", "USD"); got != 45230.50 {
		t.Fatalf("price = %v, want static fallback", got)
	}
}

func TestRetriesZeroStaysBounded(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	// Zero is below the minimum attempt count and must not wrap the retry
	// budget around; the default of 3 attempts applies.
	c := NewClient(WithBaseURL(srv.URL), WithRetries(0))
	if got := c.CurrentPrice(context.Background(), "BTC", "USD"); got != 45230.50 {
		t.Fatalf("price = %v, want static fallback", got)
	}
	if calls != 3 {
		t.Fatalf("server called %d times, want 3 attempts", calls)
	}
}

func TestCurrentPriceFallsBackOnRateLimit(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		fmt.Fprint(w, `{"bitcoin":{"usd":50000}}`)
	}))
	defer srv.Close()

	// Capacity 1 with no refill: second call must not hit the server.
	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(1, 0))
	c.CurrentPrice(context.Background(), "BTC", "USD")
	if got := c.CurrentPrice(context.Background(), "BTC", "USD"); got != 45230.50 {
		t.Fatalf("throttled price = %v, want static fallback", got)
	}
	if calls != 1 {
		t.Fatalf("server called %d times, want 1", calls)
	}
}

func TestPriceSeriesFromAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/coins/ethereum/market_chart") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		// Out of order on purpose; the client must sort ascending.
		fmt.Fprint(w, `{"prices":[[3000,101.5],[1000,100.0],[2000,100.5]]}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	series := c.PriceSeries(context.Background(), "ETH", domrepo.TF1h)
	if len(series) != 3 {
		t.Fatalf("series length %d, want 3", len(series))
	}
	for i := 1; i < len(series); i++ {
		if series[i].Timestamp <= series[i-1].Timestamp {
			t.Fatalf("series not ascending at %d", i)
		}
	}
	if series[0].Price != 100.0 || series[2].Price != 101.5 {
		t.Fatalf("unexpected prices %+v", series)
	}
}

func TestPriceSeriesFallsBackOnEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"prices":[]}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	series := c.PriceSeries(context.Background(), "BTC", domrepo.TF5m)
	if len(series) != len(mockSeriesShape) {
		t.Fatalf("series length %d, want mock shape %d", len(series), len(mockSeriesShape))
	}
	if series[0].Price != 45230.50 {
		t.Fatalf("mock series not scaled to symbol base: %v", series[0].Price)
	}
}
