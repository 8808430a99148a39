package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap/zaptest"

	"github.com/alex-user-go/feriados/internal/handler"
	"github.com/alex-user-go/feriados/internal/holiday"
	"github.com/alex-user-go/feriados/internal/obs"
	"github.com/alex-user-go/feriados/internal/providers"
	"github.com/alex-user-go/feriados/internal/search"
	"github.com/alex-user-go/feriados/internal/search/cache"
	"github.com/alex-user-go/feriados/internal/search/ratelimit"
)

// mockProvider is a simple mock provider for testing.
type mockProvider struct {
	err   error
	calls atomic.Int32
}

func (m *mockProvider) Name() string {
	return "mock"
}

func (m *mockProvider) Holidays(ctx context.Context, year int) ([]holiday.Record, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return []holiday.Record{
		{Date: fmt.Sprintf("%d-01-01", year), Name: "Confraternização mundial", Type: "national"},
		{Date: fmt.Sprintf("%d-09-07", year), Name: "Independência do Brasil", Type: "national"},
		{Date: fmt.Sprintf("%d-12-25", year), Name: "Natal", Type: "national"},
	}, nil
}

type fixture struct {
	router   http.Handler
	provider *mockProvider
	limiter  *ratelimit.Limiter
	metrics  *obs.Metrics
}

func newFixture(t *testing.T, providerErr error) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	metrics := obs.NewMetrics(logger)
	searchCache := cache.NewCache(30 * time.Second)
	t.Cleanup(searchCache.Close)
	limiter := ratelimit.New(10, time.Minute)
	t.Cleanup(limiter.Close)

	p := &mockProvider{err: providerErr}
	svc := search.NewService(p, 2*time.Second, metrics, logger)
	h := handler.New(svc, searchCache, limiter, metrics, logger)

	r := chi.NewRouter()
	h.Register(r)
	return &fixture{router: r, provider: p, limiter: limiter, metrics: metrics}
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHandler_SearchHandler(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setupRateLimit func(*ratelimit.Limiter, string)
		wantStatus     int
		wantError      string
		wantShown      int
	}{
		{
			name:       "all months",
			path:       "/api/feriados/2024",
			wantStatus: http.StatusOK,
			wantShown:  3,
		},
		{
			name:       "explicit all",
			path:       "/api/feriados/2024?mes=all",
			wantStatus: http.StatusOK,
			wantShown:  3,
		},
		{
			name:       "single month",
			path:       "/api/feriados/2024?mes=9",
			wantStatus: http.StatusOK,
			wantShown:  1,
		},
		{
			name:       "month without holidays",
			path:       "/api/feriados/2024?mes=3",
			wantStatus: http.StatusOK,
			wantShown:  0,
		},
		{
			name:       "year below range",
			path:       "/api/feriados/1899",
			wantStatus: http.StatusBadRequest,
			wantError:  search.MsgInvalidYear,
		},
		{
			name:       "year above range",
			path:       "/api/feriados/2200",
			wantStatus: http.StatusBadRequest,
			wantError:  search.MsgInvalidYear,
		},
		{
			name:       "non-numeric year",
			path:       "/api/feriados/abc",
			wantStatus: http.StatusBadRequest,
			wantError:  search.MsgInvalidYear,
		},
		{
			name:       "invalid month",
			path:       "/api/feriados/2024?mes=13",
			wantStatus: http.StatusBadRequest,
			wantError:  handler.MsgInvalidMonth,
		},
		{
			name: "rate limit exceeded",
			path: "/api/feriados/2024",
			setupRateLimit: func(l *ratelimit.Limiter, ip string) {
				// Exhaust rate limit
				for i := 0; i < 10; i++ {
					l.Allow(ip)
				}
			},
			wantStatus: http.StatusTooManyRequests,
			wantError:  "rate limit exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			if tt.setupRateLimit != nil {
				tt.setupRateLimit(f.limiter, "192.168.1.1")
			}

			w := f.get(tt.path)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			if tt.wantError != "" {
				var errResp handler.ErrorResponse
				if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil {
					t.Fatalf("failed to decode error response: %v", err)
				}
				if errResp.Error != tt.wantError {
					t.Errorf("error = %q, want %q", errResp.Error, tt.wantError)
				}
				if got := f.provider.calls.Load(); got != 0 {
					t.Errorf("provider calls = %d, want 0", got)
				}
				return
			}

			var resp handler.SearchResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode result: %v", err)
			}
			if resp.Search.Year != 2024 {
				t.Errorf("search.year = %d, want 2024", resp.Search.Year)
			}
			if resp.Stats.Total != 3 {
				t.Errorf("stats.total = %d, want 3", resp.Stats.Total)
			}
			if resp.Stats.Shown != tt.wantShown || len(resp.Holidays) != tt.wantShown {
				t.Errorf("shown = %d, holidays = %d, want %d", resp.Stats.Shown, len(resp.Holidays), tt.wantShown)
			}
			if resp.Stats.Cache != "miss" {
				t.Errorf("stats.cache = %q, want miss", resp.Stats.Cache)
			}
			if resp.Status != "Encontrados 3 feriados para 2024." {
				t.Errorf("status = %q", resp.Status)
			}
			if resp.Summary == "" {
				t.Error("expected summary to be set")
			}
		})
	}
}

func TestHandler_SearchHandler_CardFields(t *testing.T) {
	f := newFixture(t, nil)

	w := f.get("/api/feriados/2024?mes=9")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp handler.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if resp.Search.Month != "9" {
		t.Errorf("search.month = %q, want 9", resp.Search.Month)
	}
	if resp.Summary != "Mostrando 1 de 3 feriados para 2024 (Setembro)." {
		t.Errorf("summary = %q", resp.Summary)
	}

	c := resp.Holidays[0]
	want := holiday.Resolve("Independência do Brasil")
	if c.Name != "Independência do Brasil" || c.Description != want.Description || c.Tip != want.Tip {
		t.Errorf("card = %+v", c)
	}
	if c.Day != "07" || c.MonthName != "Setembro" || c.FullDate != "07/09/2024" || c.Kind != "Feriado fixo" {
		t.Errorf("display fields = %q %q %q %q", c.Day, c.MonthName, c.FullDate, c.Kind)
	}
}

func TestHandler_SearchHandler_CacheHit(t *testing.T) {
	f := newFixture(t, nil)

	if w := f.get("/api/feriados/2024"); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d", w.Code)
	}
	w := f.get("/api/feriados/2024?mes=1")

	var resp handler.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if resp.Stats.Cache != "hit" {
		t.Errorf("stats.cache = %q, want hit", resp.Stats.Cache)
	}
	if got := f.provider.calls.Load(); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}
	if snap := f.metrics.Snapshot(); snap.CacheHits != 1 || snap.Requests != 2 {
		t.Errorf("metrics = %+v", snap)
	}
}

func TestHandler_SearchHandler_ProviderError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantStatus   int
		wantError    string
		wantUpstream int
	}{
		{
			name:         "upstream status",
			err:          &providers.StatusError{StatusCode: http.StatusInternalServerError},
			wantStatus:   http.StatusBadGateway,
			wantError:    "Erro ao buscar feriados (status 500).",
			wantUpstream: http.StatusInternalServerError,
		},
		{
			name:       "connectivity",
			err:        fmt.Errorf("%w: connection refused", providers.ErrConnectivity),
			wantStatus: http.StatusServiceUnavailable,
			wantError:  search.MsgConnectivity,
		},
		{
			name:       "invalid body",
			err:        fmt.Errorf("%w: unexpected EOF", providers.ErrInvalidResponse),
			wantStatus: http.StatusServiceUnavailable,
			wantError:  search.MsgConnectivity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.err)

			w := f.get("/api/feriados/2024")

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var errResp handler.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if errResp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", errResp.Error, tt.wantError)
			}
			if errResp.UpstreamStatus != tt.wantUpstream {
				t.Errorf("upstream_status = %d, want %d", errResp.UpstreamStatus, tt.wantUpstream)
			}
			if got := f.metrics.Snapshot().UpstreamErrors; got != 1 {
				t.Errorf("upstream errors = %d, want 1", got)
			}
		})
	}
}

// gatedProvider blocks every call until release is closed or ctx ends.
type gatedProvider struct {
	mockProvider
	started chan struct{}
	release chan struct{}
}

func (g *gatedProvider) Holidays(ctx context.Context, year int) ([]holiday.Record, error) {
	if g.calls.Load() == 0 {
		close(g.started)
	}
	records, err := g.mockProvider.Holidays(ctx, year)
	select {
	case <-g.release:
		return records, err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", providers.ErrConnectivity, ctx.Err())
	}
}

func TestHandler_SearchHandler_CanceledClientDoesNotFailSharedFetch(t *testing.T) {
	logger := zaptest.NewLogger(t)
	metrics := obs.NewMetrics(logger)
	searchCache := cache.NewCache(30 * time.Second)
	t.Cleanup(searchCache.Close)
	limiter := ratelimit.New(10, time.Minute)
	t.Cleanup(limiter.Close)

	p := &gatedProvider{started: make(chan struct{}), release: make(chan struct{})}
	svc := search.NewService(p, 2*time.Second, metrics, logger)
	r := chi.NewRouter()
	handler.New(svc, searchCache, limiter, metrics, logger).Register(r)

	serve := func(ctx context.Context) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/feriados/2024", nil).WithContext(ctx)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	doneA := make(chan struct{})
	go func() {
		defer close(doneA)
		serve(ctxA)
	}()
	<-p.started

	doneB := make(chan *httptest.ResponseRecorder, 1)
	go func() { doneB <- serve(context.Background()) }()

	cancelA()
	<-doneA
	close(p.release)

	select {
	case w := <-doneB:
		if w.Code != http.StatusOK {
			t.Fatalf("second client status = %d, want 200: %s", w.Code, w.Body.String())
		}
		var resp handler.SearchResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Stats.Total != 3 {
			t.Errorf("total = %d, want 3", resp.Stats.Total)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("second client never got a response")
	}

	if n := p.calls.Load(); n != 1 {
		t.Errorf("provider called %d times, want 1", n)
	}
	if got := metrics.Snapshot().UpstreamErrors; got != 0 {
		t.Errorf("upstream errors = %d, want 0", got)
	}
	if w := serve(context.Background()); w.Code != http.StatusOK {
		t.Errorf("follow-up status = %d, want 200", w.Code)
	}
	if n := p.calls.Load(); n != 1 {
		t.Errorf("follow-up should be served from cache, provider called %d times", n)
	}
}

func TestHandler_SearchHandler_RateLimitMetric(t *testing.T) {
	f := newFixture(t, nil)
	for i := 0; i < 10; i++ {
		f.limiter.Allow("192.168.1.1")
	}

	if w := f.get("/api/feriados/2024"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if got := f.metrics.Snapshot().RateLimited; got != 1 {
		t.Errorf("rate limited = %d, want 1", got)
	}
}

func TestHandler_InfoHandler(t *testing.T) {
	f := newFixture(t, nil)

	w := f.get("/api/feriados/info")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var entries []handler.InfoEntry
	if err := json.NewDecoder(w.Body).Decode(&entries); err != nil {
		t.Fatalf("failed to decode info: %v", err)
	}
	if len(entries) != len(holiday.KnownNames()) {
		t.Fatalf("entries = %d, want %d", len(entries), len(holiday.KnownNames()))
	}

	var carnaval *handler.InfoEntry
	for i := range entries {
		if entries[i].Name == "Carnaval" {
			carnaval = &entries[i]
		}
	}
	if carnaval == nil || !carnaval.Movable {
		t.Errorf("expected Carnaval to be listed as movable, got %+v", carnaval)
	}
	if got := f.provider.calls.Load(); got != 0 {
		t.Errorf("provider calls = %d, want 0", got)
	}
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		wantIP     string
	}{
		{
			name:       "X-Forwarded-For single IP",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.195"},
			remoteAddr: "192.168.1.1:12345",
			wantIP:     "203.0.113.195",
		},
		{
			name:       "X-Forwarded-For multiple IPs",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.195, 70.41.3.18, 150.172.238.178"},
			remoteAddr: "192.168.1.1:12345",
			wantIP:     "203.0.113.195",
		},
		{
			name:       "X-Real-IP",
			headers:    map[string]string{"X-Real-IP": "203.0.113.50"},
			remoteAddr: "192.168.1.1:12345",
			wantIP:     "203.0.113.50",
		},
		{
			name:       "X-Forwarded-For takes precedence",
			headers:    map[string]string{"X-Forwarded-For": "1.1.1.1", "X-Real-IP": "2.2.2.2"},
			remoteAddr: "192.168.1.1:12345",
			wantIP:     "1.1.1.1",
		},
		{
			name:       "fallback to RemoteAddr",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.1:12345",
			wantIP:     "192.168.1.1",
		},
		{
			name:       "RemoteAddr without port",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.1",
			wantIP:     "192.168.1.1",
		},
		{
			name:       "IPv6 RemoteAddr",
			headers:    map[string]string{},
			remoteAddr: "[::1]:12345",
			wantIP:     "::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			got := handler.ExtractIP(req)
			if got != tt.wantIP {
				t.Errorf("ExtractIP() = %q, want %q", got, tt.wantIP)
			}
		})
	}
}

func TestParseSearchParams(t *testing.T) {
	tests := []struct {
		name      string
		year      string
		query     string
		wantYear  int
		wantMonth holiday.MonthFilter
		wantError string
	}{
		{name: "year only", year: "2024", wantYear: 2024, wantMonth: holiday.AllMonths},
		{name: "lower bound", year: "1900", wantYear: 1900},
		{name: "upper bound", year: "2199", wantYear: 2199},
		{name: "month", year: "2024", query: "mes=12", wantYear: 2024, wantMonth: holiday.ForMonth(time.December)},
		{name: "todos", year: "2024", query: "mes=todos", wantYear: 2024, wantMonth: holiday.AllMonths},
		{name: "empty year", year: "", wantError: search.MsgInvalidYear},
		{name: "out of range", year: "1899", wantError: search.MsgInvalidYear},
		{name: "zero month", year: "2024", query: "mes=0", wantError: handler.MsgInvalidMonth},
		{name: "month name", year: "2024", query: "mes=setembro", wantError: handler.MsgInvalidMonth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/feriados/x?"+tt.query, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("ano", tt.year)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			params, err := handler.ParseSearchParams(req)

			if tt.wantError != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tt.wantError)
				}
				if err.Error() != tt.wantError {
					t.Errorf("error = %q, want %q", err.Error(), tt.wantError)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if params.Year != tt.wantYear || params.Month != tt.wantMonth {
				t.Errorf("params = %+v, want year %d month %v", params, tt.wantYear, tt.wantMonth)
			}
		})
	}
}
