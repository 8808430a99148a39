package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/alex-user-go/feriados/internal/holiday"
	"github.com/alex-user-go/feriados/internal/providers"
)

// Modes of the mock upstream.
const (
	modeOK    = "ok"
	modeFlaky = "flaky"
	modeDown  = "down"
	modeEmpty = "empty"
	modeSlow  = "slow"
)

// Mock serves /api/feriados/v1/{year} the way BrasilAPI does, with optional
// failure injection.
type Mock struct {
	mode        string
	failureRate float64
	slowLatency time.Duration

	mu     sync.Mutex
	rng    *rand.Rand
	logger *zap.Logger
}

// NewMock creates a Mock for the given mode.
func NewMock(mode string, logger *zap.Logger) (*Mock, error) {
	switch mode {
	case modeOK, modeFlaky, modeDown, modeEmpty, modeSlow:
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	return &Mock{
		mode:        mode,
		failureRate: 0.1,
		slowLatency: 3 * time.Second,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:      logger,
	}, nil
}

// holidays simulates the upstream lookup, including latency and failures.
func (m *Mock) holidays(ctx context.Context, year int) ([]holiday.Record, error) {
	m.mu.Lock()
	// Simulate random latency (20ms to 120ms)
	latency := time.Duration(20+m.rng.Intn(100)) * time.Millisecond
	fail := m.rng.Float64() < m.failureRate
	m.mu.Unlock()

	if m.mode == modeSlow {
		latency = m.slowLatency
	}

	select {
	case <-time.After(latency):
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}

	switch {
	case m.mode == modeDown, m.mode == modeFlaky && fail:
		return nil, errProviderUnavailable
	case m.mode == modeEmpty:
		return []holiday.Record{}, nil
	}
	return providers.NationalHolidays(year), nil
}

// ServeHTTP handles HTTP requests for this provider.
func (m *Mock) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Ano inválido")
		return
	}

	records, err := m.holidays(r.Context(), year)
	if err != nil {
		m.logger.Warn("simulated failure", zap.Int("year", year), zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(records); err != nil {
		m.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeMessage mimics BrasilAPI's error body.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
