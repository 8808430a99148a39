package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alex-user-go/feriados/internal/holiday"
	"github.com/alex-user-go/feriados/internal/obs"
	"github.com/alex-user-go/feriados/internal/providers"
)

// Accepted year range, inclusive.
const (
	MinYear = 1900
	MaxYear = 2199
)

// ValidationError is returned when the requested year is out of range.
// No upstream request is made in that case.
type ValidationError struct {
	Year int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("year %d out of range [%d, %d]", e.Year, MinYear, MaxYear)
}

// ValidateYear checks that year lies in [MinYear, MaxYear].
func ValidateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return &ValidationError{Year: year}
	}
	return nil
}

// Result is the full, unfiltered holiday list for one year.
type Result struct {
	Year     int              `json:"year"`
	Source   string           `json:"source"`
	Holidays []holiday.Record `json:"holidays"`
}

// Searcher runs a holiday search for one year.
type Searcher interface {
	Search(ctx context.Context, year int) (*Result, error)
}

// Service fetches holidays from a single provider, one request per search.
type Service struct {
	provider providers.Provider
	timeout  time.Duration
	metrics  *obs.Metrics
	logger   *zap.Logger
}

// NewService creates a new Service.
func NewService(provider providers.Provider, timeout time.Duration, metrics *obs.Metrics, logger *zap.Logger) *Service {
	return &Service{
		provider: provider,
		timeout:  timeout,
		metrics:  metrics,
		logger:   logger,
	}
}

// Search validates year and fetches its holidays. There is no retry: any
// upstream failure is returned to the caller as is.
func (s *Service) Search(ctx context.Context, year int) (*Result, error) {
	if err := ValidateYear(year); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	records, err := s.provider.Holidays(ctx, year)
	if err != nil {
		s.metrics.IncUpstreamErrors()
		s.logger.Error("holiday fetch failed",
			zap.String("provider", s.provider.Name()),
			zap.Int("year", year),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	if n := holiday.CountUnparseable(records); n > 0 {
		s.logger.Warn("holidays with unparseable dates",
			zap.String("provider", s.provider.Name()),
			zap.Int("year", year),
			zap.Int("count", n))
	}

	s.logger.Debug("holiday fetch completed",
		zap.String("provider", s.provider.Name()),
		zap.Int("year", year),
		zap.Int("count", len(records)),
		zap.Duration("elapsed", time.Since(start)))

	return &Result{
		Year:     year,
		Source:   s.provider.Name(),
		Holidays: records,
	}, nil
}

// IsValidation reports whether err is a year validation error.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
