package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/alex-user-go/feriados/internal/holiday"
)

// Provider defines the interface for holiday sources.
type Provider interface {
	// Name returns the provider name.
	Name() string
	// Holidays returns the national holidays for the given year.
	Holidays(ctx context.Context, year int) ([]holiday.Record, error)
}

// ErrConnectivity is returned when the upstream could not be reached.
var ErrConnectivity = errors.New("upstream unreachable")

// ErrInvalidResponse is returned when the upstream answered with a body that is not a holiday list.
var ErrInvalidResponse = errors.New("invalid upstream response")

// StatusError is returned when the upstream responds with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}
