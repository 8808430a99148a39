package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/alex-user-go/feriados/internal/holiday"
	"github.com/alex-user-go/feriados/internal/middleware"
	"github.com/alex-user-go/feriados/internal/obs"
	"github.com/alex-user-go/feriados/internal/providers"
	"github.com/alex-user-go/feriados/internal/search"
	"github.com/alex-user-go/feriados/internal/search/cache"
	"github.com/alex-user-go/feriados/internal/search/ratelimit"
)

// MsgInvalidMonth is returned when the month query parameter is malformed.
const MsgInvalidMonth = `Mês deve ser "all" ou um número entre 1 e 12.`

// Handler handles HTTP requests.
type Handler struct {
	searcher    search.Searcher
	cache       cache.ResultCache
	rateLimiter *ratelimit.Limiter
	metrics     *obs.Metrics
	logger      *zap.Logger
}

// New creates a new Handler.
func New(
	searcher search.Searcher,
	resultCache cache.ResultCache,
	rateLimiter *ratelimit.Limiter,
	metrics *obs.Metrics,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		searcher:    searcher,
		cache:       resultCache,
		rateLimiter: rateLimiter,
		metrics:     metrics,
		logger:      logger,
	}
}

// Register mounts the holiday API on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/feriados/info", h.InfoHandler)
	r.Get("/api/feriados/{ano}", h.SearchHandler)
}

// SearchResponse represents the complete API response.
type SearchResponse struct {
	Search   SearchInfo     `json:"search"`
	Stats    SearchStats    `json:"stats"`
	Status   string         `json:"status"`
	Summary  string         `json:"summary"`
	Holidays []holiday.Card `json:"holidays"`
}

// SearchInfo contains the search parameters.
type SearchInfo struct {
	Year   int    `json:"year"`
	Month  string `json:"month"`
	Source string `json:"source"`
}

// SearchStats contains search statistics.
type SearchStats struct {
	Total      int    `json:"total"`
	Shown      int    `json:"shown"`
	Cache      string `json:"cache"`
	DurationMs int64  `json:"duration_ms"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

// SearchHandler handles /api/feriados/{ano} requests.
func (h *Handler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	h.metrics.IncRequests()
	requestID := middleware.RequestID(r.Context())

	// Check rate limit
	ip := ExtractIP(r)
	if !h.rateLimiter.Allow(ip) {
		h.metrics.IncRateLimited()
		h.logger.Warn("rate limit exceeded", zap.String("request_id", requestID), zap.String("ip", ip))
		writeError(w, http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
		return
	}

	params, err := ParseSearchParams(r)
	if err != nil {
		h.logger.Debug("invalid request parameters",
			zap.String("request_id", requestID),
			zap.Error(err),
			zap.String("ip", ip))
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	// Other requests may be waiting on this fetch; it must outlive this client.
	fetchCtx := context.WithoutCancel(r.Context())
	result, cacheHit, err := h.cache.GetOrFetch(r.Context(), cache.Key(params.Year), func() (*search.Result, error) {
		return h.searcher.Search(fetchCtx, params.Year)
	})
	if err != nil {
		status, resp := errorResponse(err)
		h.logger.Error("search failed",
			zap.String("request_id", requestID),
			zap.Error(err),
			zap.Int("year", params.Year),
			zap.Int("status", status),
			zap.String("ip", ip))
		writeError(w, status, resp)
		return
	}

	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		h.metrics.IncCacheHits()
	}

	filtered := holiday.Filter(result.Holidays, params.Month)
	response := SearchResponse{
		Search: SearchInfo{
			Year:   params.Year,
			Month:  params.Month.String(),
			Source: result.Source,
		},
		Stats: SearchStats{
			Total:      len(result.Holidays),
			Shown:      len(filtered),
			Cache:      cacheStatus,
			DurationMs: time.Since(startTime).Milliseconds(),
		},
		Status:   search.StatusMessage(params.Year, len(result.Holidays)),
		Holidays: holiday.Cards(filtered),
	}
	if len(result.Holidays) > 0 {
		response.Summary = search.SummaryMessage(params.Year, len(filtered), len(result.Holidays), params.Month)
	}

	writeJSON(w, http.StatusOK, response, h.logger)
}

// InfoEntry is one row of the enrichment table.
type InfoEntry struct {
	Name string `json:"name"`
	holiday.Metadata
}

// InfoHandler lists the holidays that carry curated descriptions and tips.
func (h *Handler) InfoHandler(w http.ResponseWriter, r *http.Request) {
	names := holiday.KnownNames()
	entries := make([]InfoEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, InfoEntry{Name: name, Metadata: holiday.Resolve(name)})
	}
	writeJSON(w, http.StatusOK, entries, h.logger)
}

// errorResponse maps a search error to its HTTP status and body.
func errorResponse(err error) (int, ErrorResponse) {
	resp := ErrorResponse{Error: search.UserMessage(err)}

	var statusErr *providers.StatusError
	switch {
	case search.IsValidation(err):
		return http.StatusBadRequest, resp
	case errors.As(err, &statusErr):
		resp.UpstreamStatus = statusErr.StatusCode
		return http.StatusBadGateway, resp
	default:
		return http.StatusServiceUnavailable, resp
	}
}

// SearchParams holds validated search parameters.
type SearchParams struct {
	Year  int
	Month holiday.MonthFilter
}

// ParseSearchParams parses and validates the year path parameter and the
// optional mes query parameter.
func ParseSearchParams(r *http.Request) (*SearchParams, error) {
	yearStr := strings.TrimSpace(chi.URLParam(r, "ano"))
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return nil, errors.New(search.MsgInvalidYear)
	}
	if err := search.ValidateYear(year); err != nil {
		return nil, errors.New(search.MsgInvalidYear)
	}

	month, err := holiday.ParseMonthFilter(r.URL.Query().Get("mes"))
	if err != nil {
		return nil, errors.New(MsgInvalidMonth)
	}

	return &SearchParams{Year: year, Month: month}, nil
}

// ExtractIP extracts the client IP from the request.
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr.
func ExtractIP(r *http.Request) string {
	// Check X-Forwarded-For (first IP in the list)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Can't change status after WriteHeader, just log
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
