package session

import (
	"context"
	"errors"
	"sync"

	"github.com/alex-user-go/feriados/internal/holiday"
	"github.com/alex-user-go/feriados/internal/search"
)

// ErrStale is returned by Submit when a newer submission started while the
// search was in flight. The response is dropped and the state is untouched.
var ErrStale = errors.New("stale search response discarded")

// Session holds the transient state of one search page.
// It is safe for concurrent use.
type Session struct {
	searcher search.Searcher

	mu         sync.Mutex
	generation uint64
	year       int
	month      holiday.MonthFilter
	holidays   []holiday.Record
	loading    bool
	status     string
	errMsg     string
	expandedID string
}

// New creates an empty Session backed by searcher.
func New(searcher search.Searcher) *Session {
	return &Session{searcher: searcher}
}

// Submit runs a search for year and replaces the result set with its
// outcome. Each call starts a new generation; if another Submit begins
// before this one's search returns, the response is discarded and ErrStale
// is returned.
func (s *Session) Submit(ctx context.Context, year int) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.year = year
	s.errMsg = ""
	s.status = ""
	s.holidays = nil
	s.expandedID = ""

	if err := search.ValidateYear(year); err != nil {
		s.loading = false
		s.errMsg = search.UserMessage(err)
		s.mu.Unlock()
		return err
	}
	s.loading = true
	s.mu.Unlock()

	res, err := s.searcher.Search(ctx, year)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return ErrStale
	}
	s.loading = false

	if err != nil {
		s.errMsg = search.UserMessage(err)
		return err
	}

	s.holidays = res.Holidays
	s.status = search.StatusMessage(year, len(res.Holidays))
	return nil
}

// SetMonth changes the month filter. The result set is kept.
func (s *Session) SetMonth(f holiday.MonthFilter) {
	s.mu.Lock()
	s.month = f
	s.mu.Unlock()
}

// Toggle expands the card with the given ID, collapsing any other.
// Toggling the expanded card collapses it.
func (s *Session) Toggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expandedID == id {
		s.expandedID = ""
		return
	}
	s.expandedID = id
}

// CardView is a card together with its expansion state.
type CardView struct {
	holiday.Card
	Expanded bool `json:"expanded"`
}

// View is a snapshot of everything the page shows.
type View struct {
	Year    int                 `json:"year"`
	Month   holiday.MonthFilter `json:"month"`
	Loading bool                `json:"loading"`
	Status  string              `json:"status,omitempty"`
	Error   string              `json:"error,omitempty"`
	Summary string              `json:"summary,omitempty"`
	Empty   string              `json:"empty,omitempty"`
	Total   int                 `json:"total"`
	Shown   int                 `json:"shown"`
	Cards   []CardView          `json:"cards"`
}

// View returns the current state with the month filter applied.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := holiday.Filter(s.holidays, s.month)
	v := View{
		Year:    s.year,
		Month:   s.month,
		Loading: s.loading,
		Status:  s.status,
		Error:   s.errMsg,
		Total:   len(s.holidays),
		Shown:   len(filtered),
		Cards:   make([]CardView, 0, len(filtered)),
	}

	for _, c := range holiday.Cards(filtered) {
		v.Cards = append(v.Cards, CardView{Card: c, Expanded: c.ID == s.expandedID})
	}

	if v.Total > 0 {
		v.Summary = search.SummaryMessage(s.year, v.Shown, v.Total, s.month)
	}

	switch {
	case s.loading:
	case v.Total == 0 && s.errMsg == "":
		v.Empty = search.MsgPrompt
	case v.Total > 0 && v.Shown == 0:
		v.Empty = search.MsgMonthEmpty
	}
	return v
}
