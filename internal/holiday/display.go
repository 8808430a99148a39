package holiday

import (
	"fmt"
	"time"
)

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

var weekdayNames = [...]string{
	"domingo", "segunda-feira", "terça-feira", "quarta-feira",
	"quinta-feira", "sexta-feira", "sábado",
}

// MonthName returns the Portuguese name of m, or "" when m is out of range.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// WeekdayName returns the lowercase pt-BR weekday name.
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d]
}

// Card is a holiday prepared for display.
type Card struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Day         string `json:"day"`
	MonthName   string `json:"month_name"`
	Weekday     string `json:"weekday"`
	FullDate    string `json:"full_date"`
	Movable     bool   `json:"movable"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Tip         string `json:"tip"`
}

// NewCard enriches r and derives its display fields.
// A record with an unparseable date keeps empty day, weekday and full date.
func NewCard(r Record) Card {
	e := Enrich(r)
	c := Card{
		ID:          r.ID(),
		Date:        r.Date,
		Name:        r.Name,
		Type:        r.Type,
		MonthName:   "Mês",
		Movable:     e.Movable,
		Kind:        "Feriado fixo",
		Description: e.Description,
		Tip:         e.Tip,
	}
	if e.Movable {
		c.Kind = "Feriado móvel"
	}

	if t, ok := r.Time(); ok {
		c.Day = fmt.Sprintf("%02d", t.Day())
		c.MonthName = MonthName(t.Month())
		c.Weekday = WeekdayName(t.Weekday())
		c.FullDate = t.Format("02/01/2006")
	}
	return c
}

// Cards builds a card for every record, preserving order.
func Cards(records []Record) []Card {
	cards := make([]Card, 0, len(records))
	for _, r := range records {
		cards = append(cards, NewCard(r))
	}
	return cards
}
