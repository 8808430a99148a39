package providers

import (
	"context"
	"sort"
	"time"

	"github.com/rickar/cal/v2"

	"github.com/alex-user-go/feriados/internal/holiday"
)

// TypeNational is the record type BrasilAPI uses for national holidays.
const TypeNational = "national"

// Brazilian national holidays, named as BrasilAPI names them.
var (
	confraternizacao = &cal.Holiday{Name: "Confraternização mundial", Month: time.January, Day: 1, Func: cal.CalcDayOfMonth}
	carnaval         = &cal.Holiday{Name: "Carnaval", Offset: -47, Func: cal.CalcEasterOffset}
	sextaFeiraSanta  = &cal.Holiday{Name: "Sexta-feira Santa", Offset: -2, Func: cal.CalcEasterOffset}
	pascoa           = &cal.Holiday{Name: "Páscoa", Offset: 0, Func: cal.CalcEasterOffset}
	tiradentes       = &cal.Holiday{Name: "Tiradentes", Month: time.April, Day: 21, Func: cal.CalcDayOfMonth}
	diaDoTrabalho    = &cal.Holiday{Name: "Dia do trabalho", Month: time.May, Day: 1, Func: cal.CalcDayOfMonth}
	corpusChristi    = &cal.Holiday{Name: "Corpus Christi", Offset: 60, Func: cal.CalcEasterOffset}
	independencia    = &cal.Holiday{Name: "Independência do Brasil", Month: time.September, Day: 7, Func: cal.CalcDayOfMonth}
	aparecida        = &cal.Holiday{Name: "Nossa Senhora Aparecida", Month: time.October, Day: 12, Func: cal.CalcDayOfMonth}
	finados          = &cal.Holiday{Name: "Finados", Month: time.November, Day: 2, Func: cal.CalcDayOfMonth}
	republica        = &cal.Holiday{Name: "Proclamação da República", Month: time.November, Day: 15, Func: cal.CalcDayOfMonth}
	// National since Lei 14.759/2023.
	conscienciaNegra = &cal.Holiday{Name: "Dia da consciência negra", Month: time.November, Day: 20, Func: cal.CalcDayOfMonth, StartYear: 2024}
	natal            = &cal.Holiday{Name: "Natal", Month: time.December, Day: 25, Func: cal.CalcDayOfMonth}
)

var nationalHolidays = []*cal.Holiday{
	confraternizacao,
	carnaval,
	sextaFeiraSanta,
	pascoa,
	tiradentes,
	diaDoTrabalho,
	corpusChristi,
	independencia,
	aparecida,
	finados,
	republica,
	conscienciaNegra,
	natal,
}

// LocalProvider computes the national calendar without any network access.
type LocalProvider struct {
	name string
}

// NewLocalProvider creates a new LocalProvider.
func NewLocalProvider(name string) *LocalProvider {
	return &LocalProvider{name: name}
}

// Name returns the provider name.
func (p *LocalProvider) Name() string {
	return p.name
}

// Holidays returns the national holidays of year sorted by date.
func (p *LocalProvider) Holidays(ctx context.Context, year int) ([]holiday.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NationalHolidays(year), nil
}

// NationalHolidays computes the Brazilian national holidays for year.
func NationalHolidays(year int) []holiday.Record {
	records := make([]holiday.Record, 0, len(nationalHolidays))
	for _, h := range nationalHolidays {
		actual, _ := h.Calc(year)
		if actual.IsZero() {
			continue
		}
		records = append(records, holiday.Record{
			Date: actual.Format("2006-01-02"),
			Name: h.Name,
			Type: TypeNational,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date < records[j].Date
	})
	return records
}
