package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/alex-user-go/feriados/internal/session"
)

// Renderer writes session views as terminal cards.
type Renderer struct {
	out io.Writer

	date    *color.Color
	name    *color.Color
	badge   *color.Color
	movable *color.Color
	fixed   *color.Color
	label   *color.Color
	faint   *color.Color
	status  *color.Color
	err     *color.Color
}

// New creates a Renderer writing to out. With noColor set, no escape
// sequences are emitted regardless of the terminal.
func New(out io.Writer, noColor bool) *Renderer {
	r := &Renderer{
		out:     out,
		date:    color.New(color.FgHiYellow, color.Bold),
		name:    color.New(color.Bold),
		badge:   color.New(color.FgBlack, color.BgGreen),
		movable: color.New(color.FgMagenta),
		fixed:   color.New(color.FgCyan),
		label:   color.New(color.FgGreen, color.Bold),
		faint:   color.New(color.Faint),
		status:  color.New(color.FgGreen),
		err:     color.New(color.FgRed, color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{r.date, r.name, r.badge, r.movable, r.fixed, r.label, r.faint, r.status, r.err} {
			c.DisableColor()
		}
	}
	return r
}

// View writes messages, cards and the empty-state text of v.
func (r *Renderer) View(v session.View) error {
	var b strings.Builder

	if v.Error != "" {
		r.err.Fprintln(&b, v.Error)
	}
	if v.Status != "" {
		r.status.Fprintln(&b, v.Status)
	}
	if v.Summary != "" {
		r.faint.Fprintln(&b, v.Summary)
	}
	if b.Len() > 0 && len(v.Cards) > 0 {
		b.WriteByte('\n')
	}

	for i, c := range v.Cards {
		if i > 0 {
			b.WriteByte('\n')
		}
		r.card(&b, c)
	}

	if v.Empty != "" {
		r.faint.Fprintln(&b, v.Empty)
	}

	_, err := io.WriteString(r.out, b.String())
	return err
}

func (r *Renderer) card(b *strings.Builder, c session.CardView) {
	day := c.Day
	if day == "" {
		day = "--"
	}
	r.date.Fprintf(b, "%s %s", day, c.MonthName)
	if c.Weekday != "" {
		r.faint.Fprintf(b, " · %s", c.Weekday)
	}
	b.WriteByte('\n')

	fmt.Fprint(b, "  ")
	r.name.Fprintln(b, c.Name)

	fmt.Fprint(b, "  Tipo: ")
	r.badge.Fprintf(b, " %s ", c.Type)
	if c.Movable {
		r.movable.Fprintf(b, " • %s\n", c.Kind)
	} else {
		r.fixed.Fprintf(b, " • %s\n", c.Kind)
	}

	if c.FullDate != "" {
		fmt.Fprintf(b, "  Data completa: %s\n", c.FullDate)
	}

	if !c.Expanded {
		r.faint.Fprintf(b, "  [%s]\n", c.ID)
		return
	}
	fmt.Fprint(b, "  ")
	r.label.Fprint(b, "Sobre o feriado:")
	fmt.Fprintf(b, " %s\n", c.Description)
	fmt.Fprint(b, "  ")
	r.label.Fprint(b, "Dica para organização / empresas:")
	fmt.Fprintf(b, " %s\n", c.Tip)
}
