package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/alex-user-go/feriados/internal/app"
	"github.com/alex-user-go/feriados/internal/config"
	"github.com/alex-user-go/feriados/internal/holiday"
	"github.com/alex-user-go/feriados/internal/logging"
	"github.com/alex-user-go/feriados/internal/obs"
	"github.com/alex-user-go/feriados/internal/render"
	"github.com/alex-user-go/feriados/internal/search"
	"github.com/alex-user-go/feriados/internal/session"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	year    int
	month   string
	expand  string
	details bool
	json    bool
	source  string
	apiURL  string
	noColor bool
	verbose bool
}

func parseFlags(args []string, stderr io.Writer, cfg *config.Config) (*options, error) {
	fs := flag.NewFlagSet("feriados", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.IntVar(&opts.year, "ano", time.Now().Year(), "ano a consultar (1900-2199)")
	fs.StringVar(&opts.month, "mes", "all", `mês a exibir: "all" ou 1-12`)
	fs.StringVar(&opts.expand, "expandir", "", "expande um feriado pelo ID ou pela posição na lista (1, 2, ...)")
	fs.BoolVar(&opts.details, "detalhes", false, "expande todos os feriados")
	fs.BoolVar(&opts.json, "json", false, "imprime o resultado em JSON")
	fs.StringVar(&opts.source, "fonte", cfg.HolidaySource, `fonte dos feriados: "brasilapi" ou "local"`)
	fs.StringVar(&opts.apiURL, "api", cfg.HolidayAPIURL, "URL base da API de feriados")
	fs.BoolVar(&opts.noColor, "sem-cor", false, "desativa cores")
	fs.BoolVar(&opts.verbose, "v", false, "registra logs em stderr")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	opts, err := parseFlags(args, stderr, cfg)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg.HolidaySource = opts.source
	cfg.HolidayAPIURL = opts.apiURL
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	month, err := holiday.ParseMonthFilter(opts.month)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	logger := zap.NewNop()
	if opts.verbose {
		if logger, err = logging.New(false, cfg.LogLevel); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		defer func() { _ = logger.Sync() }()
	}

	svc := search.NewService(app.NewProvider(cfg), cfg.UpstreamTimeout, obs.NewMetrics(logger), logger)
	s := session.New(svc)
	s.SetMonth(month)

	searchErr := s.Submit(ctx, opts.year)

	if opts.expand != "" {
		id, err := resolveCard(s.View(), opts.expand)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		s.Toggle(id)
	}

	v := s.View()
	if opts.details {
		for i := range v.Cards {
			v.Cards[i].Expanded = true
		}
	}

	if opts.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	} else if err := render.New(stdout, opts.noColor).View(v); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if searchErr != nil {
		return 1
	}
	return 0
}

// resolveCard accepts a card ID or a 1-based position among the shown cards.
func resolveCard(v session.View, ref string) (string, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(v.Cards) {
			return "", fmt.Errorf("-expandir %d: only %d holidays shown", n, len(v.Cards))
		}
		return v.Cards[n-1].ID, nil
	}
	for _, c := range v.Cards {
		if c.ID == ref {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("-expandir %q: no such holiday", ref)
}
