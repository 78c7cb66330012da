package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"DCASimulator/internal/collector"
	"DCASimulator/internal/config"
	"DCASimulator/internal/recorder"

	"github.com/charmbracelet/glamour"
)

// overrides are the per-invocation flags shared by the simulation commands.
// Only flags given on the command line replace config values.
type overrides struct {
	ticker         string
	fxTicker       string
	frequency      string
	maturity       string
	contribution   float64
	totalYears     float64
	purchaseYears  float64
	holdingYears   float64
	holdingRate    float64
	conversionRate float64
	record         bool

	set map[string]bool
}

func (o *overrides) SetFlags(f *flag.FlagSet) {
	f.StringVar(&o.ticker, "ticker", "", "instrument ticker")
	f.StringVar(&o.fxTicker, "fx", "", "exchange-rate ticker; enables cross-currency valuation")
	f.StringVar(&o.frequency, "freq", "", "purchase cadence (daily, weekly, month-start, year-start)")
	f.StringVar(&o.maturity, "maturity", "", "maturity date YYYY-MM-DD")
	f.Float64Var(&o.contribution, "amount", 0, "contribution per purchase")
	f.Float64Var(&o.totalYears, "years", 0, "total period in years")
	f.Float64Var(&o.purchaseYears, "buy", 0, "purchase period in years")
	f.Float64Var(&o.holdingYears, "hold", 0, "holding period in years")
	f.Float64Var(&o.holdingRate, "hold-rate", 0, "one-time holding rate in percent")
	f.Float64Var(&o.conversionRate, "conv-rate", 0, "annual conversion rate in percent")
	f.BoolVar(&o.record, "record", false, "store the result in the configured database")
}

// parse remembers which flags were given explicitly.
func (o *overrides) parse(f *flag.FlagSet) {
	o.set = map[string]bool{}
	f.Visit(func(fl *flag.Flag) { o.set[fl.Name] = true })
}

func (o *overrides) apply(cfg *config.Config) {
	s := &cfg.Simulation
	strs := []struct {
		name string
		src  string
		dst  *string
	}{
		{"ticker", o.ticker, &s.Ticker},
		{"fx", o.fxTicker, &s.FXTicker},
		{"freq", o.frequency, &s.Frequency},
		{"maturity", o.maturity, &s.Maturity},
	}
	for _, v := range strs {
		if o.set[v.name] {
			*v.dst = v.src
		}
	}
	if o.set["fx"] {
		s.CrossCurrency = o.fxTicker != ""
	}

	nums := []struct {
		name string
		src  float64
		dst  *float64
	}{
		{"amount", o.contribution, &s.Contribution},
		{"years", o.totalYears, &s.TotalYears},
		{"buy", o.purchaseYears, &s.PurchaseYears},
		{"hold", o.holdingYears, &s.HoldingYears},
		{"hold-rate", o.holdingRate, &s.HoldingRate},
		{"conv-rate", o.conversionRate, &s.ConversionRate},
	}
	for _, v := range nums {
		if o.set[v.name] {
			*v.dst = v.src
		}
	}
}

// loadConfig reads the config and applies o before validating it.
func loadConfig(o *overrides) (*config.Config, error) {
	p := *configPath
	if p == "" {
		p = "configs/config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			p = v
		}
	}
	cfg, err := config.Load(p)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o != nil {
		o.apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case "vstrader":
		loc, _ := cfg.DataSource.Location()
		return collector.NewVsTraderFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.DataSource.Proxy, loc)
	case "mock":
		return &collector.MockFetcher{Price: 1000}
	default:
		return collector.NewYahooFetcher(cfg.DataSource.Proxy)
	}
}

func newCollector(cfg *config.Config) *collector.Collector {
	fetcher := newFetcher(cfg)
	log.Printf("[INFO] data source: %s", fetcher.Name())
	return collector.NewCollector(fetcher, cfg.Cache.HistoryTTL, cfg.Cache.LatestTTL)
}

// openRecorder prefers Postgres, then SQLite. Failures degrade to a no-op
// recorder so simulations still run.
func openRecorder(cfg *config.Config) recorder.Recorder {
	if dsn := cfg.Database.PostgresDSN; dsn != "" {
		pr, err := recorder.NewPostgresRecorder(dsn)
		if err == nil {
			return pr
		}
		log.Printf("[WARN] init postgres recorder failed: %v", err)
	}
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err == nil {
			return sr
		}
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
	}
	return recorder.NewNoopRecorder()
}

func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}
