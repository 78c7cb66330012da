package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"DCASimulator/internal/model"
	"DCASimulator/internal/simulator"

	"gopkg.in/yaml.v3"
)

// DateLayout is the layout of dates in the config file.
const DateLayout = "2006-01-02"

// Config holds all application configuration.
type Config struct {
	Simulation struct {
		Ticker         string  `yaml:"ticker"`
		FXTicker       string  `yaml:"fx_ticker"`
		CrossCurrency  bool    `yaml:"cross_currency"`
		Currency       string  `yaml:"currency"`
		TotalYears     float64 `yaml:"total_years"`
		PurchaseYears  float64 `yaml:"purchase_years"`
		HoldingYears   float64 `yaml:"holding_years"`
		Frequency      string  `yaml:"frequency"`
		Contribution   float64 `yaml:"contribution"`
		HoldingRate    float64 `yaml:"holding_rate"`
		ConversionRate float64 `yaml:"conversion_rate"`
		Maturity       string  `yaml:"maturity"` // YYYY-MM-DD, empty means today
		RiskDelta      float64 `yaml:"risk_delta"`
	} `yaml:"simulation"`
	Goal struct {
		Target        float64 `yaml:"target"`
		Low           float64 `yaml:"low"`
		High          float64 `yaml:"high"`
		Tolerance     float64 `yaml:"tolerance"`
		MaxIterations int     `yaml:"max_iterations"`
	} `yaml:"goal"`
	DataSource DataSourceConfig `yaml:"data_source"`
	Cache      struct {
		HistoryTTL time.Duration `yaml:"history_ttl"`
		LatestTTL  time.Duration `yaml:"latest_ttl"`
	} `yaml:"cache"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		ReportCron  string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath  string `yaml:"sqlite_path"`
		PostgresDSN string `yaml:"postgres_dsn"`
	} `yaml:"database"`

	now func() time.Time
	// explicit holds the numeric keys set by the file or the environment, so
	// an explicit zero is validated instead of replaced by a default.
	explicit map[string]bool
}

// DataSourceConfig selects and parameterises the market data provider.
type DataSourceConfig struct {
	Provider string `yaml:"provider"` // yahoo, vstrader or mock
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Proxy    string `yaml:"proxy"`
	Timezone string `yaml:"timezone"` // exchange zone of vstrader bars, e.g. Asia/Seoul
}

// presence mirrors the numeric settings that have non-zero defaults. Pointer
// fields tell a key written as 0 apart from a missing key.
type presence struct {
	Simulation struct {
		TotalYears    *float64 `yaml:"total_years"`
		PurchaseYears *float64 `yaml:"purchase_years"`
		Contribution  *float64 `yaml:"contribution"`
		RiskDelta     *float64 `yaml:"risk_delta"`
	} `yaml:"simulation"`
	Goal struct {
		Low           *float64 `yaml:"low"`
		High          *float64 `yaml:"high"`
		Tolerance     *float64 `yaml:"tolerance"`
		MaxIterations *int     `yaml:"max_iterations"`
	} `yaml:"goal"`
	Cache struct {
		HistoryTTL *time.Duration `yaml:"history_ttl"`
		LatestTTL  *time.Duration `yaml:"latest_ttl"`
	} `yaml:"cache"`
}

func (p *presence) keys() map[string]bool {
	return map[string]bool{
		"simulation.total_years":    p.Simulation.TotalYears != nil,
		"simulation.purchase_years": p.Simulation.PurchaseYears != nil,
		"simulation.contribution":   p.Simulation.Contribution != nil,
		"simulation.risk_delta":     p.Simulation.RiskDelta != nil,
		"goal.low":                  p.Goal.Low != nil,
		"goal.high":                 p.Goal.High != nil,
		"goal.tolerance":            p.Goal.Tolerance != nil,
		"goal.max_iterations":       p.Goal.MaxIterations != nil,
		"cache.history_ttl":         p.Cache.HistoryTTL != nil,
		"cache.latest_ttl":          p.Cache.LatestTTL != nil,
	}
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{now: time.Now, explicit: map[string]bool{}}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		var pr presence
		if err := yaml.Unmarshal(data, &pr); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		cfg.explicit = pr.keys()
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"TELEGRAM_BOT_TOKEN": &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &c.Telegram.ChatID,
		"DATA_PROVIDER":      &c.DataSource.Provider,
		"VSTRADER_BASE_URL":  &c.DataSource.BaseURL,
		"VSTRADER_API_KEY":   &c.DataSource.APIKey,
		"HTTPS_PROXY":        &c.DataSource.Proxy,
		"VSTRADER_TZ":        &c.DataSource.Timezone,
		"DCA_TICKER":         &c.Simulation.Ticker,
		"DCA_FX_TICKER":      &c.Simulation.FXTicker,
		"DCA_FREQUENCY":      &c.Simulation.Frequency,
		"DCA_MATURITY":       &c.Simulation.Maturity,
		"CRON_REFRESH":       &c.Schedule.RefreshCron,
		"CRON_REPORT":        &c.Schedule.ReportCron,
		"SQLITE_PATH":        &c.Database.SQLitePath,
		"POSTGRES_DSN":       &c.Database.PostgresDSN,
	}
	for env, dst := range strs {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}

	floats := map[string]struct {
		key string
		dst *float64
	}{
		"DCA_CONTRIBUTION":    {"simulation.contribution", &c.Simulation.Contribution},
		"DCA_TOTAL_YEARS":     {"simulation.total_years", &c.Simulation.TotalYears},
		"DCA_PURCHASE_YEARS":  {"simulation.purchase_years", &c.Simulation.PurchaseYears},
		"DCA_HOLDING_YEARS":   {"simulation.holding_years", &c.Simulation.HoldingYears},
		"DCA_HOLDING_RATE":    {"simulation.holding_rate", &c.Simulation.HoldingRate},
		"DCA_CONVERSION_RATE": {"simulation.conversion_rate", &c.Simulation.ConversionRate},
		"DCA_RISK_DELTA":      {"simulation.risk_delta", &c.Simulation.RiskDelta},
		"DCA_GOAL_TARGET":     {"goal.target", &c.Goal.Target},
	}
	for env, field := range floats {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("env %s: %w", env, err)
		}
		*field.dst = f
		c.explicit[field.key] = true
	}

	if v := os.Getenv("DCA_CROSS_CURRENCY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("env DCA_CROSS_CURRENCY: %w", err)
		}
		c.Simulation.CrossCurrency = b
	}
	return nil
}

func (c *Config) applyDefaults() {
	s := &c.Simulation
	if s.Ticker == "" {
		s.Ticker = "USDKRW=X"
	}
	if s.FXTicker == "" {
		s.FXTicker = "USDKRW=X"
	}
	if s.Currency == "" {
		s.Currency = "KRW"
	}
	if c.unset("simulation.total_years") {
		s.TotalYears = 1
	}
	if c.unset("simulation.purchase_years") {
		s.PurchaseYears = 0.5
	}
	if s.Frequency == "" {
		s.Frequency = string(model.MonthStart)
	}
	if c.unset("simulation.contribution") {
		s.Contribution = 1_000_000
	}
	if c.unset("simulation.risk_delta") {
		s.RiskDelta = 1.0
	}

	g := &c.Goal
	if c.unset("goal.low") {
		g.Low = simulator.DefaultGoalLow
	}
	if c.unset("goal.high") {
		g.High = simulator.DefaultGoalHigh
	}
	if c.unset("goal.tolerance") {
		g.Tolerance = simulator.DefaultGoalTolerance
	}
	if c.unset("goal.max_iterations") {
		g.MaxIterations = simulator.DefaultGoalIterations
	}

	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
		if c.DataSource.BaseURL != "" {
			c.DataSource.Provider = "vstrader"
		}
	}
	c.DataSource.Provider = strings.ToLower(c.DataSource.Provider)

	if c.unset("cache.history_ttl") {
		c.Cache.HistoryTTL = time.Hour
	}
	if c.unset("cache.latest_ttl") {
		c.Cache.LatestTTL = 5 * time.Minute
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 0 * * * *"
	}
	if c.Schedule.ReportCron == "" {
		c.Schedule.ReportCron = "0 0 9 * * 1"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/dca_simulator.db"
	}
	if c.now == nil {
		c.now = time.Now
	}
}

func (c *Config) unset(key string) bool {
	return !c.explicit[key]
}

// SimulationParams converts the simulation section into engine parameters.
func (c *Config) SimulationParams() (model.SimulationParams, error) {
	s := c.Simulation
	freq, err := model.ParseFrequency(s.Frequency)
	if err != nil {
		return model.SimulationParams{}, fmt.Errorf("%w: simulation.frequency: %v", simulator.ErrConfiguration, err)
	}
	maturity, err := c.maturity()
	if err != nil {
		return model.SimulationParams{}, err
	}
	return model.SimulationParams{
		Ticker:         s.Ticker,
		CrossCurrency:  s.CrossCurrency,
		FXTicker:       s.FXTicker,
		TotalYears:     s.TotalYears,
		PurchaseYears:  s.PurchaseYears,
		HoldingYears:   s.HoldingYears,
		Frequency:      freq,
		Maturity:       maturity,
		Contribution:   s.Contribution,
		HoldingRate:    s.HoldingRate,
		ConversionRate: s.ConversionRate,
		RiskDelta:      s.RiskDelta,
	}, nil
}

// GoalParams returns the goal section with target overriding the configured
// target when positive.
func (c *Config) GoalParams(target float64) model.GoalSeekParams {
	if target <= 0 {
		target = c.Goal.Target
	}
	return model.GoalSeekParams{
		Target:        target,
		Low:           c.Goal.Low,
		High:          c.Goal.High,
		Tolerance:     c.Goal.Tolerance,
		MaxIterations: c.Goal.MaxIterations,
	}
}

func (c *Config) maturity() (time.Time, error) {
	if c.Simulation.Maturity == "" {
		n := c.now()
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(DateLayout, c.Simulation.Maturity)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: simulation.maturity: %v", simulator.ErrConfiguration, err)
	}
	return t, nil
}

// Location resolves the exchange time zone of the data source, UTC when unset.
func (d DataSourceConfig) Location() (*time.Location, error) {
	if d.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return nil, fmt.Errorf("data_source.timezone %q: %w", d.Timezone, err)
	}
	return loc, nil
}

// Validate checks the simulation and search settings before anything is
// fetched.
func (c *Config) Validate() error {
	p, err := c.SimulationParams()
	if err != nil {
		return err
	}
	if err := simulator.Validate(p); err != nil {
		return err
	}
	g := c.GoalParams(1)
	if err := simulator.ValidateGoal(g); err != nil {
		return err
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "vstrader":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for vstrader")
		}
		if _, err := c.DataSource.Location(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.Cache.HistoryTTL < 0 || c.Cache.LatestTTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	return nil
}

// ValidateTelegram checks the settings the chat bot needs.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}
