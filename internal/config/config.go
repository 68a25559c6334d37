package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yorkjong/vistock-sub000/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Ranking struct {
		Symbols      []string `yaml:"symbols"`
		Benchmark    string   `yaml:"benchmark"`
		Period       string   `yaml:"period"`
		Interval     string   `yaml:"interval"`
		Formula      string   `yaml:"formula"` // ibd | mansfield | financial
		MA           string   `yaml:"ma"`
		Window       int      `yaml:"window"`
		RatingMethod string   `yaml:"rating_method"`
		MinBars      int      `yaml:"min_bars"`
	} `yaml:"ranking"`
	Collector struct {
		Source    string  `yaml:"source"` // yahoo | rest | mock
		Workers   int     `yaml:"workers"`
		RateLimit float64 `yaml:"rate_limit"` // requests per second (yahoo)
		CacheTTL  string  `yaml:"cache_ttl"`
	} `yaml:"collector"`
	DataSource struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"data_source"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		TopN     int    `yaml:"top_n"`
	} `yaml:"telegram"`
	Schedule struct {
		RankingCron string `yaml:"ranking_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("RANKING_SYMBOLS"); v != "" {
		cfg.Ranking.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("RANKING_BENCHMARK"); v != "" {
		cfg.Ranking.Benchmark = v
	}
	if v := os.Getenv("RANKING_FORMULA"); v != "" {
		cfg.Ranking.Formula = v
	}
	if v := os.Getenv("COLLECTOR_SOURCE"); v != "" {
		cfg.Collector.Source = v
	}
	if v := os.Getenv("COLLECTOR_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Collector.Workers = n
		}
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("CRON_RANKING"); v != "" {
		cfg.Schedule.RankingCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Ranking.Benchmark == "" {
		cfg.Ranking.Benchmark = "^GSPC"
	}
	if cfg.Ranking.Period == "" {
		cfg.Ranking.Period = "2y"
	}
	if cfg.Ranking.Interval == "" {
		cfg.Ranking.Interval = string(model.IntervalDaily)
	}
	if cfg.Ranking.Formula == "" {
		cfg.Ranking.Formula = "ibd"
	}
	if cfg.Ranking.MA == "" {
		cfg.Ranking.MA = string(model.MATypeSMA)
	}
	if cfg.Ranking.RatingMethod == "" {
		cfg.Ranking.RatingMethod = string(model.RatingRank)
	}
	if cfg.Collector.Source == "" {
		cfg.Collector.Source = "yahoo"
	}
	if cfg.Collector.Workers == 0 {
		cfg.Collector.Workers = 8
	}
	if cfg.Telegram.TopN == 0 {
		cfg.Telegram.TopN = 10
	}
	if cfg.Schedule.RankingCron == "" {
		cfg.Schedule.RankingCron = "0 0 22 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/vistock.db"
	}

	return cfg, nil
}

func splitSymbols(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that all required fields are set and enumerations parse.
func (c *Config) Validate() error {
	if len(c.Ranking.Symbols) == 0 {
		return fmt.Errorf("ranking.symbols is required")
	}
	if _, err := model.ParseInterval(c.Ranking.Interval); err != nil {
		return fmt.Errorf("ranking.interval: %w", err)
	}
	if _, err := model.ParseMAType(c.Ranking.MA); err != nil {
		return fmt.Errorf("ranking.ma: %w", err)
	}
	if _, err := model.ParseRatingMethod(c.Ranking.RatingMethod); err != nil {
		return fmt.Errorf("ranking.rating_method: %w", err)
	}
	switch c.Ranking.Formula {
	case "ibd", "mansfield", "financial":
	default:
		return fmt.Errorf("ranking.formula %q: must be 'ibd', 'mansfield', or 'financial'", c.Ranking.Formula)
	}
	if c.Ranking.Window < 0 {
		return fmt.Errorf("ranking.window must not be negative")
	}
	switch c.Collector.Source {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest source")
		}
	default:
		return fmt.Errorf("collector.source %q: must be 'yahoo', 'rest', or 'mock'", c.Collector.Source)
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	return nil
}
