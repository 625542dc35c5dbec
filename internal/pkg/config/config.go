package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// HardMaxMatches is the compiled ceiling on matches per run. Configuration
// can lower it, never raise it.
const HardMaxMatches = 50

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Activation ActivationConfig `yaml:"activation"`
	Analyzer   AnalyzerConfig   `yaml:"analyzer"`
	Report     ReportConfig     `yaml:"report"`
	LiveIO     LiveIOConfig     `yaml:"live_io"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// ActivationConfig caps the blast radius of a run.
type ActivationConfig struct {
	MaxMatches int      `yaml:"max_matches"` // hard-capped at HardMaxMatches
	Markets    []string `yaml:"markets"`     // subset of 1X2, OU25, GGNG; default 1X2 only
	KillSwitch bool     `yaml:"kill_switch"`
}

// AnalyzerConfig holds the explicit decision thresholds. Never learned.
type AnalyzerConfig struct {
	MinSeparation1X2 float64 `yaml:"min_separation_1x2"`
	MinSeparationOU  float64 `yaml:"min_separation_ou"`
	MinSeparationGG  float64 `yaml:"min_separation_gg"`
	MinConfidence    float64 `yaml:"min_confidence"`
	RiskCap          float64 `yaml:"risk_cap"`
	LogicVersion     string  `yaml:"logic_version"`
}

type ReportConfig struct {
	ValidateStrict bool   `yaml:"validate_strict"`
	ArtifactsDir   string `yaml:"artifacts_dir"`
}

type LiveIOConfig struct {
	LiveIOAllowed    bool          `yaml:"live_io_allowed"`
	RealProviderLive bool          `yaml:"real_provider_live"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout"`
	ProviderBaseURL  string        `yaml:"provider_base_url"`
	MirrorURL        string        `yaml:"mirror_url"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

// Load reads the YAML config file and applies environment overrides.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	config.applyEnv()
	return &config, nil
}

// Default returns a config with defaults and environment overrides applied,
// without requiring a config file.
func Default() *Config {
	config := &Config{}
	config.applyDefaults()
	config.applyEnv()
	return config
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		c.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Activation.MaxMatches <= 0 {
		c.Activation.MaxMatches = 10
	}
	if len(c.Activation.Markets) == 0 {
		c.Activation.Markets = []string{"1X2"}
	}
	if c.Analyzer.MinSeparation1X2 <= 0 {
		c.Analyzer.MinSeparation1X2 = 0.10
	}
	if c.Analyzer.MinSeparationOU <= 0 {
		c.Analyzer.MinSeparationOU = 0.08
	}
	if c.Analyzer.MinSeparationGG <= 0 {
		c.Analyzer.MinSeparationGG = 0.08
	}
	if c.Analyzer.MinConfidence <= 0 {
		c.Analyzer.MinConfidence = 0.62
	}
	if c.Analyzer.RiskCap <= 0 {
		c.Analyzer.RiskCap = 0.35
	}
	if c.Analyzer.LogicVersion == "" {
		c.Analyzer.LogicVersion = "odds_implied_v1"
	}
	if c.LiveIO.FetchTimeout <= 0 {
		c.LiveIO.FetchTimeout = 10 * time.Second
	}
	if c.Report.ArtifactsDir == "" {
		c.Report.ArtifactsDir = "reports"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Activation.MaxMatches > HardMaxMatches {
		c.Activation.MaxMatches = HardMaxMatches
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v, ok := envInt("ACTIVATION_MAX_MATCHES"); ok {
		c.Activation.MaxMatches = v
	}
	if v := os.Getenv("ACTIVATION_MARKETS"); v != "" {
		var markets []string
		for _, m := range strings.Split(v, ",") {
			if m = strings.TrimSpace(m); m != "" {
				markets = append(markets, m)
			}
		}
		if len(markets) > 0 {
			c.Activation.Markets = markets
		}
	}
	if v, ok := envBool("ACTIVATION_KILL_SWITCH"); ok {
		c.Activation.KillSwitch = v
	}
	if v, ok := envBool("REPORT_SCHEMA_VALIDATE_STRICT"); ok {
		c.Report.ValidateStrict = v
	}
	if v, ok := envBool("LIVE_IO_ALLOWED"); ok {
		c.LiveIO.LiveIOAllowed = v
	}
	if v, ok := envBool("REAL_PROVIDER_LIVE"); ok {
		c.LiveIO.RealProviderLive = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.ChatID = id
		}
	}
	// The compiled ceiling wins regardless of env or file values.
	if c.Activation.MaxMatches > HardMaxMatches {
		c.Activation.MaxMatches = HardMaxMatches
	}
}

func envBool(key string) (bool, bool) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "yes":
		return true, true
	case "0", "false", "no":
		return false, true
	}
	return false, false
}

func envInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
