// Package config holds run configuration for the striking distance pipeline.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is passed explicitly into the pipeline entry point; nothing in the
// pipeline reads ambient process-wide state.
type Config struct {
	InputFile    string
	OutputFile   string
	OutputFormat string // csv, json, or xlsx

	PositionLow    int
	PositionHigh   int
	MinImpressions int
	Blocklist      []string

	Concurrency      int
	BatchDelay       time.Duration
	MaxURLs          int
	BodyCharLimit    int
	Timeout          time.Duration
	UserAgent        string
	RespectRobotsTxt bool

	Verbose     bool
	MetricsAddr string
}

// DefaultConfig returns the defaults matching a typical Search Console export.
func DefaultConfig() *Config {
	return &Config{
		InputFile:        "",
		OutputFile:       "output/striking_distance_report.xlsx",
		OutputFormat:     "xlsx",
		PositionLow:      3,
		PositionHigh:     20,
		MinImpressions:   0,
		Concurrency:      5,
		BatchDelay:       500 * time.Millisecond,
		MaxURLs:          50,
		BodyCharLimit:    5000,
		Timeout:          10 * time.Second,
		UserAgent:        "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		RespectRobotsTxt: false,
		Verbose:          false,
		MetricsAddr:      "",
	}
}

// Validate ensures all configuration values are coherent. A failure here is
// the only fatal error class: it is surfaced before any network activity.
func (c *Config) Validate() error {
	if c.PositionLow < 1 {
		return fmt.Errorf("position low must be >= 1")
	}
	if c.PositionHigh < c.PositionLow {
		return fmt.Errorf("position range invalid: low (%d) exceeds high (%d)", c.PositionLow, c.PositionHigh)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.BatchDelay < 0 {
		return fmt.Errorf("batch delay cannot be negative")
	}
	if c.MaxURLs <= 0 {
		return fmt.Errorf("max URLs must be positive")
	}
	if c.BodyCharLimit <= 0 {
		return fmt.Errorf("body character limit must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MinImpressions < 0 {
		return fmt.Errorf("minimum impressions cannot be negative")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	switch c.OutputFormat {
	case "csv", "json", "xlsx":
	default:
		return fmt.Errorf("output format must be csv, json, or xlsx")
	}
	return nil
}

// fileConfig is the YAML shape. Durations are plain integers to keep the file
// format unambiguous.
type fileConfig struct {
	InputFile        string   `yaml:"input_file"`
	OutputFile       string   `yaml:"output_file"`
	OutputFormat     string   `yaml:"output_format"`
	PositionLow      int      `yaml:"position_low"`
	PositionHigh     int      `yaml:"position_high"`
	MinImpressions   int      `yaml:"min_impressions"`
	Blocklist        []string `yaml:"blocklist"`
	Concurrency      int      `yaml:"concurrency"`
	BatchDelayMS     int      `yaml:"batch_delay_ms"`
	MaxURLs          int      `yaml:"max_urls"`
	BodyCharLimit    int      `yaml:"body_char_limit"`
	TimeoutSec       int      `yaml:"timeout_sec"`
	UserAgent        string   `yaml:"user_agent"`
	RespectRobotsTxt bool     `yaml:"respect_robots_txt"`
	MetricsAddr      string   `yaml:"metrics_addr"`
}

// LoadFile reads a YAML config file and applies it on top of the defaults.
// Zero values in the file leave the corresponding default untouched.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := DefaultConfig()
	if fc.InputFile != "" {
		cfg.InputFile = fc.InputFile
	}
	if fc.OutputFile != "" {
		cfg.OutputFile = fc.OutputFile
	}
	if fc.OutputFormat != "" {
		cfg.OutputFormat = strings.ToLower(fc.OutputFormat)
	}
	if fc.PositionLow != 0 {
		cfg.PositionLow = fc.PositionLow
	}
	if fc.PositionHigh != 0 {
		cfg.PositionHigh = fc.PositionHigh
	}
	if fc.MinImpressions != 0 {
		cfg.MinImpressions = fc.MinImpressions
	}
	if len(fc.Blocklist) > 0 {
		cfg.Blocklist = fc.Blocklist
	}
	if fc.Concurrency != 0 {
		cfg.Concurrency = fc.Concurrency
	}
	if fc.BatchDelayMS != 0 {
		cfg.BatchDelay = time.Duration(fc.BatchDelayMS) * time.Millisecond
	}
	if fc.MaxURLs != 0 {
		cfg.MaxURLs = fc.MaxURLs
	}
	if fc.BodyCharLimit != 0 {
		cfg.BodyCharLimit = fc.BodyCharLimit
	}
	if fc.TimeoutSec != 0 {
		cfg.Timeout = time.Duration(fc.TimeoutSec) * time.Second
	}
	if fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	if fc.RespectRobotsTxt {
		cfg.RespectRobotsTxt = true
	}
	if fc.MetricsAddr != "" {
		cfg.MetricsAddr = fc.MetricsAddr
	}
	return cfg, nil
}

// LoadBlocklist reads blocklist terms from a file, one per line. Blank lines
// and lines starting with # are ignored.
func LoadBlocklist(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open blocklist: %w", err)
	}
	defer f.Close()

	var terms []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		terms = append(terms, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read blocklist: %w", err)
	}
	return terms, nil
}

// EnvInt reads an integer environment variable. The second return reports
// whether the variable was set.
func EnvInt(name string) (int, bool, error) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	return value, true, nil
}

// EnvString reads a string environment variable.
func EnvString(name string) (string, bool) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}
