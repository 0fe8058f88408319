package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/usdbars/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	defaultMarketData = "market_data.csv"
	defaultUserData   = "user_data.csv"
	defaultOutputDir  = "."

	envOutputDir   = "USDBARS_OUTPUT_DIR"
	envMetricsFile = "USDBARS_METRICS_FILE"
)

type Config struct {
	MarketData  string `validate:"required"`
	UserData    string `validate:"required"`
	OutputDir   string `validate:"required"`
	Windows     domain.Windows
	Workers     int `validate:"gte=1,lte=256"`
	XLSXReport  string
	MetricsFile string
	Summary     bool
	Debug       bool
}

type ConfigTmp struct {
	MarketData  string           `yaml:"market_data"`
	UserData    string           `yaml:"user_data"`
	OutputDir   string           `yaml:"output_dir"`
	Windows     map[string]int64 `yaml:"windows,omitempty"`
	Workers     int              `yaml:"workers,omitempty"`
	XLSXReport  string           `yaml:"xlsx_report,omitempty"`
	MetricsFile string           `yaml:"metrics_file,omitempty"`
	Summary     *bool            `yaml:"summary,omitempty"`
	Debug       bool             `yaml:"debug,omitempty"`
}

// Get reads configuration from a yaml file (--config) or from CLI flags.
func Get() (Config, error) {
	return Parse(os.Args[1:])
}

// Parse is Get for an explicit argument list.
func Parse(args []string) (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("usdbars", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to yaml config")
	market := fs.String("market", defaultMarketData, "market data csv: symbol,timestamp,price")
	users := fs.String("users", defaultUserData, "user data csv: user_id,currency,timestamp,delta")
	out := fs.String("out", envOr(envOutputDir, defaultOutputDir), "directory for bars-<window>.csv files")
	windows := fs.String("windows", "", "windows as name=seconds list, example: 1h=3600,1d=86400 (default 1h,1d,30d)")
	workers := fs.Int("workers", 1, "number of user partitions processed in parallel")
	xlsx := fs.String("xlsx", "", "optional xlsx report path")
	metrics := fs.String("metrics", os.Getenv(envMetricsFile), "optional prometheus textfile path")
	summary := fs.Bool("summary", true, "print summary table")
	debug := fs.Bool("debug", false, "development logging")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *configPath != "" {
		return getYaml(*configPath)
	}

	lengths := domain.DefaultWindowLengths()
	if *windows != "" {
		var err error
		lengths, err = parseWindows(*windows)
		if err != nil {
			return Config{}, fmt.Errorf("invalid --windows provided, --windows=%s: %w", *windows, err)
		}
	}

	return build(Config{
		MarketData:  *market,
		UserData:    *users,
		OutputDir:   *out,
		Workers:     *workers,
		XLSXReport:  *xlsx,
		MetricsFile: *metrics,
		Summary:     *summary,
		Debug:       *debug,
	}, lengths)
}

func getYaml(path string) (Config, error) {
	var c ConfigTmp

	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(f, &c); err != nil {
		return Config{}, fmt.Errorf("incorrect yaml config %s: %w", path, err)
	}

	newConfig := Config{
		MarketData:  c.MarketData,
		UserData:    c.UserData,
		OutputDir:   c.OutputDir,
		Workers:     c.Workers,
		XLSXReport:  c.XLSXReport,
		MetricsFile: c.MetricsFile,
		Summary:     true,
		Debug:       c.Debug,
	}

	if newConfig.MarketData == "" {
		newConfig.MarketData = defaultMarketData
	}
	if newConfig.UserData == "" {
		newConfig.UserData = defaultUserData
	}
	if newConfig.OutputDir == "" {
		newConfig.OutputDir = envOr(envOutputDir, defaultOutputDir)
	}
	if newConfig.MetricsFile == "" {
		newConfig.MetricsFile = os.Getenv(envMetricsFile)
	}
	if newConfig.Workers == 0 {
		newConfig.Workers = 1
	}
	if c.Summary != nil {
		newConfig.Summary = *c.Summary
	}

	lengths := c.Windows
	if len(lengths) == 0 {
		lengths = domain.DefaultWindowLengths()
	}

	return build(newConfig, lengths)
}

func build(c Config, lengths map[string]int64) (Config, error) {
	windows, err := domain.NewWindows(lengths)
	if err != nil {
		return Config{}, err
	}
	c.Windows = windows

	if err := validator.New().Struct(c); err != nil {
		return Config{}, errors.Wrap(err, "validate config")
	}

	return c, nil
}

// parseWindows parses "1h=3600,1d=86400".
func parseWindows(raw string) (map[string]int64, error) {
	lengths := make(map[string]int64)
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		name, seconds, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("window %q must be name=seconds", item)
		}
		length, err := strconv.ParseInt(strings.TrimSpace(seconds), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("window %q: %w", item, err)
		}

		name = strings.TrimSpace(name)
		if _, dup := lengths[name]; dup {
			return nil, fmt.Errorf("window %q listed twice", name)
		}
		lengths[name] = length
	}

	return lengths, nil
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "load .env")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
