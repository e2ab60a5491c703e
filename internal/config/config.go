package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const (
	// EnvPrefix prefixes every environment override, e.g. SPIELPLAN_OUTPUT_DIR.
	EnvPrefix = "SPIELPLAN"

	DefaultConfigFile = "spielplan.yaml"
	DefaultBaseURL    = "https://widget-prod.bfv.de"
	DefaultOutputDir  = "public"
	DefaultTimezone   = "Europe/Berlin"

	SourceWidget = "widget"
	SourcePage   = "page"
)

// Team is one configured team. Name overrides the name reported by the API.
type Team struct {
	ID   string `yaml:"id" validate:"required"`
	Name string `yaml:"name"`
}

// TeamList decodes SPIELPLAN_TEAMS values of the form "id:Name,id:Name".
type TeamList []Team

// Decode implements envconfig.Decoder.
func (l *TeamList) Decode(value string) error {
	var teams TeamList
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, name, _ := strings.Cut(part, ":")
		id = strings.TrimSpace(id)
		if id == "" {
			return fmt.Errorf("team entry %q has no id", part)
		}
		teams = append(teams, Team{ID: id, Name: strings.TrimSpace(name)})
	}
	*l = teams
	return nil
}

// Config is the complete configuration of one run.
type Config struct {
	Teams     []Team       `yaml:"teams" validate:"required,min=1,dive"`
	OutputDir string       `yaml:"output_dir" validate:"required"`
	LogLevel  string       `yaml:"log_level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	API       APIConfig    `yaml:"api"`
	Export    ExportConfig `yaml:"export"`
}

// APIConfig configures the federation API client.
type APIConfig struct {
	BaseURL           string        `yaml:"base_url" validate:"required,url"`
	Source            string        `yaml:"source" validate:"oneof=widget page"`
	Timeout           time.Duration `yaml:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gt=0"`
}

// ExportConfig configures file naming and the writers.
type ExportConfig struct {
	Prefix        string        `yaml:"prefix" validate:"required"`
	JiraPrefix    string        `yaml:"jira_prefix" validate:"required"`
	CombinedName  string        `yaml:"combined_name" validate:"required"`
	Timezone      string        `yaml:"timezone" validate:"required"`
	EventDuration time.Duration `yaml:"event_duration" validate:"gt=0"`
	CSVDelimiter  string        `yaml:"csv_delimiter" validate:"len=1"`
	JiraStartID   int           `yaml:"jira_start_id" validate:"gte=1"`
}

// envOverrides holds values read from SPIELPLAN_* variables. Zero values mean unset.
type envOverrides struct {
	Config            string        `envconfig:"CONFIG"`
	OutputDir         string        `envconfig:"OUTPUT_DIR"`
	LogLevel          string        `envconfig:"LOG_LEVEL"`
	APIBaseURL        string        `envconfig:"API_BASE_URL"`
	APISource         string        `envconfig:"API_SOURCE"`
	APITimeout        time.Duration `envconfig:"API_TIMEOUT"`
	RequestsPerSecond float64       `envconfig:"REQUESTS_PER_SECOND"`
	Timezone          string        `envconfig:"TIMEZONE"`
	Teams             TeamList      `envconfig:"TEAMS"`
}

// Default returns a configuration with every optional value filled in and no teams.
func Default() *Config {
	return &Config{
		OutputDir: DefaultOutputDir,
		LogLevel:  "info",
		API: APIConfig{
			BaseURL:           DefaultBaseURL,
			Source:            SourceWidget,
			Timeout:           30 * time.Second,
			RequestsPerSecond: 2,
		},
		Export: ExportConfig{
			Prefix:        "Spielplan",
			JiraPrefix:    "Jira",
			CombinedName:  "Alle_Teams",
			Timezone:      DefaultTimezone,
			EventDuration: 2 * time.Hour,
			CSVDelimiter:  ";",
			JiraStartID:   1,
		},
	}
}

// Load reads .env, the YAML config file and SPIELPLAN_* overrides, then validates the result.
// The config file path defaults to spielplan.yaml and may be changed with SPIELPLAN_CONFIG.
// A missing config file is not an error.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadOutput loads the configuration like Load but validates only the output
// directory and log level. Commands that never fetch use it, so no teams are needed.
func LoadOutput() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateOutput(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	path := env.Config
	if path == "" {
		path = DefaultConfigFile
	}

	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnv(env)
	return cfg, nil
}

// LoadFile reads a YAML config file on top of the defaults and validates it.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(env envOverrides) {
	if env.OutputDir != "" {
		c.OutputDir = env.OutputDir
	}
	if env.LogLevel != "" {
		c.LogLevel = env.LogLevel
	}
	if env.APIBaseURL != "" {
		c.API.BaseURL = env.APIBaseURL
	}
	if env.APISource != "" {
		c.API.Source = env.APISource
	}
	if env.APITimeout > 0 {
		c.API.Timeout = env.APITimeout
	}
	if env.RequestsPerSecond > 0 {
		c.API.RequestsPerSecond = env.RequestsPerSecond
	}
	if env.Timezone != "" {
		c.Export.Timezone = env.Timezone
	}
	if len(env.Teams) > 0 {
		c.Teams = env.Teams
	}
}

// Validate checks struct constraints and that the timezone can be loaded.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Export.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Export.Timezone, err)
	}
	return nil
}

// ValidateOutput checks only the fields needed to write into the output directory.
func (c *Config) ValidateOutput() error {
	return validator.New().StructPartial(c, "OutputDir", "LogLevel")
}

// Location returns the export timezone. Validate has already checked it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Export.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
