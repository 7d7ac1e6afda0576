package insider

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything a crawl run needs: where the archive lives, how
// to identify ourselves to it, and which entities to track.
type Config struct {
	// BaseURL is the archive host, e.g. https://www.sec.gov
	BaseURL string `yaml:"base_url"`

	// ExtendURL is the path template prepended to each entity's registry
	// ID to reach its filing-folder listing.
	ExtendURL string `yaml:"extend_url"`

	// Headers are attached to every request. The archive's access policy
	// requires an identifying User-Agent; when none is configured it is
	// built from the SEC_EMAIL environment variable.
	Headers map[string]string `yaml:"headers"`

	// Entities is the registry of tracked companies, crawled in file
	// order. Each name must equal the issuer trading symbol used in that
	// company's filings.
	Entities []Entity `yaml:"entities"`

	Fetch FetchConfig `yaml:"fetch"`
}

// FetchConfig tunes the HTTP layer and the crawl's parallelism.
type FetchConfig struct {
	Timeout           Duration `yaml:"timeout"`
	MaxRetries        int      `yaml:"max_retries"`
	RequestsPerSecond float64  `yaml:"requests_per_second"`
	Workers           int      `yaml:"workers"`
}

// Duration unmarshals from YAML duration strings like "30s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// DefaultConfig returns a Config with sensible defaults. The entity
// registry is intentionally empty; it has no meaningful default.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   "https://www.sec.gov",
		ExtendURL: "/cgi-bin/browse-edgar?action=getcompany&type=4&dateb=&owner=include&count=40&search_text=&CIK=",
		Headers:   map[string]string{},
		Fetch: FetchConfig{
			Timeout:           Duration(30 * time.Second),
			MaxRetries:        2,
			RequestsPerSecond: DefaultRequestsPerSecond,
			Workers:           1,
		},
	}
}

// LoadConfig reads a YAML config file over the defaults. A .env file in the
// working directory is loaded first so SEC_EMAIL can live there.
func LoadConfig(path string) (*Config, error) {
	// Ignore error - .env file is optional
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if len(c.Entities) == 0 {
		return fmt.Errorf("at least one entity is required")
	}
	for i, e := range c.Entities {
		if e.Name == "" {
			return fmt.Errorf("entity %d: name is required", i)
		}
		if e.CIK == "" {
			return fmt.Errorf("entity %q: cik is required", e.Name)
		}
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("fetch.timeout cannot be negative")
	}
	if c.Fetch.MaxRetries < 0 {
		return fmt.Errorf("fetch.max_retries cannot be negative")
	}
	if c.Fetch.RequestsPerSecond < 0 {
		return fmt.Errorf("fetch.requests_per_second cannot be negative")
	}
	if c.Fetch.Workers < 0 {
		return fmt.Errorf("fetch.workers cannot be negative")
	}
	return nil
}

// ResolveUserAgent fills in the User-Agent header if the config did not set
// one. email overrides the environment; with neither present an error is
// returned, since the archive rejects unidentified clients.
func (c *Config) ResolveUserAgent(email string) error {
	if c.Headers == nil {
		c.Headers = map[string]string{}
	}
	if c.Headers["User-Agent"] != "" {
		return nil
	}
	if email == "" {
		var err error
		email, err = GetSecEmail()
		if err != nil {
			return err
		}
	}
	c.Headers["User-Agent"] = BuildUserAgent(email)
	return nil
}
