// =============================================================================
// FOLIO Batch - Configuration Module
// =============================================================================
//
// This module loads the main YAML configuration file. The configuration
// carries the Okapi gateway connection settings; everything else (input and
// output files, CSV dialects) comes from command-line flags.
//
// Configuration failures are the only fatal errors in the whole tool: a
// missing file and a malformed file each map to a distinct process exit
// code, every other problem becomes an audit-log row and the batch moves on.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sentinel errors so the CLI layer can map configuration failures to the
// distinct exit codes (missing=1, malformed=2).
var (
	// ErrNotFound indicates the configuration file does not exist.
	ErrNotFound = errors.New("config file not found")

	// ErrMalformed indicates the configuration file exists but could not be
	// parsed or is missing required settings.
	ErrMalformed = errors.New("config file malformed")
)

// =============================================================================
// CONFIGURATION STRUCTURES
// =============================================================================

// Config holds the application configuration loaded from config.yaml.
type Config struct {
	// Okapi contains the gateway connection settings.
	Okapi OkapiConfig `yaml:"okapi"`
}

// OkapiConfig holds the connection settings for the Okapi gateway.
type OkapiConfig struct {
	// URL is the base URL of the Okapi gateway, without a trailing slash.
	// Example: "https://okapi.example.edu"
	URL string `yaml:"url"`

	// Tenant is the FOLIO tenant identifier sent as x-okapi-tenant.
	Tenant string `yaml:"tenant"`

	// Username and Password authenticate against /authn/login.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// TimeoutSeconds bounds each HTTP call. Zero means no client timeout;
	// a hang is then an external fault handled by the operator.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// =============================================================================
// CONFIGURATION LOADING
// =============================================================================

// Load reads and validates the configuration file at the given path.
//
// Returned errors wrap ErrNotFound when the file is missing and ErrMalformed
// when it cannot be parsed or fails validation, so callers can select the
// proper exit code without string matching.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	// Trailing slashes break naive path joining against Okapi paths.
	for len(cfg.Okapi.URL) > 0 && cfg.Okapi.URL[len(cfg.Okapi.URL)-1] == '/' {
		cfg.Okapi.URL = cfg.Okapi.URL[:len(cfg.Okapi.URL)-1]
	}
}

// validate checks that the required Okapi settings are present.
func validate(cfg *Config) error {
	switch {
	case cfg.Okapi.URL == "":
		return errors.New("okapi.url is required")
	case cfg.Okapi.Tenant == "":
		return errors.New("okapi.tenant is required")
	case cfg.Okapi.Username == "":
		return errors.New("okapi.username is required")
	case cfg.Okapi.Password == "":
		return errors.New("okapi.password is required")
	}
	return nil
}
