package config

import "time"

// Config holds runtime settings for the taskkeeper CLI.
//
// Fields:
//   - APIBaseURL: base URL of the REST API, including the /api prefix.
//   - SessionFile: SQLite file that keeps the signed-in session between runs.
//   - RequestTimeout: upper bound for a single API call.
type Config struct {
	APIBaseURL     string
	SessionFile    string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080/api"
	c.SessionFile = "taskkeeper_session.db"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
