package sqlite

import "fmt"

const (
	defaultBusyTimeout = 5000
	defaultDBFile      = "transcript.db"
)

// Config holds the SQLite archive module configuration.
type Config struct {
	// Path is the database file path. Defaults to {DataDir}/transcript.db.
	Path string `yaml:"path"`

	// BusyTimeout is the milliseconds to wait on a busy lock. Defaults to 5000.
	BusyTimeout int `yaml:"busy_timeout"`
}

func (c *Config) defaults() {
	if c.BusyTimeout == 0 {
		c.BusyTimeout = defaultBusyTimeout
	}
}

func (c *Config) validate() error {
	if c.BusyTimeout < 0 {
		return fmt.Errorf("archive.sqlite: busy_timeout must be non-negative, got %d", c.BusyTimeout)
	}
	return nil
}
