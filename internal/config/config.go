// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Drivers accepted for the record store.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Driver selects the record store backend: memory, sqlite, postgres.
	Driver string `koanf:"driver"`

	// SQLitePath locates the SQLite database file (sqlite driver).
	SQLitePath string `koanf:"sqlite_path"`

	// PostgresDSN configures the Postgres connection (postgres driver).
	PostgresDSN string `koanf:"postgres_dsn"`

	// Seats maps program codes to their seat capacity. The set of keys
	// is the set of valid programs; it is configuration, not a
	// hardcoded constant.
	Seats map[string]int `koanf:"seats"`

	// CascadeLimit caps the number of rows returned by the cascade view.
	CascadeLimit int `koanf:"cascade_limit"`
}

// New creates a Config with defaults. The default seat map mirrors the
// original campaign deployment.
func New() *Config {
	return &Config{
		LogLevel:   "info",
		Addr:       ":8080",
		Driver:     DriverSQLite,
		SQLitePath: "enrolld.db",
		Seats: map[string]int{
			"PM":   40,
			"IVT":  50,
			"ITSS": 30,
			"IB":   20,
		},
		CascadeLimit: 1000,
	}
}
