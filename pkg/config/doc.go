// Package config provides configuration management for the portfolio backend.
//
// Settings are resolved from three layers, lowest precedence first:
//
//   - Built-in defaults
//   - The YAML file portfolio.yml in PORTFOLIO_CONFIG_PATH (default /etc/portfolio)
//   - Environment variables (a .env file is loaded into the environment by the CLI)
//
// Each attribute remembers which layer it came from so that
// `portfolioctl configuration show` can report it.
//
// # Required Settings
//
//   - JWT_SECRET: HMAC key for session tokens
//   - DB_FILE: SQLite database path
//   - FRONTEND_ORIGIN: comma separated list of CORS origins
//
// Validate reports every missing required setting at once; the server
// command calls it before opening the database.
//
// # Watching
//
// Watcher reloads the file when it changes and notifies subscribers, which
// the server uses to pick up new CORS origins and log levels without a
// restart.
package config
