// Package main is portfolioctl, the command line entry point of the
// portfolio backend.
//
// # Quick Start
//
//	# Apply the schema
//	portfolioctl db migrate
//
//	# Create the first administrator
//	portfolioctl user create-admin vincent vincent@example.com
//
//	# Start the server
//	portfolioctl server
//
// # Environment Variables
//
//   - JWT_SECRET: HMAC key for session tokens (required)
//   - DB_FILE: path of the SQLite database (required)
//   - FRONTEND_ORIGIN: comma separated CORS origins (required)
//   - APP_ENV: "production" enables the backup scheduler and secure cookies
//   - LOG_LEVEL: Log level (debug, info, warn, error)
//   - PORT: Server port (default: 8080)
//
// A .env file in the working directory is loaded before anything else.
// Run "portfolioctl configuration show" for the full list of settings and
// where each value came from.
package main
