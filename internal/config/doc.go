// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, .env files, config files). It
// provides type-safe access to the database, logging, and ledger settings
// while keeping configuration details separate from business logic.
package config
