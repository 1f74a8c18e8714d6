// Package config provides configuration types and environment helpers
// shared across the platform's packages.
//
// Per-concern structs (DatabaseConfig, JwtConfig, SMTPConfig, StorageConfig)
// carry cleanenv env tags, so a composed application config loads with a
// single cleanenv.ReadEnv call in cmd/platform.
package config
