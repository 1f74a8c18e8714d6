package config

import "os"

// GetEnvOrDefault retrieves an environment variable or returns a default
// value when it is unset or empty
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
