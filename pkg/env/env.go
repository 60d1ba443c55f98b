// Package env reads process environment variables with fallbacks. It exists
// for the few lookups that happen before configuration is loaded.
package env

import "os"

// Get returns the named environment variable, or fallback when unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
