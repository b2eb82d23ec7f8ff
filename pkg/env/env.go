package env

import (
	"os"
	"strings"
)

// Get returns the trimmed environment value or the fallback when unset.
func Get(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
