package stringutil

import (
	"os"
	"strings"
)

// OrEnv returns current when it is set. Otherwise it returns the first non-blank
// value among the named environment variables, trimmed.
func OrEnv(current string, keys ...string) string {
	if strings.TrimSpace(current) != "" {
		return current
	}
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return current
}
