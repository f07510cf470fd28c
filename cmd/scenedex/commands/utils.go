package commands

import "os"

// truncate shortens s to maxLen runes, appending an ellipsis when cut.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

// stringOrEnv returns v unless empty, then the named environment variable.
func stringOrEnv(v, env string) string {
	if v != "" {
		return v
	}
	return os.Getenv(env)
}
