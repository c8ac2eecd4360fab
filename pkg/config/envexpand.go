package config

import "os"

// ExpandEnv expands environment variables in the raw config.json bytes
// before they're parsed, using Go's standard shell-style syntax.
//
// Examples:
//   - ${AI_SYSADMIN_BACKEND_URL} → value of that environment variable
//   - $DATABASE_DSN → value of DATABASE_DSN
//
// Missing variables expand to empty string; validation catches the
// resulting empty required fields.
func ExpandEnv(data []byte) []byte {
	expanded := os.ExpandEnv(string(data))
	return []byte(expanded)
}
