package config

import (
	"fmt"

	"dario.cat/mergo"
)

// mergeUserConfig merges a user-supplied partial Config onto the built-in
// defaults. Non-zero fields in user win; slices and maps are replaced
// wholesale rather than element-merged, matching the JSON-document model
// (a user who sets log_patterns wants exactly those patterns, not the
// built-ins plus theirs).
func mergeUserConfig(base *Config, user *Config) error {
	if user == nil {
		return nil
	}
	if err := mergo.Merge(base, user, mergo.WithOverride); err != nil {
		return fmt.Errorf("merge user config: %w", err)
	}
	return nil
}
