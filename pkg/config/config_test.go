package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigStats(t *testing.T) {
	cfg := &Config{
		configDir: "/etc/ai-sysadmin",
		Trigger: TriggerConfig{
			CriticalServices: []string{"sshd", "dbus"},
			LogPatterns:      []LogPattern{{Pattern: "OOM"}},
		},
		Executor: ExecutorConfig{
			ProtectedServices: []string{"sshd", "systemd-networkd", "dbus"},
		},
	}

	assert.Equal(t, "/etc/ai-sysadmin", cfg.ConfigDir())

	stats := cfg.Stats()
	assert.Equal(t, 2, stats.CriticalServices)
	assert.Equal(t, 1, stats.LogPatterns)
	assert.Equal(t, 3, stats.ProtectedServices)
}
