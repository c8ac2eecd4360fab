package review

import (
	"testing"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestIsSafeAction(t *testing.T) {
	cases := []struct {
		name   string
		action SafeAction
		want   bool
	}{
		{"low risk restart", SafeAction{ActionType: config.ActionSystemdRestart, Risk: config.RiskLow}, true},
		{"low risk investigation", SafeAction{ActionType: config.ActionInvestigation, Risk: config.RiskLow}, true},
		{"low risk cleanup", SafeAction{ActionType: config.ActionCleanup, Risk: config.RiskLow}, true},
		{"high risk restart", SafeAction{ActionType: config.ActionSystemdRestart, Risk: config.RiskHigh}, false},
		{"low risk config change", SafeAction{ActionType: config.ActionConfigChange, Risk: config.RiskLow}, false},
		{"low risk nix rebuild", SafeAction{ActionType: config.ActionNixRebuild, Risk: config.RiskLow}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, isSafeAction(c.action))
		})
	}
}

func TestCommandsForAction(t *testing.T) {
	assert.Equal(t, []string{"systemctl restart nginx"},
		commandsForAction(SafeAction{ActionType: config.ActionSystemdRestart, Target: "nginx"}))

	assert.Equal(t, []string{"systemctl status nginx", "journalctl -u nginx -n 50"},
		commandsForAction(SafeAction{ActionType: config.ActionInvestigation, Target: "nginx"}))

	assert.Equal(t, []string{"journalctl --vacuum-time=7d"},
		commandsForAction(SafeAction{ActionType: config.ActionCleanup, Target: "ignored"}))

	assert.Nil(t, commandsForAction(SafeAction{ActionType: config.ActionConfigChange, Target: "x"}))
}
