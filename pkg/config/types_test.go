package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThresholdsConfigZeroValueMeansUseDefault(t *testing.T) {
	var thr ThresholdsConfig
	assert.Equal(t, 0.0, thr.CPUPercent)
}

func TestLogPatternFields(t *testing.T) {
	p := LogPattern{Pattern: `(?i)out of memory`, Severity: "critical", Description: "OOM"}
	assert.Equal(t, "critical", p.Severity)
}
