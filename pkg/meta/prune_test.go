package meta

import (
	"strings"
	"testing"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/inference"
	"github.com/stretchr/testify/assert"
)

func TestPruneMessages_UnderBudgetReturnsVerbatim(t *testing.T) {
	messages := []inference.Message{
		{Role: inference.RoleSystem, Content: "system prompt"},
		{Role: inference.RoleUser, Content: "hello"},
		{Role: inference.RoleAssistant, Content: "hi there"},
	}

	out := pruneMessages(messages, defaultPruneBudgetTokens)
	assert.Equal(t, messages, out)
}

func TestPruneMessages_OverBudgetKeepsSystemAndRecent(t *testing.T) {
	messages := []inference.Message{
		{Role: inference.RoleSystem, Content: "system prompt"},
	}
	for i := 0; i < 40; i++ {
		messages = append(messages, inference.Message{Role: inference.RoleUser, Content: strings.Repeat("x", 500)})
	}

	out := pruneMessages(messages, 100)
	assert.Equal(t, inference.RoleSystem, out[0].Role)
	assert.Equal(t, keepRecentMessages+1, len(out))
	assert.Equal(t, messages[len(messages)-keepRecentMessages:], out[1:])
}

func TestPruneMessages_EmptyInput(t *testing.T) {
	assert.Empty(t, pruneMessages(nil, defaultPruneBudgetTokens))
}

func TestPruneMessages_NoSystemMessage(t *testing.T) {
	messages := []inference.Message{
		{Role: inference.RoleUser, Content: "hi"},
	}
	out := pruneMessages(messages, defaultPruneBudgetTokens)
	assert.Equal(t, messages, out)
}
