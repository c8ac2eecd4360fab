package meta

import (
	"log/slog"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/inference"
)

const defaultPruneBudgetTokens = 80000
const keepRecentMessages = 20

// estimateTokens is the same rough 4-chars-per-token heuristic the
// original uses throughout (_estimate_tokens).
func estimateTokens(text string) int {
	return len(text) / 4
}

// pruneMessages implements §4.4.1: split off the system message; if the
// conversation fits the budget, return verbatim; otherwise keep the
// system message plus the last keepRecentMessages entries.
func pruneMessages(messages []inference.Message, budgetTokens int) []inference.Message {
	if len(messages) == 0 {
		return messages
	}
	if budgetTokens <= 0 {
		budgetTokens = defaultPruneBudgetTokens
	}

	var systemMsg *inference.Message
	conversation := make([]inference.Message, 0, len(messages))
	for i := range messages {
		if messages[i].Role == inference.RoleSystem && systemMsg == nil {
			msg := messages[i]
			systemMsg = &msg
			continue
		}
		conversation = append(conversation, messages[i])
	}

	total := 0
	if systemMsg != nil {
		total += estimateTokens(systemMsg.Content)
	}
	for _, msg := range conversation {
		total += estimateTokens(msg.Content)
	}

	if total <= budgetTokens {
		return rebuild(systemMsg, conversation)
	}

	slog.Info("meta: pruning conversation history", "before_tokens", total, "budget_tokens", budgetTokens, "before_messages", len(conversation))

	if len(conversation) > keepRecentMessages {
		conversation = conversation[len(conversation)-keepRecentMessages:]
	}
	return rebuild(systemMsg, conversation)
}

func rebuild(systemMsg *inference.Message, conversation []inference.Message) []inference.Message {
	out := make([]inference.Message, 0, len(conversation)+1)
	if systemMsg != nil {
		out = append(out, *systemMsg)
	}
	out = append(out, conversation...)
	return out
}
