package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/vectorstore"
	"github.com/google/uuid"
)

const knowledgeReflectionMaxTokens = 400

// queryRelevantKnowledge implements §4.4 "Knowledge injection": query the
// knowledge store semantically and render the top-k hits as a prompt
// section. Returns "" if there's no store configured or nothing relevant
// is found — injection is additive, never required.
func (m *Model) queryRelevantKnowledge(ctx context.Context, query string, k int) string {
	if m.knowledge == nil {
		return ""
	}

	hits, err := m.knowledge.QuerySimilar(ctx, query, k)
	if err != nil {
		slog.Warn("meta: knowledge query failed", "error", err)
		return ""
	}
	if len(hits) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\nRELEVANT KNOWLEDGE FROM EXPERIENCE:\n")
	for _, hit := range hits {
		topic, _ := hit.Metadata["topic"].(string)
		category, _ := hit.Metadata["category"].(string)
		confidence, _ := hit.Metadata["confidence"].(string)
		referenceCount, _ := hit.Metadata["reference_count"].(float64)
		fmt.Fprintf(&b, "\n• %s (%s):\n  %s\n  [Confidence: %s, Referenced: %d times]\n",
			topic, category, hit.Description, confidence, int(referenceCount))
	}
	return b.String()
}

type learning struct {
	Topic      string `json:"topic"`
	Knowledge  string `json:"knowledge"`
	Category   string `json:"category"`
	Confidence string `json:"confidence"`
}

// ReflectAndLearn implements §4.4 "Knowledge reflection" and §4.5's
// post-success learning hook: after a successful operation, ask the
// model to extract 1-2 durable learnings and store them. Failures
// (parse or store) are swallowed — reflection is optional and must
// never fail the operation it follows.
func (m *Model) ReflectAndLearn(ctx context.Context, situation, actionTaken, outcome string, success bool) {
	if !success || m.knowledge == nil {
		return
	}

	prompt := fmt.Sprintf(`Based on this successful operation, extract key learnings to remember for the future.

SITUATION:
%s

ACTION TAKEN:
%s

OUTCOME:
%s

Extract 1-2 specific, actionable learnings. For each learning provide:
1. topic: A concise topic name (e.g., "systemd service restart", "disk cleanup procedure")
2. knowledge: The specific insight or pattern (what worked, why, important details)
3. category: One of: command, pattern, troubleshooting, performance

Respond ONLY with valid JSON:
[
  {"topic": "...", "knowledge": "...", "category": "...", "confidence": "medium"}
]`, situation, actionTaken, outcome)

	text, err := m.backend.Generate(ctx, prompt, m.model, "", 0.3, knowledgeReflectionMaxTokens)
	if err != nil {
		slog.Warn("meta: reflection query failed", "error", err)
		return
	}

	learnings, err := extractLearnings(text)
	if err != nil {
		slog.Info("meta: could not extract learnings", "error", err)
		return
	}
	m.storeLearnings(ctx, learnings)
}

// extractLearnings parses the model's JSON array response, tolerating
// prose wrapped around the array the same way inference.ExtractJSON
// tolerates prose around a JSON object.
func extractLearnings(text string) ([]learning, error) {
	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	var learnings []learning
	if err := json.Unmarshal([]byte(text[start:end+1]), &learnings); err != nil {
		return nil, fmt.Errorf("parse learnings: %w", err)
	}
	return learnings, nil
}

func (m *Model) storeLearnings(ctx context.Context, learnings []learning) {
	m.mu.Lock()
	m.stats.Reflections += len(learnings)
	m.mu.Unlock()

	for _, l := range learnings {
		if l.Topic == "" || l.Knowledge == "" {
			continue
		}
		if l.Confidence == "" {
			l.Confidence = "medium"
		}
		if l.Category == "" {
			l.Category = "experience"
		}

		rec := vectorstore.Record{
			ID:        uuid.NewString(),
			Document:  l.Knowledge,
			Embedding: vectorstore.TextEmbedding(l.Topic + " " + l.Knowledge),
			Metadata: map[string]any{
				"topic":      l.Topic,
				"category":   l.Category,
				"confidence": l.Confidence,
				"source":     "experience",
			},
		}
		if err := m.knowledge.Upsert(ctx, vectorstore.CollectionKnowledge, rec); err != nil {
			slog.Warn("meta: failed to store learning", "topic", l.Topic, "error", err)
			continue
		}
		slog.Info("meta: learned", "topic", l.Topic)
	}
}
