package meta

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/metrics"
)

const (
	passthroughLimit = 5000
	mapReduceLimit   = 8000
	chunkSize        = 8000
	reduceChunkCount = 5

	oneShotMaxChars = 600
	chunkMaxChars   = 400
	reduceMaxChars  = 800
)

// summarizeToolResult implements §4.4.2: route a raw tool output through
// passthrough, one-shot summarisation, or chunked map-reduce
// summarisation depending on size, caching the full text regardless.
func (m *Model) summarizeToolResult(ctx context.Context, toolName, raw string) string {
	size := len(raw)

	cacheID, cacheErr := m.writeCache(toolName, raw)
	if cacheErr != nil {
		slog.Warn("meta: failed to cache tool output", "tool", toolName, "error", cacheErr)
	}

	if size < passthroughLimit {
		return raw
	}

	if size <= mapReduceLimit {
		summary, err := m.oneShotSummary(ctx, toolName, raw)
		if err != nil {
			slog.Warn("meta: one-shot summarisation failed, truncating instead", "tool", toolName, "error", err)
			return simpleTruncate(raw, 2000)
		}
		metrics.AddTokensSaved(estimateTokens(raw) - estimateTokens(summary))
		return fmt.Sprintf("[Summary of %s]:\n%s\n\n[Full output: %d chars cached as %s]", toolName, summary, size, cacheID)
	}

	summary, chunks, err := m.mapReduceSummary(ctx, toolName, raw)
	if err != nil {
		slog.Warn("meta: map-reduce summarisation failed, truncating instead", "tool", toolName, "error", err)
		return simpleTruncate(raw, 2000)
	}
	metrics.AddTokensSaved(estimateTokens(raw) - estimateTokens(summary))
	return fmt.Sprintf("[Chunked analysis of %s]:\n%s\n\n[Processed %d chunks, %d chars total, cached as %s]", toolName, summary, chunks, size, cacheID)
}

func (m *Model) oneShotSummary(ctx context.Context, toolName, raw string) (string, error) {
	prompt := fmt.Sprintf(`Analyze this output from '%s'.

Extract: key findings, errors/warnings, metrics, actionable insights.

Output:
%s

Provide concise summary (max %d chars).`, toolName, raw, oneShotMaxChars)

	return m.backend.Generate(ctx, prompt, m.model, "", 0.1, oneShotMaxChars)
}

// mapReduceSummary partitions raw into fixed-size chunks, summarises
// each concurrently (bounded by errgroup.SetLimit, following the
// isolation idiom pkg/trigger uses for its concurrent probe checks),
// then reduces the per-chunk summaries into one if there are enough of
// them to warrant it.
func (m *Model) mapReduceSummary(ctx context.Context, toolName, raw string) (string, int, error) {
	var chunks []string
	for i := 0; i < len(raw); i += chunkSize {
		end := i + chunkSize
		if end > len(raw) {
			end = len(raw)
		}
		chunks = append(chunks, raw[i:end])
	}

	summaries := make([]string, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for idx, chunk := range chunks {
		idx, chunk := idx, chunk
		g.Go(func() error {
			prompt := fmt.Sprintf(`Analyze chunk %d/%d from '%s'.

Extract: key findings, errors/warnings, metrics, insights.

Chunk:
%s

Concise summary (max %d chars).`, idx+1, len(chunks), toolName, chunk, chunkMaxChars)

			summary, err := m.backend.Generate(gctx, prompt, m.model, "", 0.1, chunkMaxChars)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", idx+1, err)
			}
			summaries[idx] = fmt.Sprintf("[Chunk %d]: %s", idx+1, summary)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", 0, err
	}

	if len(summaries) > reduceChunkCount {
		combined := strings.Join(summaries, "\n")
		reducePrompt := fmt.Sprintf(`Synthesize these chunk summaries from '%s':

%s

Provide unified summary (max %d chars) covering all key points.`, toolName, combined, reduceMaxChars)

		final, err := m.backend.Generate(ctx, reducePrompt, m.model, "", 0.1, reduceMaxChars)
		if err != nil {
			return "", 0, fmt.Errorf("reduce: %w", err)
		}
		return final, len(chunks), nil
	}

	return strings.Join(summaries, "\n"), len(chunks), nil
}

func simpleTruncate(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}
	half := maxChars / 2
	return text[:half] + fmt.Sprintf("\n... [TRUNCATED: %d chars omitted] ...\n", len(text)-maxChars) + text[len(text)-half:]
}

func truncateText(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n]
}
