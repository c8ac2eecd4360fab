package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/models"
)

// stopWords are filtered out before computing Jaccard similarity, the
// same set original_source/executor.py uses for its duplicate check.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "have": true, "has": true, "had": true,
}

func tokenize(s string) map[string]bool {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	set := make(map[string]bool, len(words))
	for _, w := range words {
		if !stopWords[w] {
			set[w] = true
		}
	}
	return set
}

// jaccardSimilarity is the Jaccard index between the token sets of a and
// b after lowercasing, whitespace-splitting, and stop-word filtering.
func jaccardSimilarity(a, b string) float64 {
	setA, setB := tokenize(a), tokenize(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// queueForApproval appends proposal to the approval queue unless a
// pending entry with a sufficiently similar diagnosis or proposed action
// already exists (§4.5 "Approval-queue dedup").
func (e *Executor) queueForApproval(proposal models.Proposal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var queue []models.ApprovalQueueEntry
	if err := readJSONFile(e.approvalQueuePath(), &queue); err != nil {
		return err
	}

	for _, existing := range queue {
		if existing.Decision != models.DecisionPending {
			continue
		}
		if jaccardSimilarity(proposal.Diagnosis, existing.Proposal.Diagnosis) > approvalSimilarity {
			return nil
		}
		if jaccardSimilarity(proposal.ProposedAction, existing.Proposal.ProposedAction) > approvalSimilarity {
			return nil
		}
	}

	queue = append(queue, models.ApprovalQueueEntry{
		EnqueuedAt: time.Now(),
		Proposal:   proposal,
		Decision:   models.DecisionPending,
	})

	return writeJSONFile(e.approvalQueuePath(), queue)
}

// PendingApprovals returns the current approval queue.
func (e *Executor) PendingApprovals() ([]models.ApprovalQueueEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var queue []models.ApprovalQueueEntry
	if err := readJSONFile(e.approvalQueuePath(), &queue); err != nil {
		return nil, err
	}
	return queue, nil
}

// Approve executes the proposal at index, archives the outcome, and
// removes it from the queue regardless of whether execution succeeded.
func (e *Executor) Approve(ctx context.Context, index int) (models.ExecutionResult, error) {
	e.mu.Lock()
	var queue []models.ApprovalQueueEntry
	if err := readJSONFile(e.approvalQueuePath(), &queue); err != nil {
		e.mu.Unlock()
		return models.ExecutionResult{}, err
	}
	if index < 0 || index >= len(queue) {
		e.mu.Unlock()
		return models.ExecutionResult{}, fmt.Errorf("executor: approval index %d out of range", index)
	}
	entry := queue[index]
	e.mu.Unlock()

	result := e.dispatch(ctx, entry.Proposal)

	if err := e.archive(entry, result); err != nil {
		return result, fmt.Errorf("executor: archive approved action: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := readJSONFile(e.approvalQueuePath(), &queue); err != nil {
		return result, err
	}
	if index < len(queue) {
		queue = append(queue[:index], queue[index+1:]...)
	}
	if err := writeJSONFile(e.approvalQueuePath(), queue); err != nil {
		return result, err
	}

	if result.Succeeded() && e.learner != nil {
		e.learner.ReflectAndLearn(ctx, entry.Proposal.Diagnosis, entry.Proposal.ProposedAction, result.Output, true)
	}

	return result, nil
}

// Reject removes the proposal at index from the queue without executing
// it.
func (e *Executor) Reject(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var queue []models.ApprovalQueueEntry
	if err := readJSONFile(e.approvalQueuePath(), &queue); err != nil {
		return err
	}
	if index < 0 || index >= len(queue) {
		return fmt.Errorf("executor: approval index %d out of range", index)
	}

	queue = append(queue[:index], queue[index+1:]...)
	return writeJSONFile(e.approvalQueuePath(), queue)
}
