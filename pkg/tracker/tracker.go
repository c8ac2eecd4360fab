// Package tracker implements §4.6: deduplicate problem reports into
// stable Issues and track their lifecycle. Grounded on
// original_source/issue_tracker.py.
package tracker

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/metrics"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/models"
)

// statusRank orders IssueStatus for the §3 monotonicity invariant: a
// transition is valid only if it does not move to a lower rank.
var statusRank = map[models.IssueStatus]int{
	models.IssueOpen:          0,
	models.IssueInvestigating: 1,
	models.IssueFixing:        2,
	models.IssueResolved:      3,
	models.IssueClosed:        4,
}

// Tracker holds the live issue set in memory, persisted to a JSON file
// under stateDir, plus an append-only archive of closed issues.
type Tracker struct {
	mu       sync.RWMutex
	stateDir string
	issues   map[string]*models.Issue
}

// New loads (or initialises) a Tracker rooted at stateDir.
func New(stateDir string) (*Tracker, error) {
	t := &Tracker{stateDir: stateDir, issues: make(map[string]*models.Issue)}

	var stored []models.Issue
	if err := readJSONFile(t.issuesPath(), &stored); err != nil {
		return nil, fmt.Errorf("tracker: load issues: %w", err)
	}
	for i := range stored {
		issue := stored[i]
		t.issues[issue.ID] = &issue
	}
	return t, nil
}

// Create records a new open Issue and returns its id.
func (t *Tracker) Create(host, title, description, severity, source string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now().UTC()
	issue := &models.Issue{
		ID:          uuid.NewString(),
		Host:        host,
		Title:       title,
		Description: description,
		Severity:    severity,
		Status:      models.IssueOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
		Source:      source,
	}
	t.issues[issue.ID] = issue

	if err := t.persist(); err != nil {
		return "", err
	}
	metrics.RecordIssueCreated()
	return issue.ID, nil
}

// Get fetches an issue by id. Closed issues are unreachable here — they
// live only in the archive (§4.6 invariant).
func (t *Tracker) Get(id string) (models.Issue, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	issue, ok := t.issues[id]
	if !ok {
		return models.Issue{}, false
	}
	return *issue, true
}

// Filter narrows List by host/status/severity; zero-value fields are not
// applied as constraints.
type Filter struct {
	Host     string
	Status   models.IssueStatus
	Severity string
}

// List returns every live issue matching filter.
func (t *Tracker) List(filter Filter) []models.Issue {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []models.Issue
	for _, issue := range t.issues {
		if filter.Host != "" && issue.Host != filter.Host {
			continue
		}
		if filter.Status != "" && issue.Status != filter.Status {
			continue
		}
		if filter.Severity != "" && issue.Severity != filter.Severity {
			continue
		}
		out = append(out, *issue)
	}
	return out
}

// Update appends a timestamped investigation and/or action note and
// optionally advances status. A status that would violate the §3
// monotonicity invariant is rejected without mutating the issue.
func (t *Tracker) Update(id string, status *models.IssueStatus, investigation, action *string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	issue, ok := t.issues[id]
	if !ok {
		return fmt.Errorf("tracker: issue %q not found", id)
	}

	if status != nil {
		if !isValidTransition(issue.Status, *status) {
			return fmt.Errorf("tracker: invalid status transition %s -> %s", issue.Status, *status)
		}
		issue.Status = *status
	}

	now := time.Now().UTC()
	if investigation != nil {
		issue.Investigations = append(issue.Investigations, models.Investigation{At: now, Note: *investigation})
	}
	if action != nil {
		issue.Actions = append(issue.Actions, models.Action{At: now, Description: *action})
	}

	issue.UpdatedAt = now
	return t.persist()
}

func isValidTransition(from, to models.IssueStatus) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank >= fromRank
}

// Resolve sets status to resolved and records a resolution note.
func (t *Tracker) Resolve(id, note string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	issue, ok := t.issues[id]
	if !ok {
		return fmt.Errorf("tracker: issue %q not found", id)
	}
	if !isValidTransition(issue.Status, models.IssueResolved) {
		return fmt.Errorf("tracker: invalid status transition %s -> %s", issue.Status, models.IssueResolved)
	}

	issue.Status = models.IssueResolved
	issue.Resolution = &note
	issue.UpdatedAt = time.Now().UTC()
	return t.persist()
}

// Close archives a resolved issue and evicts it from the live store.
// Closure is terminal and only reachable from resolved. An archive
// write failure is logged and swallowed, never returned — the issue is
// still evicted and persist()'s error is the only one this method can
// return — per §4.6, "archive writes that fail are logged but never
// abort the closure".
func (t *Tracker) Close(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	issue, ok := t.issues[id]
	if !ok {
		return fmt.Errorf("tracker: issue %q not found", id)
	}
	if issue.Status != models.IssueResolved {
		return fmt.Errorf("tracker: issue %q is not resolved", id)
	}

	now := time.Now().UTC()
	issue.Status = models.IssueClosed
	issue.ClosedAt = &now

	if err := appendJSONLine(t.archivePath(), issue); err != nil {
		slog.Warn("tracker: failed to archive closed issue", "issue_id", id, "error", err)
	}

	delete(t.issues, id)
	metrics.RecordIssueClosed()
	return t.persist()
}
