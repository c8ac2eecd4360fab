package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/models"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	tr, err := New(t.TempDir())
	require.NoError(t, err)
	return tr
}

func TestCreateAndGet(t *testing.T) {
	tr := newTestTracker(t)

	id, err := tr.Create("web01", "nginx not running", "service is down", "high", "trigger")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	issue, ok := tr.Get(id)
	require.True(t, ok)
	assert.Equal(t, models.IssueOpen, issue.Status)
	assert.Equal(t, "web01", issue.Host)
}

func TestGet_MissingReturnsFalse(t *testing.T) {
	tr := newTestTracker(t)
	_, ok := tr.Get("no-such-id")
	assert.False(t, ok)
}

func TestUpdate_AppendsTimestampedNotes(t *testing.T) {
	tr := newTestTracker(t)
	id, err := tr.Create("web01", "disk almost full", "desc", "medium", "trigger")
	require.NoError(t, err)

	investigating := models.IssueInvestigating
	investigation := "checked /var/log, found 5GB of stale journal files"
	require.NoError(t, tr.Update(id, &investigating, &investigation, nil))

	issue, ok := tr.Get(id)
	require.True(t, ok)
	assert.Equal(t, models.IssueInvestigating, issue.Status)
	require.Len(t, issue.Investigations, 1)
	assert.Equal(t, investigation, issue.Investigations[0].Note)
}

func TestUpdate_RejectsBackwardTransition(t *testing.T) {
	tr := newTestTracker(t)
	id, err := tr.Create("web01", "disk almost full", "desc", "medium", "trigger")
	require.NoError(t, err)

	require.NoError(t, tr.Resolve(id, "cleaned up"))

	back := models.IssueOpen
	err = tr.Update(id, &back, nil, nil)
	assert.Error(t, err)

	issue, _ := tr.Get(id)
	assert.Equal(t, models.IssueResolved, issue.Status)
}

func TestUpdate_MissingIssueErrors(t *testing.T) {
	tr := newTestTracker(t)
	status := models.IssueInvestigating
	err := tr.Update("missing", &status, nil, nil)
	assert.Error(t, err)
}

func TestResolve_SetsStatusAndNote(t *testing.T) {
	tr := newTestTracker(t)
	id, err := tr.Create("web01", "nginx not running", "desc", "high", "trigger")
	require.NoError(t, err)

	require.NoError(t, tr.Resolve(id, "service restarted"))

	issue, _ := tr.Get(id)
	assert.Equal(t, models.IssueResolved, issue.Status)
	require.NotNil(t, issue.Resolution)
	assert.Equal(t, "service restarted", *issue.Resolution)
}

func TestClose_OnlyFromResolved(t *testing.T) {
	tr := newTestTracker(t)
	id, err := tr.Create("web01", "nginx not running", "desc", "high", "trigger")
	require.NoError(t, err)

	err = tr.Close(id)
	assert.Error(t, err)
}

func TestClose_EvictsFromLiveStore(t *testing.T) {
	tr := newTestTracker(t)
	id, err := tr.Create("web01", "nginx not running", "desc", "high", "trigger")
	require.NoError(t, err)
	require.NoError(t, tr.Resolve(id, "fixed"))

	require.NoError(t, tr.Close(id))

	_, ok := tr.Get(id)
	assert.False(t, ok)
}

func TestFindSimilar_MatchesOnKeywordOverlap(t *testing.T) {
	tr := newTestTracker(t)
	_, err := tr.Create("web01", "nginx service keeps crashing", "desc", "high", "trigger")
	require.NoError(t, err)

	found, ok := tr.FindSimilar("web01", "nginx service crashing again")
	require.True(t, ok)
	assert.Equal(t, "nginx service keeps crashing", found.Title)
}

func TestFindSimilar_NoMatchBelowThreshold(t *testing.T) {
	tr := newTestTracker(t)
	_, err := tr.Create("web01", "disk usage high", "desc", "medium", "trigger")
	require.NoError(t, err)

	_, ok := tr.FindSimilar("web01", "memory leak detected in process")
	assert.False(t, ok)
}

func TestFindSimilar_ScopedToHostAndOpenStatus(t *testing.T) {
	tr := newTestTracker(t)
	id, err := tr.Create("web01", "nginx not running", "desc", "high", "trigger")
	require.NoError(t, err)
	require.NoError(t, tr.Resolve(id, "fixed"))

	_, ok := tr.FindSimilar("web01", "nginx not running")
	assert.False(t, ok, "resolved issues should not be matched as similar")

	_, ok = tr.FindSimilar("web02", "nginx not running")
	assert.False(t, ok, "issues on other hosts should not match")
}

func TestAutoResolveIfFixed_ResolvesWhenNoLongerDetected(t *testing.T) {
	tr := newTestTracker(t)
	_, err := tr.Create("web01", "nginx not running", "service down", "high", "trigger")
	require.NoError(t, err)

	count, err := tr.AutoResolveIfFixed("web01", []string{"disk 91%"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	issues := tr.List(Filter{Host: "web01", Status: models.IssueOpen})
	assert.Empty(t, issues)
}

func TestAutoResolveIfFixed_KeepsIssueStillDetected(t *testing.T) {
	tr := newTestTracker(t)
	_, err := tr.Create("web01", "nginx not running", "service down", "high", "trigger")
	require.NoError(t, err)

	count, err := tr.AutoResolveIfFixed("web01", []string{"nginx failed to start"})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestList_FiltersByHostStatusSeverity(t *testing.T) {
	tr := newTestTracker(t)
	_, err := tr.Create("web01", "issue a", "desc", "high", "trigger")
	require.NoError(t, err)
	_, err = tr.Create("web02", "issue b", "desc", "low", "trigger")
	require.NoError(t, err)

	assert.Len(t, tr.List(Filter{Host: "web01"}), 1)
	assert.Len(t, tr.List(Filter{Severity: "low"}), 1)
	assert.Len(t, tr.List(Filter{}), 2)
}

func TestNew_ReloadsPersistedIssues(t *testing.T) {
	dir := t.TempDir()
	tr1, err := New(dir)
	require.NoError(t, err)
	id, err := tr1.Create("web01", "nginx not running", "desc", "high", "trigger")
	require.NoError(t, err)

	tr2, err := New(dir)
	require.NoError(t, err)
	issue, ok := tr2.Get(id)
	require.True(t, ok)
	assert.Equal(t, "nginx not running", issue.Title)
}
