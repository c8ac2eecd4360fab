package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordReviewPerformed(t *testing.T) {
	initial := testutil.ToFloat64(reviewsPerformed)
	RecordReviewPerformed()
	assert.Equal(t, initial+1, testutil.ToFloat64(reviewsPerformed))
}

func TestRecordEscalation_DefaultsUnlabeledReason(t *testing.T) {
	initial := testutil.ToFloat64(escalations.WithLabelValues("unspecified"))
	RecordEscalation("")
	assert.Equal(t, initial+1, testutil.ToFloat64(escalations.WithLabelValues("unspecified")))
}

func TestRecordEscalation_UsesGivenReason(t *testing.T) {
	initial := testutil.ToFloat64(escalations.WithLabelValues("disk_pressure"))
	RecordEscalation("disk_pressure")
	assert.Equal(t, initial+1, testutil.ToFloat64(escalations.WithLabelValues("disk_pressure")))
}

func TestAddTokensSaved_IgnoresNonPositive(t *testing.T) {
	initial := testutil.ToFloat64(tokensSaved)
	AddTokensSaved(0)
	AddTokensSaved(-5)
	assert.Equal(t, initial, testutil.ToFloat64(tokensSaved))
}

func TestAddTokensSaved_Accumulates(t *testing.T) {
	initial := testutil.ToFloat64(tokensSaved)
	AddTokensSaved(120)
	assert.Equal(t, initial+120, testutil.ToFloat64(tokensSaved))
}

func TestRecordIssueCreatedAndClosed(t *testing.T) {
	initialCreated := testutil.ToFloat64(issuesCreated)
	initialClosed := testutil.ToFloat64(issuesClosed)

	RecordIssueCreated()
	RecordIssueClosed()

	assert.Equal(t, initialCreated+1, testutil.ToFloat64(issuesCreated))
	assert.Equal(t, initialClosed+1, testutil.ToFloat64(issuesClosed))
}

func TestSetQueueDepth(t *testing.T) {
	SetQueueDepth(QueueDepths{Pending: 3, Processing: 1, Completed: 7, Failed: 2})

	assert.Equal(t, float64(3), testutil.ToFloat64(queueDepth.WithLabelValues("pending")))
	assert.Equal(t, float64(1), testutil.ToFloat64(queueDepth.WithLabelValues("processing")))
	assert.Equal(t, float64(7), testutil.ToFloat64(queueDepth.WithLabelValues("completed")))
	assert.Equal(t, float64(2), testutil.ToFloat64(queueDepth.WithLabelValues("failed")))
}

func TestRecordQueueOutcome(t *testing.T) {
	initial := testutil.ToFloat64(queueOutcomes.WithLabelValues("completed"))
	RecordQueueOutcome("completed")
	assert.Equal(t, initial+1, testutil.ToFloat64(queueOutcomes.WithLabelValues("completed")))
}

func TestRecordActionExecuted(t *testing.T) {
	initial := testutil.ToFloat64(actionsExecuted.WithLabelValues("restart_service", "dispatched"))
	RecordActionExecuted("restart_service", "dispatched")
	assert.Equal(t, initial+1, testutil.ToFloat64(actionsExecuted.WithLabelValues("restart_service", "dispatched")))
}

func TestRecordTriggerCheck(t *testing.T) {
	initial := testutil.ToFloat64(triggerChecks.WithLabelValues("ok"))
	RecordTriggerCheck("ok")
	assert.Equal(t, initial+1, testutil.ToFloat64(triggerChecks.WithLabelValues("ok")))
}

func TestHandler_ServesRegisteredMetrics(t *testing.T) {
	RecordReviewPerformed()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ai_sysadmin_review_performed_total")
}
