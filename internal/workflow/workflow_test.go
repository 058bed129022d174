package workflow

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"customer-retention-engine/internal/models"
	"customer-retention-engine/internal/services/catalog"
	"customer-retention-engine/internal/services/composer"
	"customer-retention-engine/internal/services/mail"
	"customer-retention-engine/internal/services/matcher"
	"customer-retention-engine/internal/services/notifier"
)

// fakeDispatcher records sends and fails for configured recipients.
type fakeDispatcher struct {
	mu      sync.Mutex
	sends   []string
	failFor map[string]mail.Result
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{failFor: make(map[string]mail.Result)}
}

func (d *fakeDispatcher) Send(_ context.Context, to, _, _ string) mail.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sends = append(d.sends, to)
	if res, ok := d.failFor[to]; ok {
		return res
	}
	return mail.Sent("sent to " + to)
}

func (d *fakeDispatcher) sentTo() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.sends))
	copy(out, d.sends)
	return out
}

const teamAddress = "team@example.com"

func testWorkflow(dispatcher mail.Dispatcher) *Workflow {
	cat := catalog.Default()
	return New(
		matcher.New(cat, matcher.NewKeywordStrategy()),
		composer.New(cat, composer.NewTemplateGenerator()),
		dispatcher,
		notifier.New(teamAddress, dispatcher),
	)
}

func record(id, email, reason string) models.CancellationRecord {
	return models.CancellationRecord{
		CustomerID:    id,
		CustomerEmail: email,
		Reason:        reason,
		DateCancelled: "2026-08-30",
	}
}

func TestProcess_MatchedRecord(t *testing.T) {
	dispatcher := newFakeDispatcher()
	wf := testWorkflow(dispatcher)

	result := wf.Process(context.Background(), record("CUST-001", "a@example.com", "too expensive for us"))

	assert.Equal(t, models.StateComposed, result.State)
	assert.True(t, result.IsMatch)
	assert.True(t, result.Decision.IsMatch())
	assert.NotEmpty(t, result.Draft.Body)
	assert.False(t, result.EmailSent)
	assert.False(t, result.NotificationSent)
	assert.Empty(t, dispatcher.sentTo(), "Process never sends mail")
}

func TestProcess_UnmatchedRecordDoesNotEscalate(t *testing.T) {
	dispatcher := newFakeDispatcher()
	wf := testWorkflow(dispatcher)

	result := wf.Process(context.Background(), record("CUST-002", "b@example.com", "relocating abroad"))

	assert.False(t, result.IsMatch)
	assert.True(t, result.Draft.Empty())
	assert.Empty(t, dispatcher.sentTo())
}

func TestRun_EscalatesUnmatched(t *testing.T) {
	dispatcher := newFakeDispatcher()
	wf := testWorkflow(dispatcher)

	result := wf.Run(context.Background(), record("CUST-003", "c@example.com", "relocating abroad"))

	assert.False(t, result.IsMatch)
	assert.True(t, result.NotificationSent)
	assert.Equal(t, models.StateEscalated, result.State)
	assert.Equal(t, []string{teamAddress}, dispatcher.sentTo())
}

func TestRun_MatchedStaysComposed(t *testing.T) {
	dispatcher := newFakeDispatcher()
	wf := testWorkflow(dispatcher)

	result := wf.Run(context.Background(), record("CUST-004", "d@example.com", "price is too high"))

	assert.True(t, result.IsMatch)
	assert.Equal(t, models.StateComposed, result.State)
	assert.Empty(t, dispatcher.sentTo(), "sending is a separate explicit action")
}

func TestSendEmail_Success(t *testing.T) {
	dispatcher := newFakeDispatcher()
	wf := testWorkflow(dispatcher)

	result := wf.Process(context.Background(), record("CUST-005", "e@example.com", "too expensive"))
	res := wf.SendEmail(context.Background(), result)

	assert.True(t, res.Success)
	assert.True(t, result.EmailSent)
	assert.Equal(t, models.StateSent, result.State)
	assert.Equal(t, []string{"e@example.com"}, dispatcher.sentTo())
}

func TestSendEmail_Idempotent(t *testing.T) {
	dispatcher := newFakeDispatcher()
	wf := testWorkflow(dispatcher)

	result := wf.Process(context.Background(), record("CUST-006", "f@example.com", "too expensive"))
	wf.SendEmail(context.Background(), result)
	res := wf.SendEmail(context.Background(), result)

	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "already sent")
	assert.Len(t, dispatcher.sentTo(), 1, "second invocation must not dispatch again")
}

func TestSendEmail_FailureKeepsRecordRetryable(t *testing.T) {
	dispatcher := newFakeDispatcher()
	dispatcher.failFor["g@example.com"] = mail.Failed(mail.FailureAuth, "Authentication failed")
	wf := testWorkflow(dispatcher)

	result := wf.Process(context.Background(), record("CUST-007", "g@example.com", "too expensive"))
	res := wf.SendEmail(context.Background(), result)

	assert.False(t, res.Success)
	assert.False(t, result.EmailSent)
	assert.Equal(t, models.StateSendFailed, result.State)
	assert.Contains(t, result.Message, "Authentication failed")

	// Clearing the failure lets a retry succeed.
	delete(dispatcher.failFor, "g@example.com")
	res = wf.SendEmail(context.Background(), result)
	assert.True(t, res.Success)
	assert.True(t, result.EmailSent)
	assert.Equal(t, models.StateSent, result.State)
	assert.Empty(t, result.Message)
}

func TestSendEmail_RefusesUnmatched(t *testing.T) {
	dispatcher := newFakeDispatcher()
	wf := testWorkflow(dispatcher)

	result := wf.Process(context.Background(), record("CUST-008", "h@example.com", "relocating abroad"))
	res := wf.SendEmail(context.Background(), result)

	assert.False(t, res.Success)
	assert.Empty(t, dispatcher.sentTo())
}

func TestEscalate_Idempotent(t *testing.T) {
	dispatcher := newFakeDispatcher()
	wf := testWorkflow(dispatcher)

	result := wf.Process(context.Background(), record("CUST-009", "i@example.com", "relocating abroad"))
	wf.Escalate(context.Background(), result)
	res := wf.Escalate(context.Background(), result)

	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "already sent")
	assert.Len(t, dispatcher.sentTo(), 1)
}

func TestEscalate_Failure(t *testing.T) {
	dispatcher := newFakeDispatcher()
	dispatcher.failFor[teamAddress] = mail.Failed(mail.FailureTransport, "connection refused")
	wf := testWorkflow(dispatcher)

	result := wf.Process(context.Background(), record("CUST-010", "j@example.com", "relocating abroad"))
	res := wf.Escalate(context.Background(), result)

	assert.False(t, res.Success)
	assert.False(t, result.NotificationSent)
	assert.Equal(t, models.StateEscalationFailed, result.State)
}

func TestProcess_ReentryResetsFlags(t *testing.T) {
	dispatcher := newFakeDispatcher()
	wf := testWorkflow(dispatcher)

	rec := record("CUST-011", "k@example.com", "too expensive")
	first := wf.Process(context.Background(), rec)
	wf.SendEmail(context.Background(), first)
	assert.True(t, first.EmailSent)

	second := wf.Process(context.Background(), rec)
	assert.False(t, second.EmailSent, "reprocessing starts a fresh result")
	assert.False(t, second.NotificationSent)
	assert.Equal(t, models.StateComposed, second.State)
}

func TestWorkflowStateTerminal(t *testing.T) {
	assert.False(t, models.StateCreated.Terminal())
	assert.False(t, models.StateMatched.Terminal())
	assert.False(t, models.StateComposed.Terminal())
	assert.True(t, models.StateSent.Terminal())
	assert.True(t, models.StateEscalated.Terminal())
}
