package workflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"customer-retention-engine/internal/models"
	"customer-retention-engine/internal/utils"
)

// ExportHeader is the column set for batch result export, in order.
var ExportHeader = []string{
	"Customer ID",
	"Email",
	"Date Cancelled",
	"Cancellation Reason",
	"Offer Code",
	"Offer Name",
	"Match Found",
	"Email Sent",
}

// Session holds the ordered results of one batch run. Result order equals
// input row order and is preserved through display and export. The mutex
// guards the send flags against concurrent send actions from the HTTP layer;
// processing itself is sequential.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	results []*models.WorkflowResult
}

// Results returns the session's results in processing order.
func (s *Session) Results() []*models.WorkflowResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.WorkflowResult, len(s.results))
	copy(out, s.results)
	return out
}

// Counts returns the aggregate totals for the session.
func (s *Session) Counts() (total, matched, unmatched int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.results {
		total++
		if r.IsMatch {
			matched++
		} else {
			unmatched++
		}
	}
	return total, matched, unmatched
}

// Runner applies the retention workflow to ordered batches of records.
type Runner struct {
	workflow *Workflow
}

// NewRunner creates a batch runner.
func NewRunner(w *Workflow) *Runner {
	return &Runner{workflow: w}
}

// Run processes records sequentially in input order. Records are independent:
// a degraded match or failed composition for one record never aborts the
// rest. Unmatched records are not escalated here; that is the explicit
// NotifyAllUnmatched action.
func (r *Runner) Run(ctx context.Context, records []models.CancellationRecord) *Session {
	session := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		results:   make([]*models.WorkflowResult, 0, len(records)),
	}

	for _, record := range records {
		session.results = append(session.results, r.workflow.Process(ctx, record))
	}

	total, matched, unmatched := session.Counts()
	utils.GetLogger().Info("Batch processing complete",
		utils.String("session_id", session.ID),
		utils.Int("total", total),
		utils.Int("matched", matched),
		utils.Int("unmatched", unmatched),
	)

	return session
}

// SendAllMatched sends retention emails for every matched, not-yet-sent
// record. Already-sent records are skipped, so repeated invocations send
// nothing new; failed records stay unsent for a later retry.
func (r *Runner) SendAllMatched(ctx context.Context, session *Session) (sentCount, failedCount int) {
	session.mu.Lock()
	defer session.mu.Unlock()

	for _, result := range session.results {
		if !result.IsMatch || result.EmailSent {
			continue
		}
		if res := r.workflow.SendEmail(ctx, result); res.Success {
			sentCount++
		} else {
			failedCount++
		}
	}

	utils.GetLogger().Info("Batch send complete",
		utils.String("session_id", session.ID),
		utils.Int("sent", sentCount),
		utils.Int("failed", failedCount),
	)

	return sentCount, failedCount
}

// NotifyAllUnmatched escalates every unmatched record to the team. Records
// whose notification already went out are skipped, so the action is safe to
// invoke more than once per session.
func (r *Runner) NotifyAllUnmatched(ctx context.Context, session *Session) (sentCount, failedCount int) {
	session.mu.Lock()
	defer session.mu.Unlock()

	for _, result := range session.results {
		if result.IsMatch || result.NotificationSent {
			continue
		}
		if res := r.workflow.Escalate(ctx, result); res.Success {
			sentCount++
		} else {
			failedCount++
		}
	}

	utils.GetLogger().Info("Batch escalation complete",
		utils.String("session_id", session.ID),
		utils.Int("sent", sentCount),
		utils.Int("failed", failedCount),
	)

	return sentCount, failedCount
}

// ExportCSV serializes the session as CSV, one row per record, in processing
// order.
func ExportCSV(session *Session) (string, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(ExportHeader); err != nil {
		return "", err
	}

	for _, result := range session.results {
		matchFound := "No"
		if result.IsMatch {
			matchFound = "Yes"
		}
		row := []string{
			result.Record.CustomerID,
			result.Record.CustomerEmail,
			result.Record.DateCancelled,
			result.Record.Reason,
			result.Decision.OfferCode,
			result.Decision.OfferName,
			matchFound,
			strconv.FormatBool(result.EmailSent),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return buf.String(), nil
}
