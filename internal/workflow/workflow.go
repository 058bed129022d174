// Package workflow orchestrates the retention decision-and-notification
// pipeline: match an offer, draft the email, then send or escalate.
package workflow

import (
	"context"

	"customer-retention-engine/internal/models"
	"customer-retention-engine/internal/services/composer"
	"customer-retention-engine/internal/services/mail"
	"customer-retention-engine/internal/services/matcher"
	"customer-retention-engine/internal/services/notifier"
	"customer-retention-engine/internal/utils"
)

// RetentionSubject is the subject line for customer retention emails.
const RetentionSubject = "We'd Love to Keep You - Special Retention Offer"

// Workflow runs the per-record state machine:
// Created -> Matched -> Composed -> {Sent | SendFailed | Escalated | EscalationFailed}.
type Workflow struct {
	matcher    *matcher.Matcher
	composer   *composer.Composer
	dispatcher mail.Dispatcher
	notifier   *notifier.Notifier
}

// New wires the pipeline components into a workflow.
func New(m *matcher.Matcher, c *composer.Composer, d mail.Dispatcher, n *notifier.Notifier) *Workflow {
	return &Workflow{
		matcher:    m,
		composer:   c,
		dispatcher: d,
		notifier:   n,
	}
}

// Process runs match and compose for one record and returns a fresh result
// with both send flags reset. It never escalates; batch processing defers
// escalation to an explicit notify action. Matching and composition never
// fail: their errors degrade inside the respective services.
func (w *Workflow) Process(ctx context.Context, record models.CancellationRecord) *models.WorkflowResult {
	result := &models.WorkflowResult{
		Record: record,
		State:  models.StateCreated,
	}

	result.Decision = w.matcher.Match(ctx, record.Reason)
	result.State = models.StateMatched

	result.Draft = w.composer.Compose(ctx, result.Decision, record.Reason, record.CustomerEmail)
	result.State = models.StateComposed

	result.IsMatch = result.Decision.IsMatch() && !result.Draft.Empty()

	utils.GetLogger().Info("Processed cancellation",
		utils.String("customer_id", record.CustomerID),
		utils.String("offer_code", result.Decision.OfferCode),
		utils.Bool("is_match", result.IsMatch),
	)

	return result
}

// Run processes one record end to end: unmatched records are escalated to
// the team immediately. Matched records stay in Composed; sending is a
// separate, explicit action.
func (w *Workflow) Run(ctx context.Context, record models.CancellationRecord) *models.WorkflowResult {
	result := w.Process(ctx, record)
	if !result.IsMatch {
		w.Escalate(ctx, result)
	}
	return result
}

// SendEmail performs the explicit send action for a matched record. Already-
// sent results are skipped, which makes repeated invocations idempotent.
func (w *Workflow) SendEmail(ctx context.Context, result *models.WorkflowResult) mail.Result {
	if !result.IsMatch {
		return mail.Failed(mail.FailureNone, "no matched offer for this record; nothing to send")
	}
	if result.EmailSent {
		return mail.Sent("email already sent to " + result.Record.CustomerEmail)
	}

	res := w.dispatcher.Send(ctx, result.Record.CustomerEmail, RetentionSubject, result.Draft.Body)
	if res.Success {
		result.EmailSent = true
		result.State = models.StateSent
		result.Message = ""
	} else {
		result.State = models.StateSendFailed
		result.Message = res.Message
	}
	return res
}

// Escalate notifies the team about an unmatched record. Results that already
// carry a sent notification are skipped.
func (w *Workflow) Escalate(ctx context.Context, result *models.WorkflowResult) mail.Result {
	if result.NotificationSent {
		return mail.Sent("team notification already sent for " + result.Record.CustomerID)
	}

	res := w.notifier.NotifyTeam(ctx,
		result.Record.CustomerID,
		result.Record.CustomerEmail,
		result.Record.DateCancelled,
	)
	if res.Success {
		result.NotificationSent = true
		result.State = models.StateEscalated
		result.Message = ""
	} else {
		result.State = models.StateEscalationFailed
		result.Message = res.Message
		utils.GetLogger().Warn("Team escalation failed",
			utils.String("customer_id", result.Record.CustomerID),
			utils.String("detail", res.Message),
		)
	}
	return res
}
