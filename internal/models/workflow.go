// Package models defines the data structures for the customer retention engine.
package models

// WorkflowState tracks a record's position in the retention pipeline.
type WorkflowState string

const (
	StateCreated          WorkflowState = "created"
	StateMatched          WorkflowState = "matched"
	StateComposed         WorkflowState = "composed"
	StateSent             WorkflowState = "sent"
	StateSendFailed       WorkflowState = "send_failed"
	StateEscalated        WorkflowState = "escalated"
	StateEscalationFailed WorkflowState = "escalation_failed"
)

// Terminal reports whether the state is a resolved end state. Composed is not
// terminal for matched records: sending is a separate, explicit action.
func (s WorkflowState) Terminal() bool {
	switch s {
	case StateSent, StateSendFailed, StateEscalated, StateEscalationFailed:
		return true
	}
	return false
}

// WorkflowResult aggregates everything the pipeline produced for one record.
// Created by RetentionWorkflow.Run; the send flags are mutated only by the
// explicit send and escalation actions. Re-running the workflow for a record
// replaces the prior result and resets both flags.
type WorkflowResult struct {
	Record   CancellationRecord `json:"record"`
	Decision MatchDecision      `json:"decision"`
	Draft    EmailDraft         `json:"draft"`

	IsMatch          bool          `json:"is_match"`
	EmailSent        bool          `json:"email_sent"`
	NotificationSent bool          `json:"notification_sent"`
	State            WorkflowState `json:"state"`

	// Message carries the surfaced failure detail for SendFailed and
	// EscalationFailed states.
	Message string `json:"message,omitempty"`
}
