// Package notifier escalates unmatched cancellations to the retention team.
package notifier

import (
	"context"
	"fmt"

	"customer-retention-engine/internal/services/mail"
)

// Subject is the fixed subject line for manual-review notifications.
const Subject = "Manual Review Required - Customer Cancellation"

// Notifier builds and dispatches manual-review notifications to the internal
// team address. Duplicate-send protection lives on the workflow result, not
// here; the notifier itself attempts delivery every time it is called.
type Notifier struct {
	teamEmail  string
	dispatcher mail.Dispatcher
}

// New creates a notifier. An empty team address is allowed at construction
// and surfaces as a failure result on every NotifyTeam call.
func New(teamEmail string, dispatcher mail.Dispatcher) *Notifier {
	return &Notifier{
		teamEmail:  teamEmail,
		dispatcher: dispatcher,
	}
}

// NotifyTeam sends the manual-review notification for one cancellation.
func (n *Notifier) NotifyTeam(ctx context.Context, customerID, customerEmail, dateCancelled string) mail.Result {
	if n.teamEmail == "" {
		return mail.Failed(mail.FailureMissingConfig,
			"team notification address not configured. Please set TEAM_EMAIL or SENDER_EMAIL")
	}

	body := fmt.Sprintf(`A customer cancellation was detected but no matching retention offer was found.

Please review manually:

Customer's ID: %s

Email: %s

Date Cancelled: %s


Thank you,
`, customerID, customerEmail, dateCancelled)

	return n.dispatcher.Send(ctx, n.teamEmail, Subject, body)
}
