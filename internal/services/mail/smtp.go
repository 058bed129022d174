package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"customer-retention-engine/internal/config"
	"customer-retention-engine/internal/utils"
)

const defaultSMTPPort = 587

// smtpProviders maps known sender domains to their submission hosts. Unknown
// domains require an explicit SMTP_SERVER; the dispatcher never guesses.
var smtpProviders = map[string]string{
	"gmail.com":   "smtp.gmail.com",
	"outlook.com": "smtp-mail.outlook.com",
	"hotmail.com": "smtp-mail.outlook.com",
	"yahoo.com":   "smtp.mail.yahoo.com",
}

// SMTPDispatcher delivers mail over an authenticated STARTTLS session.
type SMTPDispatcher struct {
	senderEmail    string
	senderPassword string
	server         string
	port           int
	dialTimeout    time.Duration
}

// NewSMTPDispatcher creates a dispatcher from configuration. Server and port
// may be empty; they are then inferred from the sender's domain at send time.
func NewSMTPDispatcher(cfg *config.Config) *SMTPDispatcher {
	return &SMTPDispatcher{
		senderEmail:    cfg.SenderEmail,
		senderPassword: cfg.SenderPassword,
		server:         cfg.SMTPServer,
		port:           cfg.SMTPPort,
		dialTimeout:    10 * time.Second,
	}
}

// Send implements Dispatcher. One delivery attempt, no automatic retry.
func (d *SMTPDispatcher) Send(ctx context.Context, to, subject, body string) Result {
	if d.senderEmail == "" || d.senderPassword == "" {
		return Failed(FailureMissingConfig,
			"Email configuration missing. Please set SENDER_EMAIL and SENDER_PASSWORD")
	}

	if !strings.Contains(to, "@") || !strings.Contains(d.senderEmail, "@") {
		return Failed(FailureInvalidAddress,
			fmt.Sprintf("Invalid email format. To: %s, From: %s", to, d.senderEmail))
	}

	host, port, err := d.resolveTransport()
	if err != nil {
		return Failed(FailureMissingConfig, err.Error())
	}

	if err := ctx.Err(); err != nil {
		return Failed(FailureTransport, fmt.Sprintf("cancelled before sending: %v", err))
	}

	message := buildMessage(d.senderEmail, to, subject, body)

	result := d.sendWithTLS(host, port, to, message)

	if result.Success {
		utils.GetLogger().Info("Email sent",
			utils.String("to", to),
			utils.String("subject", subject),
			utils.String("host", host),
		)
	} else {
		utils.GetLogger().Warn("Email send failed",
			utils.String("to", to),
			utils.String("kind", string(result.Kind)),
			utils.String("detail", result.Message),
		)
	}

	return result
}

// resolveTransport picks the SMTP endpoint: explicit configuration wins,
// otherwise a known provider is inferred from the sender domain.
func (d *SMTPDispatcher) resolveTransport() (string, int, error) {
	port := d.port
	if port == 0 {
		port = defaultSMTPPort
	}

	if d.server != "" {
		return d.server, port, nil
	}

	domain := strings.ToLower(d.senderEmail)
	if idx := strings.LastIndex(domain, "@"); idx >= 0 {
		domain = domain[idx+1:]
	}

	if host, ok := smtpProviders[domain]; ok {
		return host, port, nil
	}

	return "", 0, fmt.Errorf(
		"custom email domain detected (%s): please set SMTP_SERVER and SMTP_PORT; for Gmail-hosted custom domains use smtp.gmail.com:587",
		d.senderEmail)
}

// sendWithTLS runs the SMTP conversation: dial with timeout, STARTTLS,
// authenticate, then submit the message.
func (d *SMTPDispatcher) sendWithTLS(host string, port int, to string, message string) Result {
	addr := fmt.Sprintf("%s:%d", host, port)

	conn, err := net.DialTimeout("tcp", addr, d.dialTimeout)
	if err != nil {
		return Failed(FailureTransport,
			fmt.Sprintf("failed to connect to SMTP server %s: %v. Check SMTP_SERVER and SMTP_PORT settings", addr, err))
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return Failed(FailureTransport, fmt.Sprintf("SMTP handshake failed: %v", err))
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return Failed(FailureTransport, fmt.Sprintf("failed to start TLS: %v", err))
	}

	auth := smtp.PlainAuth("", d.senderEmail, d.senderPassword, host)
	if err := client.Auth(auth); err != nil {
		return Failed(FailureAuth,
			fmt.Sprintf("Authentication failed: %v. Check your email and password. For Gmail, use an App Password; for custom domains, verify SMTP credentials", err))
	}

	if err := client.Mail(d.senderEmail); err != nil {
		return Failed(FailureTransport, fmt.Sprintf("sender rejected: %v", err))
	}

	// Per-recipient rejection surfaces with the recipient embedded so the
	// caller can report partial failures.
	if err := client.Rcpt(to); err != nil {
		return Failed(FailureTransport, fmt.Sprintf("recipient rejected: %s: %v", to, err))
	}

	w, err := client.Data()
	if err != nil {
		return Failed(FailureTransport, fmt.Sprintf("failed to open data writer: %v", err))
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return Failed(FailureTransport, fmt.Sprintf("failed to write message: %v", err))
	}
	if err := w.Close(); err != nil {
		return Failed(FailureTransport, fmt.Sprintf("message not accepted: %v", err))
	}

	if err := client.Quit(); err != nil {
		// The message was accepted; a failed QUIT is not a delivery failure.
		utils.GetLogger().Debug("SMTP quit failed", utils.Error(err))
	}

	return Sent(fmt.Sprintf("Email sent successfully to %s! Check your inbox (and spam folder)", to))
}

// buildMessage assembles the RFC 5322 message with plain-text MIME headers.
func buildMessage(from, to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}
