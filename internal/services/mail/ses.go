package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	appconfig "customer-retention-engine/internal/config"
	"customer-retention-engine/internal/utils"
)

// SESDispatcher delivers mail through AWS SES. Selected with
// MAIL_PROVIDER=ses; the SMTP dispatcher is the default transport.
type SESDispatcher struct {
	client    *ses.Client
	fromEmail string
}

// NewSESDispatcher creates an SES-backed dispatcher.
func NewSESDispatcher(ctx context.Context, cfg *appconfig.Config) (*SESDispatcher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESDispatcher{
		client:    ses.NewFromConfig(awsCfg),
		fromEmail: cfg.SESSenderEmail,
	}, nil
}

// Send implements Dispatcher.
func (d *SESDispatcher) Send(ctx context.Context, to, subject, body string) Result {
	if d.fromEmail == "" {
		return Failed(FailureMissingConfig,
			"SES sender not configured. Please set SES_SENDER_EMAIL")
	}

	if !strings.Contains(to, "@") || !strings.Contains(d.fromEmail, "@") {
		return Failed(FailureInvalidAddress,
			fmt.Sprintf("Invalid email format. To: %s, From: %s", to, d.fromEmail))
	}

	input := &ses.SendEmailInput{
		Source: aws.String(d.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(body),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	result, err := d.client.SendEmail(ctx, input)
	if err != nil {
		utils.GetLogger().Warn("SES send failed",
			utils.String("to", to),
			utils.Error(err),
		)
		return Failed(FailureTransport, fmt.Sprintf("SES error: %v", err))
	}

	utils.GetLogger().Info("Email sent via SES",
		utils.String("to", to),
		utils.String("messageId", aws.ToString(result.MessageId)),
	)

	return Sent(fmt.Sprintf("Email sent successfully to %s (message ID %s)", to, aws.ToString(result.MessageId)))
}
