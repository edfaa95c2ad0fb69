package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"koffa/internal/config"
	invitationdomain "koffa/internal/domain/invitation"
	"koffa/pkg/logger"
)

const (
	charset     = "UTF-8"
	expiryShape = "Monday 2 January 2006, 15:04 MST"
)

type emailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender mails invitation codes through Amazon SES.
type SESSender struct {
	client     emailAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	log        logger.Logger
}

// NewSender returns an SES backed sender, or one that only logs when email is
// disabled in cfg.
func NewSender(ctx context.Context, cfg config.EmailConfig, appBaseURL string, log logger.Logger) (invitationdomain.Sender, error) {
	if !cfg.Enabled() {
		log.Info("notify: email disabled, invitations will not be mailed")
		return &DisabledSender{log: log}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	log.Info("notify: email enabled", "from", cfg.FromEmail, "region", cfg.AWSRegion)
	return newSESSender(sesv2.NewFromConfig(awsCfg), cfg, appBaseURL, log), nil
}

func newSESSender(client emailAPI, cfg config.EmailConfig, appBaseURL string, log logger.Logger) *SESSender {
	return &SESSender{
		client:     client,
		fromEmail:  cfg.FromEmail,
		fromName:   cfg.FromName,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		log:        log,
	}
}

func (s *SESSender) SendInvitation(ctx context.Context, notice invitationdomain.Notice) error {
	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	subject, htmlBody, textBody := s.render(notice)
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{notice.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String(charset)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String(charset)},
					Text: &types.Content{Data: aws.String(textBody), Charset: aws.String(charset)},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}

	s.log.Info("notify: invitation mailed", "message_id", aws.ToString(result.MessageId), "to", notice.To)
	return nil
}

func (s *SESSender) render(notice invitationdomain.Notice) (string, string, string) {
	inviter := notice.InvitedBy
	if inviter == "" {
		inviter = "A family member"
	}
	joinLink := s.appBaseURL + "/join?code=" + invitationdomain.NormalizeCode(notice.DisplayCode)
	expires := notice.ExpiresAt.UTC().Format(expiryShape)

	subject := fmt.Sprintf("%s invited you to join their family", inviter)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<p>%s invited you to join their family.</p>
	<p>Your invitation code:</p>
	<p style="font-size: 24px; font-weight: bold; letter-spacing: 4px;">%s</p>
	<p><a href="%s">Join now</a></p>
	<p>The code works once and expires on %s.</p>
</body>
</html>
`, html.EscapeString(inviter), html.EscapeString(notice.DisplayCode), html.EscapeString(joinLink), expires)

	textBody := fmt.Sprintf(`%s invited you to join their family.

Your invitation code: %s

Join here: %s

The code works once and expires on %s.
`, inviter, notice.DisplayCode, joinLink, expires)

	return subject, htmlBody, textBody
}

// DisabledSender drops invitations after logging them.
type DisabledSender struct {
	log logger.Logger
}

func (s *DisabledSender) SendInvitation(_ context.Context, notice invitationdomain.Notice) error {
	s.log.Info("notify: skipping invitation mail, email disabled", "code", notice.DisplayCode)
	return nil
}
