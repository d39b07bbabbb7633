package dispatch

import (
	"context"
	"fmt"
	"strings"

	"lead_sites_go/config"
	"lead_sites_go/services/metrics"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ResendClient sends through the Resend API.
type ResendClient struct {
	client   *resend.Client
	from     string
	composer *Composer
}

func NewResendClient(apiKey, from string, composer *Composer) *ResendClient {
	return &ResendClient{
		client:   resend.NewClient(apiKey),
		from:     from,
		composer: composer,
	}
}

func (r *ResendClient) Send(ctx context.Context, req SubmissionRequest) SubmissionResult {
	email, err := r.composer.Compose(req)
	if err != nil {
		return failed(0, err)
	}

	params := &resend.SendEmailRequest{
		From:    fromAddress(email.FromName, r.from),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}
	if email.ReplyTo != "" {
		params.Headers = map[string]string{"Reply-To": email.ReplyTo}
	}

	sent, err := r.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return failed(0, fmt.Errorf("failed to send email via Resend: %w", err))
	}
	return succeeded(sent.Id)
}

// MailgunClient sends through the Mailgun API.
type MailgunClient struct {
	client   *mailgun.MailgunImpl
	from     string
	composer *Composer
}

func NewMailgunClient(domain, apiKey, from string, composer *Composer) *MailgunClient {
	return &MailgunClient{
		client:   mailgun.NewMailgun(domain, apiKey),
		from:     from,
		composer: composer,
	}
}

func (m *MailgunClient) Send(ctx context.Context, req SubmissionRequest) SubmissionResult {
	email, err := m.composer.Compose(req)
	if err != nil {
		return failed(0, err)
	}

	message := m.client.NewMessage(fromAddress(email.FromName, m.from), email.Subject, email.TextBody, email.To...)
	if email.HTMLBody != "" {
		message.SetHtml(email.HTMLBody)
	}
	if email.ReplyTo != "" {
		message.SetReplyTo(email.ReplyTo)
	}

	_, id, err := m.client.Send(ctx, message)
	if err != nil {
		return failed(0, fmt.Errorf("failed to send email via Mailgun: %w", err))
	}
	return succeeded(id)
}

// ConsoleClient logs the rendered email instead of sending it.
type ConsoleClient struct {
	logger   *zap.Logger
	composer *Composer
}

func NewConsoleClient(logger *zap.Logger, composer *Composer) *ConsoleClient {
	return &ConsoleClient{logger: logger, composer: composer}
}

func (c *ConsoleClient) Send(ctx context.Context, req SubmissionRequest) SubmissionResult {
	email, err := c.composer.Compose(req)
	if err != nil {
		return failed(0, err)
	}
	c.logger.Info("email logged (test mode, not sent)",
		zap.Strings("to", email.To),
		zap.String("reply_to", email.ReplyTo),
		zap.String("subject", email.Subject),
		zap.String("text", email.TextBody),
	)
	return succeeded("console")
}

// New picks the provider from configuration and wraps it with the optional
// timeout and latency metrics.
func New(cfg *config.Config, services []Service, logger *zap.Logger, m *metrics.Metrics) (Client, error) {
	composer := NewComposer(services)
	log := logger.Named("dispatch")

	var (
		client   Client
		provider string
	)
	switch {
	case cfg.EmailTestMode:
		client, provider = NewConsoleClient(log, composer), "console"
	case cfg.EmailProvider == config.ProviderMailgun:
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
			return nil, fmt.Errorf("MAILGUN_DOMAIN and MAILGUN_API_KEY must be configured")
		}
		client, provider = NewMailgunClient(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.EmailFrom, composer), config.ProviderMailgun
	case cfg.EmailProvider == config.ProviderResend:
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY not configured")
		}
		client, provider = NewResendClient(cfg.ResendAPIKey, cfg.EmailFrom, composer), config.ProviderResend
	default:
		return nil, fmt.Errorf("unsupported EMAIL_PROVIDER %q", cfg.EmailProvider)
	}

	log.Info("email dispatch ready", zap.String("provider", provider), zap.Duration("timeout", cfg.DispatchTimeout))
	return Instrument(WithTimeout(client, cfg.DispatchTimeout), provider, m), nil
}

func fromAddress(name, address string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}
