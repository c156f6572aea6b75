package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"visa-consultancy/backend/config"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

const sendTimeout = 10 * time.Second

// SendGridNotifier delivers mail through the SendGrid v3 API in the background
type SendGridNotifier struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
	logger     *zap.Logger
}

var _ Notifier = (*SendGridNotifier)(nil)

// NewSendGridNotifier builds a notifier from mail settings
func NewSendGridNotifier(cfg *config.MailConfig, logger *zap.Logger) *SendGridNotifier {
	return &SendGridNotifier{
		key:        cfg.SendGridAPIKey,
		from:       sgmail.NewEmail(cfg.FromName, cfg.From),
		subjPrefix: "[" + cfg.FromName + "] ",
		logger:     logger,
	}
}

// New picks SendGrid when an API key is configured, the log otherwise
func New(cfg *config.MailConfig, logger *zap.Logger) Notifier {
	if cfg.SendGridAPIKey == "" {
		logger.Info("mail api key not set, notifications go to the log")
		return NewLogNotifier(logger)
	}
	return NewSendGridNotifier(cfg, logger)
}

func (n *SendGridNotifier) Notify(_ context.Context, msg Message) {
	if msg.ToAddress == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := n.send(ctx, msg); err != nil {
			n.logger.Warn("notification delivery failed",
				zap.String("to", msg.ToAddress),
				zap.String("subject", msg.Subject),
				zap.Error(err),
			)
		}
	}()
}

func (n *SendGridNotifier) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = n.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToAddress))

	m := sgmail.NewV3Mail()
	m.SetFrom(n.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Body))
	return m
}

func (n *SendGridNotifier) send(ctx context.Context, msg Message) error {
	req := sendgrid.GetRequest(n.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(n.prepare(msg))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
