package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/vincentyu/portfolio-backend/pkg/config"
)

// ErrNotConfigured is returned when SMTP settings are incomplete
var ErrNotConfigured = errors.New("email is not configured")

// ReceivedZone is the time zone used for the "Received on" line
const ReceivedZone = "Pacific/Auckland"

// ContactMessage is a contact form submission to forward
type ContactMessage struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// Notifier forwards contact form submissions
type Notifier interface {
	SendContact(ctx context.Context, msg ContactMessage) error
	Verify(ctx context.Context) error
}

// Dialer is the subset of *gomail.Dialer the notifier uses
type Dialer interface {
	Dial() (gomail.SendCloser, error)
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier sends contact notifications over SMTP
type EmailNotifier struct {
	cfg    config.EmailConfig
	dialer Dialer
	log    logrus.FieldLogger
	now    func() time.Time
}

var _ Notifier = (*EmailNotifier)(nil)

// NewEmailNotifier creates a notifier for cfg. Port 465 uses implicit TLS.
func NewEmailNotifier(cfg config.EmailConfig, log logrus.FieldLogger) *EmailNotifier {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.SSL = cfg.Port == 465
	return &EmailNotifier{cfg: cfg, dialer: d, log: log, now: time.Now}
}

// WithDialer replaces the SMTP dialer, used by tests.
func (n *EmailNotifier) WithDialer(d Dialer) *EmailNotifier {
	n.dialer = d
	return n
}

// Verify connects to the SMTP server and authenticates.
func (n *EmailNotifier) Verify(ctx context.Context) error {
	if !n.cfg.Configured() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := n.dialer.Dial()
	if err != nil {
		return fmt.Errorf("smtp connect: %w", err)
	}
	return conn.Close()
}

// SendContact emails msg to the site owner with Reply-To set to the sender.
func (n *EmailNotifier) SendContact(ctx context.Context, msg ContactMessage) error {
	if !n.cfg.Configured() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := n.compose(msg)
	if err != nil {
		return err
	}
	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	n.log.WithField("from", msg.Email).Info("contact notification sent")
	return nil
}

func (n *EmailNotifier) compose(msg ContactMessage) (*gomail.Message, error) {
	body, err := RenderContact(msg, n.now())
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", n.cfg.To)
	m.SetHeader("Reply-To", msg.Email)
	m.SetHeader("Subject", "New Contact Form Submission from "+msg.Name)
	m.SetBody("text/html", body)
	return m, nil
}

// RenderContact renders the HTML body for msg received at t.
func RenderContact(msg ContactMessage, t time.Time) (string, error) {
	loc, err := time.LoadLocation(ReceivedZone)
	if err != nil {
		loc = time.UTC
	}

	var buf bytes.Buffer
	err = contactTemplate.Execute(&buf, struct {
		ContactMessage
		Received string
	}{
		ContactMessage: msg,
		Received:       t.In(loc).Format("2/01/2006, 3:04:05 pm"),
	})
	if err != nil {
		return "", fmt.Errorf("render contact email: %w", err)
	}
	return buf.String(), nil
}

var contactTemplate = template.Must(template.New("contact").Funcs(template.FuncMap{
	"trim": strings.TrimSpace,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8" />
<style>
  body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
  .container { max-width: 600px; margin: 0 auto; padding: 20px; }
  .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 20px; border-radius: 8px 8px 0 0; }
  .content { background: #f9fafb; padding: 30px; border-radius: 0 0 8px 8px; }
  .field { margin-bottom: 20px; }
  .label { font-weight: 600; color: #4a5568; margin-bottom: 5px; }
  .value { background: white; padding: 12px; border-radius: 6px; border-left: 4px solid #667eea; }
  .message-box { background: white; padding: 20px; border-radius: 6px; border: 1px solid #e5e7eb; white-space: pre-wrap; }
  .footer { text-align: center; margin-top: 20px; color: #6b7280; font-size: 14px; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h2 style="margin: 0;">New Contact Form Submission</h2>
      <p style="margin: 5px 0 0 0; opacity: 0.9;">Someone wants to collaborate!</p>
    </div>
    <div class="content">
      <div class="field">
        <div class="label">Name:</div>
        <div class="value">{{.Name}}</div>
      </div>
      <div class="field">
        <div class="label">Email:</div>
        <div class="value"><a href="mailto:{{.Email}}">{{.Email}}</a></div>
      </div>
      {{- if trim .Phone}}
      <div class="field">
        <div class="label">Phone:</div>
        <div class="value"><a href="tel:{{.Phone}}">{{.Phone}}</a></div>
      </div>
      {{- end}}
      <div class="field">
        <div class="label">Message:</div>
        <div class="message-box">{{.Message}}</div>
      </div>
      <div class="footer">
        <p>Received on {{.Received}}</p>
        <p>Reply directly to this email to contact {{.Name}}</p>
      </div>
    </div>
  </div>
</body>
</html>
`))
