package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"time"

	"lease_portal_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

const subjectSnapshotFmt = "Hyresavtalsregister %s"

var snapshotTemplate = template.Must(template.New("snapshot").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933;">
  <h2>Ögonblicksbild av hyresavtalsregistret</h2>
  <p>Exportfilen <strong>{{.ObjectKey}}</strong> med {{.RowCount}} avtal finns nu tillgänglig.</p>
  {{if .DownloadURL}}<p><a href="{{.DownloadURL}}">Ladda ner exporten</a></p>{{end}}
  <p style="color: #7b8794; font-size: 12px;">Detta är ett automatiskt meddelande.</p>
</body>
</html>`))

type snapshotEmailData struct {
	ObjectKey   string
	RowCount    int
	DownloadURL string
}

// Sender delivers snapshot notifications via the tenant's own SMTP server.
type Sender struct {
	host       string
	port       int
	username   string
	password   string
	fromName   string
	fromEmail  string
	recipients []string
}

// NewSender creates a Sender from the email configuration. Returns nil when
// notifications are not configured so callers can skip sending entirely.
func NewSender(cfg config.EmailConfig) *Sender {
	if !cfg.IsEmailEnabled() {
		return nil
	}
	return &Sender{
		host:       cfg.GetSMTPHost(),
		port:       cfg.GetSMTPPort(),
		username:   cfg.GetSMTPUsername(),
		password:   cfg.GetSMTPPassword(),
		fromName:   cfg.GetEmailFromName(),
		fromEmail:  cfg.GetEmailFromAddress(),
		recipients: cfg.GetSnapshotRecipients(),
	}
}

// SendSnapshotNotification tells the configured recipients that a new lease
// register export is available in object storage.
func (s *Sender) SendSnapshotNotification(ctx context.Context, objectKey, downloadURL string, rowCount int) error {
	var body bytes.Buffer
	err := snapshotTemplate.Execute(&body, snapshotEmailData{
		ObjectKey:   objectKey,
		RowCount:    rowCount,
		DownloadURL: downloadURL,
	})
	if err != nil {
		return fmt.Errorf("render snapshot email: %w", err)
	}

	subject := fmt.Sprintf(subjectSnapshotFmt, time.Now().Format("2006-01-02"))
	return s.send(ctx, subject, body.String())
}

func (s *Sender) send(ctx context.Context, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(s.recipients...); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
