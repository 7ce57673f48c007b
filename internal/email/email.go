package email

import (
	"fmt"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/medremind/reminder-api/internal/model"
)

// Sender delivers caregiver-facing mail.
type Sender interface {
	SendOverdueDigest(to string, name string, tasks []model.Task) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg SMTPConfig) Sender {
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendOverdueDigest mails the caregiver a summary of doses still unmarked
// after their due time.
func (s *smtpSender) SendOverdueDigest(to string, name string, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("%d overdue doses need attention", len(tasks)))
	m.SetBody("text/plain", digestBody(name, tasks))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send digest to %s: %w", to, err)
	}
	return nil
}

func digestBody(name string, tasks []model.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThe following doses are overdue:\n\n", name)
	for _, task := range tasks {
		fmt.Fprintf(&b, "  - %s: %s at %s (%s)\n",
			task.DependantName, task.MedicationName, task.TimeLabel, task.DueLabel)
	}
	b.WriteString("\nOpen the app to mark them done or adjust the schedule.\n")
	return b.String()
}
