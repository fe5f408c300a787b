package services

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendWeeklyReport(to string, pdf []byte, generatedAt time.Time) error
}

type emailService struct {
	send func(m ...*gomail.Message) error
	from string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		send: dialer.DialAndSend,
		from: fromEmail,
	}
}

func (s *emailService) SendWeeklyReport(to string, pdf []byte, generatedAt time.Time) error {
	day := generatedAt.Format("2006-01-02")

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Weekly task report "+day)
	m.SetBody("text/html", fmt.Sprintf(`
		<h3>Weekly task report</h3>
		<p>The dashboard report generated on %s is attached.</p>
	`, day))
	m.Attach("weekly-report-"+day+".pdf",
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(pdf)
			return err
		}),
		gomail.SetHeader(map[string][]string{"Content-Type": {"application/pdf"}}),
	)

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send weekly report email: %w", err)
	}
	return nil
}
