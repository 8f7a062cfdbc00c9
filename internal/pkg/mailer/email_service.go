// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendResearchCompleted(toEmail, query, summary string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) SendResearchCompleted(toEmail, query, summary string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Research finished: %s", query))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your research is ready</h2>
			<p>Query: <strong>%s</strong></p>
			<div style="background: #f5f5f5; padding: 15px; border-radius: 5px; white-space: pre-wrap;">%s</div>
		</div>
	`, query, summary)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send summary to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Research summary sent to %s\n", toEmail)
	return nil
}
