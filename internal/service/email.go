package service

import (
	"context"
	"fmt"
	"html"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
)

// mailClient is the part of the SendGrid client the sender uses.
type mailClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type sendGridSender struct {
	client    mailClient
	fromEmail string
	fromName  string
}

func NewSendGridSender(apiKey, fromEmail, fromName string) NotificationSender {
	return newSendGridSender(sendgrid.NewSendClient(apiKey), fromEmail, fromName)
}

func newSendGridSender(client mailClient, fromEmail, fromName string) *sendGridSender {
	return &sendGridSender{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridSender) SendLateRentalReminder(ctx context.Context, user *domain.User, tool *domain.Tool, rental *domain.Rental, daysLate int) error {
	subject := fmt.Sprintf("Overdue: please return %s", tool.Title)
	plain := fmt.Sprintf("Hello %s,\n\nThe %s you borrowed was due back on %s and is now %d day(s) late. Please return it to the tool library as soon as possible.\n\nRental #%d",
		user.Name, tool.Title, rental.EndDate, daysLate, rental.ID)
	htmlBody := fmt.Sprintf("<p>Hello %s,</p><p>The <strong>%s</strong> you borrowed was due back on %s and is now %d day(s) late. Please return it to the tool library as soon as possible.</p><p>Rental #%d</p>",
		html.EscapeString(user.Name), html.EscapeString(tool.Title), rental.EndDate, daysLate, rental.ID)
	return s.send(ctx, user, subject, plain, htmlBody)
}

func (s *sendGridSender) SendMembershipExpiryReminder(ctx context.Context, user *domain.User, expiry domain.Date) error {
	subject := "Your tool library membership is about to expire"
	plain := fmt.Sprintf("Hello %s,\n\nYour membership expires on %s. Renew at the front desk to keep borrowing tools.", user.Name, expiry)
	htmlBody := fmt.Sprintf("<p>Hello %s,</p><p>Your membership expires on <strong>%s</strong>. Renew at the front desk to keep borrowing tools.</p>",
		html.EscapeString(user.Name), expiry)
	return s.send(ctx, user, subject, plain, htmlBody)
}

func (s *sendGridSender) send(ctx context.Context, user *domain.User, subject, plain, htmlBody string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(user.Name, user.Email)
	message := mail.NewSingleEmail(from, subject, to, plain, htmlBody)

	logger.ExternalServiceCall("sendgrid", "Send", "to", user.Email, "subject", subject)
	response, err := s.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "Send", err, "to", user.Email)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
