package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/resend/resend-go/v3"

	"perpustakaan-backend/internal/config"
)

type Service interface {
	SendLoanApprovedEmail(ctx context.Context, toEmail, fullName, bookTitle string, dueDate time.Time) error
	SendLoanRejectedEmail(ctx context.Context, toEmail, fullName, bookTitle, reason string) error
	SendLoanOverdueEmail(ctx context.Context, toEmail, fullName, bookTitle string, dueDate time.Time) error
}

type service struct {
	client *resend.Client
	config *config.Config
}

func NewService(cfg *config.Config) Service {
	return &service{
		client: resend.NewClient(cfg.ResendAPIKey),
		config: cfg,
	}
}

const loanEmailTemplate = `
<div style="font-family: sans-serif; max-width: 560px; margin: 0 auto;">
	<h2>{{.Heading}}</h2>
	<p>Hi {{.FullName}},</p>
	<p>{{.Body}}</p>
	{{if .Detail}}<p><em>{{.Detail}}</em></p>{{end}}
	<p>Perpustakaan</p>
</div>`

var loanTmpl = template.Must(template.New("loan").Parse(loanEmailTemplate))

type loanEmailData struct {
	Heading  string
	FullName string
	Body     string
	Detail   string
}

func (s *service) sendEmail(toEmail, subject string, data loanEmailData) error {
	var body bytes.Buffer
	if err := loanTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Perpustakaan <%s>", s.config.FromEmail),
		To:      []string{toEmail},
		Html:    body.String(),
		Subject: subject,
	}

	_, err := s.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *service) SendLoanApprovedEmail(ctx context.Context, toEmail, fullName, bookTitle string, dueDate time.Time) error {
	return s.sendEmail(toEmail, "Your loan request was approved", loanEmailData{
		Heading:  "Loan Approved",
		FullName: fullName,
		Body:     fmt.Sprintf("Your request to borrow %q has been approved. You can pick it up at the front desk.", bookTitle),
		Detail:   fmt.Sprintf("Due date: %s", dueDate.Format("02 Jan 2006")),
	})
}

func (s *service) SendLoanRejectedEmail(ctx context.Context, toEmail, fullName, bookTitle, reason string) error {
	return s.sendEmail(toEmail, "Your loan request was rejected", loanEmailData{
		Heading:  "Loan Rejected",
		FullName: fullName,
		Body:     fmt.Sprintf("Your request to borrow %q was rejected.", bookTitle),
		Detail:   fmt.Sprintf("Reason: %s", reason),
	})
}

func (s *service) SendLoanOverdueEmail(ctx context.Context, toEmail, fullName, bookTitle string, dueDate time.Time) error {
	return s.sendEmail(toEmail, "Your loan is overdue", loanEmailData{
		Heading:  "Loan Overdue",
		FullName: fullName,
		Body:     fmt.Sprintf("The book %q passed its due date. Please return it as soon as possible.", bookTitle),
		Detail:   fmt.Sprintf("Due date was: %s", dueDate.Format("02 Jan 2006")),
	})
}
