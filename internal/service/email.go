package service

import (
	"context"
	"fmt"
	"strings"

	"rental-backend/internal/domain"
	"rental-backend/internal/logger"
	"rental-backend/internal/utils"

	"gopkg.in/gomail.v2"
)

// sender is satisfied by *gomail.Dialer.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	sender sender
	from   string
	staff  string // Address that receives staff notices
}

// NewEmailService sends through SMTP. With an empty host, messages are only
// logged.
func NewEmailService(host string, port int, username, password, from, staff string) EmailService {
	var s sender = logSender{}
	if host != "" {
		s = gomail.NewDialer(host, port, username, password)
	}
	return &emailService{sender: s, from: from, staff: staff}
}

func (s *emailService) send(subject, body string) error {
	if s.staff == "" {
		logger.Debug("No staff address configured, email skipped", "subject", subject)
		return nil
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.staff)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	err := s.sender.DialAndSend(m)
	logger.ExternalServiceResult("smtp", "send", err, "subject", subject)
	if err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

func (s *emailService) SendNewRentalNotice(ctx context.Context, rental *domain.Rental, lines []domain.RentalLine) error {
	var b strings.Builder
	fmt.Fprintf(&b, "A new rental request #%d was submitted.\n\n", rental.ID)
	if rental.Customer != nil {
		fmt.Fprintf(&b, "Customer: %s (%s)\n", rental.Customer.Name, rental.Customer.Phone)
	}
	fmt.Fprintf(&b, "Event date: %s\n", rental.EventDate.Format(utils.DateLayout))
	fmt.Fprintf(&b, "Duration: %d day(s), teardown on %s\n", rental.DurationDays, rental.TeardownDate.Format(utils.DateLayout))
	fmt.Fprintf(&b, "Install address: %s\n\n", rental.InstallAddress)
	for _, l := range lines {
		fmt.Fprintf(&b, "  %d x %s  %s\n", l.Quantity, l.ItemName, utils.FormatRupiah(l.Subtotal))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", utils.FormatRupiah(rental.TotalCharge.Decimal))
	if rental.Feedback != "" {
		fmt.Fprintf(&b, "\nNotes from the customer:\n%s\n", rental.Feedback)
	}

	return s.send(fmt.Sprintf("New rental request #%d", rental.ID), b.String())
}

func (s *emailService) SendTeardownReminder(ctx context.Context, rentals []domain.Rental) error {
	if len(rentals) == 0 {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d rental(s) are due for teardown:\n\n", len(rentals))
	for _, r := range rentals {
		name := ""
		if r.Customer != nil {
			name = r.Customer.Name
		}
		fmt.Fprintf(&b, "  #%d  %s  %s  %s\n", r.ID, r.TeardownDate.Format(utils.DateLayout), name, r.InstallAddress)
	}
	return s.send("Teardown reminder", b.String())
}

func (s *emailService) SendOutOfStockDigest(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d item(s) have no stock left:\n\n", len(items))
	for _, it := range items {
		fmt.Fprintf(&b, "  #%d  %s\n", it.ID, it.Name)
	}
	return s.send("Out of stock items", b.String())
}

type logSender struct{}

func (logSender) DialAndSend(m ...*gomail.Message) error {
	for _, msg := range m {
		logger.Info("SMTP not configured, email logged only", "to", msg.GetHeader("To"), "subject", msg.GetHeader("Subject"))
	}
	return nil
}
