package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"rental-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureSender struct {
	sent []*gomail.Message
	err  error
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	c.sent = append(c.sent, m...)
	return c.err
}

func body(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestEmailService_NewRentalNotice(t *testing.T) {
	sender := &captureSender{}
	svc := &emailService{sender: sender, from: "noreply@example.com", staff: "staff@example.com"}

	rental := &domain.Rental{
		ID:             7,
		Customer:       &domain.Customer{Name: "Budi", Phone: "0812"},
		EventDate:      time.Date(2030, 1, 5, 0, 0, 0, 0, time.UTC),
		DurationDays:   2,
		TeardownDate:   time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC),
		InstallAddress: "Jl. Merdeka 1",
		TotalCharge:    decimal.NewNullDecimal(decimal.RequireFromString("1500000")),
	}
	lines := []domain.RentalLine{{ItemName: "Tenda", Quantity: 10, Subtotal: decimal.RequireFromString("1500000")}}

	require.NoError(t, svc.SendNewRentalNotice(context.Background(), rental, lines))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"staff@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"New rental request #7"}, msg.GetHeader("Subject"))
	text := body(t, msg)
	assert.Contains(t, text, "Budi")
	assert.Contains(t, text, "2030-01-07")
	assert.Contains(t, text, "Rp 1.500.000,00")
}

func TestEmailService_SkipsEmptyDigests(t *testing.T) {
	sender := &captureSender{}
	svc := &emailService{sender: sender, from: "a@example.com", staff: "b@example.com"}

	require.NoError(t, svc.SendTeardownReminder(context.Background(), nil))
	require.NoError(t, svc.SendOutOfStockDigest(context.Background(), nil))
	assert.Empty(t, sender.sent)

	require.NoError(t, svc.SendOutOfStockDigest(context.Background(), []domain.Item{{ID: 3, Name: "Kursi"}}))
	assert.Len(t, sender.sent, 1)
}

func TestEmailService_SendError(t *testing.T) {
	sender := &captureSender{err: errors.New("connection refused")}
	svc := &emailService{sender: sender, from: "a@example.com", staff: "b@example.com"}

	err := svc.SendTeardownReminder(context.Background(), []domain.Rental{{ID: 1}})
	assert.ErrorContains(t, err, "connection refused")
}
