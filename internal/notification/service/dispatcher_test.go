package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smallbiznis/faktur/internal/notification/domain"
)

type captureProvider struct {
	mu    sync.Mutex
	sends []capturedSend
}

type capturedSend struct {
	to      []string
	subject string
	body    string
}

func (p *captureProvider) Send(_ context.Context, to []string, subject, body string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sends = append(p.sends, capturedSend{to: to, subject: subject, body: body})
	return nil
}

func (p *captureProvider) all() []capturedSend {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]capturedSend, len(p.sends))
	copy(out, p.sends)
	return out
}

func testMessage() domain.Message {
	return domain.Message{
		Template: domain.TemplateInvoiceNew,
		To:       "jan@client.test",
		ToName:   "Jan Smit",
		Variables: map[string]string{
			"client_name":    "Jan Smit",
			"from_name":      "Acme Studio",
			"invoice_number": "INV-000001",
			"due_date":       "Feb 16, 2026",
			"total":          "R 20,000.00",
			"invoice_link":   "http://localhost:8080/api/invoice/1",
		},
	}
}

func TestDispatchDelivers(t *testing.T) {
	provider := &captureProvider{}
	d := newDispatcher(zap.NewNop(), provider, nil, 4)
	go d.run()

	require.NoError(t, d.Dispatch(context.Background(), testMessage()))
	require.NoError(t, d.stop(context.Background()))

	sends := provider.all()
	require.Len(t, sends, 1)
	assert.Equal(t, []string{"jan@client.test"}, sends[0].to)
	assert.Equal(t, "Invoice INV-000001 from Acme Studio", sends[0].subject)
	assert.Contains(t, sends[0].body, "INV-000001")
	assert.Contains(t, sends[0].body, "R 20,000.00")
	assert.Contains(t, sends[0].body, "http://localhost:8080/api/invoice/1")
}

func TestDispatchRejectsInvalidRecipient(t *testing.T) {
	d := newDispatcher(zap.NewNop(), &captureProvider{}, nil, 4)
	msg := testMessage()
	msg.To = "not-an-address"
	assert.ErrorIs(t, d.Dispatch(context.Background(), msg), domain.ErrInvalidRecipient)
}

func TestDispatchRejectsUnknownTemplate(t *testing.T) {
	d := newDispatcher(zap.NewNop(), &captureProvider{}, nil, 4)
	msg := testMessage()
	msg.Template = "password_reset"
	assert.ErrorIs(t, d.Dispatch(context.Background(), msg), domain.ErrUnknownTemplate)
}

func TestDispatchFullQueue(t *testing.T) {
	// worker never started, so the buffer fills up
	d := newDispatcher(zap.NewNop(), &captureProvider{}, nil, 2)

	require.NoError(t, d.Dispatch(context.Background(), testMessage()))
	require.NoError(t, d.Dispatch(context.Background(), testMessage()))
	assert.ErrorIs(t, d.Dispatch(context.Background(), testMessage()), domain.ErrQueueFull)
}

func TestStopDrainsQueue(t *testing.T) {
	provider := &captureProvider{}
	d := newDispatcher(zap.NewNop(), provider, nil, 8)

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Dispatch(context.Background(), testMessage()))
	}
	go d.run()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.stop(ctx))
	assert.Len(t, provider.all(), 5)
}

func TestRenderReminderSubject(t *testing.T) {
	msg := testMessage()
	msg.Template = domain.TemplateInvoiceReminder
	subject, body, err := render(msg)
	require.NoError(t, err)
	assert.Equal(t, "Payment reminder: invoice INV-000001 from Acme Studio", subject)
	assert.Contains(t, body, "friendly reminder")
}
