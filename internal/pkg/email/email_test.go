package email

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/qs3c/ecomwords_server/config"
)

func TestRender(t *testing.T) {
	tests := []struct {
		kind        string
		wantSubject string
		wantBody    string
	}{
		{KindPaymentReceived, "Payment Verification Pending - Pro Plan", "manual payment request for the Pro Plan"},
		{KindPlanActivated, "🎉 Payment Verified! Your Pro Plan is Active", "Your Pro Plan is now ACTIVE."},
		{KindPaymentRejected, "Payment Verification Failed - Pro Plan", "unable to verify your payment for the Pro Plan"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			msg, err := Render(tt.kind, "seller@shop.in", "Pro")
			require.NoError(t, err)
			assert.Equal(t, "seller@shop.in", msg.To)
			assert.Equal(t, tt.wantSubject, msg.Subject)
			assert.Contains(t, msg.Body, tt.wantBody)
			assert.Contains(t, msg.Body, "The EcomWords AI Team")
		})
	}
}

func TestRender_Errors(t *testing.T) {
	_, err := Render("welcome", "a@x.com", "Pro")
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = Render(KindPaymentReceived, " ", "Pro")
	assert.Error(t, err)
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewLogSender(zap.New(core), 10*time.Millisecond)

	start := time.Now()
	err := sender.Send(context.Background(), PlanActivated("a@x.com", "Business"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)

	entries := logs.FilterMessage("email sent").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "a@x.com", entries[0].ContextMap()["to"])
}

func TestLogSender_ContextCanceled(t *testing.T) {
	sender := NewLogSender(nil, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sender.Send(ctx, PaymentRejected("a@x.com", "Pro"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSender(t *testing.T) {
	_, ok := NewSender(&config.EmailConfig{}, 0, nil).(*LogSender)
	assert.True(t, ok)

	_, ok = NewSender(&config.EmailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587}, 0, nil).(*SMTPSender)
	assert.True(t, ok)
}
