package email

import (
	"errors"
	"fmt"
	"strings"
)

// 通知类型
const (
	KindPaymentReceived = "payment_received"
	KindPlanActivated   = "plan_activated"
	KindPaymentRejected = "payment_rejected"
)

var ErrUnknownKind = errors.New("unknown notification kind")

// Message 一封纯文本邮件
type Message struct {
	To      string
	Subject string
	Body    string
}

// PaymentReceived 支付提交后发送
func PaymentReceived(to, planName string) *Message {
	return &Message{
		To:      to,
		Subject: fmt.Sprintf("Payment Verification Pending - %s Plan", planName),
		Body: fmt.Sprintf(`Hello,

We have received your manual payment request for the %s Plan.
Our team is currently verifying your UTR and screenshot.

This process typically takes 2-10 minutes.
You will receive another email once your plan is activated.

Thank you,
The EcomWords AI Team`, planName),
	}
}

// PlanActivated 审核通过后发送
func PlanActivated(to, planName string) *Message {
	return &Message{
		To:      to,
		Subject: fmt.Sprintf("🎉 Payment Verified! Your %s Plan is Active", planName),
		Body: fmt.Sprintf(`Hello!

Great news! Your payment has been verified successfully.
Your %s Plan is now ACTIVE.

You can now enjoy:
- Unlimited Generations
- Advanced SEO Tools
- Priority Support

Go to your dashboard to start generating amazing listings!

Cheers,
The EcomWords AI Team`, planName),
	}
}

// PaymentRejected 审核拒绝后发送
func PaymentRejected(to, planName string) *Message {
	return &Message{
		To:      to,
		Subject: fmt.Sprintf("Payment Verification Failed - %s Plan", planName),
		Body: fmt.Sprintf(`Hello,

We were unable to verify your payment for the %s Plan.
This could be due to an incorrect UTR or an unclear screenshot.

Please verify your details and try submitting again.

Regards,
The EcomWords AI Team`, planName),
	}
}

// Render 按类型生成邮件
func Render(kind, to, planName string) (*Message, error) {
	if strings.TrimSpace(to) == "" {
		return nil, errors.New("recipient is required")
	}
	switch kind {
	case KindPaymentReceived:
		return PaymentReceived(to, planName), nil
	case KindPlanActivated:
		return PlanActivated(to, planName), nil
	case KindPaymentRejected:
		return PaymentRejected(to, planName), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}
