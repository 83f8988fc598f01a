// Package payments wraps the external payment gateway behind a small
// interface so services and tests never touch the SDK directly
package payments

import "context"

// CheckoutParams describes a level purchase to start at the gateway
type CheckoutParams struct {
	UserID      int
	Level       int
	AmountCents int64
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
}

// CheckoutSession is the gateway-side view of a checkout
type CheckoutSession struct {
	ID     string
	URL    string
	Paid   bool
	UserID int // client reference embedded at creation
	Level  int
}

// WebhookEvent is a parsed, signature-verified gateway notification
type WebhookEvent struct {
	Type    string
	Session *CheckoutSession
}

// EventCheckoutCompleted is the event type emitted when a checkout is paid
const EventCheckoutCompleted = "checkout.session.completed"

// Gateway is the payment provider surface the purchase flow depends on
type Gateway interface {
	// CreateCheckout starts a hosted checkout and returns its session
	CreateCheckout(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	// GetCheckout fetches the current state of a checkout session
	GetCheckout(ctx context.Context, sessionID string) (*CheckoutSession, error)
	// ParseWebhook verifies the signature and decodes a webhook payload
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
