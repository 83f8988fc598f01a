package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

// stripeGateway implements Gateway on the Stripe Checkout API
type stripeGateway struct {
	webhookSecret string
}

// NewStripeGateway configures the Stripe SDK and returns a gateway
func NewStripeGateway(secretKey, webhookSecret string) (*stripeGateway, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	stripe.Key = secretKey

	return &stripeGateway{webhookSecret: webhookSecret}, nil
}

// CreateCheckout starts a hosted checkout session for one level purchase
func (g *stripeGateway) CreateCheckout(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.Currency),
					UnitAmount: stripe.Int64(p.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.ProductName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(p.SuccessURL),
		CancelURL:         stripe.String(p.CancelURL),
		ClientReferenceID: stripe.String(strconv.Itoa(p.UserID)),
	}
	params.Context = ctx
	params.AddMetadata("level", strconv.Itoa(p.Level))

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return fromStripeSession(s), nil
}

// GetCheckout fetches a checkout session by id
func (g *stripeGateway) GetCheckout(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := session.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout session: %w", err)
	}

	return fromStripeSession(s), nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event
func (g *stripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to verify webhook signature: %w", err)
	}

	parsed := &WebhookEvent{Type: string(event.Type)}

	if parsed.Type == EventCheckoutCompleted {
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("failed to decode webhook session: %w", err)
		}
		parsed.Session = fromStripeSession(&s)
	}

	return parsed, nil
}

func fromStripeSession(s *stripe.CheckoutSession) *CheckoutSession {
	cs := &CheckoutSession{
		ID:   s.ID,
		URL:  s.URL,
		Paid: s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}

	if s.ClientReferenceID != "" {
		if userID, err := strconv.Atoi(s.ClientReferenceID); err == nil {
			cs.UserID = userID
		}
	}
	if raw, ok := s.Metadata["level"]; ok {
		if level, err := strconv.Atoi(raw); err == nil {
			cs.Level = level
		}
	}

	return cs
}
