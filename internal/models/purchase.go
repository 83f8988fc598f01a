package models

import "time"

// PurchaseStatus is the lifecycle status of a level purchase
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
)

// UserLevelPurchase ties a learner to a paid level. PaymentRef is the gateway
// checkout session id (or "promo:<code>" for promo redemptions).
type UserLevelPurchase struct {
	ID          int            `json:"id"`
	UserID      int            `json:"user_id"`
	Level       int            `json:"level"`
	PricePaid   int            `json:"price_paid"` // cents
	PaymentRef  string         `json:"payment_ref"`
	Status      PurchaseStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// LevelPricing is the admin-managed pricing row for a level
type LevelPricing struct {
	Level        int    `json:"level"`
	PriceCents   int    `json:"price_cents"`
	Currency     string `json:"currency"`
	FreeSessions int    `json:"free_sessions"`
}

// PromoCode grants free completion of a level purchase, bypassing the gateway.
// Level 0 means the code applies to any level.
type PromoCode struct {
	ID     int    `json:"id"`
	Code   string `json:"code"`
	Level  int    `json:"level"`
	Active bool   `json:"active"`
}

// CreatePaymentRequest initiates a checkout for a level
type CreatePaymentRequest struct {
	Level int `json:"level"`
}

// CreatePaymentResult carries the gateway redirect URL
type CreatePaymentResult struct {
	URL string `json:"url"`
}

// VerifyPaymentRequest confirms a checkout after the client returns
type VerifyPaymentRequest struct {
	SessionID string `json:"session_id"`
}

// VerifyPaymentResult reports whether the purchase is now completed
type VerifyPaymentResult struct {
	Success bool `json:"success"`
	Level   int  `json:"level,omitempty"`
}

// RedeemPromoRequest redeems a promo code for a level
type RedeemPromoRequest struct {
	Level int    `json:"level"`
	Code  string `json:"code"`
}

// LevelAccess reports whether and why a level is open to a learner
type LevelAccess struct {
	Level         int    `json:"level"`
	Accessible    bool   `json:"accessible"`
	Reason        string `json:"reason"`
	FreeSessions  int    `json:"free_sessions"`
	SessionsTaken int    `json:"sessions_taken"`
	Purchased     bool   `json:"purchased"`
}
