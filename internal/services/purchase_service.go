package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/certifrancais/backend/internal/models"
	"github.com/certifrancais/backend/internal/payments"
)

// PurchaseRepository defines methods for purchase data access
type PurchaseRepository interface {
	// Create inserts a new purchase row
	Create(ctx context.Context, p *models.UserLevelPurchase) error
	// GetByPaymentRef retrieves a purchase by its gateway reference
	GetByPaymentRef(ctx context.Context, paymentRef string) (*models.UserLevelPurchase, error)
	// Complete transitions a pending purchase to completed; false when already completed
	Complete(ctx context.Context, paymentRef string) (bool, error)
	// HasCompleted reports whether the user has a completed purchase for the level
	HasCompleted(ctx context.Context, userID, level int) (bool, error)
	// GetPendingOlderThan retrieves pending purchases created before the cutoff
	GetPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.UserLevelPurchase, error)
}

// PricingRepository defines methods for level pricing data access
type PricingRepository interface {
	// GetByLevel retrieves the pricing row for a level
	GetByLevel(ctx context.Context, level int) (*models.LevelPricing, error)
	// GetAll retrieves pricing for all levels
	GetAll(ctx context.Context) ([]models.LevelPricing, error)
}

// PromoCodeReader reads active promo codes
type PromoCodeReader interface {
	// GetActiveByCode retrieves an active promo code
	GetActiveByCode(ctx context.Context, code string) (*models.PromoCode, error)
}

// SessionCounter counts sessions a user has started
type SessionCounter interface {
	// CountStartedByUserAndLevel counts sessions started at a level, any status
	CountStartedByUserAndLevel(ctx context.Context, userID, level int) (int, error)
}

// freeLevelNumber is always accessible without purchase
const freeLevelNumber = 1

type purchaseService struct {
	purchaseRepo PurchaseRepository
	pricingRepo  PricingRepository
	promoRepo    PromoCodeReader
	sessionRepo  SessionCounter
	levelRepo    LevelRepository
	gateway      payments.Gateway
	baseURL      string
	logger       *zap.Logger
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(
	purchaseRepo PurchaseRepository,
	pricingRepo PricingRepository,
	promoRepo PromoCodeReader,
	sessionRepo SessionCounter,
	levelRepo LevelRepository,
	gateway payments.Gateway,
	baseURL string,
	logger *zap.Logger,
) *purchaseService {
	return &purchaseService{
		purchaseRepo: purchaseRepo,
		pricingRepo:  pricingRepo,
		promoRepo:    promoRepo,
		sessionRepo:  sessionRepo,
		levelRepo:    levelRepo,
		gateway:      gateway,
		baseURL:      strings.TrimRight(baseURL, "/"),
		logger:       logger,
	}
}

// CheckAccess evaluates whether a learner may take sessions at a level.
// Level 1 is always free; other levels are open with a completed purchase,
// within the free-session quota, or when no pricing row exists for them.
func (s *purchaseService) CheckAccess(ctx context.Context, userID, level int) (*models.LevelAccess, error) {
	if level < 1 {
		return nil, fmt.Errorf("level must be positive")
	}

	access := &models.LevelAccess{Level: level}

	if level == freeLevelNumber {
		access.Accessible = true
		access.Reason = "free level"
		return access, nil
	}

	purchased, err := s.purchaseRepo.HasCompleted(ctx, userID, level)
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase: %w", err)
	}
	if purchased {
		access.Accessible = true
		access.Purchased = true
		access.Reason = "purchased"
		return access, nil
	}

	pricing, err := s.pricingRepo.GetByLevel(ctx, level)
	if err != nil {
		if err.Error() == "pricing not found" {
			// No pricing configured means the level is not monetized
			access.Accessible = true
			access.Reason = "free level"
			return access, nil
		}
		return nil, fmt.Errorf("failed to get pricing: %w", err)
	}

	taken, err := s.sessionRepo.CountStartedByUserAndLevel(ctx, userID, level)
	if err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	access.FreeSessions = pricing.FreeSessions
	access.SessionsTaken = taken

	if taken < pricing.FreeSessions {
		access.Accessible = true
		access.Reason = "free session quota"
		return access, nil
	}

	access.Reason = "free session quota exhausted"
	return access, nil
}

// CreateCheckout opens a gateway checkout for a level and records the pending
// purchase keyed by the gateway session id
func (s *purchaseService) CreateCheckout(ctx context.Context, userID, level int) (*models.CreatePaymentResult, error) {
	pricing, err := s.pricingRepo.GetByLevel(ctx, level)
	if err != nil {
		return nil, fmt.Errorf("failed to get pricing: %w", err)
	}
	if pricing.PriceCents <= 0 {
		return nil, fmt.Errorf("level has no price")
	}

	productName := fmt.Sprintf("Niveau %d", level)
	if levelRow, err := s.levelRepo.GetByID(ctx, level); err == nil {
		productName = fmt.Sprintf("Niveau %s", levelRow.Name)
	}

	checkout, err := s.gateway.CreateCheckout(ctx, payments.CheckoutParams{
		UserID:      userID,
		Level:       level,
		AmountCents: int64(pricing.PriceCents),
		Currency:    pricing.Currency,
		ProductName: productName,
		SuccessURL:  s.baseURL + "/paiement/retour?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   s.baseURL + "/paiement/annule",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout: %w", err)
	}

	purchase := &models.UserLevelPurchase{
		UserID:     userID,
		Level:      level,
		PricePaid:  pricing.PriceCents,
		PaymentRef: checkout.ID,
		Status:     models.PurchaseStatusPending,
	}
	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}

	return &models.CreatePaymentResult{URL: checkout.URL}, nil
}

// VerifyPayment confirms a checkout after the client returns from the
// gateway. The purchase is completed only when the gateway reports the
// session paid and both sides agree on the buyer. Completion is idempotent,
// so the webhook and the return page may both confirm the same session.
func (s *purchaseService) VerifyPayment(ctx context.Context, userID int, sessionID string) (*models.VerifyPaymentResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}

	purchase, err := s.purchaseRepo.GetByPaymentRef(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	if purchase.UserID != userID {
		return nil, ErrForbidden
	}

	if purchase.Status == models.PurchaseStatusCompleted {
		return &models.VerifyPaymentResult{Success: true, Level: purchase.Level}, nil
	}

	checkout, err := s.gateway.GetCheckout(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout: %w", err)
	}
	if !checkout.Paid {
		return &models.VerifyPaymentResult{Success: false}, nil
	}
	if checkout.UserID != 0 && checkout.UserID != userID {
		return nil, ErrForbidden
	}

	if _, err := s.purchaseRepo.Complete(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to complete purchase: %w", err)
	}

	return &models.VerifyPaymentResult{Success: true, Level: purchase.Level}, nil
}

// HandleWebhookEvent applies a verified gateway notification. Completed paid
// checkouts complete their pending purchase; other event types are ignored.
func (s *purchaseService) HandleWebhookEvent(ctx context.Context, event *payments.WebhookEvent) error {
	if event.Type != payments.EventCheckoutCompleted || event.Session == nil {
		return nil
	}
	if !event.Session.Paid {
		return nil
	}

	applied, err := s.purchaseRepo.Complete(ctx, event.Session.ID)
	if err != nil {
		return fmt.Errorf("failed to complete purchase: %w", err)
	}
	if applied {
		s.logger.Info("purchase completed by webhook",
			zap.String("payment_ref", event.Session.ID),
			zap.Int("level", event.Session.Level),
		)
	}

	return nil
}

// RedeemPromo completes a level purchase at zero cost with an active promo
// code. A code bound to a level only applies there; level 0 codes apply
// anywhere.
func (s *purchaseService) RedeemPromo(ctx context.Context, userID int, req models.RedeemPromoRequest) (*models.VerifyPaymentResult, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, fmt.Errorf("promo code is required")
	}
	if req.Level < 1 {
		return nil, fmt.Errorf("level must be positive")
	}

	promo, err := s.promoRepo.GetActiveByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("invalid promo code")
	}
	if promo.Level != 0 && promo.Level != req.Level {
		return nil, fmt.Errorf("promo code not valid for this level")
	}

	now := time.Now()
	purchase := &models.UserLevelPurchase{
		UserID:      userID,
		Level:       req.Level,
		PricePaid:   0,
		PaymentRef:  "promo:" + promo.Code,
		Status:      models.PurchaseStatusCompleted,
		CompletedAt: &now,
	}
	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}

	s.logger.Info("promo code redeemed",
		zap.Int("user_id", userID),
		zap.Int("level", req.Level),
		zap.String("code", promo.Code),
	)

	return &models.VerifyPaymentResult{Success: true, Level: req.Level}, nil
}

// ReconcilePending sweeps pending purchases older than the cutoff and
// completes those the gateway reports as paid. This catches payments whose
// webhook and return-page confirmations were both lost.
func (s *purchaseService) ReconcilePending(ctx context.Context, olderThan time.Duration) (int, error) {
	pending, err := s.purchaseRepo.GetPendingOlderThan(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to list pending purchases: %w", err)
	}

	completed := 0
	for _, p := range pending {
		checkout, err := s.gateway.GetCheckout(ctx, p.PaymentRef)
		if err != nil {
			s.logger.Warn("failed to fetch checkout during reconciliation",
				zap.String("payment_ref", p.PaymentRef), zap.Error(err))
			continue
		}
		if !checkout.Paid {
			continue
		}

		applied, err := s.purchaseRepo.Complete(ctx, p.PaymentRef)
		if err != nil {
			s.logger.Error("failed to complete purchase during reconciliation",
				zap.String("payment_ref", p.PaymentRef), zap.Error(err))
			continue
		}
		if applied {
			completed++
			s.logger.Info("purchase completed by reconciliation",
				zap.String("payment_ref", p.PaymentRef),
				zap.Int("user_id", p.UserID),
				zap.Int("level", p.Level),
			)
		}
	}

	return completed, nil
}

// GetPricing lists pricing for all levels
func (s *purchaseService) GetPricing(ctx context.Context) ([]models.LevelPricing, error) {
	return s.pricingRepo.GetAll(ctx)
}
