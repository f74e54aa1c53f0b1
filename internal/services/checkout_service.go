package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/landlorddesk/api/internal/payments"
	"github.com/landlorddesk/api/internal/platform/textutil"
	"github.com/landlorddesk/api/internal/repositories"
)

var (
	// ErrCheckoutInvalidInput indicates the caller supplied invalid input parameters.
	ErrCheckoutInvalidInput = errors.New("checkout: invalid input")
	// ErrCheckoutUnavailable indicates checkout dependencies are currently unavailable.
	ErrCheckoutUnavailable = errors.New("checkout: unavailable")
	// ErrCheckoutUnknownProduct indicates no price is configured for the requested pack.
	ErrCheckoutUnknownProduct = errors.New("checkout: unknown product")
	// ErrCheckoutPaymentFailed indicates the PSP session could not be created.
	ErrCheckoutPaymentFailed = errors.New("checkout: payment failed")
	// ErrCheckoutSessionNotFound indicates the PSP has no record of the session.
	ErrCheckoutSessionNotFound = errors.New("checkout: session not found")
)

const checkoutCurrency = "GBP"

// ProductPrice keys a price table entry by product and tier.
type ProductPrice struct {
	Product string
	Tier    string
}

// defaultPriceTable lists the document packs in pence. Tiers with solicitor review
// carry a premium over the self-serve price.
var defaultPriceTable = map[ProductPrice]int64{
	{Product: "eviction_pack", Tier: "standard"}:     9900,
	{Product: "eviction_pack", Tier: "premium"}:      24900,
	{Product: "money_claim_pack", Tier: "standard"}:  14900,
	{Product: "money_claim_pack", Tier: "premium"}:   29900,
	{Product: "tenancy_agreement", Tier: "standard"}: 4900,
}

// checkoutSessionManager abstracts payments.Manager for easier testing.
type checkoutSessionManager interface {
	CreateCheckoutSession(ctx context.Context, paymentCtx payments.PaymentContext, req payments.CheckoutSessionRequest) (payments.CheckoutSession, error)
	LookupPayment(ctx context.Context, paymentCtx payments.PaymentContext, req payments.LookupRequest) (payments.PaymentDetails, error)
}

// CheckoutServiceDeps wires the dependencies required by the checkout service.
type CheckoutServiceDeps struct {
	Cases      repositories.CaseRepository
	Payments   checkoutSessionManager
	PriceTable map[ProductPrice]int64
	Clock      func() time.Time
	Logger     func(ctx context.Context, event string, fields map[string]any)
}

type checkoutService struct {
	cases    repositories.CaseRepository
	payments checkoutSessionManager
	prices   map[ProductPrice]int64
	now      func() time.Time
	logger   func(ctx context.Context, event string, fields map[string]any)
}

// NewCheckoutService constructs a CheckoutService validating required dependencies.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Cases == nil {
		return nil, errors.New("checkout service: case repository is required")
	}
	if deps.Payments == nil {
		return nil, errors.New("checkout service: payment manager is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	prices := deps.PriceTable
	if len(prices) == 0 {
		prices = defaultPriceTable
	}
	return &checkoutService{
		cases:    deps.Cases,
		payments: deps.Payments,
		prices:   prices,
		now:      func() time.Time { return clock().UTC() },
		logger:   logger,
	}, nil
}

// Start validates ownership and pricing, then opens a PSP checkout session for the pack.
func (s *checkoutService) Start(ctx context.Context, cmd StartCheckoutCommand) (CheckoutSession, error) {
	userID := strings.TrimSpace(cmd.UserID)
	caseID := strings.TrimSpace(cmd.CaseID)
	successURL := strings.TrimSpace(cmd.SuccessURL)
	cancelURL := strings.TrimSpace(cmd.CancelURL)
	if userID == "" || caseID == "" || successURL == "" || cancelURL == "" {
		return CheckoutSession{}, ErrCheckoutInvalidInput
	}

	owned, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		return CheckoutSession{}, s.translateCaseError(err)
	}
	if owned.OwnerID != userID {
		return CheckoutSession{}, ErrCaseUnauthorized
	}

	product := strings.TrimSpace(cmd.Product)
	if product == "" {
		product = owned.Product
	}
	tier := strings.TrimSpace(cmd.Tier)
	if tier == "" {
		tier = "standard"
	}
	amount, ok := s.prices[ProductPrice{Product: product, Tier: tier}]
	if !ok {
		return CheckoutSession{}, ErrCheckoutUnknownProduct
	}

	metadata := textutil.NormalizeStringMap(map[string]string{
		"case_id": caseID,
		"product": product,
		"tier":    tier,
		"lead_id": cmd.LeadID,
	})

	idempotencyKey := checkoutIdempotencyKey(userID, caseID, product, tier)
	session, err := s.payments.CreateCheckoutSession(ctx, payments.PaymentContext{Currency: checkoutCurrency}, payments.CheckoutSessionRequest{
		Amount:         amount,
		Currency:       checkoutCurrency,
		CustomerID:     userID,
		SuccessURL:     successURL,
		CancelURL:      cancelURL,
		IdempotencyKey: idempotencyKey,
		Metadata:       metadata,
		Items: []payments.CheckoutLineItem{{
			Name:     product,
			SKU:      product + ":" + tier,
			Quantity: 1,
			Amount:   amount,
			Currency: checkoutCurrency,
		}},
	})
	if err != nil {
		if errors.Is(err, payments.ErrUnsupportedProvider) {
			return CheckoutSession{}, ErrCheckoutInvalidInput
		}
		s.logger(ctx, "checkout.session_failed", map[string]any{
			"case_id": caseID,
			"product": product,
			"error":   err.Error(),
		})
		return CheckoutSession{}, ErrCheckoutPaymentFailed
	}

	s.logger(ctx, "checkout.session_created", map[string]any{
		"case_id": caseID,
		"product": product,
		"tier":    tier,
		"amount":  amount,
	})
	return CheckoutSession{
		SessionID:   session.ID,
		PSP:         session.Provider,
		CaseID:      caseID,
		Product:     product,
		Tier:        tier,
		Amount:      amount,
		Currency:    checkoutCurrency,
		Status:      string(payments.StatusPending),
		RedirectURL: session.RedirectURL,
		ExpiresAt:   session.ExpiresAt.UTC(),
	}, nil
}

// Confirm reconciles a session against the PSP and reports its normalized status.
func (s *checkoutService) Confirm(ctx context.Context, cmd ConfirmCheckoutCommand) (CheckoutSession, error) {
	sessionID := strings.TrimSpace(cmd.SessionID)
	if strings.TrimSpace(cmd.UserID) == "" || sessionID == "" {
		return CheckoutSession{}, ErrCheckoutInvalidInput
	}
	details, err := s.payments.LookupPayment(ctx, payments.PaymentContext{Currency: checkoutCurrency}, payments.LookupRequest{IntentID: sessionID})
	if err != nil {
		if errors.Is(err, payments.ErrUnsupportedProvider) {
			return CheckoutSession{}, ErrCheckoutInvalidInput
		}
		s.logger(ctx, "checkout.lookup_failed", map[string]any{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return CheckoutSession{}, ErrCheckoutSessionNotFound
	}
	return CheckoutSession{
		SessionID: details.IntentID,
		PSP:       details.Provider,
		Amount:    details.Amount,
		Currency:  details.Currency,
		Status:    string(details.Status),
	}, nil
}

func (s *checkoutService) translateCaseError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrCaseNotFound
		case repoErr.IsUnavailable():
			return ErrCheckoutUnavailable
		}
	}
	return ErrCheckoutUnavailable
}

func checkoutIdempotencyKey(userID, caseID, product, tier string) string {
	base := fmt.Sprintf("%s|%s|%s|%s", userID, caseID, product, tier)
	sum := sha256.Sum256([]byte(base))
	return hex.EncodeToString(sum[:])
}
