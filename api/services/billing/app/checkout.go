package app

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/peshal-hash/activepieces/api/config"
	"github.com/peshal-hash/activepieces/api/services/billing/catalog"
	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
	"github.com/peshal-hash/activepieces/api/services/billing/giftstore"
)

// Checkout metadata kinds, read back by the webhook handler.
const (
	kindSubscription   = "subscription"
	kindAddon          = "addon"
	kindCreditPurchase = "credit_purchase"
	kindAutoTopUp      = "auto_topup"
)

// minChargeCents is the smallest one-off charge the provider accepts.
const minChargeCents = 50

// CreateSubscriptionCheckout returns a hosted checkout URL for a new
// subscription. A pending gift trial becomes the subscription's trial end.
func (s *serviceImpl) CreateSubscriptionCheckout(ctx context.Context, req CheckoutRequest) (url string, err error) {
	defer s.countSession(kindSubscription, &err)
	if err := s.validateStruct(req); err != nil {
		return "", err
	}
	items, err := itemSet(s.catalog, req.Plan, req.Cycle, req.Addons)
	if err != nil {
		return "", err
	}
	acc, err := s.ensureCustomer(ctx, req.PlatformID, req.Email)
	if err != nil {
		return "", err
	}
	session := gw.CheckoutSession{
		Mode:              gw.CheckoutModeSubscription,
		CustomerID:        acc.StripeCustomerID,
		ClientReferenceID: req.PlatformID,
		SuccessURL:        req.SuccessURL,
		CancelURL:         req.CancelURL,
		Lines:             toLines(items),
		TrialEnd:          s.pendingTrialEnd(ctx, req.PlatformID, acc.StripeCustomerID),
		Metadata: map[string]string{
			"platform_id": req.PlatformID,
			"kind":        kindSubscription,
			"plan":        string(req.Plan),
			"cycle":       string(req.Cycle),
		},
	}
	return s.createSession(ctx, session)
}

// CreateAddonCheckout returns a checkout URL for an addon-only subscription.
func (s *serviceImpl) CreateAddonCheckout(ctx context.Context, req AddonCheckoutRequest) (url string, err error) {
	defer s.countSession(kindAddon, &err)
	if err := s.validateStruct(req); err != nil {
		return "", err
	}
	var lines []gw.CheckoutLine
	for _, kind := range catalog.AddonKinds() {
		q := req.Addons.Quantity(kind)
		if q <= 0 {
			continue
		}
		price, err := s.catalog.PriceFor(req.Plan, req.Cycle, kind)
		if err != nil {
			return "", err
		}
		lines = append(lines, gw.CheckoutLine{PriceID: price, Quantity: int64Ptr(q)})
	}
	if len(lines) == 0 {
		return "", validationError("at least one addon quantity must be positive")
	}
	acc, err := s.ensureCustomer(ctx, req.PlatformID, "")
	if err != nil {
		return "", err
	}
	return s.createSession(ctx, gw.CheckoutSession{
		Mode:              gw.CheckoutModeSubscription,
		CustomerID:        acc.StripeCustomerID,
		ClientReferenceID: req.PlatformID,
		SuccessURL:        req.SuccessURL,
		CancelURL:         req.CancelURL,
		Lines:             lines,
		Metadata: map[string]string{
			"platform_id": req.PlatformID,
			"kind":        kindAddon,
			"cycle":       string(req.Cycle),
		},
	})
}

// CreateCreditPurchaseCheckout returns a checkout URL for a one-off credit purchase.
func (s *serviceImpl) CreateCreditPurchaseCheckout(ctx context.Context, req CreditPurchaseRequest) (url string, err error) {
	defer s.countSession(kindCreditPurchase, &err)
	if err := s.validateStruct(req); err != nil {
		return "", err
	}
	cents, err := toCents(req.AmountUSD)
	if err != nil {
		return "", err
	}
	acc, err := s.ensureCustomer(ctx, req.PlatformID, "")
	if err != nil {
		return "", err
	}
	return s.createSession(ctx, gw.CheckoutSession{
		Mode:              gw.CheckoutModePayment,
		CustomerID:        acc.StripeCustomerID,
		ClientReferenceID: req.PlatformID,
		SuccessURL:        req.SuccessURL,
		CancelURL:         req.CancelURL,
		Currency:          config.Currency,
		Lines:             []gw.CheckoutLine{{AmountCents: cents, Name: "AI credits"}},
		Metadata: map[string]string{
			"platform_id":  req.PlatformID,
			"kind":         kindCreditPurchase,
			"amount_cents": decimal.NewFromInt(cents).String(),
		},
	})
}

// CreateAutoTopUpSetup returns a checkout URL that only collects a payment
// method for later automatic credit top-ups.
func (s *serviceImpl) CreateAutoTopUpSetup(ctx context.Context, platformID, successURL, cancelURL string) (url string, err error) {
	defer s.countSession(kindAutoTopUp, &err)
	if platformID == "" || successURL == "" || cancelURL == "" {
		return "", validationError("platform id and redirect urls are required")
	}
	acc, err := s.ensureCustomer(ctx, platformID, "")
	if err != nil {
		return "", err
	}
	return s.createSession(ctx, gw.CheckoutSession{
		Mode:              gw.CheckoutModeSetup,
		CustomerID:        acc.StripeCustomerID,
		ClientReferenceID: platformID,
		SuccessURL:        successURL,
		CancelURL:         cancelURL,
		Currency:          config.Currency,
		Metadata: map[string]string{
			"platform_id": platformID,
			"kind":        kindAutoTopUp,
		},
	})
}

// CreateBillingPortal returns a provider-hosted billing portal URL.
func (s *serviceImpl) CreateBillingPortal(ctx context.Context, platformID, returnURL string) (url string, err error) {
	defer s.countSession("portal", &err)
	if returnURL == "" {
		return "", validationError("return url is required")
	}
	acc, err := s.requireAccount(ctx, platformID)
	if err != nil {
		return "", err
	}
	url, err = s.gw.CreatePortalSession(ctx, acc.StripeCustomerID, returnURL)
	if err != nil {
		return "", providerError(err, ErrSession, "create portal session for customer %s", acc.StripeCustomerID)
	}
	return url, nil
}

func (s *serviceImpl) createSession(ctx context.Context, session gw.CheckoutSession) (string, error) {
	url, err := s.gw.CreateCheckoutSession(ctx, session)
	if err != nil {
		return "", providerError(err, ErrSession, "create %s checkout session for customer %s", session.Mode, session.CustomerID)
	}
	s.log.Infow("checkout session created",
		"platform_id", session.ClientReferenceID,
		"mode", session.Mode,
		"kind", session.Metadata["kind"],
		"trial_end", session.TrialEnd,
	)
	return url, nil
}

// pendingTrialEnd returns the trial end of a pending gift hold, or zero.
// The gift store is advisory; a failing read never blocks checkout.
func (s *serviceImpl) pendingTrialEnd(ctx context.Context, platformID, customerID string) time.Time {
	hold, err := s.gifts.Get(ctx, platformID, customerID)
	if err != nil {
		if !errors.Is(err, giftstore.ErrNotFound) {
			s.log.Warnw("failed to read gift trial hold", "platform_id", platformID, "error", err)
		}
		return time.Time{}
	}
	if !hold.TrialEnd.After(s.now()) {
		return time.Time{}
	}
	return hold.TrialEnd
}

func (s *serviceImpl) countSession(kind string, err *error) {
	s.metrics.Sessions.WithLabelValues(kind, result(*err)).Inc()
}

func (s *serviceImpl) validateStruct(v interface{}) error {
	if err := s.validate.Struct(v); err != nil {
		return errors.Mark(errors.Wrap(err, "request validation"), ErrValidation)
	}
	return nil
}

func toLines(items []gw.PhaseItem) []gw.CheckoutLine {
	return lo.Map(items, func(it gw.PhaseItem, _ int) gw.CheckoutLine {
		return gw.CheckoutLine{PriceID: it.PriceID, Quantity: it.Quantity}
	})
}

// toCents converts a dollar amount to whole cents, rounding half away from zero.
func toCents(amountUSD decimal.Decimal) (int64, error) {
	cents := amountUSD.Shift(2).Round(0).IntPart()
	if cents < minChargeCents {
		return 0, errors.WithHintf(
			validationError("amount %s is below the minimum charge", amountUSD.StringFixed(2)),
			"amounts must be at least $%s", decimal.New(minChargeCents, -2).StringFixed(2))
	}
	return cents, nil
}
