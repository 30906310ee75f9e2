package app

import (
	"context"

	"github.com/cockroachdb/errors"

	billingdb "github.com/peshal-hash/activepieces/api/services/billing/db"
	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
)

// HandleWebhook verifies and applies a provider event.
func (s *serviceImpl) HandleWebhook(ctx context.Context, payload []byte, signature string) (err error) {
	event, err := s.verifier.VerifyWebhook(payload, signature)
	if err != nil {
		s.metrics.WebhookEvent.WithLabelValues("unverified", CodeBadEvent).Inc()
		return errors.Mark(err, ErrBadEvent)
	}
	defer func() {
		s.metrics.WebhookEvent.WithLabelValues(event.Type, result(err)).Inc()
	}()

	switch event.Type {
	case gw.EventCheckoutCompleted:
		return s.handleCheckoutCompleted(ctx, event)
	case gw.EventSubscriptionDeleted:
		return s.handleSubscriptionDeleted(ctx, event)
	default:
		s.log.Debugw("ignoring webhook event", "event_id", event.ID, "type", event.Type)
		return nil
	}
}

// handleCheckoutCompleted records the customer and subscription a finished
// checkout produced and consumes any gift trial it used.
func (s *serviceImpl) handleCheckoutCompleted(ctx context.Context, event gw.Event) error {
	session := event.Checkout
	if session == nil {
		return errors.Mark(errors.New("checkout session missing from event"), ErrBadEvent)
	}
	if session.ClientReferenceID == "" {
		return errors.Mark(errors.New("client reference ID not found in CheckoutSession"), ErrBadEvent)
	}
	if session.CustomerID == "" {
		return errors.Mark(errors.New("customer ID not found in CheckoutSession"), ErrBadEvent)
	}
	platformID := session.ClientReferenceID
	acc := billingdb.Account{
		PlatformID:       platformID,
		StripeCustomerID: session.CustomerID,
		Email:            session.CustomerEmail,
	}

	if session.Mode == gw.CheckoutModeSubscription && session.Metadata["kind"] != kindAddon {
		if session.SubscriptionID == "" {
			return errors.Mark(errors.New("subscription ID not found in CheckoutSession"), ErrBadEvent)
		}
		replace, err := s.replacesSubscription(ctx, platformID, session.SubscriptionID)
		if err != nil {
			return err
		}
		if replace {
			acc.StripeSubscriptionID = session.SubscriptionID
		}
		s.consumeHold(ctx, platformID, session.CustomerID)
	}

	if err := s.accounts.UpsertAccount(ctx, acc); err != nil {
		return errors.Mark(errors.Wrap(err, "error upserting billing account"), ErrDatabase)
	}
	s.log.Infow("checkout completed",
		"event_id", event.ID,
		"platform_id", platformID,
		"customer_id", session.CustomerID,
		"subscription_id", acc.StripeSubscriptionID,
		"kind", session.Metadata["kind"],
	)
	return nil
}

// replacesSubscription reports whether newSubID should become the platform's
// subscription. A previous subscription that is still live is kept.
func (s *serviceImpl) replacesSubscription(ctx context.Context, platformID, newSubID string) (bool, error) {
	existing, err := s.accounts.GetAccount(ctx, platformID)
	if errors.Is(err, billingdb.ErrAccountNotFound) {
		s.log.Infow("no existing billing account", "platform_id", platformID)
		return true, nil
	}
	if err != nil {
		return false, errors.Mark(err, ErrDatabase)
	}
	if existing.StripeSubscriptionID == "" || existing.StripeSubscriptionID == newSubID {
		return true, nil
	}
	prev, err := s.gw.GetSubscription(ctx, existing.StripeSubscriptionID)
	if errors.Is(err, gw.ErrRejected) {
		return true, nil
	}
	if err != nil {
		return false, providerError(err, ErrProviderUnavailable, "error fetching previous subscription %s", existing.StripeSubscriptionID)
	}
	if IsSubscriptionCancelled(prev, s.now()) {
		s.log.Infow("previous subscription cancelled, replacing with new subscription", "platform_id", platformID)
		return true, nil
	}
	s.log.Warnw("previous subscription still live, keeping it",
		"platform_id", platformID,
		"kept_subscription_id", prev.ID,
		"new_subscription_id", newSubID,
	)
	return false, nil
}

// handleSubscriptionDeleted unlinks a deleted subscription from the account
// that still points at it. Unknown customers are ignored.
func (s *serviceImpl) handleSubscriptionDeleted(ctx context.Context, event gw.Event) error {
	sub := event.Subscription
	if sub == nil || sub.ID == "" {
		return errors.Mark(errors.New("subscription missing from event"), ErrBadEvent)
	}
	if sub.CustomerID == "" {
		s.log.Infow("subscription deleted without customer", "event_id", event.ID, "subscription_id", sub.ID)
		return nil
	}
	acc, err := s.accounts.GetAccountByCustomer(ctx, sub.CustomerID)
	if errors.Is(err, billingdb.ErrAccountNotFound) {
		s.log.Infow("subscription deleted for unknown customer", "subscription_id", sub.ID, "customer_id", sub.CustomerID)
		return nil
	}
	if err != nil {
		return errors.Mark(errors.Wrap(err, "error loading billing account"), ErrDatabase)
	}
	cleared, err := s.accounts.ClearSubscription(ctx, acc.PlatformID, sub.ID)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "error clearing deleted subscription"), ErrDatabase)
	}
	s.log.Infow("subscription deleted",
		"event_id", event.ID,
		"platform_id", acc.PlatformID,
		"subscription_id", sub.ID,
		"unlinked", cleared,
	)
	return nil
}
