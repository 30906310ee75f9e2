package app

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	billingdb "github.com/peshal-hash/activepieces/api/services/billing/db"
	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
	"github.com/peshal-hash/activepieces/api/services/billing/giftstore"
)

const day = 24 * time.Hour

// StartTrial creates a trialing subscription without checkout. A pending
// gift hold overrides the requested plan and trial end and is consumed.
func (s *serviceImpl) StartTrial(ctx context.Context, req TrialRequest) (gw.Subscription, error) {
	if err := s.validateStruct(req); err != nil {
		return gw.Subscription{}, err
	}
	acc, err := s.ensureCustomer(ctx, req.PlatformID, req.Email)
	if err != nil {
		return gw.Subscription{}, err
	}
	live, err := s.liveSubscription(ctx, acc.StripeCustomerID)
	if err != nil {
		return gw.Subscription{}, err
	}
	if live.ID != "" {
		return gw.Subscription{}, validationError("platform %s already has %s subscription %s", req.PlatformID, live.Status, live.ID)
	}

	plan := req.Plan
	trialEnd := s.now().Add(time.Duration(req.Days) * day)
	hold, holdErr := s.gifts.Get(ctx, req.PlatformID, acc.StripeCustomerID)
	switch {
	case holdErr == nil && hold.TrialEnd.After(s.now()):
		plan, trialEnd = hold.Plan, hold.TrialEnd
	case holdErr != nil && !errors.Is(holdErr, giftstore.ErrNotFound):
		s.log.Warnw("failed to read gift trial hold", "platform_id", req.PlatformID, "error", holdErr)
	}

	items, err := itemSet(s.catalog, plan, req.Cycle, AddonTargets{})
	if err != nil {
		return gw.Subscription{}, err
	}
	sub, err := s.gw.CreateSubscription(ctx, gw.NewSubscription{
		CustomerID: acc.StripeCustomerID,
		Items:      items,
		TrialEnd:   trialEnd,
		Metadata: map[string]string{
			"platform_id": req.PlatformID,
			"plan":        string(plan),
			"cycle":       string(req.Cycle),
		},
	})
	if err != nil {
		return gw.Subscription{}, providerError(err, ErrPlanUpdate, "create trial subscription for customer %s", acc.StripeCustomerID)
	}
	s.consumeHold(ctx, req.PlatformID, acc.StripeCustomerID)

	if err := s.accounts.UpsertAccount(ctx, billingdb.Account{
		PlatformID:           req.PlatformID,
		StripeCustomerID:     acc.StripeCustomerID,
		StripeSubscriptionID: sub.ID,
	}); err != nil {
		return sub, errors.Mark(err, ErrDatabase)
	}
	s.log.Infow("trial started", "platform_id", req.PlatformID, "subscription_id", sub.ID, "plan", plan, "trial_end", trialEnd)
	return sub, nil
}

// GiftTrialForCustomer gifts trial days. Without a live subscription the gift
// is held until a trial starts; a trialing subscription is extended now; an
// active paid subscription is refused. Failures are returned as data.
func (s *serviceImpl) GiftTrialForCustomer(ctx context.Context, req GiftTrialRequest) (res GiftResult) {
	res = GiftResult{PlatformID: req.PlatformID, CustomerID: req.CustomerID}
	defer func() {
		s.metrics.GiftTrials.WithLabelValues(string(res.Status)).Inc()
		s.log.Infow("gift trial processed",
			"platform_id", req.PlatformID,
			"customer_id", req.CustomerID,
			"status", res.Status,
			"message", res.Message,
		)
	}()

	if err := s.validateStruct(req); err != nil {
		res.Status, res.Message = GiftFailed, err.Error()
		return res
	}
	live, err := s.liveSubscription(ctx, req.CustomerID)
	if err != nil {
		res.Status, res.Message = GiftFailed, err.Error()
		return res
	}
	extra := time.Duration(req.Days) * day

	switch live.Status {
	case gw.StatusTrialing:
		from := live.TrialEnd
		if from.Before(s.now()) {
			from = s.now()
		}
		updated, err := s.gw.SetTrialEnd(ctx, live.ID, from.Add(extra))
		if err != nil {
			err = providerError(err, ErrPlanUpdate, "extend trial of subscription %s", live.ID)
			res.Status, res.Message = GiftFailed, err.Error()
			return res
		}
		res.Status, res.TrialEnd = GiftExtended, updated.TrialEnd
		res.Message = "trial extended on subscription " + live.ID
	case gw.StatusActive:
		res.Status = GiftRejected
		res.Message = "customer already has an active paid subscription " + live.ID
	default:
		hold := giftstore.Hold{TrialEnd: s.now().Add(extra), Plan: req.Plan}
		if err := s.gifts.Put(ctx, req.PlatformID, req.CustomerID, hold); err != nil {
			res.Status, res.Message = GiftFailed, err.Error()
			return res
		}
		res.Status, res.TrialEnd = GiftHeld, hold.TrialEnd
		res.Message = "gift held until the customer starts a subscription"
	}
	return res
}

// GiftTrialBatch gifts trials one by one; a failure never stops the batch.
func (s *serviceImpl) GiftTrialBatch(ctx context.Context, reqs []GiftTrialRequest) []GiftResult {
	results := make([]GiftResult, 0, len(reqs))
	for _, req := range reqs {
		if ctx.Err() != nil {
			results = append(results, GiftResult{
				PlatformID: req.PlatformID,
				CustomerID: req.CustomerID,
				Status:     GiftFailed,
				Message:    ctx.Err().Error(),
			})
			continue
		}
		results = append(results, s.GiftTrialForCustomer(ctx, req))
	}
	return results
}

// liveSubscription returns the customer's trialing or active subscription,
// preferring trialing, or a zero value when there is none.
func (s *serviceImpl) liveSubscription(ctx context.Context, customerID string) (gw.Subscription, error) {
	subs, err := s.gw.ListSubscriptions(ctx, customerID)
	if err != nil {
		return gw.Subscription{}, providerError(err, ErrPlanUpdate, "list subscriptions of customer %s", customerID)
	}
	if sub, ok := lo.Find(subs, func(sub gw.Subscription) bool { return sub.Status == gw.StatusTrialing }); ok {
		return sub, nil
	}
	sub, _ := lo.Find(subs, func(sub gw.Subscription) bool { return sub.Status == gw.StatusActive })
	return sub, nil
}

func (s *serviceImpl) consumeHold(ctx context.Context, platformID, customerID string) {
	if _, err := s.gifts.Consume(ctx, platformID, customerID); err != nil && !errors.Is(err, giftstore.ErrNotFound) {
		s.log.Warnw("failed to consume gift trial hold", "platform_id", platformID, "customer_id", customerID, "error", err)
	}
}
