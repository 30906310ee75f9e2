package app

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/peshal-hash/activepieces/api/logger"
	"github.com/peshal-hash/activepieces/api/services/billing/catalog"
	billingdb "github.com/peshal-hash/activepieces/api/services/billing/db"
	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
	"github.com/peshal-hash/activepieces/api/services/billing/giftstore"
)

// Service defines the business operations for the billing domain.
type Service interface {
	HandlePlanChange(ctx context.Context, req PlanChangeRequest) Outcome

	CreateSubscriptionCheckout(ctx context.Context, req CheckoutRequest) (string, error)
	CreateAddonCheckout(ctx context.Context, req AddonCheckoutRequest) (string, error)
	CreateCreditPurchaseCheckout(ctx context.Context, req CreditPurchaseRequest) (string, error)
	CreateAutoTopUpSetup(ctx context.Context, platformID, successURL, cancelURL string) (string, error)
	CreateBillingPortal(ctx context.Context, platformID, returnURL string) (string, error)

	StartTrial(ctx context.Context, req TrialRequest) (gw.Subscription, error)
	GiftTrialForCustomer(ctx context.Context, req GiftTrialRequest) GiftResult
	GiftTrialBatch(ctx context.Context, reqs []GiftTrialRequest) []GiftResult

	TopUpCredits(ctx context.Context, platformID string, amountUSD decimal.Decimal) TopUpResult
	AttachPaymentMethod(ctx context.Context, platformID, paymentMethodID string) error
	PurgeCustomer(ctx context.Context, platformID string) error

	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// AccountStore persists the platform -> provider customer mapping.
type AccountStore interface {
	GetAccount(ctx context.Context, platformID string) (billingdb.Account, error)
	GetAccountByCustomer(ctx context.Context, customerID string) (billingdb.Account, error)
	UpsertAccount(ctx context.Context, acc billingdb.Account) error
	ClearSubscription(ctx context.Context, platformID, subscriptionID string) (bool, error)
	DeleteAccount(ctx context.Context, platformID string) error
}

// GiftStore holds pending gift trials.
type GiftStore interface {
	Put(ctx context.Context, platformID, customerID string, hold giftstore.Hold) error
	Get(ctx context.Context, platformID, customerID string) (giftstore.Hold, error)
	Consume(ctx context.Context, platformID, customerID string) (giftstore.Hold, error)
	Discard(ctx context.Context, platformID, customerID string) error
}

// Deps are the collaborators of the billing service. Now defaults to time.Now.
type Deps struct {
	Gateway  gw.BillingGateway
	Verifier gw.WebhookVerifier
	Catalog  *catalog.Catalog
	Accounts AccountStore
	Gifts    GiftStore
	Log      *logger.Logger
	Metrics  *Metrics
	Now      func() time.Time
}

type serviceImpl struct {
	gw       gw.BillingGateway
	verifier gw.WebhookVerifier
	catalog  *catalog.Catalog
	accounts AccountStore
	gifts    GiftStore
	log      *logger.Logger
	metrics  *Metrics
	validate *validator.Validate
	now      func() time.Time
}

func NewService(d Deps) Service {
	s := &serviceImpl{
		gw:       d.Gateway,
		verifier: d.Verifier,
		catalog:  d.Catalog,
		accounts: d.Accounts,
		gifts:    d.Gifts,
		log:      d.Log,
		metrics:  d.Metrics,
		validate: validator.New(),
		now:      d.Now,
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// HandlePlanChange routes a plan change to the immediate or deferred path and
// reports the result as an Outcome. It never returns an error or panics; the
// caller re-issues the whole request to retry.
func (s *serviceImpl) HandlePlanChange(ctx context.Context, req PlanChangeRequest) (out Outcome) {
	route := "rejected"
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("plan change panicked", "subscription_id", req.SubscriptionID, "panic", r)
			out = Outcome{Err: CodeUnknown}
		}
		res := "ok"
		if !out.OK() {
			res = out.Err
		}
		s.metrics.PlanChanges.WithLabelValues(route, res).Inc()
	}()

	if err := s.validatePlanChange(req); err != nil {
		s.log.Warnw("invalid plan change request", "subscription_id", req.SubscriptionID, "error", err)
		return failure(err)
	}

	// Always act on freshly read items, never on state from an earlier request.
	sub, err := s.gw.GetSubscription(ctx, req.SubscriptionID)
	if err != nil {
		err = providerError(err, ErrNotFound, "retrieve subscription %s", req.SubscriptionID)
		s.log.Errorw("plan change failed", "subscription_id", req.SubscriptionID, "error", err)
		return failure(err)
	}
	if IsSubscriptionCancelled(sub, s.now()) {
		err := validationError("subscription %s is %s", sub.ID, sub.Status)
		s.log.Warnw("plan change on cancelled subscription", "subscription_id", sub.ID, "status", sub.Status)
		return failure(err)
	}

	action := ActionDowngrade
	switch {
	case req.IsUpgrade:
		route = "immediate"
		action = ActionUpgrade
		err = s.upgrade(ctx, sub, req)
	case s.isImmediateAddonChange(sub, req):
		route = "immediate_addon"
		err = s.applyImmediateAddons(ctx, sub, req)
	default:
		route = "deferred"
		if req.IsFreeDowngrade {
			action = ActionCancel
		}
		window := windowOf(s.catalog.Index(), sub, s.now())
		err = s.applyDeferred(ctx, sub, req, window)
	}
	if err != nil {
		s.log.Errorw("plan change failed",
			"subscription_id", sub.ID,
			"route", route,
			"plan", req.NewPlan,
			"cycle", req.NewCycle,
			"error", err,
			"hint", errors.FlattenHints(err),
		)
		return failure(err)
	}

	plan := req.NewPlan
	if action == ActionCancel {
		plan = catalog.PlanFree
	}
	return Outcome{Action: action, Plan: plan}
}

func (s *serviceImpl) validatePlanChange(req PlanChangeRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return errors.Mark(errors.Wrap(err, "plan change request"), ErrValidation)
	}
	switch {
	case req.IsUpgrade && req.IsFreeDowngrade:
		return validationError("a change cannot be both an upgrade and a free downgrade")
	case req.NewPlan.IsFree() && !req.IsFreeDowngrade:
		return validationError("moving to the free plan must be a free downgrade")
	}
	return nil
}

// upgrade applies the change immediately, then drops any pending deferred
// change bound to the subscription since it would undo the upgrade at renewal.
// The schedule is kept when the update cannot be applied.
func (s *serviceImpl) upgrade(ctx context.Context, sub gw.Subscription, req PlanChangeRequest) error {
	if err := s.applyImmediate(ctx, sub, req); err != nil {
		return err
	}
	if sub.ScheduleID == "" {
		return nil
	}
	if err := s.gw.ReleaseSchedule(ctx, sub.ScheduleID); err != nil {
		return providerError(err, ErrScheduleUpdate, "release pending schedule %s", sub.ScheduleID)
	}
	s.log.Infow("released pending schedule after upgrade", "schedule_id", sub.ScheduleID, "subscription_id", sub.ID)
	return nil
}

// isImmediateAddonChange reports whether a non-upgrade may skip the schedule:
// the caller asked for it and only addon quantities differ.
func (s *serviceImpl) isImmediateAddonChange(sub gw.Subscription, req PlanChangeRequest) bool {
	if !req.Immediate || req.IsFreeDowngrade || req.NewCycle != req.CurrentCycle {
		return false
	}
	return classifyItems(s.catalog.Index(), sub).plan == req.NewPlan
}
