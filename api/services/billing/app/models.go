package app

import (
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/peshal-hash/activepieces/api/services/billing/catalog"
)

// AddonTargets are the requested addon quantities. Zero removes the addon.
type AddonTargets struct {
	UserSeats   int64 `json:"userSeats" validate:"gte=0"`
	Projects    int64 `json:"projects" validate:"gte=0"`
	ActiveFlows int64 `json:"activeFlows" validate:"gte=0"`
}

// Quantity returns the target for an addon kind.
func (a AddonTargets) Quantity(kind catalog.ItemKind) int64 {
	switch kind {
	case catalog.KindUserSeats:
		return a.UserSeats
	case catalog.KindProjects:
		return a.Projects
	case catalog.KindActiveFlows:
		return a.ActiveFlows
	}
	return 0
}

func (a *AddonTargets) set(kind catalog.ItemKind, q int64) {
	switch kind {
	case catalog.KindUserSeats:
		a.UserSeats = q
	case catalog.KindProjects:
		a.Projects = q
	case catalog.KindActiveFlows:
		a.ActiveFlows = q
	}
}

// PlanChangeRequest is one plan change, built by the caller per request.
type PlanChangeRequest struct {
	SubscriptionID string        `json:"subscriptionId" validate:"required"`
	CurrentCycle   catalog.Cycle `json:"currentCycle" validate:"required,oneof=monthly annual"`
	NewCycle       catalog.Cycle `json:"newCycle" validate:"required,oneof=monthly annual"`
	NewPlan        catalog.Plan  `json:"newPlan" validate:"required,oneof=free plus business enterprise"`
	Addons         AddonTargets  `json:"addons"`
	IsUpgrade      bool          `json:"isUpgrade"`
	// IsFreeDowngrade runs out the current paid period and then cancels.
	IsFreeDowngrade bool `json:"isFreeDowngrade"`
	// Immediate applies a same-plan, same-cycle addon change in place instead
	// of deferring it to renewal. Ignored for any other change.
	Immediate bool `json:"immediate"`
}

// Action is what a successful plan change did.
type Action string

const (
	ActionUpgrade   Action = "upgrade"
	ActionDowngrade Action = "downgrade"
	ActionCancel    Action = "cancel"
)

// Outcome is the result of HandlePlanChange. Exactly one of Action or Err is set.
type Outcome struct {
	Action Action       `json:"action,omitempty"`
	Plan   catalog.Plan `json:"plan,omitempty"`
	Err    string       `json:"error,omitempty"`
}

// OK reports whether the change was applied or scheduled.
func (o Outcome) OK() bool { return o.Err == "" }

// RedirectPath renders the outcome as a query string on base, for example
// "/platform/billing?action=upgrade&plan=business" or "/platform/billing?error=plan_update_failed".
func (o Outcome) RedirectPath(base string) string {
	q := url.Values{}
	if o.OK() {
		q.Set("action", string(o.Action))
		q.Set("plan", string(o.Plan))
	} else {
		q.Set("error", o.Err)
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Encode()
}

func failure(err error) Outcome { return Outcome{Err: ErrorCode(err)} }

// CheckoutRequest starts a new subscription through hosted checkout.
type CheckoutRequest struct {
	PlatformID string        `json:"platformId" validate:"required"`
	Email      string        `json:"email" validate:"omitempty,email"`
	Plan       catalog.Plan  `json:"plan" validate:"required,oneof=plus business enterprise"`
	Cycle      catalog.Cycle `json:"cycle" validate:"required,oneof=monthly annual"`
	Addons     AddonTargets  `json:"addons"`
	SuccessURL string        `json:"successUrl" validate:"required,url"`
	CancelURL  string        `json:"cancelUrl" validate:"required,url"`
}

// AddonCheckoutRequest buys addons as a standalone subscription.
type AddonCheckoutRequest struct {
	PlatformID string        `json:"platformId" validate:"required"`
	Cycle      catalog.Cycle `json:"cycle" validate:"required,oneof=monthly annual"`
	// Plan selects whose addon prices are charged; addon prices are usually shared.
	Plan       catalog.Plan `json:"plan" validate:"required,oneof=plus business enterprise"`
	Addons     AddonTargets `json:"addons"`
	SuccessURL string       `json:"successUrl" validate:"required,url"`
	CancelURL  string       `json:"cancelUrl" validate:"required,url"`
}

// CreditPurchaseRequest buys a one-off block of AI credits.
type CreditPurchaseRequest struct {
	PlatformID string          `json:"platformId" validate:"required"`
	AmountUSD  decimal.Decimal `json:"amountUsd"`
	SuccessURL string          `json:"successUrl" validate:"required,url"`
	CancelURL  string          `json:"cancelUrl" validate:"required,url"`
}

// TrialRequest starts a trialing subscription directly, without checkout.
type TrialRequest struct {
	PlatformID string        `json:"platformId" validate:"required"`
	Email      string        `json:"email" validate:"omitempty,email"`
	Plan       catalog.Plan  `json:"plan" validate:"required,oneof=plus business enterprise"`
	Cycle      catalog.Cycle `json:"cycle" validate:"required,oneof=monthly annual"`
	Days       int           `json:"days" validate:"gt=0,lte=365"`
}

// GiftTrialRequest gifts trial days to an existing customer.
type GiftTrialRequest struct {
	PlatformID string       `json:"platformId" validate:"required"`
	CustomerID string       `json:"customerId" validate:"required"`
	Plan       catalog.Plan `json:"plan" validate:"required,oneof=plus business enterprise"`
	Days       int          `json:"days" validate:"gt=0,lte=365"`
}

// GiftStatus is how a gift trial request was handled.
type GiftStatus string

const (
	GiftHeld     GiftStatus = "held"
	GiftExtended GiftStatus = "extended"
	GiftRejected GiftStatus = "rejected"
	GiftFailed   GiftStatus = "failed"
)

// GiftResult reports a gift trial outcome as data so batches never abort.
type GiftResult struct {
	PlatformID string     `json:"platformId"`
	CustomerID string     `json:"customerId"`
	Status     GiftStatus `json:"status"`
	TrialEnd   time.Time  `json:"trialEnd,omitempty"`
	Message    string     `json:"message,omitempty"`
}

// TopUpResult reports a credit top-up charge.
type TopUpResult struct {
	PlatformID  string `json:"platformId"`
	InvoiceID   string `json:"invoiceId,omitempty"`
	AmountCents int64  `json:"amountCents"`
	Paid        bool   `json:"paid"`
	Err         string `json:"error,omitempty"`
	Message     string `json:"message,omitempty"`
}
