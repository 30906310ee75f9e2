package gateway

import "time"

// SubscriptionStatus mirrors the provider's subscription lifecycle states.
type SubscriptionStatus string

const (
	StatusTrialing          SubscriptionStatus = "trialing"
	StatusActive            SubscriptionStatus = "active"
	StatusPastDue           SubscriptionStatus = "past_due"
	StatusCanceled          SubscriptionStatus = "canceled"
	StatusIncomplete        SubscriptionStatus = "incomplete"
	StatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	StatusUnpaid            SubscriptionStatus = "unpaid"
	StatusPaused            SubscriptionStatus = "paused"
)

// ScheduleStatus mirrors the provider's subscription schedule states.
type ScheduleStatus string

const (
	ScheduleNotStarted ScheduleStatus = "not_started"
	ScheduleActive     ScheduleStatus = "active"
	ScheduleCompleted  ScheduleStatus = "completed"
	ScheduleReleased   ScheduleStatus = "released"
	ScheduleCanceled   ScheduleStatus = "canceled"
)

// Updatable reports whether a schedule in this state can still be changed.
func (s ScheduleStatus) Updatable() bool {
	return s == ScheduleNotStarted || s == ScheduleActive
}

// EndBehavior decides what happens to the subscription once a schedule's
// phases are exhausted.
type EndBehavior string

const (
	EndBehaviorRelease EndBehavior = "release"
	EndBehaviorCancel  EndBehavior = "cancel"
)

// ProrationBehavior controls mid-period charges on item changes.
type ProrationBehavior string

const (
	ProrationAlwaysInvoice ProrationBehavior = "always_invoice"
	ProrationNone          ProrationBehavior = "none"
)

// Subscription is the observed provider state of a subscription.
type Subscription struct {
	ID         string
	CustomerID string
	Status     SubscriptionStatus
	CancelAt   time.Time
	TrialEnd   time.Time
	ScheduleID string
	Items      []SubscriptionItem
}

// IsLive reports whether the subscription is trialing or active.
func (s Subscription) IsLive() bool {
	return s.Status == StatusTrialing || s.Status == StatusActive
}

// SubscriptionItem is one line item of a subscription.
type SubscriptionItem struct {
	ID                 string
	PriceID            string
	Quantity           int64
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
}

// ItemOp is one entry of a batched item update. An empty ID adds a new item;
// Deleted removes the item with ID. A nil Quantity leaves quantity to the
// provider (metered items).
type ItemOp struct {
	ID         string
	PriceID    string
	Quantity   *int64
	Deleted    bool
	ClearUsage bool
}

// NewSubscription describes a subscription created directly (not via checkout).
type NewSubscription struct {
	CustomerID string
	Items      []PhaseItem
	TrialEnd   time.Time
	Metadata   map[string]string
}

// PhaseItem is a (price, quantity) pair inside a schedule phase or new
// subscription. A nil Quantity is used for metered prices.
type PhaseItem struct {
	PriceID  string
	Quantity *int64
}

// Phase is a time-bounded segment of a schedule. A zero End means open-ended.
type Phase struct {
	Items []PhaseItem
	Start time.Time
	End   time.Time
}

// Schedule is the observed provider state of a subscription schedule.
type Schedule struct {
	ID             string
	SubscriptionID string
	CustomerID     string
	Status         ScheduleStatus
	EndBehavior    EndBehavior
	Phases         []Phase
}

// ScheduleUpdate replaces a schedule's phases and end behavior wholesale.
type ScheduleUpdate struct {
	Phases      []Phase
	EndBehavior EndBehavior
}

// CheckoutMode selects what a hosted checkout session collects.
type CheckoutMode string

const (
	CheckoutModeSubscription CheckoutMode = "subscription"
	CheckoutModePayment      CheckoutMode = "payment"
	CheckoutModeSetup        CheckoutMode = "setup"
)

// CheckoutLine is a single checkout line. Either PriceID or an ad-hoc
// AmountCents/Name pair is set.
type CheckoutLine struct {
	PriceID     string
	Quantity    *int64
	AmountCents int64
	Name        string
}

// CheckoutSession describes a provider-hosted checkout session.
type CheckoutSession struct {
	Mode              CheckoutMode
	CustomerID        string
	ClientReferenceID string
	SuccessURL        string
	CancelURL         string
	Currency          string
	Lines             []CheckoutLine
	TrialEnd          time.Time
	Metadata          map[string]string
}

// NewCustomer describes a provider customer to create.
type NewCustomer struct {
	Email    string
	Name     string
	Metadata map[string]string
}

// PaymentMethod is a stored customer payment method.
type PaymentMethod struct {
	ID      string
	Type    string
	Default bool
}

// Invoice is the observed state of a one-off invoice.
type Invoice struct {
	ID     string
	Status string
	Paid   bool
	Total  int64
}

// Event types the service reacts to.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventSubscriptionUpdated = "customer.subscription.updated"
)

// Event is a verified provider webhook event.
type Event struct {
	ID       string
	Type     string
	Checkout *CompletedCheckout
	// Subscription is set for customer.subscription.* events.
	Subscription *Subscription
}

// CompletedCheckout carries the fields of a finished checkout session.
type CompletedCheckout struct {
	ClientReferenceID string
	CustomerID        string
	CustomerEmail     string
	SubscriptionID    string
	Mode              CheckoutMode
	Metadata          map[string]string
}
