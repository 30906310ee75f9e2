package gateway

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// Provider failures are classified into two kinds so callers can map them to
// their own taxonomy without depending on SDK error types.
var (
	// ErrRejected marks a request the provider understood and refused (4xx).
	ErrRejected = errors.New("provider rejected request")
	// ErrUnavailable marks transport failures, provider 5xx and an open circuit.
	ErrUnavailable = errors.New("provider unavailable")
)

//go:generate mockgen -destination=mock/mock_gateway.go -package=mock . BillingGateway

// BillingGateway abstracts the recurring-billing provider operations needed by
// the app layer. Methods return values (not pointers) so callers never share
// mutable provider state between requests.
type BillingGateway interface {
	GetSubscription(ctx context.Context, id string) (Subscription, error)
	ListSubscriptions(ctx context.Context, customerID string) ([]Subscription, error)
	CreateSubscription(ctx context.Context, in NewSubscription) (Subscription, error)
	UpdateSubscriptionItems(ctx context.Context, subscriptionID string, ops []ItemOp, proration ProrationBehavior) (Subscription, error)
	SetTrialEnd(ctx context.Context, subscriptionID string, trialEnd time.Time) (Subscription, error)

	ListSchedules(ctx context.Context, customerID string) ([]Schedule, error)
	CreateScheduleFromSubscription(ctx context.Context, subscriptionID string) (Schedule, error)
	UpdateSchedule(ctx context.Context, scheduleID string, update ScheduleUpdate) (Schedule, error)
	ReleaseSchedule(ctx context.Context, scheduleID string) error

	CreateCheckoutSession(ctx context.Context, in CheckoutSession) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)

	CreateCustomer(ctx context.Context, in NewCustomer) (string, error)
	DeleteCustomer(ctx context.Context, customerID string) error
	ListPaymentMethods(ctx context.Context, customerID string) ([]PaymentMethod, error)
	AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) error

	CreateInvoice(ctx context.Context, customerID, description string) (Invoice, error)
	AddInvoiceItem(ctx context.Context, invoiceID, customerID string, amountCents int64, description string) error
	FinalizeInvoice(ctx context.Context, invoiceID string) (Invoice, error)
	PayInvoice(ctx context.Context, invoiceID, paymentMethodID string) (Invoice, error)
}

// WebhookVerifier authenticates provider webhook payloads.
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, signature string) (Event, error)
}
