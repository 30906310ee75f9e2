package stripegw

import (
	"context"
	"time"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/peshal-hash/activepieces/api/logger"
	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
)

// client is the Stripe SDK-backed implementation of the gateway. A single
// instance is built at bootstrap and shared; it holds no per-request state.
type client struct {
	sc            *stripe.Client
	guard         *guard
	webhookSecret string
	log           *logger.Logger
}

// New returns a BillingGateway backed by the official Stripe SDK.
func New(secretKey, webhookSecret string, opts Options, log *logger.Logger) *client {
	return &client{
		sc:            stripe.NewClient(secretKey),
		guard:         newGuard(opts),
		webhookSecret: webhookSecret,
		log:           log,
	}
}

var (
	_ gw.BillingGateway  = (*client)(nil)
	_ gw.WebhookVerifier = (*client)(nil)
)

func (c *client) GetSubscription(ctx context.Context, id string) (gw.Subscription, error) {
	params := &stripe.SubscriptionRetrieveParams{
		Expand: []*string{
			stripe.String("customer"),
			stripe.String("items.data.price.product"),
		},
	}
	var out gw.Subscription
	err := c.guard.do(ctx, "retrieve subscription", func() error {
		sub, err := c.sc.V1Subscriptions.Retrieve(ctx, id, params)
		if err != nil {
			return err
		}
		out = toSubscription(sub)
		return nil
	})
	return out, err
}

func (c *client) ListSubscriptions(ctx context.Context, customerID string) ([]gw.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	var out []gw.Subscription
	err := c.guard.do(ctx, "list subscriptions", func() error {
		for sub, err := range c.sc.V1Subscriptions.List(ctx, params) {
			if err != nil {
				return err
			}
			out = append(out, toSubscription(sub))
		}
		return nil
	})
	return out, err
}

func (c *client) CreateSubscription(ctx context.Context, in gw.NewSubscription) (gw.Subscription, error) {
	params := &stripe.SubscriptionCreateParams{
		Customer: stripe.String(in.CustomerID),
		Metadata: in.Metadata,
	}
	for _, it := range in.Items {
		params.Items = append(params.Items, &stripe.SubscriptionCreateItemParams{
			Price:    stripe.String(it.PriceID),
			Quantity: it.Quantity,
		})
	}
	if !in.TrialEnd.IsZero() {
		params.TrialEnd = stripe.Int64(in.TrialEnd.Unix())
	}
	var out gw.Subscription
	err := c.guard.do(ctx, "create subscription", func() error {
		sub, err := c.sc.V1Subscriptions.Create(ctx, params)
		if err != nil {
			return err
		}
		out = toSubscription(sub)
		return nil
	})
	return out, err
}

func (c *client) UpdateSubscriptionItems(ctx context.Context, subscriptionID string, ops []gw.ItemOp, proration gw.ProrationBehavior) (gw.Subscription, error) {
	params := &stripe.SubscriptionUpdateParams{
		ProrationBehavior: stripe.String(string(proration)),
	}
	for _, op := range ops {
		item := &stripe.SubscriptionUpdateItemParams{}
		if op.ID != "" {
			item.ID = stripe.String(op.ID)
		}
		if op.Deleted {
			item.Deleted = stripe.Bool(true)
			if op.ClearUsage {
				item.ClearUsage = stripe.Bool(true)
			}
			params.Items = append(params.Items, item)
			continue
		}
		if op.PriceID != "" {
			item.Price = stripe.String(op.PriceID)
		}
		item.Quantity = op.Quantity
		params.Items = append(params.Items, item)
	}
	var out gw.Subscription
	err := c.guard.do(ctx, "update subscription items", func() error {
		sub, err := c.sc.V1Subscriptions.Update(ctx, subscriptionID, params)
		if err != nil {
			return err
		}
		out = toSubscription(sub)
		return nil
	})
	return out, err
}

func (c *client) SetTrialEnd(ctx context.Context, subscriptionID string, trialEnd time.Time) (gw.Subscription, error) {
	params := &stripe.SubscriptionUpdateParams{
		TrialEnd:          stripe.Int64(trialEnd.Unix()),
		ProrationBehavior: stripe.String(string(gw.ProrationNone)),
	}
	var out gw.Subscription
	err := c.guard.do(ctx, "extend trial", func() error {
		sub, err := c.sc.V1Subscriptions.Update(ctx, subscriptionID, params)
		if err != nil {
			return err
		}
		out = toSubscription(sub)
		return nil
	})
	return out, err
}

func (c *client) CreateCustomer(ctx context.Context, in gw.NewCustomer) (string, error) {
	params := &stripe.CustomerCreateParams{Metadata: in.Metadata}
	if in.Email != "" {
		params.Email = stripe.String(in.Email)
	}
	if in.Name != "" {
		params.Name = stripe.String(in.Name)
	}
	var id string
	err := c.guard.do(ctx, "create customer", func() error {
		cust, err := c.sc.V1Customers.Create(ctx, params)
		if err != nil {
			return err
		}
		id = cust.ID
		return nil
	})
	return id, err
}

func (c *client) DeleteCustomer(ctx context.Context, customerID string) error {
	return c.guard.do(ctx, "delete customer", func() error {
		_, err := c.sc.V1Customers.Delete(ctx, customerID, &stripe.CustomerDeleteParams{})
		return err
	})
}

func (c *client) ListPaymentMethods(ctx context.Context, customerID string) ([]gw.PaymentMethod, error) {
	var out []gw.PaymentMethod
	err := c.guard.do(ctx, "list payment methods", func() error {
		cust, err := c.sc.V1Customers.Retrieve(ctx, customerID, nil)
		if err != nil {
			return err
		}
		defaultID := ""
		if cust.InvoiceSettings != nil && cust.InvoiceSettings.DefaultPaymentMethod != nil {
			defaultID = cust.InvoiceSettings.DefaultPaymentMethod.ID
		}
		params := &stripe.PaymentMethodListParams{Customer: stripe.String(customerID)}
		for pm, err := range c.sc.V1PaymentMethods.List(ctx, params) {
			if err != nil {
				return err
			}
			out = append(out, gw.PaymentMethod{ID: pm.ID, Type: string(pm.Type), Default: pm.ID == defaultID})
		}
		return nil
	})
	return out, err
}

func (c *client) AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) error {
	return c.guard.do(ctx, "attach payment method", func() error {
		_, err := c.sc.V1PaymentMethods.Attach(ctx, paymentMethodID, &stripe.PaymentMethodAttachParams{
			Customer: stripe.String(customerID),
		})
		return err
	})
}

func unix(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

func toSubscription(s *stripe.Subscription) gw.Subscription {
	if s == nil {
		return gw.Subscription{}
	}
	out := gw.Subscription{
		ID:       s.ID,
		Status:   gw.SubscriptionStatus(s.Status),
		CancelAt: unix(s.CancelAt),
		TrialEnd: unix(s.TrialEnd),
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if s.Schedule != nil {
		out.ScheduleID = s.Schedule.ID
	}
	if s.Items != nil {
		for _, it := range s.Items.Data {
			item := gw.SubscriptionItem{
				ID:                 it.ID,
				Quantity:           it.Quantity,
				CurrentPeriodStart: unix(it.CurrentPeriodStart),
				CurrentPeriodEnd:   unix(it.CurrentPeriodEnd),
			}
			if it.Price != nil {
				item.PriceID = it.Price.ID
			}
			out.Items = append(out.Items, item)
		}
	}
	return out
}
