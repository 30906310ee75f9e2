package stripegw

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
)

func (c *client) CreateCheckoutSession(ctx context.Context, in gw.CheckoutSession) (string, error) {
	params := &stripe.CheckoutSessionCreateParams{
		Mode:       stripe.String(string(in.Mode)),
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
		Metadata:   in.Metadata,
	}
	if in.CustomerID != "" {
		params.Customer = stripe.String(in.CustomerID)
	}
	if in.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(in.ClientReferenceID)
	}
	if in.Mode == gw.CheckoutModeSetup && in.Currency != "" {
		// Required by Stripe even for setup mode
		params.Currency = stripe.String(in.Currency)
	}
	for _, line := range in.Lines {
		if line.PriceID != "" {
			params.LineItems = append(params.LineItems, &stripe.CheckoutSessionCreateLineItemParams{
				Price:    stripe.String(line.PriceID),
				Quantity: line.Quantity,
			})
			continue
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionCreateLineItemParams{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency:   stripe.String(in.Currency),
				UnitAmount: stripe.Int64(line.AmountCents),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
			},
			Quantity: stripe.Int64(1),
		})
	}
	if in.Mode == gw.CheckoutModeSubscription {
		params.SubscriptionData = &stripe.CheckoutSessionCreateSubscriptionDataParams{
			Metadata: in.Metadata,
		}
		if !in.TrialEnd.IsZero() {
			params.SubscriptionData.TrialEnd = stripe.Int64(in.TrialEnd.Unix())
		}
	}

	var url string
	err := c.guard.do(ctx, "create checkout session", func() error {
		sess, err := c.sc.V1CheckoutSessions.Create(ctx, params)
		if err != nil {
			return err
		}
		url = sess.URL
		return nil
	})
	return url, err
}

func (c *client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionCreateParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	var url string
	err := c.guard.do(ctx, "create portal session", func() error {
		sess, err := c.sc.V1BillingPortalSessions.Create(ctx, params)
		if err != nil {
			return err
		}
		url = sess.URL
		return nil
	})
	return url, err
}

// VerifyWebhook checks the signature and decodes the events this service handles.
// The account API version may trail the SDK's; the mismatch is ignored because
// only stable fields are read.
func (c *client) VerifyWebhook(payload []byte, signature string) (gw.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return gw.Event{}, errors.Mark(errors.Wrap(err, "stripe webhook signature verification failed"), gw.ErrRejected)
	}
	out := gw.Event{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil {
		return out, nil
	}
	switch out.Type {
	case gw.EventCheckoutCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return gw.Event{}, errors.Mark(errors.Wrap(err, "error unmarshaling into CheckoutSession"), gw.ErrRejected)
		}
		done := &gw.CompletedCheckout{
			ClientReferenceID: session.ClientReferenceID,
			Mode:              gw.CheckoutMode(session.Mode),
			Metadata:          session.Metadata,
		}
		if session.Customer != nil {
			done.CustomerID = session.Customer.ID
		}
		if session.CustomerDetails != nil {
			done.CustomerEmail = session.CustomerDetails.Email
		}
		if session.Subscription != nil {
			done.SubscriptionID = session.Subscription.ID
		}
		out.Checkout = done
	case gw.EventSubscriptionDeleted, gw.EventSubscriptionUpdated:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return gw.Event{}, errors.Mark(errors.Wrap(err, "error unmarshaling into Subscription"), gw.ErrRejected)
		}
		converted := toSubscription(&sub)
		out.Subscription = &converted
	}
	return out, nil
}
