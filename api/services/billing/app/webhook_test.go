package app

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peshal-hash/activepieces/api/services/billing/catalog"
	billingdb "github.com/peshal-hash/activepieces/api/services/billing/db"
	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
	"github.com/peshal-hash/activepieces/api/services/billing/giftstore"
)

func checkoutEvent(session gw.CompletedCheckout) gw.Event {
	return gw.Event{ID: "evt_1", Type: gw.EventCheckoutCompleted, Checkout: &session}
}

func (e *testEnv) receive(t *testing.T, event gw.Event) error {
	t.Helper()
	e.svc.verifier = fakeVerifier{event: event}
	return e.svc.HandleWebhook(context.Background(), []byte(`{}`), "t=1,v1=sig")
}

func TestWebhook_CheckoutCompletedStoresAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.gifts.Put(ctx, "plat_1", "cus_1", giftstore.Hold{TrialEnd: testNow.Add(day), Plan: catalog.PlanPlus}))

	err := env.receive(t, checkoutEvent(gw.CompletedCheckout{
		ClientReferenceID: "plat_1",
		CustomerID:        "cus_1",
		CustomerEmail:     "owner@example.com",
		SubscriptionID:    "sub_new",
		Mode:              gw.CheckoutModeSubscription,
		Metadata:          map[string]string{"kind": kindSubscription},
	}))
	require.NoError(t, err)

	acc, err := env.accounts.GetAccount(ctx, "plat_1")
	require.NoError(t, err)
	assert.Equal(t, billingdb.Account{
		PlatformID:           "plat_1",
		StripeCustomerID:     "cus_1",
		StripeSubscriptionID: "sub_new",
		Email:                "owner@example.com",
	}, acc)

	_, err = env.gifts.Get(ctx, "plat_1", "cus_1")
	assert.True(t, errors.Is(err, giftstore.ErrNotFound))
	assert.Equal(t, float64(1), testutil.ToFloat64(env.svc.metrics.WebhookEvent.WithLabelValues(gw.EventCheckoutCompleted, "ok")))
}

func TestWebhook_KeepsLivePreviousSubscription(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	prev := env.seedMonthly(catalog.PlanPlus, AddonTargets{})
	require.NoError(t, env.accounts.UpsertAccount(ctx, billingdb.Account{PlatformID: "plat_1", StripeCustomerID: "cus_1", StripeSubscriptionID: prev.ID}))

	require.NoError(t, env.receive(t, checkoutEvent(gw.CompletedCheckout{
		ClientReferenceID: "plat_1",
		CustomerID:        "cus_1",
		SubscriptionID:    "sub_new",
		Mode:              gw.CheckoutModeSubscription,
	})))

	acc, err := env.accounts.GetAccount(ctx, "plat_1")
	require.NoError(t, err)
	assert.Equal(t, prev.ID, acc.StripeSubscriptionID)
}

func TestWebhook_ReplacesCancelledPreviousSubscription(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	prev := env.provider.AddSubscription(gw.Subscription{CustomerID: "cus_1", Status: gw.StatusCanceled})
	require.NoError(t, env.accounts.UpsertAccount(ctx, billingdb.Account{PlatformID: "plat_1", StripeCustomerID: "cus_1", StripeSubscriptionID: prev.ID}))

	require.NoError(t, env.receive(t, checkoutEvent(gw.CompletedCheckout{
		ClientReferenceID: "plat_1",
		CustomerID:        "cus_1",
		SubscriptionID:    "sub_new",
		Mode:              gw.CheckoutModeSubscription,
	})))

	acc, err := env.accounts.GetAccount(ctx, "plat_1")
	require.NoError(t, err)
	assert.Equal(t, "sub_new", acc.StripeSubscriptionID)
}

func TestWebhook_AddonCheckoutKeepsSubscription(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.accounts.UpsertAccount(ctx, billingdb.Account{PlatformID: "plat_1", StripeCustomerID: "cus_1", StripeSubscriptionID: "sub_main"}))

	require.NoError(t, env.receive(t, checkoutEvent(gw.CompletedCheckout{
		ClientReferenceID: "plat_1",
		CustomerID:        "cus_1",
		SubscriptionID:    "sub_addon",
		Mode:              gw.CheckoutModeSubscription,
		Metadata:          map[string]string{"kind": kindAddon},
	})))

	acc, err := env.accounts.GetAccount(ctx, "plat_1")
	require.NoError(t, err)
	assert.Equal(t, "sub_main", acc.StripeSubscriptionID)
	assert.Zero(t, env.provider.CallCount("GetSubscription"))
}

func TestWebhook_BadEvents(t *testing.T) {
	tests := []struct {
		name    string
		session *gw.CompletedCheckout
	}{
		{"missing session", nil},
		{"missing client reference", &gw.CompletedCheckout{CustomerID: "cus_1", SubscriptionID: "sub_1", Mode: gw.CheckoutModeSubscription}},
		{"missing customer", &gw.CompletedCheckout{ClientReferenceID: "plat_1", SubscriptionID: "sub_1", Mode: gw.CheckoutModeSubscription}},
		{"missing subscription", &gw.CompletedCheckout{ClientReferenceID: "plat_1", CustomerID: "cus_1", Mode: gw.CheckoutModeSubscription}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			err := env.receive(t, gw.Event{ID: "evt_1", Type: gw.EventCheckoutCompleted, Checkout: tt.session})
			assert.True(t, errors.Is(err, ErrBadEvent))
			assert.Equal(t, CodeBadEvent, ErrorCode(err))
			_, getErr := env.accounts.GetAccount(context.Background(), "plat_1")
			assert.True(t, errors.Is(getErr, billingdb.ErrAccountNotFound))
		})
	}
}

func TestWebhook_VerificationFailure(t *testing.T) {
	env := newTestEnv(t)
	env.svc.verifier = fakeVerifier{err: errors.Mark(errors.New("signature mismatch"), gw.ErrRejected)}

	err := env.svc.HandleWebhook(context.Background(), []byte(`{}`), "bad")
	assert.True(t, errors.Is(err, ErrBadEvent))
	assert.Equal(t, float64(1), testutil.ToFloat64(env.svc.metrics.WebhookEvent.WithLabelValues("unverified", CodeBadEvent)))
}

func TestWebhook_PaymentCheckoutStoresCustomerOnly(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.receive(t, checkoutEvent(gw.CompletedCheckout{
		ClientReferenceID: "plat_1",
		CustomerID:        "cus_1",
		Mode:              gw.CheckoutModePayment,
		Metadata:          map[string]string{"kind": kindCreditPurchase},
	})))

	acc, err := env.accounts.GetAccount(context.Background(), "plat_1")
	require.NoError(t, err)
	assert.Equal(t, "cus_1", acc.StripeCustomerID)
	assert.Empty(t, acc.StripeSubscriptionID)
}

func TestWebhook_IgnoresOtherEvents(t *testing.T) {
	env := newTestEnv(t)
	assert.NoError(t, env.receive(t, gw.Event{ID: "evt_2", Type: "invoice.paid"}))
	assert.NoError(t, env.receive(t, gw.Event{ID: "evt_3", Type: gw.EventSubscriptionDeleted, Subscription: &gw.Subscription{ID: "sub_1"}}))
	assert.Empty(t, env.provider.Calls)
}

func TestWebhook_SubscriptionDeletedUnlinksAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.accounts.UpsertAccount(ctx, billingdb.Account{PlatformID: "plat_1", StripeCustomerID: "cus_1", StripeSubscriptionID: "sub_old"}))
	deleted := func(id, customer string) gw.Event {
		return gw.Event{ID: "evt_del", Type: gw.EventSubscriptionDeleted, Subscription: &gw.Subscription{ID: id, CustomerID: customer, Status: gw.StatusCanceled}}
	}

	require.NoError(t, env.receive(t, deleted("sub_other", "cus_1")))
	acc, err := env.accounts.GetAccount(ctx, "plat_1")
	require.NoError(t, err)
	assert.Equal(t, "sub_old", acc.StripeSubscriptionID, "another subscription is left alone")

	require.NoError(t, env.receive(t, deleted("sub_old", "cus_1")))
	acc, err = env.accounts.GetAccount(ctx, "plat_1")
	require.NoError(t, err)
	assert.Empty(t, acc.StripeSubscriptionID)
	assert.Equal(t, "cus_1", acc.StripeCustomerID)

	require.NoError(t, env.receive(t, deleted("sub_x", "cus_unknown")))
	assert.True(t, errors.Is(env.receive(t, gw.Event{Type: gw.EventSubscriptionDeleted}), ErrBadEvent))

	env.accounts.err = errors.New("connection refused")
	env.accounts.rows["plat_1"] = billingdb.Account{PlatformID: "plat_1", StripeCustomerID: "cus_1", StripeSubscriptionID: "sub_new"}
	assert.True(t, errors.Is(env.receive(t, deleted("sub_new", "cus_1")), ErrDatabase))
}

func TestPurgeCustomer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.provider.AddCustomer("cus_1", gw.NewCustomer{})
	sub := env.seedMonthly(catalog.PlanPlus, AddonTargets{})
	require.NoError(t, env.accounts.UpsertAccount(ctx, billingdb.Account{PlatformID: "plat_1", StripeCustomerID: "cus_1", StripeSubscriptionID: sub.ID}))
	require.NoError(t, env.gifts.Put(ctx, "plat_1", "cus_1", giftstore.Hold{Plan: catalog.PlanPlus}))

	require.NoError(t, env.svc.PurgeCustomer(ctx, "plat_1"))

	assert.Equal(t, gw.StatusCanceled, env.provider.Subscription(sub.ID).Status)
	_, err := env.accounts.GetAccount(ctx, "plat_1")
	assert.True(t, errors.Is(err, billingdb.ErrAccountNotFound))
	assert.False(t, env.redis.Exists(giftstore.Key("plat_1", "cus_1")))

	// a customer already removed on the provider side still purges locally
	require.NoError(t, env.accounts.UpsertAccount(ctx, billingdb.Account{PlatformID: "plat_2", StripeCustomerID: "cus_gone"}))
	require.NoError(t, env.svc.PurgeCustomer(ctx, "plat_2"))

	assert.True(t, errors.Is(env.svc.PurgeCustomer(ctx, "plat_3"), ErrNotFound))
}

func TestAttachPaymentMethod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.accounts.UpsertAccount(ctx, billingdb.Account{PlatformID: "plat_1", StripeCustomerID: "cus_1"}))

	require.NoError(t, env.svc.AttachPaymentMethod(ctx, "plat_1", "pm_1"))
	assert.Equal(t, "pm_1", env.provider.PaymentMethods["cus_1"][0].ID)
	assert.True(t, errors.Is(env.svc.AttachPaymentMethod(ctx, "plat_1", ""), ErrValidation))
}
