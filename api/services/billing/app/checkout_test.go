package app

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peshal-hash/activepieces/api/services/billing/catalog"
	billingdb "github.com/peshal-hash/activepieces/api/services/billing/db"
	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
	"github.com/peshal-hash/activepieces/api/services/billing/gateway/gatewaytest"
	"github.com/peshal-hash/activepieces/api/services/billing/giftstore"
)

const (
	successURL = "https://app.example.com/billing/success"
	cancelURL  = "https://app.example.com/billing"
)

func TestCreateSubscriptionCheckout_CreatesCustomerAndLines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	url, err := env.svc.CreateSubscriptionCheckout(ctx, CheckoutRequest{
		PlatformID: "plat_1",
		Email:      "owner@example.com",
		Plan:       catalog.PlanBusiness,
		Cycle:      catalog.CycleAnnual,
		Addons:     AddonTargets{UserSeats: 3},
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	acc, err := env.accounts.GetAccount(ctx, "plat_1")
	require.NoError(t, err)
	assert.NotEmpty(t, acc.StripeCustomerID)
	assert.Equal(t, "owner@example.com", env.provider.Customers[acc.StripeCustomerID].Email)

	require.Len(t, env.provider.Checkouts, 1)
	session := env.provider.Checkouts[0]
	assert.Equal(t, gw.CheckoutModeSubscription, session.Mode)
	assert.Equal(t, "plat_1", session.ClientReferenceID)
	assert.Equal(t, acc.StripeCustomerID, session.CustomerID)
	assert.True(t, session.TrialEnd.IsZero())
	require.Len(t, session.Lines, 3)
	assert.Equal(t, "biz_y", session.Lines[0].PriceID)
	assert.Equal(t, "biz_ai_y", session.Lines[1].PriceID)
	assert.Nil(t, session.Lines[1].Quantity)
	assert.Equal(t, "seat_y", session.Lines[2].PriceID)
	assert.Equal(t, int64(3), *session.Lines[2].Quantity)
}

func TestCreateSubscriptionCheckout_ReusesCustomerAndAppliesGiftHold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.accounts.UpsertAccount(ctx, billingdb.Account{PlatformID: "plat_1", StripeCustomerID: "cus_9"}))
	trialEnd := testNow.Add(14 * 24 * time.Hour)
	require.NoError(t, env.gifts.Put(ctx, "plat_1", "cus_9", giftstore.Hold{TrialEnd: trialEnd, Plan: catalog.PlanBusiness}))

	_, err := env.svc.CreateSubscriptionCheckout(ctx, CheckoutRequest{
		PlatformID: "plat_1",
		Plan:       catalog.PlanPlus,
		Cycle:      catalog.CycleMonthly,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	})
	require.NoError(t, err)

	assert.Zero(t, env.provider.CallCount("CreateCustomer"))
	assert.True(t, trialEnd.Equal(env.provider.Checkouts[0].TrialEnd))
	// the hold is only consumed once checkout completes
	_, err = env.gifts.Get(ctx, "plat_1", "cus_9")
	assert.NoError(t, err)
}

func TestCreateSubscriptionCheckout_GiftStoreDownDoesNotBlock(t *testing.T) {
	env := newTestEnv(t)
	env.redis.Close()

	_, err := env.svc.CreateSubscriptionCheckout(context.Background(), CheckoutRequest{
		PlatformID: "plat_1",
		Plan:       catalog.PlanPlus,
		Cycle:      catalog.CycleMonthly,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	})
	require.NoError(t, err)
	assert.True(t, env.provider.Checkouts[0].TrialEnd.IsZero())
}

func TestCreateSubscriptionCheckout_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.CreateSubscriptionCheckout(ctx, CheckoutRequest{PlatformID: "plat_1", Plan: catalog.PlanPlus, Cycle: catalog.CycleMonthly})
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = env.svc.CreateSubscriptionCheckout(ctx, CheckoutRequest{
		PlatformID: "plat_1", Plan: catalog.PlanEnterprise, Cycle: catalog.CycleMonthly,
		SuccessURL: successURL, CancelURL: cancelURL,
	})
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Zero(t, env.provider.CallCount("CreateCustomer"))

	env.provider.Failures["CreateCheckoutSession"] = gatewaytest.Reject("No such price")
	_, err = env.svc.CreateSubscriptionCheckout(ctx, CheckoutRequest{
		PlatformID: "plat_1", Plan: catalog.PlanPlus, Cycle: catalog.CycleMonthly,
		SuccessURL: successURL, CancelURL: cancelURL,
	})
	assert.Equal(t, CodeSession, ErrorCode(err))
}

func TestCreateAddonCheckout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.CreateAddonCheckout(ctx, AddonCheckoutRequest{
		PlatformID: "plat_1", Plan: catalog.PlanPlus, Cycle: catalog.CycleMonthly,
		SuccessURL: successURL, CancelURL: cancelURL,
	})
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = env.svc.CreateAddonCheckout(ctx, AddonCheckoutRequest{
		PlatformID: "plat_1", Plan: catalog.PlanPlus, Cycle: catalog.CycleMonthly,
		Addons:     AddonTargets{Projects: 2, ActiveFlows: 10},
		SuccessURL: successURL, CancelURL: cancelURL,
	})
	require.NoError(t, err)
	session := env.provider.Checkouts[0]
	assert.Equal(t, kindAddon, session.Metadata["kind"])
	require.Len(t, session.Lines, 2)
	assert.Equal(t, "proj_m", session.Lines[0].PriceID)
	assert.Equal(t, "flow_m", session.Lines[1].PriceID)
	assert.Equal(t, int64(10), *session.Lines[1].Quantity)
}

func TestCreateCreditPurchaseCheckout(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.CreateCreditPurchaseCheckout(context.Background(), CreditPurchaseRequest{
		PlatformID: "plat_1",
		AmountUSD:  decimal.RequireFromString("25.50"),
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	})
	require.NoError(t, err)

	session := env.provider.Checkouts[0]
	assert.Equal(t, gw.CheckoutModePayment, session.Mode)
	assert.Equal(t, "usd", session.Currency)
	require.Len(t, session.Lines, 1)
	assert.Equal(t, int64(2550), session.Lines[0].AmountCents)
	assert.Empty(t, session.Lines[0].PriceID)
	assert.Equal(t, "2550", session.Metadata["amount_cents"])
}

func TestCreateAutoTopUpSetup(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.CreateAutoTopUpSetup(context.Background(), "plat_1", successURL, cancelURL)
	require.NoError(t, err)
	session := env.provider.Checkouts[0]
	assert.Equal(t, gw.CheckoutModeSetup, session.Mode)
	assert.Empty(t, session.Lines)

	_, err = env.svc.CreateAutoTopUpSetup(context.Background(), "", successURL, cancelURL)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestCreateBillingPortal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.CreateBillingPortal(ctx, "plat_1", cancelURL)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, env.accounts.UpsertAccount(ctx, billingdb.Account{PlatformID: "plat_1", StripeCustomerID: "cus_1"}))
	url, err := env.svc.CreateBillingPortal(ctx, "plat_1", cancelURL)
	require.NoError(t, err)
	assert.Contains(t, url, "cus_1")
	assert.Equal(t, []string{"cus_1"}, env.provider.PortalCustomers)
}
