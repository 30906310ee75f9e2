package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/peshal-hash/activepieces/api/logger"
	"github.com/peshal-hash/activepieces/api/services/billing/catalog"
	billingdb "github.com/peshal-hash/activepieces/api/services/billing/db"
	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
	"github.com/peshal-hash/activepieces/api/services/billing/gateway/gatewaytest"
	"github.com/peshal-hash/activepieces/api/services/billing/giftstore"
)

var (
	testNow     = time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	periodStart = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
)

func testCatalog() *catalog.Catalog {
	return catalog.New(map[catalog.Plan]map[catalog.Cycle]catalog.Prices{
		catalog.PlanPlus: {
			catalog.CycleMonthly: {Base: "plus_m", AICredits: "plus_ai_m", UserSeats: "seat_m", Projects: "proj_m", ActiveFlows: "flow_m"},
			catalog.CycleAnnual:  {Base: "plus_y", AICredits: "plus_ai_y", UserSeats: "seat_y", Projects: "proj_y", ActiveFlows: "flow_y"},
		},
		catalog.PlanBusiness: {
			catalog.CycleMonthly: {Base: "biz_m", AICredits: "biz_ai_m", UserSeats: "seat_m", Projects: "proj_m", ActiveFlows: "flow_m"},
			catalog.CycleAnnual:  {Base: "biz_y", AICredits: "biz_ai_y", UserSeats: "seat_y", Projects: "proj_y", ActiveFlows: "flow_y"},
		},
	})
}

// fakeAccounts is an in-memory AccountStore.
type fakeAccounts struct {
	mu   sync.Mutex
	rows map[string]billingdb.Account
	err  error
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{rows: map[string]billingdb.Account{}}
}

func (f *fakeAccounts) GetAccount(_ context.Context, platformID string) (billingdb.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return billingdb.Account{}, f.err
	}
	acc, ok := f.rows[platformID]
	if !ok {
		return billingdb.Account{}, billingdb.ErrAccountNotFound
	}
	return acc, nil
}

func (f *fakeAccounts) GetAccountByCustomer(_ context.Context, customerID string) (billingdb.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return billingdb.Account{}, f.err
	}
	for _, acc := range f.rows {
		if acc.StripeCustomerID == customerID {
			return acc, nil
		}
	}
	return billingdb.Account{}, billingdb.ErrAccountNotFound
}

func (f *fakeAccounts) UpsertAccount(_ context.Context, acc billingdb.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	prev := f.rows[acc.PlatformID]
	if acc.StripeCustomerID == "" {
		acc.StripeCustomerID = prev.StripeCustomerID
	}
	if acc.StripeSubscriptionID == "" {
		acc.StripeSubscriptionID = prev.StripeSubscriptionID
	}
	if acc.Email == "" {
		acc.Email = prev.Email
	}
	f.rows[acc.PlatformID] = acc
	return nil
}

func (f *fakeAccounts) ClearSubscription(_ context.Context, platformID, subscriptionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	acc, ok := f.rows[platformID]
	if !ok || acc.StripeSubscriptionID != subscriptionID {
		return false, nil
	}
	acc.StripeSubscriptionID = ""
	f.rows[platformID] = acc
	return true, nil
}

func (f *fakeAccounts) DeleteAccount(_ context.Context, platformID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, platformID)
	return nil
}

// fakeVerifier returns a fixed event or error.
type fakeVerifier struct {
	event gw.Event
	err   error
}

func (f fakeVerifier) VerifyWebhook(_ []byte, _ string) (gw.Event, error) {
	return f.event, f.err
}

type testEnv struct {
	svc      *serviceImpl
	provider *gatewaytest.Provider
	accounts *fakeAccounts
	gifts    *giftstore.Store
	redis    *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	env := &testEnv{
		provider: gatewaytest.New(),
		accounts: newFakeAccounts(),
		gifts:    giftstore.New(client, 6*time.Hour),
		redis:    mr,
	}
	env.svc = NewService(Deps{
		Gateway:  env.provider,
		Verifier: fakeVerifier{},
		Catalog:  testCatalog(),
		Accounts: env.accounts,
		Gifts:    env.gifts,
		Log:      logger.NewNop(),
		Now:      func() time.Time { return testNow },
	}).(*serviceImpl)
	return env
}

func item(price string, qty int64) gw.SubscriptionItem {
	return gw.SubscriptionItem{PriceID: price, Quantity: qty, CurrentPeriodStart: periodStart, CurrentPeriodEnd: periodEnd}
}

// seedSubscription creates an active subscription on plan/cycle prices with
// the given addon quantities; zero quantities are left out.
func (e *testEnv) seedSubscription(base, credits, seats, projects, flows string, addons AddonTargets) gw.Subscription {
	items := []gw.SubscriptionItem{item(base, 1), item(credits, 0)}
	if addons.UserSeats > 0 {
		items = append(items, item(seats, addons.UserSeats))
	}
	if addons.Projects > 0 {
		items = append(items, item(projects, addons.Projects))
	}
	if addons.ActiveFlows > 0 {
		items = append(items, item(flows, addons.ActiveFlows))
	}
	return e.provider.AddSubscription(gw.Subscription{
		CustomerID: "cus_1",
		Status:     gw.StatusActive,
		Items:      items,
	})
}

func (e *testEnv) seedMonthly(plan catalog.Plan, addons AddonTargets) gw.Subscription {
	if plan == catalog.PlanBusiness {
		return e.seedSubscription("biz_m", "biz_ai_m", "seat_m", "proj_m", "flow_m", addons)
	}
	return e.seedSubscription("plus_m", "plus_ai_m", "seat_m", "proj_m", "flow_m", addons)
}

func priceQuantities(items []gw.SubscriptionItem) map[string]int64 {
	out := map[string]int64{}
	for _, it := range items {
		out[it.PriceID] = it.Quantity
	}
	return out
}

func phaseQuantities(items []gw.PhaseItem) map[string]int64 {
	out := map[string]int64{}
	for _, it := range items {
		if it.Quantity == nil {
			out[it.PriceID] = 0
			continue
		}
		out[it.PriceID] = *it.Quantity
	}
	return out
}
