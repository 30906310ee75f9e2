// Package gatewaytest provides an in-memory billing provider for tests.
package gatewaytest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
)

// Provider is a stateful fake of gw.BillingGateway. Subscriptions and schedules
// behave like the real provider closely enough to check end states; every
// call is recorded by method name.
type Provider struct {
	mu sync.Mutex
	seq int

	subs      map[string]*gw.Subscription
	schedules []*gw.Schedule

	// Failures returns the given error the next time the named method is called.
	Failures map[string]error

	Calls           []string
	Checkouts       []gw.CheckoutSession
	ItemUpdates     [][]gw.ItemOp
	Prorations      []gw.ProrationBehavior
	Customers       map[string]gw.NewCustomer
	PaymentMethods  map[string][]gw.PaymentMethod
	Invoices        map[string]*gw.Invoice
	InvoiceItems    map[string][]int64
	PortalCustomers []string
}

// New returns an empty provider.
func New() *Provider {
	return &Provider{
		subs:           map[string]*gw.Subscription{},
		Failures:       map[string]error{},
		Customers:      map[string]gw.NewCustomer{},
		PaymentMethods: map[string][]gw.PaymentMethod{},
		Invoices:       map[string]*gw.Invoice{},
		InvoiceItems:   map[string][]int64{},
	}
}

var _ gw.BillingGateway = (*Provider)(nil)

// Reject returns an error marked the way the real adapter marks a 4xx.
func Reject(msg string) error {
	return errors.Mark(errors.New(msg), gw.ErrRejected)
}

// Unavailable returns an error marked the way the real adapter marks a 5xx.
func Unavailable(msg string) error {
	return errors.Mark(errors.New(msg), gw.ErrUnavailable)
}

func (p *Provider) nextID(prefix string) string {
	p.seq++
	return fmt.Sprintf("%s_%d", prefix, p.seq)
}

func (p *Provider) enter(method string) error {
	p.Calls = append(p.Calls, method)
	if err, ok := p.Failures[method]; ok {
		delete(p.Failures, method)
		return err
	}
	return nil
}

// CallCount returns how many times method was invoked.
func (p *Provider) CallCount(method string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.Calls {
		if c == method {
			n++
		}
	}
	return n
}

// AddSubscription seeds a subscription. Items without an ID get one.
func (p *Provider) AddSubscription(sub gw.Subscription) gw.Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()
	if sub.ID == "" {
		sub.ID = p.nextID("sub")
	}
	for i := range sub.Items {
		if sub.Items[i].ID == "" {
			sub.Items[i].ID = p.nextID("si")
		}
	}
	cp := cloneSubscription(sub)
	p.subs[sub.ID] = &cp
	return cloneSubscription(cp)
}

// AddSchedule seeds a schedule, for example a stale one left by an earlier failure.
func (p *Provider) AddSchedule(s gw.Schedule) gw.Schedule {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s.ID == "" {
		s.ID = p.nextID("sub_sched")
	}
	cp := cloneSchedule(s)
	p.schedules = append(p.schedules, &cp)
	if sub, ok := p.subs[s.SubscriptionID]; ok && s.Status.Updatable() {
		sub.ScheduleID = s.ID
	}
	return cloneSchedule(cp)
}

// Subscription returns the current state of a subscription.
func (p *Provider) Subscription(id string) gw.Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()
	if sub, ok := p.subs[id]; ok {
		return cloneSubscription(*sub)
	}
	return gw.Subscription{}
}

// Schedules returns every schedule in creation order.
func (p *Provider) Schedules() []gw.Schedule {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]gw.Schedule, 0, len(p.schedules))
	for _, s := range p.schedules {
		out = append(out, cloneSchedule(*s))
	}
	return out
}

// RelevantSchedules returns schedules that are still active or not started.
func (p *Provider) RelevantSchedules() []gw.Schedule {
	var out []gw.Schedule
	for _, s := range p.Schedules() {
		if s.Status.Updatable() {
			out = append(out, s)
		}
	}
	return out
}

func (p *Provider) GetSubscription(_ context.Context, id string) (gw.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("GetSubscription"); err != nil {
		return gw.Subscription{}, err
	}
	sub, ok := p.subs[id]
	if !ok {
		return gw.Subscription{}, Reject("No such subscription: " + id)
	}
	return cloneSubscription(*sub), nil
}

func (p *Provider) ListSubscriptions(_ context.Context, customerID string) ([]gw.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("ListSubscriptions"); err != nil {
		return nil, err
	}
	var out []gw.Subscription
	for _, sub := range p.subs {
		if sub.CustomerID == customerID {
			out = append(out, cloneSubscription(*sub))
		}
	}
	return out, nil
}

func (p *Provider) CreateSubscription(_ context.Context, in gw.NewSubscription) (gw.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("CreateSubscription"); err != nil {
		return gw.Subscription{}, err
	}
	now := time.Now().UTC()
	sub := gw.Subscription{
		ID:         p.nextID("sub"),
		CustomerID: in.CustomerID,
		Status:     gw.StatusActive,
		TrialEnd:   in.TrialEnd,
	}
	if !in.TrialEnd.IsZero() {
		sub.Status = gw.StatusTrialing
	}
	for _, it := range in.Items {
		sub.Items = append(sub.Items, gw.SubscriptionItem{
			ID:                 p.nextID("si"),
			PriceID:            it.PriceID,
			Quantity:           quantity(it.Quantity),
			CurrentPeriodStart: now,
			CurrentPeriodEnd:   now.AddDate(0, 1, 0),
		})
	}
	p.subs[sub.ID] = &sub
	return cloneSubscription(sub), nil
}

func (p *Provider) UpdateSubscriptionItems(_ context.Context, subscriptionID string, ops []gw.ItemOp, proration gw.ProrationBehavior) (gw.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("UpdateSubscriptionItems"); err != nil {
		return gw.Subscription{}, err
	}
	sub, ok := p.subs[subscriptionID]
	if !ok {
		return gw.Subscription{}, Reject("No such subscription: " + subscriptionID)
	}
	p.ItemUpdates = append(p.ItemUpdates, append([]gw.ItemOp(nil), ops...))
	p.Prorations = append(p.Prorations, proration)

	next := append([]gw.SubscriptionItem(nil), sub.Items...)
	var start, end time.Time
	if len(next) > 0 {
		start, end = next[0].CurrentPeriodStart, next[0].CurrentPeriodEnd
	}
	for _, op := range ops {
		if op.ID == "" {
			if op.Deleted {
				return gw.Subscription{}, Reject("cannot delete an item without id")
			}
			next = append(next, gw.SubscriptionItem{
				ID:                 p.nextID("si"),
				PriceID:            op.PriceID,
				Quantity:           quantity(op.Quantity),
				CurrentPeriodStart: start,
				CurrentPeriodEnd:   end,
			})
			continue
		}
		idx := -1
		for i := range next {
			if next[i].ID == op.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return gw.Subscription{}, Reject("No such subscription item: " + op.ID)
		}
		if op.Deleted {
			next = append(next[:idx], next[idx+1:]...)
			continue
		}
		if op.Quantity != nil && *op.Quantity == 0 {
			return gw.Subscription{}, Reject("quantity must be positive")
		}
		if op.PriceID != "" {
			next[idx].PriceID = op.PriceID
		}
		if op.Quantity != nil {
			next[idx].Quantity = *op.Quantity
		}
	}
	sub.Items = next
	return cloneSubscription(*sub), nil
}

func (p *Provider) SetTrialEnd(_ context.Context, subscriptionID string, trialEnd time.Time) (gw.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("SetTrialEnd"); err != nil {
		return gw.Subscription{}, err
	}
	sub, ok := p.subs[subscriptionID]
	if !ok {
		return gw.Subscription{}, Reject("No such subscription: " + subscriptionID)
	}
	sub.TrialEnd = trialEnd
	return cloneSubscription(*sub), nil
}

func (p *Provider) ListSchedules(_ context.Context, customerID string) ([]gw.Schedule, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("ListSchedules"); err != nil {
		return nil, err
	}
	var out []gw.Schedule
	for _, s := range p.schedules {
		if s.CustomerID == customerID {
			out = append(out, cloneSchedule(*s))
		}
	}
	return out, nil
}

func (p *Provider) CreateScheduleFromSubscription(_ context.Context, subscriptionID string) (gw.Schedule, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("CreateScheduleFromSubscription"); err != nil {
		return gw.Schedule{}, err
	}
	sub, ok := p.subs[subscriptionID]
	if !ok {
		return gw.Schedule{}, Reject("No such subscription: " + subscriptionID)
	}
	if sub.ScheduleID != "" {
		return gw.Schedule{}, Reject("subscription already attached to a schedule")
	}
	phase := gw.Phase{}
	for _, it := range sub.Items {
		q := it.Quantity
		phase.Items = append(phase.Items, gw.PhaseItem{PriceID: it.PriceID, Quantity: &q})
		phase.Start, phase.End = it.CurrentPeriodStart, it.CurrentPeriodEnd
	}
	s := &gw.Schedule{
		ID:             p.nextID("sub_sched"),
		SubscriptionID: sub.ID,
		CustomerID:     sub.CustomerID,
		Status:         gw.ScheduleActive,
		EndBehavior:    gw.EndBehaviorRelease,
		Phases:         []gw.Phase{phase},
	}
	p.schedules = append(p.schedules, s)
	sub.ScheduleID = s.ID
	return cloneSchedule(*s), nil
}

func (p *Provider) UpdateSchedule(_ context.Context, scheduleID string, update gw.ScheduleUpdate) (gw.Schedule, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("UpdateSchedule"); err != nil {
		return gw.Schedule{}, err
	}
	s := p.schedule(scheduleID)
	if s == nil {
		return gw.Schedule{}, Reject("No such subscription schedule: " + scheduleID)
	}
	if !s.Status.Updatable() {
		return gw.Schedule{}, Reject("schedule is " + string(s.Status))
	}
	if len(update.Phases) == 0 {
		return gw.Schedule{}, Reject("phases must not be empty")
	}
	s.Phases = clonePhases(update.Phases)
	s.EndBehavior = update.EndBehavior
	return cloneSchedule(*s), nil
}

func (p *Provider) ReleaseSchedule(_ context.Context, scheduleID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("ReleaseSchedule"); err != nil {
		return err
	}
	s := p.schedule(scheduleID)
	if s == nil {
		return Reject("No such subscription schedule: " + scheduleID)
	}
	if !s.Status.Updatable() {
		return Reject("schedule is " + string(s.Status))
	}
	s.Status = gw.ScheduleReleased
	if sub, ok := p.subs[s.SubscriptionID]; ok && sub.ScheduleID == s.ID {
		sub.ScheduleID = ""
	}
	return nil
}

func (p *Provider) schedule(id string) *gw.Schedule {
	for _, s := range p.schedules {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (p *Provider) CreateCheckoutSession(_ context.Context, in gw.CheckoutSession) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("CreateCheckoutSession"); err != nil {
		return "", err
	}
	p.Checkouts = append(p.Checkouts, in)
	return "https://checkout.test/" + p.nextID("cs"), nil
}

func (p *Provider) CreatePortalSession(_ context.Context, customerID, returnURL string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("CreatePortalSession"); err != nil {
		return "", err
	}
	p.PortalCustomers = append(p.PortalCustomers, customerID)
	return "https://billing.test/" + customerID + "?return=" + returnURL, nil
}

func (p *Provider) CreateCustomer(_ context.Context, in gw.NewCustomer) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("CreateCustomer"); err != nil {
		return "", err
	}
	id := p.nextID("cus")
	p.Customers[id] = in
	return id, nil
}

func (p *Provider) DeleteCustomer(_ context.Context, customerID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("DeleteCustomer"); err != nil {
		return err
	}
	if _, ok := p.Customers[customerID]; !ok {
		return Reject("No such customer: " + customerID)
	}
	delete(p.Customers, customerID)
	for _, sub := range p.subs {
		if sub.CustomerID == customerID {
			sub.Status = gw.StatusCanceled
		}
	}
	return nil
}

// AddCustomer seeds a provider customer with the given id.
func (p *Provider) AddCustomer(id string, in gw.NewCustomer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Customers[id] = in
}

func (p *Provider) ListPaymentMethods(_ context.Context, customerID string) ([]gw.PaymentMethod, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("ListPaymentMethods"); err != nil {
		return nil, err
	}
	return append([]gw.PaymentMethod(nil), p.PaymentMethods[customerID]...), nil
}

func (p *Provider) AttachPaymentMethod(_ context.Context, paymentMethodID, customerID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("AttachPaymentMethod"); err != nil {
		return err
	}
	p.PaymentMethods[customerID] = append(p.PaymentMethods[customerID], gw.PaymentMethod{ID: paymentMethodID, Type: "card"})
	return nil
}

func (p *Provider) CreateInvoice(_ context.Context, customerID, description string) (gw.Invoice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("CreateInvoice"); err != nil {
		return gw.Invoice{}, err
	}
	inv := &gw.Invoice{ID: p.nextID("in"), Status: "draft"}
	p.Invoices[inv.ID] = inv
	return *inv, nil
}

func (p *Provider) AddInvoiceItem(_ context.Context, invoiceID, customerID string, amountCents int64, description string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("AddInvoiceItem"); err != nil {
		return err
	}
	inv, ok := p.Invoices[invoiceID]
	if !ok {
		return Reject("No such invoice: " + invoiceID)
	}
	p.InvoiceItems[invoiceID] = append(p.InvoiceItems[invoiceID], amountCents)
	inv.Total += amountCents
	return nil
}

func (p *Provider) FinalizeInvoice(_ context.Context, invoiceID string) (gw.Invoice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("FinalizeInvoice"); err != nil {
		return gw.Invoice{}, err
	}
	inv, ok := p.Invoices[invoiceID]
	if !ok {
		return gw.Invoice{}, Reject("No such invoice: " + invoiceID)
	}
	inv.Status = "open"
	return *inv, nil
}

func (p *Provider) PayInvoice(_ context.Context, invoiceID, paymentMethodID string) (gw.Invoice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("PayInvoice"); err != nil {
		return gw.Invoice{}, err
	}
	inv, ok := p.Invoices[invoiceID]
	if !ok {
		return gw.Invoice{}, Reject("No such invoice: " + invoiceID)
	}
	if inv.Status != "open" {
		return gw.Invoice{}, Reject("invoice is not open")
	}
	inv.Status = "paid"
	inv.Paid = true
	return *inv, nil
}

func quantity(q *int64) int64 {
	if q == nil {
		return 0
	}
	return *q
}

func cloneSubscription(s gw.Subscription) gw.Subscription {
	s.Items = append([]gw.SubscriptionItem(nil), s.Items...)
	return s
}

func cloneSchedule(s gw.Schedule) gw.Schedule {
	s.Phases = clonePhases(s.Phases)
	return s
}

func clonePhases(phases []gw.Phase) []gw.Phase {
	out := make([]gw.Phase, 0, len(phases))
	for _, ph := range phases {
		items := make([]gw.PhaseItem, 0, len(ph.Items))
		for _, it := range ph.Items {
			if it.Quantity != nil {
				q := *it.Quantity
				it.Quantity = &q
			}
			items = append(items, it)
		}
		ph.Items = items
		out = append(out, ph)
	}
	return out
}
