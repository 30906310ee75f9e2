package stripegw

import (
	"context"

	stripe "github.com/stripe/stripe-go/v82"

	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
)

func (c *client) ListSchedules(ctx context.Context, customerID string) ([]gw.Schedule, error) {
	params := &stripe.SubscriptionScheduleListParams{Customer: stripe.String(customerID)}
	var out []gw.Schedule
	err := c.guard.do(ctx, "list schedules", func() error {
		for s, err := range c.sc.V1SubscriptionSchedules.List(ctx, params) {
			if err != nil {
				return err
			}
			out = append(out, toSchedule(s))
		}
		return nil
	})
	return out, err
}

func (c *client) CreateScheduleFromSubscription(ctx context.Context, subscriptionID string) (gw.Schedule, error) {
	params := &stripe.SubscriptionScheduleCreateParams{
		FromSubscription: stripe.String(subscriptionID),
	}
	var out gw.Schedule
	err := c.guard.do(ctx, "create schedule", func() error {
		s, err := c.sc.V1SubscriptionSchedules.Create(ctx, params)
		if err != nil {
			return err
		}
		out = toSchedule(s)
		return nil
	})
	return out, err
}

func (c *client) UpdateSchedule(ctx context.Context, scheduleID string, update gw.ScheduleUpdate) (gw.Schedule, error) {
	params := &stripe.SubscriptionScheduleUpdateParams{
		EndBehavior: stripe.String(string(update.EndBehavior)),
	}
	for _, p := range update.Phases {
		phase := &stripe.SubscriptionScheduleUpdatePhaseParams{
			StartDate: stripe.Int64(p.Start.Unix()),
		}
		if !p.End.IsZero() {
			phase.EndDate = stripe.Int64(p.End.Unix())
		}
		for _, it := range p.Items {
			phase.Items = append(phase.Items, &stripe.SubscriptionScheduleUpdatePhaseItemParams{
				Price:    stripe.String(it.PriceID),
				Quantity: it.Quantity,
			})
		}
		params.Phases = append(params.Phases, phase)
	}
	var out gw.Schedule
	err := c.guard.do(ctx, "update schedule", func() error {
		s, err := c.sc.V1SubscriptionSchedules.Update(ctx, scheduleID, params)
		if err != nil {
			return err
		}
		out = toSchedule(s)
		return nil
	})
	return out, err
}

func (c *client) ReleaseSchedule(ctx context.Context, scheduleID string) error {
	return c.guard.do(ctx, "release schedule", func() error {
		_, err := c.sc.V1SubscriptionSchedules.Release(ctx, scheduleID, &stripe.SubscriptionScheduleReleaseParams{})
		return err
	})
}

func toSchedule(s *stripe.SubscriptionSchedule) gw.Schedule {
	if s == nil {
		return gw.Schedule{}
	}
	out := gw.Schedule{
		ID:          s.ID,
		Status:      gw.ScheduleStatus(s.Status),
		EndBehavior: gw.EndBehavior(s.EndBehavior),
	}
	if s.Subscription != nil {
		out.SubscriptionID = s.Subscription.ID
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	for _, p := range s.Phases {
		phase := gw.Phase{Start: unix(p.StartDate), End: unix(p.EndDate)}
		for _, it := range p.Items {
			item := gw.PhaseItem{Quantity: stripe.Int64(it.Quantity)}
			if it.Price != nil {
				item.PriceID = it.Price.ID
			}
			phase.Items = append(phase.Items, item)
		}
		out.Phases = append(out.Phases, phase)
	}
	return out
}
