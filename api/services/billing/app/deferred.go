package app

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
)

// applyDeferred keeps the current items until window.End and queues the
// requested items (or a cancellation) behind them on the subscription's
// schedule. The schedule is rebuilt from live state on every call, so
// repeating a request updates the same schedule.
func (s *serviceImpl) applyDeferred(ctx context.Context, sub gw.Subscription, req PlanChangeRequest, window Window) error {
	update, err := s.buildPhases(sub, req, window)
	if err != nil {
		return err
	}

	schedules, err := s.gw.ListSchedules(ctx, sub.CustomerID)
	if err != nil {
		return providerError(err, ErrScheduleUpdate, "list schedules of customer %s", sub.CustomerID)
	}
	candidates := lo.Filter(schedules, func(sc gw.Schedule, _ int) bool {
		return sc.Status.Updatable()
	})
	// Only a schedule bound to this subscription is reused; a status-only
	// candidate controls another subscription and is released below.
	schedule, bound := lo.Find(candidates, func(sc gw.Schedule) bool {
		return sc.SubscriptionID == sub.ID
	})
	if !bound {
		schedule, err = s.gw.CreateScheduleFromSubscription(ctx, sub.ID)
		if err != nil {
			return providerError(err, ErrScheduleUpdate, "create schedule from subscription %s", sub.ID)
		}
	}

	if _, err := s.gw.UpdateSchedule(ctx, schedule.ID, update); err != nil {
		return providerError(err, ErrScheduleUpdate, "update schedule %s", schedule.ID)
	}

	for _, stale := range candidates {
		if stale.ID == schedule.ID {
			continue
		}
		if err := s.gw.ReleaseSchedule(ctx, stale.ID); err != nil {
			return providerError(err, ErrScheduleUpdate, "release stale schedule %s", stale.ID)
		}
		s.log.Warnw("released stale subscription schedule",
			"schedule_id", stale.ID,
			"subscription_id", stale.SubscriptionID,
			"kept_schedule_id", schedule.ID,
		)
	}

	s.log.Infow("plan change scheduled",
		"schedule_id", schedule.ID,
		"subscription_id", sub.ID,
		"effective_at", window.End,
		"cancel", req.IsFreeDowngrade,
		"plan", req.NewPlan,
		"cycle", req.NewCycle,
	)
	return nil
}

// buildPhases returns phase 1 (current items until window.End) and, unless
// the change is a free downgrade, an open-ended phase 2 with the target items.
func (s *serviceImpl) buildPhases(sub gw.Subscription, req PlanChangeRequest, window Window) (gw.ScheduleUpdate, error) {
	idx := s.catalog.Index()

	current := snapshotItems(idx, sub)
	if req.NewCycle != req.CurrentCycle {
		cur := classifyItems(idx, sub)
		if cur.plan == "" {
			return gw.ScheduleUpdate{}, errors.Mark(
				errors.Newf("subscription %s has no catalog base item", sub.ID), ErrConfiguration)
		}
		rebuilt, err := itemSet(s.catalog, cur.plan, req.CurrentCycle, cur.addons())
		if err != nil {
			return gw.ScheduleUpdate{}, err
		}
		current = rebuilt
	}

	update := gw.ScheduleUpdate{
		Phases:      []gw.Phase{{Items: current, Start: window.Start, End: window.End}},
		EndBehavior: gw.EndBehaviorRelease,
	}
	if req.IsFreeDowngrade {
		update.EndBehavior = gw.EndBehaviorCancel
		return update, nil
	}

	next, err := itemSet(s.catalog, req.NewPlan, req.NewCycle, req.Addons)
	if err != nil {
		return gw.ScheduleUpdate{}, err
	}
	update.Phases = append(update.Phases, gw.Phase{Items: next, Start: window.End})
	return update, nil
}
