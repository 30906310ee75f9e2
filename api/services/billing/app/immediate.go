package app

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/peshal-hash/activepieces/api/services/billing/catalog"
	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
)

// applyImmediate rewrites the subscription's current items in one batched
// update and invoices the proration right away. It is never retried here.
func (s *serviceImpl) applyImmediate(ctx context.Context, sub gw.Subscription, req PlanChangeRequest) error {
	ops, err := immediateOps(s.catalog, sub, req)
	if err != nil {
		return err
	}
	_, err = s.updateItems(ctx, sub, req, ops)
	return err
}

// applyImmediateAddons changes addon quantities now. A schedule bound to the
// subscription is rebuilt afterwards so phase 1 matches the new items and the
// pending change carries the new quantities.
func (s *serviceImpl) applyImmediateAddons(ctx context.Context, sub gw.Subscription, req PlanChangeRequest) error {
	ops, err := immediateOps(s.catalog, sub, req)
	if err != nil {
		return err
	}
	if sub.ScheduleID == "" {
		_, err = s.updateItems(ctx, sub, req, ops)
		return err
	}

	schedules, err := s.gw.ListSchedules(ctx, sub.CustomerID)
	if err != nil {
		return providerError(err, ErrScheduleUpdate, "list schedules of customer %s", sub.CustomerID)
	}
	bound, ok := lo.Find(schedules, func(sc gw.Schedule) bool {
		return sc.ID == sub.ScheduleID && sc.Status.Updatable()
	})
	if !ok {
		_, err = s.updateItems(ctx, sub, req, ops)
		return err
	}
	pending, err := s.pendingItems(bound, req.Addons)
	if err != nil {
		return err
	}

	updated, err := s.updateItems(ctx, sub, req, ops)
	if err != nil {
		return err
	}

	idx := s.catalog.Index()
	window := windowOf(idx, updated, s.now())
	update := gw.ScheduleUpdate{
		Phases:      []gw.Phase{{Items: snapshotItems(idx, updated), Start: window.Start, End: window.End}},
		EndBehavior: bound.EndBehavior,
	}
	if update.EndBehavior == "" {
		update.EndBehavior = gw.EndBehaviorRelease
	}
	if pending != nil {
		update.Phases = append(update.Phases, gw.Phase{Items: pending, Start: window.End})
	}
	if _, err := s.gw.UpdateSchedule(ctx, bound.ID, update); err != nil {
		return providerError(err, ErrScheduleUpdate, "update schedule %s after addon change", bound.ID)
	}
	s.log.Infow("pending schedule rebuilt after addon change",
		"schedule_id", bound.ID,
		"subscription_id", sub.ID,
		"phases", len(update.Phases),
	)
	return nil
}

// pendingItems returns the items of a schedule's final phase with addons
// replaced by the given targets, or nil when the schedule ends in a
// cancellation or has no pending phase.
func (s *serviceImpl) pendingItems(sc gw.Schedule, addons AddonTargets) ([]gw.PhaseItem, error) {
	if sc.EndBehavior == gw.EndBehaviorCancel || len(sc.Phases) < 2 {
		return nil, nil
	}
	idx := s.catalog.Index()
	last := sc.Phases[len(sc.Phases)-1]
	for _, it := range last.Items {
		e, ok := idx.Lookup(it.PriceID)
		if ok && e.Kind == catalog.KindBase {
			return itemSet(s.catalog, e.Plan, e.Cycle, addons)
		}
	}
	return nil, errors.Mark(
		errors.Newf("pending phase of schedule %s has no catalog base item", sc.ID), ErrConfiguration)
}

// updateItems sends ops as one batched update and returns the subscription as
// the provider left it. An empty op list makes no call.
func (s *serviceImpl) updateItems(ctx context.Context, sub gw.Subscription, req PlanChangeRequest, ops []gw.ItemOp) (gw.Subscription, error) {
	if len(ops) == 0 {
		return sub, nil
	}
	updated, err := s.gw.UpdateSubscriptionItems(ctx, sub.ID, ops, gw.ProrationAlwaysInvoice)
	if err != nil {
		return gw.Subscription{}, providerError(err, ErrPlanUpdate, "update items of subscription %s", sub.ID)
	}
	s.log.Infow("subscription updated immediately",
		"subscription_id", sub.ID,
		"plan", req.NewPlan,
		"cycle", req.NewCycle,
		"operations", len(ops),
	)
	return updated, nil
}

// immediateOps computes the item operations that move sub to the requested
// plan, cycle and addon quantities.
func immediateOps(cat *catalog.Catalog, sub gw.Subscription, req PlanChangeRequest) ([]gw.ItemOp, error) {
	cur := classifyItems(cat.Index(), sub)

	if req.NewCycle != req.CurrentCycle {
		// A line item cannot change its price's interval, so the whole set is replaced.
		target, err := itemSet(cat, req.NewPlan, req.NewCycle, req.Addons)
		if err != nil {
			return nil, err
		}
		var ops []gw.ItemOp
		for _, kind := range catalog.AllKinds() {
			if it, ok := cur.item(kind); ok {
				ops = append(ops, gw.ItemOp{ID: it.ID, Deleted: true, ClearUsage: kind.IsMetered()})
			}
		}
		for _, it := range target {
			ops = append(ops, gw.ItemOp{PriceID: it.PriceID, Quantity: it.Quantity})
		}
		return ops, nil
	}

	var ops []gw.ItemOp
	for _, kind := range []catalog.ItemKind{catalog.KindBase, catalog.KindAICredits} {
		price, err := cat.PriceFor(req.NewPlan, req.NewCycle, kind)
		if err != nil {
			return nil, err
		}
		var quantity *int64
		if kind == catalog.KindBase {
			quantity = int64Ptr(1)
		}
		it, ok := cur.item(kind)
		switch {
		case !ok:
			ops = append(ops, gw.ItemOp{PriceID: price, Quantity: quantity})
		case it.PriceID != price:
			ops = append(ops, gw.ItemOp{ID: it.ID, PriceID: price, Quantity: quantity})
		}
	}
	for _, kind := range catalog.AddonKinds() {
		target := req.Addons.Quantity(kind)
		it, ok := cur.item(kind)
		if target <= 0 {
			if ok {
				ops = append(ops, gw.ItemOp{ID: it.ID, Deleted: true})
			}
			continue
		}
		price, err := cat.PriceFor(req.NewPlan, req.NewCycle, kind)
		if err != nil {
			return nil, err
		}
		if ok && it.PriceID == price && it.Quantity == target {
			continue
		}
		op := gw.ItemOp{PriceID: price, Quantity: int64Ptr(target)}
		if ok {
			op.ID = it.ID
		}
		ops = append(ops, op)
	}
	return ops, nil
}
