package app

import (
	"github.com/samber/lo"

	"github.com/peshal-hash/activepieces/api/services/billing/catalog"
	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
)

// currentItems is a subscription's line items classified by catalog kind.
// Items whose price is not in the catalog are left out.
type currentItems struct {
	byKind map[catalog.ItemKind]gw.SubscriptionItem
	plan   catalog.Plan
	cycle  catalog.Cycle
}

func classifyItems(idx catalog.PriceIndex, sub gw.Subscription) currentItems {
	cur := currentItems{byKind: map[catalog.ItemKind]gw.SubscriptionItem{}}
	for _, it := range sub.Items {
		e, ok := idx.Lookup(it.PriceID)
		if !ok {
			continue
		}
		if _, seen := cur.byKind[e.Kind]; seen {
			continue
		}
		cur.byKind[e.Kind] = it
		if e.Kind == catalog.KindBase {
			cur.plan, cur.cycle = e.Plan, e.Cycle
		}
	}
	return cur
}

func (c currentItems) item(kind catalog.ItemKind) (gw.SubscriptionItem, bool) {
	it, ok := c.byKind[kind]
	return it, ok
}

// addons returns the quantities currently billed for each addon kind.
func (c currentItems) addons() AddonTargets {
	var a AddonTargets
	for _, kind := range catalog.AddonKinds() {
		if it, ok := c.byKind[kind]; ok {
			a.set(kind, it.Quantity)
		}
	}
	return a
}

// itemSet builds the complete line item set for a plan, cycle and addon
// targets: base at quantity 1, metered credits without a quantity and every
// addon whose target is positive.
func itemSet(cat *catalog.Catalog, plan catalog.Plan, cycle catalog.Cycle, addons AddonTargets) ([]gw.PhaseItem, error) {
	base, err := cat.PriceFor(plan, cycle, catalog.KindBase)
	if err != nil {
		return nil, err
	}
	credits, err := cat.PriceFor(plan, cycle, catalog.KindAICredits)
	if err != nil {
		return nil, err
	}
	items := []gw.PhaseItem{
		{PriceID: base, Quantity: int64Ptr(1)},
		{PriceID: credits},
	}
	for _, kind := range catalog.AddonKinds() {
		q := addons.Quantity(kind)
		if q <= 0 {
			continue
		}
		price, err := cat.PriceFor(plan, cycle, kind)
		if err != nil {
			return nil, err
		}
		items = append(items, gw.PhaseItem{PriceID: price, Quantity: int64Ptr(q)})
	}
	return items, nil
}

// snapshotItems copies the subscription's items as phase items. Metered items
// never carry a quantity.
func snapshotItems(idx catalog.PriceIndex, sub gw.Subscription) []gw.PhaseItem {
	return lo.Map(sub.Items, func(it gw.SubscriptionItem, _ int) gw.PhaseItem {
		out := gw.PhaseItem{PriceID: it.PriceID}
		if e, ok := idx.Lookup(it.PriceID); ok && e.Kind.IsMetered() {
			return out
		}
		if it.Quantity > 0 {
			out.Quantity = int64Ptr(it.Quantity)
		}
		return out
	})
}
