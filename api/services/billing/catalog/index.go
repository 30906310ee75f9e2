package catalog

// Entry describes what a single provider price id sells.
type Entry struct {
	Plan  Plan
	Cycle Cycle
	Kind  ItemKind
}

// PriceIndex maps provider price ids back to catalog entries. Addon prices are
// frequently shared between plans; the entry then records the lowest-ranked plan.
type PriceIndex map[string]Entry

func buildIndex(prices map[Plan]map[Cycle]Prices) PriceIndex {
	idx := make(PriceIndex)
	for plan, cycles := range prices {
		for cycle, set := range cycles {
			for _, kind := range AllKinds() {
				id := set.byKind(kind)
				if id == "" {
					continue
				}
				if existing, ok := idx[id]; ok && existing.Plan.Rank() <= plan.Rank() {
					continue
				}
				idx[id] = Entry{Plan: plan, Cycle: cycle, Kind: kind}
			}
		}
	}
	return idx
}

// Lookup returns the entry for a price id.
func (idx PriceIndex) Lookup(priceID string) (Entry, bool) {
	e, ok := idx[priceID]
	return e, ok
}

// IsKind reports whether the price id sells the given kind under any plan or cycle.
func (idx PriceIndex) IsKind(priceID string, kind ItemKind) bool {
	e, ok := idx[priceID]
	return ok && e.Kind == kind
}
