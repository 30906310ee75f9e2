// Package catalog resolves provider price identifiers for plans, billing
// cycles and item kinds, and maps price identifiers back to what they sell.
package catalog

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/peshal-hash/activepieces/api/config"
)

// ErrConfiguration marks a missing or inconsistent catalog entry. It is never
// retryable: it points at a deployment defect.
var ErrConfiguration = errors.New("catalog configuration error")

// Prices holds the price ids sold under a single (plan, cycle) pair.
type Prices struct {
	Base        string
	AICredits   string
	UserSeats   string
	Projects    string
	ActiveFlows string
}

func (p Prices) byKind(kind ItemKind) string {
	switch kind {
	case KindBase:
		return p.Base
	case KindAICredits:
		return p.AICredits
	case KindUserSeats:
		return p.UserSeats
	case KindProjects:
		return p.Projects
	case KindActiveFlows:
		return p.ActiveFlows
	}
	return ""
}

// Catalog is the static (plan, cycle, kind) -> price id mapping supplied at
// process start. It is immutable after construction.
type Catalog struct {
	prices map[Plan]map[Cycle]Prices
	index  PriceIndex
}

// New builds a catalog from an explicit mapping.
func New(prices map[Plan]map[Cycle]Prices) *Catalog {
	c := &Catalog{prices: make(map[Plan]map[Cycle]Prices, len(prices))}
	for plan, cycles := range prices {
		c.prices[plan] = make(map[Cycle]Prices, len(cycles))
		for cycle, p := range cycles {
			c.prices[plan][cycle] = p
		}
	}
	c.index = buildIndex(c.prices)
	return c
}

// FromFile converts the decoded catalog file into a Catalog, rejecting
// unknown plan or cycle names.
func FromFile(file config.CatalogFile) (*Catalog, error) {
	prices := make(map[Plan]map[Cycle]Prices, len(file.Plans))
	for planName, cycles := range file.Plans {
		plan, err := ParsePlan(planName)
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "price catalog"), ErrConfiguration)
		}
		prices[plan] = make(map[Cycle]Prices, len(cycles))
		for cycleName, set := range cycles {
			cycle, err := ParseCycle(cycleName)
			if err != nil {
				return nil, errors.Mark(errors.Wrapf(err, "price catalog plan %s", plan), ErrConfiguration)
			}
			prices[plan][cycle] = Prices(set)
		}
	}
	c := New(prices)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// PriceFor returns the provider price id for the item kind under the plan and cycle.
func (c *Catalog) PriceFor(plan Plan, cycle Cycle, kind ItemKind) (string, error) {
	cycles, ok := c.prices[plan]
	if !ok {
		return "", errors.Mark(errors.Newf("no prices configured for plan %s", plan), ErrConfiguration)
	}
	set, ok := cycles[cycle]
	if !ok {
		return "", errors.Mark(errors.Newf("no prices configured for plan %s on %s cycle", plan, cycle), ErrConfiguration)
	}
	id := set.byKind(kind)
	if id == "" {
		return "", errors.Mark(errors.Newf("no %s price configured for plan %s on %s cycle", kind, plan, cycle), ErrConfiguration)
	}
	return id, nil
}

// Plans returns the configured paid plans ordered by rank.
func (c *Catalog) Plans() []Plan {
	plans := make([]Plan, 0, len(c.prices))
	for p := range c.prices {
		plans = append(plans, p)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].Rank() < plans[j].Rank() })
	return plans
}

// Index returns the price id -> entry lookup derived from the catalog.
func (c *Catalog) Index() PriceIndex { return c.index }

// Validate checks that every configured plan sells a base price on every cycle
// it lists and that addon kinds are scoped to cycles the same way the base plan is.
func (c *Catalog) Validate() error {
	for plan, cycles := range c.prices {
		if plan.IsFree() {
			return errors.Mark(errors.New("the free plan must not carry provider prices"), ErrConfiguration)
		}
		for _, cycle := range Cycles() {
			set, ok := cycles[cycle]
			if !ok {
				return errors.Mark(errors.Newf("plan %s has no %s prices", plan, cycle), ErrConfiguration)
			}
			if set.Base == "" {
				return errors.Mark(errors.Newf("plan %s has no base price on %s cycle", plan, cycle), ErrConfiguration)
			}
		}
		for _, kind := range []ItemKind{KindAICredits, KindUserSeats, KindProjects, KindActiveFlows} {
			monthly := cycles[CycleMonthly].byKind(kind) != ""
			annual := cycles[CycleAnnual].byKind(kind) != ""
			if monthly != annual {
				return errors.Mark(errors.Newf("plan %s prices %s on only one cycle", plan, kind), ErrConfiguration)
			}
		}
	}
	return nil
}
