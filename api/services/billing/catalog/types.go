package catalog

import (
	"fmt"
	"strings"
)

// Plan is a subscription tier. Plans are ordered by capability.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPlus       Plan = "plus"
	PlanBusiness   Plan = "business"
	PlanEnterprise Plan = "enterprise"
)

var planRank = map[Plan]int{
	PlanFree:       0,
	PlanPlus:       1,
	PlanBusiness:   2,
	PlanEnterprise: 3,
}

// Rank orders plans by capability. Unknown plans rank below free.
func (p Plan) Rank() int {
	if r, ok := planRank[p]; ok {
		return r
	}
	return -1
}

// IsFree reports whether the plan has no paid component.
func (p Plan) IsFree() bool { return p == PlanFree }

// ParsePlan normalises a plan name.
func ParsePlan(s string) (Plan, error) {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := planRank[p]; !ok {
		return "", fmt.Errorf("unknown plan %q", s)
	}
	return p, nil
}

// Cycle is a billing interval.
type Cycle string

const (
	CycleMonthly Cycle = "monthly"
	CycleAnnual  Cycle = "annual"
)

// Cycles lists every supported billing cycle.
func Cycles() []Cycle { return []Cycle{CycleMonthly, CycleAnnual} }

// ParseCycle normalises a cycle name. "yearly" is accepted for annual.
func ParseCycle(s string) (Cycle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly", "month":
		return CycleMonthly, nil
	case "annual", "annually", "yearly", "year":
		return CycleAnnual, nil
	}
	return "", fmt.Errorf("unknown billing cycle %q", s)
}

// ItemKind identifies the role a line item plays on a subscription.
type ItemKind string

const (
	KindBase        ItemKind = "base"
	KindAICredits   ItemKind = "ai_credits"
	KindUserSeats   ItemKind = "user_seats"
	KindProjects    ItemKind = "projects"
	KindActiveFlows ItemKind = "active_flows"
)

// AddonKinds are the quantity-bearing kinds layered on top of a base plan.
func AddonKinds() []ItemKind {
	var kinds []ItemKind
	for _, k := range AllKinds() {
		if k.IsAddon() {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// AllKinds lists every item kind in the order line items are built.
func AllKinds() []ItemKind {
	return []ItemKind{KindBase, KindAICredits, KindUserSeats, KindProjects, KindActiveFlows}
}

// IsAddon reports whether the kind carries a customer-chosen quantity.
func (k ItemKind) IsAddon() bool {
	return k == KindUserSeats || k == KindProjects || k == KindActiveFlows
}

// IsMetered reports whether the kind is usage-billed and therefore never
// carries an explicit quantity.
func (k ItemKind) IsMetered() bool { return k == KindAICredits }
