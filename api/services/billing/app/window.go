package app

import (
	"time"

	"github.com/peshal-hash/activepieces/api/services/billing/catalog"
	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
)

// Window is the subscription's current billing period.
type Window struct {
	Start    time.Time
	End      time.Time
	CancelAt *time.Time
}

// windowOf anchors on the active-flows addon item because its billing anchor
// survives base plan swaps. Without one it falls back to the UTC calendar
// month containing now.
func windowOf(idx catalog.PriceIndex, sub gw.Subscription, now time.Time) Window {
	for _, it := range sub.Items {
		if !idx.IsKind(it.PriceID, catalog.KindActiveFlows) {
			continue
		}
		if it.CurrentPeriodStart.IsZero() || it.CurrentPeriodEnd.IsZero() {
			break
		}
		w := Window{Start: it.CurrentPeriodStart, End: it.CurrentPeriodEnd}
		if !sub.CancelAt.IsZero() {
			cancelAt := sub.CancelAt
			w.CancelAt = &cancelAt
		}
		return w
	}
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}
