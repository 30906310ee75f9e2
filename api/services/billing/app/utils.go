package app

import (
	"time"

	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
)

// IsSubscriptionCancelled returns true if the subscription is cancelled or past its cancel timestamp
func IsSubscriptionCancelled(sub gw.Subscription, now time.Time) bool {
	if !sub.CancelAt.IsZero() && now.After(sub.CancelAt) {
		return true
	}
	return sub.Status == gw.StatusCanceled || sub.Status == gw.StatusIncompleteExpired
}

func int64Ptr(v int64) *int64 { return &v }
