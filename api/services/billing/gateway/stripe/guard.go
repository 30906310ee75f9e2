package stripegw

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sony/gobreaker"
	stripe "github.com/stripe/stripe-go/v82"
	"golang.org/x/time/rate"

	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
)

// Options tunes the client-side protections around provider calls.
type Options struct {
	// RequestsPerSecond caps outbound calls. Zero disables the limiter.
	RequestsPerSecond float64
	Burst             int
	// BreakerFailures is the number of consecutive unavailable results that opens the circuit.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

func (o Options) withDefaults() Options {
	if o.Burst <= 0 {
		o.Burst = 5
	}
	if o.BreakerFailures == 0 {
		o.BreakerFailures = 5
	}
	if o.BreakerTimeout <= 0 {
		o.BreakerTimeout = 30 * time.Second
	}
	return o
}

type guard struct {
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

func newGuard(opts Options) *guard {
	opts = opts.withDefaults()
	g := &guard{}
	if opts.RequestsPerSecond > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst)
	}
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		// A rejected request proves the provider is reachable.
		IsSuccessful: func(err error) bool {
			return err == nil || !isUnavailable(err)
		},
	})
	return g
}

// do runs fn behind the limiter and breaker and classifies any error.
func (g *guard) do(ctx context.Context, op string, fn func() error) error {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return errors.Mark(errors.Wrapf(err, "stripe %s: rate limiter", op), gw.ErrUnavailable)
		}
	}
	_, err := g.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if err == nil {
		return nil
	}
	return classify(op, err)
}

func isUnavailable(err error) bool {
	var se *stripe.Error
	if errors.As(err, &se) {
		return se.HTTPStatusCode >= http.StatusInternalServerError || se.HTTPStatusCode == http.StatusTooManyRequests
	}
	return true
}

// classify marks err as gw.ErrRejected or gw.ErrUnavailable.
func classify(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Mark(errors.Wrapf(err, "stripe %s: circuit open", op), gw.ErrUnavailable)
	}
	var se *stripe.Error
	if errors.As(err, &se) {
		wrapped := errors.Wrapf(err, "stripe %s failed (status %d)", op, se.HTTPStatusCode)
		if isUnavailable(err) {
			return errors.Mark(wrapped, gw.ErrUnavailable)
		}
		return errors.WithHint(errors.Mark(wrapped, gw.ErrRejected), se.Msg)
	}
	return errors.Mark(errors.Wrapf(err, "stripe %s", op), gw.ErrUnavailable)
}
