package router

import (
	"net/http"
	"strings"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"

	bootstrap "github.com/peshal-hash/activepieces/api/bootstrap"
	"github.com/peshal-hash/activepieces/api/config"
	"github.com/peshal-hash/activepieces/api/logger"
	"github.com/peshal-hash/activepieces/api/services/billing/app"
)

// billingPage is the frontend page plan-change redirects land on.
const billingPage = "/platform/billing"

// Options configure the HTTP surface around the billing service.
type Options struct {
	// FrontendURL is the origin redirects are rendered against.
	FrontendURL string
	// Metrics serves /metrics when set.
	Metrics http.Handler
	Log     *logger.Logger
}

// NewRouter returns the central HTTP router for the API using grpc-gateway's
// ServeMux, wired to the process-wide billing service.
func NewRouter() http.Handler {
	// Initialize app dependencies (non-fatal if it fails here; handlers report 503).
	if err := bootstrap.Ensure(); err != nil {
		bootstrap.GetLogger().Errorw("bootstrap ensure failed", "error", err)
	}
	opts := Options{
		Metrics: bootstrap.GetMetrics().Handler(),
		Log:     bootstrap.GetLogger(),
	}
	if config.AppConfig != nil {
		opts.FrontendURL = config.AppConfig.FrontendURL
	}
	return New(bootstrap.GetBillingService(), opts)
}

// New maps the billing operations to HTTP paths on a runtime.ServeMux.
func New(svc app.Service, opts Options) http.Handler {
	if opts.Log == nil {
		opts.Log = logger.NewNop()
	}
	mux := runtime.NewServeMux(runtime.WithIncomingHeaderMatcher(HeaderMatcher))
	h := &handlers{svc: svc, mux: mux, opts: opts}

	routes := []struct {
		method string
		path   string
		fn     runtime.HandlerFunc
	}{
		{http.MethodPost, "/v1/billing/plan-change", h.planChange},
		{http.MethodPost, "/v1/billing/checkout/subscription", h.subscriptionCheckout},
		{http.MethodPost, "/v1/billing/checkout/addons", h.addonCheckout},
		{http.MethodPost, "/v1/billing/checkout/credits", h.creditCheckout},
		{http.MethodPost, "/v1/billing/checkout/auto-topup", h.autoTopUpSetup},
		{http.MethodPost, "/v1/billing/portal", h.portal},
		{http.MethodPost, "/v1/billing/trials", h.startTrial},
		{http.MethodPost, "/v1/billing/gift-trials", h.giftTrials},
		{http.MethodPost, "/v1/billing/top-ups", h.topUp},
		{http.MethodPost, "/v1/billing/payment-methods", h.attachPaymentMethod},
		{http.MethodDelete, "/v1/billing/customers/{platform_id}", h.purgeCustomer},
		{http.MethodPost, "/v1/webhooks/stripe", h.webhook},
		{http.MethodGet, "/healthz", h.health},
	}
	if opts.Metrics != nil {
		routes = append(routes, struct {
			method string
			path   string
			fn     runtime.HandlerFunc
		}{http.MethodGet, "/metrics", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
			opts.Metrics.ServeHTTP(w, r)
		}})
	}
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.path, rt.fn); err != nil {
			opts.Log.Errorw("failed to register route", "method", rt.method, "path", rt.path, "error", err)
		}
	}
	return mux
}

// HeaderMatcher forwards the webhook signature header alongside the defaults.
func HeaderMatcher(key string) (string, bool) {
	if strings.EqualFold(key, signatureHeader) {
		return key, true
	}
	return runtime.DefaultHeaderMatcher(key)
}
