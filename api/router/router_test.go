package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peshal-hash/activepieces/api/services/billing/app"
	"github.com/peshal-hash/activepieces/api/services/billing/catalog"
)

// stubService implements only what each test needs; other methods panic.
type stubService struct {
	app.Service

	outcome   app.Outcome
	url       string
	err       error
	topUp     app.TopUpResult
	gifts     []app.GiftResult
	planReq   app.PlanChangeRequest
	payload   string
	signature string
	purged    string
	amount    decimal.Decimal
}

func (s *stubService) HandlePlanChange(_ context.Context, req app.PlanChangeRequest) app.Outcome {
	s.planReq = req
	return s.outcome
}

func (s *stubService) CreateSubscriptionCheckout(_ context.Context, _ app.CheckoutRequest) (string, error) {
	return s.url, s.err
}

func (s *stubService) CreateBillingPortal(_ context.Context, _, _ string) (string, error) {
	return s.url, s.err
}

func (s *stubService) GiftTrialBatch(_ context.Context, reqs []app.GiftTrialRequest) []app.GiftResult {
	return s.gifts[:len(reqs)]
}

func (s *stubService) TopUpCredits(_ context.Context, _ string, amount decimal.Decimal) app.TopUpResult {
	s.amount = amount
	return s.topUp
}

func (s *stubService) PurgeCustomer(_ context.Context, platformID string) error {
	s.purged = platformID
	return s.err
}

func (s *stubService) HandleWebhook(_ context.Context, payload []byte, signature string) error {
	s.payload, s.signature = string(payload), signature
	return s.err
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

const planChangeBody = `{"subscriptionId":"sub_1","currentCycle":"monthly","newCycle":"monthly","newPlan":"business","isUpgrade":true,"addons":{"userSeats":2}}`

func TestPlanChange_JSONOutcome(t *testing.T) {
	svc := &stubService{outcome: app.Outcome{Action: app.ActionUpgrade, Plan: catalog.PlanBusiness}}
	rec := serve(New(svc, Options{}), http.MethodPost, "/v1/billing/plan-change", planChangeBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	var out app.Outcome
	decodeBody(t, rec, &out)
	assert.Equal(t, svc.outcome, out)
	assert.Equal(t, "sub_1", svc.planReq.SubscriptionID)
	assert.Equal(t, int64(2), svc.planReq.Addons.UserSeats)
	assert.True(t, svc.planReq.IsUpgrade)
}

func TestPlanChange_Redirect(t *testing.T) {
	tests := []struct {
		name     string
		outcome  app.Outcome
		location string
	}{
		{"success", app.Outcome{Action: app.ActionDowngrade, Plan: catalog.PlanPlus}, "https://app.example.com/platform/billing?action=downgrade&plan=plus"},
		{"failure", app.Outcome{Err: app.CodeScheduleUpdate}, "https://app.example.com/platform/billing?error=schedule_update_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(&stubService{outcome: tt.outcome}, Options{FrontendURL: "https://app.example.com/"})
			rec := serve(h, http.MethodPost, "/v1/billing/plan-change?redirect=true", planChangeBody)
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestPlanChange_ErrorStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{app.CodeValidation, http.StatusBadRequest},
		{app.CodeNotFound, http.StatusNotFound},
		{app.CodePlanUpdate, http.StatusBadRequest},
		{app.CodeProviderUnavailable, http.StatusServiceUnavailable},
		{app.CodeConfiguration, http.StatusInternalServerError},
		{app.CodeUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := serve(New(&stubService{outcome: app.Outcome{Err: tt.code}}, Options{}), http.MethodPost, "/v1/billing/plan-change", planChangeBody)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestMalformedBody(t *testing.T) {
	rec := serve(New(&stubService{}, Options{}), http.MethodPost, "/v1/billing/plan-change", `{"subscriptionId":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, app.CodeValidation, body.Error)
}

func TestCheckout(t *testing.T) {
	h := New(&stubService{url: "https://checkout.test/cs_1"}, Options{})
	rec := serve(h, http.MethodPost, "/v1/billing/checkout/subscription", `{"platformId":"plat_1","plan":"plus","cycle":"monthly"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body urlResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, "https://checkout.test/cs_1", body.URL)
}

func TestPortal_ErrorCarriesCode(t *testing.T) {
	err := errors.Mark(errors.New("platform plat_1 has no billing customer"), app.ErrNotFound)
	rec := serve(New(&stubService{err: err}, Options{}), http.MethodPost, "/v1/billing/portal", `{"platformId":"plat_1","returnUrl":"https://app.example.com"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body errorResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, app.CodeNotFound, body.Error)
	assert.Contains(t, body.Message, "plat_1")
}

func TestGiftTrials(t *testing.T) {
	svc := &stubService{gifts: []app.GiftResult{
		{CustomerID: "cus_1", Status: app.GiftHeld},
		{CustomerID: "cus_2", Status: app.GiftRejected},
	}}
	h := New(svc, Options{})

	rec := serve(h, http.MethodPost, "/v1/billing/gift-trials", `{"gifts":[{"platformId":"p1","customerId":"cus_1","plan":"plus","days":7},{"platformId":"p2","customerId":"cus_2","plan":"plus","days":7}]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	var results []app.GiftResult
	decodeBody(t, rec, &results)
	require.Len(t, results, 2)
	assert.Equal(t, app.GiftRejected, results[1].Status)

	rec = serve(h, http.MethodPost, "/v1/billing/gift-trials", `{"gifts":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTopUp(t *testing.T) {
	svc := &stubService{topUp: app.TopUpResult{PlatformID: "plat_1", Err: app.CodePayment, Message: "card declined"}}
	rec := serve(New(svc, Options{}), http.MethodPost, "/v1/billing/top-ups", `{"platformId":"plat_1","amountUsd":"12.50"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, decimal.RequireFromString("12.5").Equal(svc.amount))
	var res app.TopUpResult
	decodeBody(t, rec, &res)
	assert.Equal(t, app.CodePayment, res.Err)
}

func TestPurgeCustomer_PathParam(t *testing.T) {
	svc := &stubService{}
	rec := serve(New(svc, Options{}), http.MethodDelete, "/v1/billing/customers/plat_42", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "plat_42", svc.purged)
}

func TestWebhook(t *testing.T) {
	svc := &stubService{}
	h := New(svc, Options{})

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/stripe", strings.NewReader(`{"type":"checkout.session.completed"}`))
	req.Header.Set(signatureHeader, "t=1,v1=abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t=1,v1=abc", svc.signature)
	assert.Contains(t, svc.payload, "checkout.session.completed")

	svc.err = errors.Mark(errors.New("signature mismatch"), app.ErrBadEvent)
	rec = serve(h, http.MethodPost, "/v1/webhooks/stripe", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.err = errors.Mark(errors.New("connection refused"), app.ErrDatabase)
	rec = serve(h, http.MethodPost, "/v1/webhooks/stripe", `{}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUninitializedService(t *testing.T) {
	h := New(nil, Options{})

	assert.Equal(t, http.StatusServiceUnavailable, serve(h, http.MethodPost, "/v1/billing/plan-change", planChangeBody).Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(h, http.MethodGet, "/healthz", "").Code)
}

func TestMetricsRoute(t *testing.T) {
	metrics := app.NewMetrics()
	h := New(&stubService{}, Options{Metrics: metrics.Handler()})

	rec := serve(h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(New(&stubService{}, Options{}), http.MethodGet, "/metrics", "").Code)
}

func TestHeaderMatcher(t *testing.T) {
	key, ok := HeaderMatcher("Stripe-Signature")
	assert.True(t, ok)
	assert.Equal(t, "Stripe-Signature", key)

	_, ok = HeaderMatcher("X-Random")
	assert.False(t, ok)
}
