package router

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"

	"github.com/peshal-hash/activepieces/api/services/billing/app"
)

const (
	signatureHeader = "Stripe-Signature"
	maxWebhookBytes = int64(65536)
)

type handlers struct {
	svc  app.Service
	mux  *runtime.ServeMux
	opts Options
}

type urlResponse struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type setupRequest struct {
	PlatformID string `json:"platformId"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

type portalRequest struct {
	PlatformID string `json:"platformId"`
	ReturnURL  string `json:"returnUrl"`
}

type giftTrialsRequest struct {
	Gifts []app.GiftTrialRequest `json:"gifts"`
}

type topUpRequest struct {
	PlatformID string          `json:"platformId"`
	AmountUSD  decimal.Decimal `json:"amountUsd"`
}

type paymentMethodRequest struct {
	PlatformID      string `json:"platformId"`
	PaymentMethodID string `json:"paymentMethodId"`
}

type trialResponse struct {
	SubscriptionID string    `json:"subscriptionId"`
	Status         string    `json:"status"`
	TrialEnd       time.Time `json:"trialEnd"`
}

// planChange applies a plan change. With ?redirect=true the outcome is
// rendered as a 303 to the frontend billing page, otherwise as JSON.
func (h *handlers) planChange(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if !h.ready(w, r) {
		return
	}
	var req app.PlanChangeRequest
	if !h.decode(w, r, &req) {
		return
	}
	out := h.svc.HandlePlanChange(r.Context(), req)
	if redirect, _ := strconv.ParseBool(r.URL.Query().Get("redirect")); redirect {
		base := strings.TrimRight(h.opts.FrontendURL, "/") + billingPage
		http.Redirect(w, r, out.RedirectPath(base), http.StatusSeeOther)
		return
	}
	status := http.StatusOK
	if !out.OK() {
		status = httpStatus(out.Err)
	}
	h.respond(w, r, status, out)
}

func (h *handlers) subscriptionCheckout(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req app.CheckoutRequest
	if !h.ready(w, r) || !h.decode(w, r, &req) {
		return
	}
	url, err := h.svc.CreateSubscriptionCheckout(r.Context(), req)
	h.respondURL(w, r, url, err)
}

func (h *handlers) addonCheckout(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req app.AddonCheckoutRequest
	if !h.ready(w, r) || !h.decode(w, r, &req) {
		return
	}
	url, err := h.svc.CreateAddonCheckout(r.Context(), req)
	h.respondURL(w, r, url, err)
}

func (h *handlers) creditCheckout(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req app.CreditPurchaseRequest
	if !h.ready(w, r) || !h.decode(w, r, &req) {
		return
	}
	url, err := h.svc.CreateCreditPurchaseCheckout(r.Context(), req)
	h.respondURL(w, r, url, err)
}

func (h *handlers) autoTopUpSetup(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req setupRequest
	if !h.ready(w, r) || !h.decode(w, r, &req) {
		return
	}
	url, err := h.svc.CreateAutoTopUpSetup(r.Context(), req.PlatformID, req.SuccessURL, req.CancelURL)
	h.respondURL(w, r, url, err)
}

func (h *handlers) portal(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req portalRequest
	if !h.ready(w, r) || !h.decode(w, r, &req) {
		return
	}
	url, err := h.svc.CreateBillingPortal(r.Context(), req.PlatformID, req.ReturnURL)
	h.respondURL(w, r, url, err)
}

func (h *handlers) startTrial(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req app.TrialRequest
	if !h.ready(w, r) || !h.decode(w, r, &req) {
		return
	}
	sub, err := h.svc.StartTrial(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, trialResponse{
		SubscriptionID: sub.ID,
		Status:         string(sub.Status),
		TrialEnd:       sub.TrialEnd,
	})
}

// giftTrials always answers 200; each gift reports its own status.
func (h *handlers) giftTrials(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req giftTrialsRequest
	if !h.ready(w, r) || !h.decode(w, r, &req) {
		return
	}
	if len(req.Gifts) == 0 {
		h.respond(w, r, http.StatusBadRequest, errorResponse{Error: app.CodeValidation, Message: "gifts must not be empty"})
		return
	}
	h.respond(w, r, http.StatusOK, h.svc.GiftTrialBatch(r.Context(), req.Gifts))
}

func (h *handlers) topUp(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req topUpRequest
	if !h.ready(w, r) || !h.decode(w, r, &req) {
		return
	}
	res := h.svc.TopUpCredits(r.Context(), req.PlatformID, req.AmountUSD)
	status := http.StatusOK
	if res.Err != "" {
		status = httpStatus(res.Err)
	}
	h.respond(w, r, status, res)
}

func (h *handlers) attachPaymentMethod(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req paymentMethodRequest
	if !h.ready(w, r) || !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.AttachPaymentMethod(r.Context(), req.PlatformID, req.PaymentMethodID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) purgeCustomer(w http.ResponseWriter, r *http.Request, params map[string]string) {
	if !h.ready(w, r) {
		return
	}
	if err := h.svc.PurgeCustomer(r.Context(), params["platform_id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// webhook acknowledges a verified event. Bad events get a 400 so the provider
// stops retrying them; storage and provider failures are 5xx and retried.
func (h *handlers) webhook(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if !h.ready(w, r) {
		return
	}
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		h.respond(w, r, http.StatusRequestEntityTooLarge, errorResponse{Error: app.CodeBadEvent, Message: err.Error()})
		return
	}
	if err := h.svc.HandleWebhook(r.Context(), payload, r.Header.Get(signatureHeader)); err != nil {
		h.opts.Log.Warnw("webhook handling failed", "error", err)
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, map[string]bool{"received": true})
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if h.svc == nil {
		h.respond(w, r, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		return
	}
	h.respond(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) ready(w http.ResponseWriter, r *http.Request) bool {
	if h.svc != nil {
		return true
	}
	h.respond(w, r, http.StatusServiceUnavailable, errorResponse{Error: app.CodeProviderUnavailable, Message: "billing service not initialized"})
	return false
}

func (h *handlers) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	inbound, _ := runtime.MarshalerForRequest(h.mux, r)
	if err := inbound.NewDecoder(r.Body).Decode(v); err != nil {
		h.respond(w, r, http.StatusBadRequest, errorResponse{Error: app.CodeValidation, Message: "malformed request body: " + err.Error()})
		return false
	}
	return true
}

func (h *handlers) respondURL(w http.ResponseWriter, r *http.Request, url string, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, urlResponse{URL: url})
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := app.ErrorCode(err)
	status := httpStatus(code)
	if status >= http.StatusInternalServerError {
		h.opts.Log.Errorw("billing request failed", "path", r.URL.Path, "code", code, "error", err)
	}
	msg := err.Error()
	if hints := errors.FlattenHints(err); hints != "" {
		msg += " (" + hints + ")"
	}
	h.respond(w, r, status, errorResponse{Error: code, Message: msg})
}

func (h *handlers) respond(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	_, outbound := runtime.MarshalerForRequest(h.mux, r)
	buf, err := outbound.Marshal(v)
	if err != nil {
		h.opts.Log.Errorw("failed to encode response", "path", r.URL.Path, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", outbound.ContentType(v))
	w.WriteHeader(status)
	if _, err := w.Write(buf); err != nil {
		h.opts.Log.Warnw("failed to write response", "path", r.URL.Path, "error", err)
	}
}

// grpcCode maps an outcome code to the closest gRPC status code; the HTTP
// status follows grpc-gateway's standard mapping.
func grpcCode(code string) codes.Code {
	switch code {
	case app.CodeValidation, app.CodeBadEvent:
		return codes.InvalidArgument
	case app.CodeNotFound:
		return codes.NotFound
	case app.CodeProviderUnavailable:
		return codes.Unavailable
	case app.CodePlanUpdate, app.CodeScheduleUpdate, app.CodeSession, app.CodePayment:
		return codes.FailedPrecondition
	case app.CodeConfiguration, app.CodeDatabase:
		return codes.Internal
	default:
		return codes.Unknown
	}
}

func httpStatus(code string) int {
	return runtime.HTTPStatusFromCode(grpcCode(code))
}
