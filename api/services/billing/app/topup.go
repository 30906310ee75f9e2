package app

import (
	"context"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
)

const topUpDescription = "AI credits top-up"

// TopUpCredits charges the platform's default payment method through a
// one-off invoice. The result is reported as data for the auto top-up job.
func (s *serviceImpl) TopUpCredits(ctx context.Context, platformID string, amountUSD decimal.Decimal) (res TopUpResult) {
	res = TopUpResult{PlatformID: platformID}
	fail := func(err error) TopUpResult {
		res.Err, res.Message = ErrorCode(err), err.Error()
		s.log.Errorw("credit top-up failed", "platform_id", platformID, "invoice_id", res.InvoiceID, "error", err)
		return res
	}

	cents, err := toCents(amountUSD)
	if err != nil {
		return fail(err)
	}
	res.AmountCents = cents
	acc, err := s.requireAccount(ctx, platformID)
	if err != nil {
		return fail(err)
	}
	methods, err := s.gw.ListPaymentMethods(ctx, acc.StripeCustomerID)
	if err != nil {
		return fail(providerError(err, ErrPayment, "list payment methods of customer %s", acc.StripeCustomerID))
	}
	if len(methods) == 0 {
		return fail(validationError("customer %s has no payment method", acc.StripeCustomerID))
	}
	method, ok := lo.Find(methods, func(pm gw.PaymentMethod) bool { return pm.Default })
	if !ok {
		method = methods[0]
	}

	inv, err := s.gw.CreateInvoice(ctx, acc.StripeCustomerID, topUpDescription)
	if err != nil {
		return fail(providerError(err, ErrPayment, "create invoice for customer %s", acc.StripeCustomerID))
	}
	res.InvoiceID = inv.ID
	if err := s.gw.AddInvoiceItem(ctx, inv.ID, acc.StripeCustomerID, cents, topUpDescription); err != nil {
		return fail(providerError(err, ErrPayment, "add item to invoice %s", inv.ID))
	}
	if _, err := s.gw.FinalizeInvoice(ctx, inv.ID); err != nil {
		return fail(providerError(err, ErrPayment, "finalize invoice %s", inv.ID))
	}
	paid, err := s.gw.PayInvoice(ctx, inv.ID, method.ID)
	if err != nil {
		return fail(providerError(err, ErrPayment, "pay invoice %s", inv.ID))
	}
	res.Paid = paid.Paid
	s.log.Infow("credit top-up charged",
		"platform_id", platformID,
		"invoice_id", inv.ID,
		"amount_cents", cents,
		"paid", paid.Paid,
	)
	return res
}
