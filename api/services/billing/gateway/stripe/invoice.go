package stripegw

import (
	"context"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/peshal-hash/activepieces/api/config"
	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
)

func (c *client) CreateInvoice(ctx context.Context, customerID, description string) (gw.Invoice, error) {
	params := &stripe.InvoiceCreateParams{
		Customer:    stripe.String(customerID),
		Currency:    stripe.String(config.Currency),
		AutoAdvance: stripe.Bool(false),
		Description: stripe.String(description),
	}
	var out gw.Invoice
	err := c.guard.do(ctx, "create invoice", func() error {
		inv, err := c.sc.V1Invoices.Create(ctx, params)
		if err != nil {
			return err
		}
		out = toInvoice(inv)
		return nil
	})
	return out, err
}

func (c *client) AddInvoiceItem(ctx context.Context, invoiceID, customerID string, amountCents int64, description string) error {
	params := &stripe.InvoiceItemCreateParams{
		Customer:    stripe.String(customerID),
		Invoice:     stripe.String(invoiceID),
		Currency:    stripe.String(config.Currency),
		Description: stripe.String(description),
		Amount:      stripe.Int64(amountCents),
	}
	return c.guard.do(ctx, "create invoice item", func() error {
		_, err := c.sc.V1InvoiceItems.Create(ctx, params)
		return err
	})
}

func (c *client) FinalizeInvoice(ctx context.Context, invoiceID string) (gw.Invoice, error) {
	var out gw.Invoice
	err := c.guard.do(ctx, "finalize invoice", func() error {
		inv, err := c.sc.V1Invoices.FinalizeInvoice(ctx, invoiceID, &stripe.InvoiceFinalizeInvoiceParams{})
		if err != nil {
			return err
		}
		out = toInvoice(inv)
		return nil
	})
	return out, err
}

func (c *client) PayInvoice(ctx context.Context, invoiceID, paymentMethodID string) (gw.Invoice, error) {
	params := &stripe.InvoicePayParams{}
	if paymentMethodID != "" {
		params.PaymentMethod = stripe.String(paymentMethodID)
	}
	var out gw.Invoice
	err := c.guard.do(ctx, "pay invoice", func() error {
		inv, err := c.sc.V1Invoices.Pay(ctx, invoiceID, params)
		if err != nil {
			return err
		}
		out = toInvoice(inv)
		return nil
	})
	return out, err
}

func toInvoice(inv *stripe.Invoice) gw.Invoice {
	if inv == nil {
		return gw.Invoice{}
	}
	return gw.Invoice{
		ID:     inv.ID,
		Status: string(inv.Status),
		Paid:   inv.Status == stripe.InvoiceStatusPaid,
		Total:  inv.Total,
	}
}
