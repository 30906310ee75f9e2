package app

import (
	"context"

	"github.com/cockroachdb/errors"

	billingdb "github.com/peshal-hash/activepieces/api/services/billing/db"
	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
)

// ensureCustomer returns the platform's account, creating the provider
// customer and the account row when missing.
func (s *serviceImpl) ensureCustomer(ctx context.Context, platformID, email string) (billingdb.Account, error) {
	acc, err := s.accounts.GetAccount(ctx, platformID)
	if err != nil && !errors.Is(err, billingdb.ErrAccountNotFound) {
		return billingdb.Account{}, errors.Mark(err, ErrDatabase)
	}
	if acc.StripeCustomerID != "" {
		return acc, nil
	}

	customerID, err := s.gw.CreateCustomer(ctx, gw.NewCustomer{
		Email:    email,
		Metadata: map[string]string{"platform_id": platformID},
	})
	if err != nil {
		return billingdb.Account{}, providerError(err, ErrSession, "create customer for platform %s", platformID)
	}
	acc = billingdb.Account{PlatformID: platformID, StripeCustomerID: customerID, Email: email}
	if err := s.accounts.UpsertAccount(ctx, acc); err != nil {
		return billingdb.Account{}, errors.Mark(err, ErrDatabase)
	}
	s.log.Infow("created billing customer", "platform_id", platformID, "customer_id", customerID)
	return acc, nil
}

// requireAccount returns the platform's account or ErrNotFound.
func (s *serviceImpl) requireAccount(ctx context.Context, platformID string) (billingdb.Account, error) {
	acc, err := s.accounts.GetAccount(ctx, platformID)
	if errors.Is(err, billingdb.ErrAccountNotFound) || (err == nil && acc.StripeCustomerID == "") {
		return billingdb.Account{}, errors.Mark(errors.Newf("platform %s has no billing customer", platformID), ErrNotFound)
	}
	if err != nil {
		return billingdb.Account{}, errors.Mark(err, ErrDatabase)
	}
	return acc, nil
}

// AttachPaymentMethod attaches a collected payment method to the platform's customer.
func (s *serviceImpl) AttachPaymentMethod(ctx context.Context, platformID, paymentMethodID string) error {
	if paymentMethodID == "" {
		return validationError("payment method id is required")
	}
	acc, err := s.requireAccount(ctx, platformID)
	if err != nil {
		return err
	}
	if err := s.gw.AttachPaymentMethod(ctx, paymentMethodID, acc.StripeCustomerID); err != nil {
		return providerError(err, ErrPayment, "attach payment method to customer %s", acc.StripeCustomerID)
	}
	return nil
}

// PurgeCustomer deletes the provider customer, which cancels its
// subscriptions, and then the local account and any pending gift trial.
func (s *serviceImpl) PurgeCustomer(ctx context.Context, platformID string) error {
	acc, err := s.requireAccount(ctx, platformID)
	if err != nil {
		return err
	}
	if err := s.gw.DeleteCustomer(ctx, acc.StripeCustomerID); err != nil {
		if !errors.Is(err, gw.ErrRejected) {
			return providerError(err, ErrPayment, "delete customer %s", acc.StripeCustomerID)
		}
		// Already deleted on the provider side.
		s.log.Warnw("provider refused customer deletion, removing local account anyway",
			"platform_id", platformID, "customer_id", acc.StripeCustomerID, "error", err)
	}
	if err := s.accounts.DeleteAccount(ctx, platformID); err != nil {
		return errors.Mark(err, ErrDatabase)
	}
	if err := s.gifts.Discard(ctx, platformID, acc.StripeCustomerID); err != nil {
		s.log.Warnw("failed to discard gift trial hold", "platform_id", platformID, "customer_id", acc.StripeCustomerID, "error", err)
	}
	s.log.Infow("purged billing customer", "platform_id", platformID, "customer_id", acc.StripeCustomerID)
	return nil
}
