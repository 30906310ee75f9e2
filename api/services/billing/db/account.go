package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
)

// ErrAccountNotFound is returned when a platform has no billing account row.
var ErrAccountNotFound = errors.New("billing account not found")

// Account maps a platform to its provider customer and latest subscription.
type Account struct {
	PlatformID           string    `db:"platform_id"`
	StripeCustomerID     string    `db:"stripe_customer_id"`
	StripeSubscriptionID string    `db:"stripe_subscription_id"`
	Email                string    `db:"email"`
	UpdatedAt            time.Time `db:"updated_at"`
}

// AccountStore persists billing accounts in Postgres.
type AccountStore struct {
	db *sqlx.DB
}

func NewAccountStore(db *sqlx.DB) *AccountStore {
	return &AccountStore{db: db}
}

// GetAccount returns the account for platformID.
func (s *AccountStore) GetAccount(ctx context.Context, platformID string) (Account, error) {
	var acc Account
	err := s.db.GetContext(ctx, &acc, `SELECT platform_id, stripe_customer_id, stripe_subscription_id, email, updated_at
		FROM billing_account WHERE platform_id = $1`, platformID)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, errors.Wrapf(err, "select billing account %s", platformID)
	}
	return acc, nil
}

// GetAccountByCustomer returns the account owning a provider customer id.
func (s *AccountStore) GetAccountByCustomer(ctx context.Context, customerID string) (Account, error) {
	var acc Account
	err := s.db.GetContext(ctx, &acc, `SELECT platform_id, stripe_customer_id, stripe_subscription_id, email, updated_at
		FROM billing_account WHERE stripe_customer_id = $1 LIMIT 1`, customerID)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, errors.Wrapf(err, "select billing account for customer %s", customerID)
	}
	return acc, nil
}

// UpsertAccount inserts or updates the account. Empty customer, subscription
// or email values never overwrite stored ones.
func (s *AccountStore) UpsertAccount(ctx context.Context, acc Account) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO billing_account
			(platform_id, stripe_customer_id, stripe_subscription_id, email, updated_at)
		VALUES (:platform_id, :stripe_customer_id, :stripe_subscription_id, :email, now())
		ON CONFLICT (platform_id) DO UPDATE SET
			stripe_customer_id     = COALESCE(NULLIF(EXCLUDED.stripe_customer_id, ''), billing_account.stripe_customer_id),
			stripe_subscription_id = COALESCE(NULLIF(EXCLUDED.stripe_subscription_id, ''), billing_account.stripe_subscription_id),
			email                  = COALESCE(NULLIF(EXCLUDED.email, ''), billing_account.email),
			updated_at             = now()`, acc)
	if err != nil {
		return errors.Wrapf(err, "upsert billing account %s", acc.PlatformID)
	}
	return nil
}

// ClearSubscription forgets subscriptionID on the platform's account. It
// reports false when the account points at another subscription.
func (s *AccountStore) ClearSubscription(ctx context.Context, platformID, subscriptionID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE billing_account
		SET stripe_subscription_id = '', updated_at = now()
		WHERE platform_id = $1 AND stripe_subscription_id = $2`, platformID, subscriptionID)
	if err != nil {
		return false, errors.Wrapf(err, "clear subscription of billing account %s", platformID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrapf(err, "clear subscription of billing account %s", platformID)
	}
	return n > 0, nil
}

// DeleteAccount removes the account row. Deleting a missing row is not an error.
func (s *AccountStore) DeleteAccount(ctx context.Context, platformID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM billing_account WHERE platform_id = $1`, platformID); err != nil {
		return errors.Wrapf(err, "delete billing account %s", platformID)
	}
	return nil
}
