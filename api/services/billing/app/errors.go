package app

import (
	"github.com/cockroachdb/errors"

	"github.com/peshal-hash/activepieces/api/services/billing/catalog"
	gw "github.com/peshal-hash/activepieces/api/services/billing/gateway"
)

// Typed errors for the billing app layer. Callers map them to outcome codes
// and HTTP statuses without depending on provider SDK error types.
var (
	// ErrConfiguration indicates a plan/cycle/item combination with no catalog entry.
	ErrConfiguration = catalog.ErrConfiguration
	// ErrPlanUpdate indicates the provider rejected an immediate item update.
	ErrPlanUpdate = errors.New("plan update failed")
	// ErrScheduleUpdate indicates the provider rejected a schedule create, update or release.
	ErrScheduleUpdate = errors.New("schedule update failed")
	// ErrProviderUnavailable indicates a transport failure, provider 5xx or open circuit.
	ErrProviderUnavailable = errors.New("billing provider unavailable")
	// ErrValidation indicates a malformed request.
	ErrValidation = errors.New("invalid request")
	// ErrDatabase indicates a database-related failure.
	ErrDatabase = errors.New("database error")
	// ErrBadEvent indicates the incoming event payload is invalid or missing required fields.
	ErrBadEvent = errors.New("bad event")
	// ErrSession indicates the provider refused to create a hosted session.
	ErrSession = errors.New("session creation failed")
	// ErrPayment indicates a one-off charge or payment method change failed.
	ErrPayment = errors.New("payment failed")
	// ErrNotFound indicates the platform has no billing account or subscription.
	ErrNotFound = errors.New("not found")
)

// Outcome codes rendered into error redirects.
const (
	CodeConfiguration       = "configuration_error"
	CodePlanUpdate          = "plan_update_failed"
	CodeScheduleUpdate      = "schedule_update_failed"
	CodeProviderUnavailable = "provider_unavailable"
	CodeValidation          = "invalid_request"
	CodeDatabase            = "database_error"
	CodeBadEvent            = "bad_event"
	CodeNotFound            = "not_found"
	CodeSession             = "session_failed"
	CodePayment             = "payment_failed"
	CodeUnknown             = "unknown_error"
)

// ErrorCode maps an error to its stable outcome code.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrProviderUnavailable):
		return CodeProviderUnavailable
	case errors.Is(err, ErrConfiguration):
		return CodeConfiguration
	case errors.Is(err, ErrPlanUpdate):
		return CodePlanUpdate
	case errors.Is(err, ErrScheduleUpdate):
		return CodeScheduleUpdate
	case errors.Is(err, ErrSession):
		return CodeSession
	case errors.Is(err, ErrPayment):
		return CodePayment
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrDatabase):
		return CodeDatabase
	case errors.Is(err, ErrBadEvent):
		return CodeBadEvent
	}
	return CodeUnknown
}

// providerError wraps a gateway error. Unavailability wins over the caller's
// sentinel so transport failures are reported uniformly.
func providerError(err error, sentinel error, format string, args ...interface{}) error {
	wrapped := errors.Wrapf(err, format, args...)
	if errors.Is(err, gw.ErrUnavailable) {
		return errors.Mark(wrapped, ErrProviderUnavailable)
	}
	return errors.Mark(wrapped, sentinel)
}

func validationError(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrValidation)
}
