package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error kinds surfaced by the invoicing core. Callers match them with errors.Is
// or the Is* helpers below; presentation is left to the caller.
var (
	ErrNotFound           = new(ErrCodeNotFound, "resource not found")
	ErrInvalidTransition  = new(ErrCodeInvalidTransition, "invalid state transition")
	ErrValidation         = new(ErrCodeValidation, "invalid input")
	ErrCouponInvalid      = new(ErrCodeCouponInvalid, "coupon invalid")
	ErrConflict           = new(ErrCodeConflict, "conflict")
	ErrStorageUnavailable = new(ErrCodeStorageUnavailable, "storage unavailable")
	ErrPermissionDenied   = new(ErrCodePermissionDenied, "permission denied")

	kinds = []*InternalError{
		ErrNotFound,
		ErrInvalidTransition,
		ErrValidation,
		ErrCouponInvalid,
		ErrConflict,
		ErrStorageUnavailable,
		ErrPermissionDenied,
	}
)

const (
	ErrCodeNotFound           = "not_found"
	ErrCodeInvalidTransition  = "invalid_transition"
	ErrCodeValidation         = "invalid_input"
	ErrCodeCouponInvalid      = "coupon_invalid"
	ErrCodeConflict           = "conflict"
	ErrCodeStorageUnavailable = "storage_unavailable"
	ErrCodePermissionDenied   = "permission_denied"
)

// InternalError represents a domain error kind.
type InternalError struct {
	Code    string
	Message string
	Err     error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}
	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}
	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{Code: code, Message: message}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsCouponInvalid(err error) bool {
	return errors.Is(err, ErrCouponInvalid)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// Kind returns the taxonomy code of err, or an empty string for unclassified errors.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k.Code
		}
	}
	return ""
}

// Storage classifies a repository failure as storage-unavailable.
// Errors that already carry a kind are returned untouched.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	if Kind(err) != "" {
		return err
	}
	return WithError(err).
		WithHint("The data store is unavailable, please retry later.").
		Mark(ErrStorageUnavailable)
}
