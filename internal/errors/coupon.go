package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// CouponReason identifies why a coupon was rejected.
type CouponReason string

const (
	CouponNotFound      CouponReason = "not_found"
	CouponInactive      CouponReason = "inactive"
	CouponAlreadyUsed   CouponReason = "already_used"
	CouponLimitExceeded CouponReason = "limit_exceeded"
	CouponNotYetValid   CouponReason = "not_yet_valid"
	CouponExpired       CouponReason = "expired"
	CouponBelowMinimum  CouponReason = "below_minimum"
)

// CouponError is the typed payload of a coupon-invalid failure.
type CouponError struct {
	Reason  CouponReason
	Code    string
	Message string
}

func (e *CouponError) Error() string {
	return fmt.Sprintf("coupon %s rejected (%s): %s", e.Code, e.Reason, e.Message)
}

// NewCouponError builds a coupon-invalid error carrying reason.
func NewCouponError(reason CouponReason, code string, message string) error {
	cause := &CouponError{Reason: reason, Code: code, Message: message}
	return WithError(cause).
		WithHint(message).
		WithReportableDetails(map[string]any{
			"reason": string(reason),
			"code":   code,
		}).
		Mark(ErrCouponInvalid)
}

// CouponReasonOf extracts the rejection reason from a coupon-invalid error.
func CouponReasonOf(err error) (CouponReason, bool) {
	var ce *CouponError
	if !errors.As(err, &ce) {
		return "", false
	}
	return ce.Reason, true
}
