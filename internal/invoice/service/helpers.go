package service

import (
	"time"

	coupondomain "github.com/smallbiznis/invoicecore/internal/coupon/domain"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
	"github.com/smallbiznis/invoicecore/internal/invoice/domain"
)

const defaultDueDays = 30

// DueDate is issued plus days, falling back to 30 days when days is not positive.
func DueDate(issued time.Time, days int) time.Time {
	if days <= 0 {
		days = defaultDueDays
	}
	return issued.AddDate(0, 0, days)
}

// NewCouponApplication copies a validation result onto an invoice.
func NewCouponApplication(v *coupondomain.Validation, userID string, at time.Time) *domain.CouponApplication {
	return &domain.CouponApplication{
		CouponID:       v.CouponID,
		Code:           v.Code,
		DiscountType:   string(v.Type),
		DiscountValue:  v.Value,
		Discount:       v.Discount,
		OriginalAmount: v.Amount,
		FinalAmount:    v.Final,
		UserID:         userID,
		AppliedAt:      at,
	}
}

// RedeemFailed reports a coupon that could not be recorded after the
// payment it discounted was stored.
func RedeemFailed(code string, cause error) error {
	return ierr.NewErrorf("redeem coupon %s: %v", code, cause).
		WithHint("Payment was recorded but the coupon usage could not be saved.").
		Mark(ierr.ErrStorageUnavailable)
}
