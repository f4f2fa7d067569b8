package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkedErrorsMatchTheirKind(t *testing.T) {
	err := NewError("invoice missing").
		WithHint("Invoice not found").
		Mark(ErrNotFound)

	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.Equal(t, ErrCodeNotFound, Kind(err))
	assert.Contains(t, Hints(err), "Invoice not found")
}

func TestStorageWrapsUnclassifiedErrors(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Storage(cause)

	require.Error(t, err)
	assert.True(t, IsStorageUnavailable(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrCodeStorageUnavailable, Kind(err))

	assert.Nil(t, Storage(nil))

	conflict := NewError("duplicate").Mark(ErrConflict)
	assert.Equal(t, conflict, Storage(conflict))
}

func TestCouponErrorCarriesReason(t *testing.T) {
	err := NewCouponError(CouponExpired, "SAVE10", "Coupon expired")

	assert.True(t, IsCouponInvalid(err))
	reason, ok := CouponReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, CouponExpired, reason)

	_, ok = CouponReasonOf(NewError("other").Mark(ErrValidation))
	assert.False(t, ok)
}

func TestKindOfUnclassifiedError(t *testing.T) {
	assert.Equal(t, "", Kind(stderrors.New("boom")))
	assert.Equal(t, "", Kind(nil))
}
