package sequence_test

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/invoicecore/internal/clock"
	"github.com/smallbiznis/invoicecore/internal/sequence"
	"github.com/smallbiznis/invoicecore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDatabaseAllocatorIsMonotonicPerPrefix(t *testing.T) {
	db := testutil.NewDB(t)
	alloc := sequence.NewDatabase(sequence.DefaultTemplate, clock.NewFakeClock(time.Now()))
	ctx := context.Background()

	for _, want := range []string{"INV00001", "INV00002", "INV00003"} {
		got, err := alloc.Next(ctx, db, "INV")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := alloc.Next(ctx, db, "CRN")
	require.NoError(t, err)
	assert.Equal(t, "CRN00001", got)
}

func TestDatabaseAllocatorRollsBackWithTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	alloc := sequence.NewDatabase("", clock.NewFakeClock(time.Now()))
	ctx := context.Background()

	_, err := alloc.Next(ctx, db, "INV")
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		number, err := alloc.Next(ctx, tx, "INV")
		require.NoError(t, err)
		assert.Equal(t, "INV00002", number)
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	number, err := alloc.Next(ctx, db, "INV")
	require.NoError(t, err)
	assert.Equal(t, "INV00002", number)
}

func TestAllocatorRejectsEmptyPrefix(t *testing.T) {
	db := testutil.NewDB(t)
	alloc := sequence.NewDatabase("", clock.NewFakeClock(time.Now()))

	_, err := alloc.Next(context.Background(), db, "  ")
	assert.Error(t, err)
}
