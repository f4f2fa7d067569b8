package sequence

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type databaseCounter struct{}

// ensureRow creates the counter row for prefix when it is missing.
func ensureRow(ctx context.Context, db *gorm.DB, prefix string, now time.Time) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Counter{Prefix: prefix, Value: 0, UpdatedAt: now}).Error
}

func currentValue(ctx context.Context, db *gorm.DB, prefix string) (int64, error) {
	var value int64
	err := db.WithContext(ctx).Raw(
		`SELECT value FROM invoice_sequences WHERE prefix = ?`,
		prefix,
	).Scan(&value).Error
	return value, err
}

// increment bumps the counter inside db, which is normally the caller's
// transaction, so a rolled back invoice also rolls back its number.
func (databaseCounter) increment(ctx context.Context, db *gorm.DB, prefix string, now time.Time) (int64, error) {
	if err := ensureRow(ctx, db, prefix, now); err != nil {
		return 0, err
	}
	err := db.WithContext(ctx).Exec(
		`UPDATE invoice_sequences SET value = value + 1, updated_at = ? WHERE prefix = ?`,
		now,
		prefix,
	).Error
	if err != nil {
		return 0, err
	}
	return currentValue(ctx, db, prefix)
}
