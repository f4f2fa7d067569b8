package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindByNumber(ctx context.Context, db *gorm.DB, number string) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Invoice, error)
	// UpdateIfStatus writes fields only while the invoice is still in
	// status and reports how many rows changed.
	UpdateIfStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status, fields map[string]any) (int64, error)
	DeleteIfStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status) (int64, error)
}
