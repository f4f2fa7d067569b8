package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicecore/internal/product/domain"
	"github.com/smallbiznis/invoicecore/pkg/db/option"
	"github.com/smallbiznis/invoicecore/pkg/repository"
	"gorm.io/gorm"
)

var sortable = map[string]bool{
	"name":       true,
	"rate":       true,
	"created_at": true,
}

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) store(db *gorm.DB) repository.Repository[domain.Product] {
	return repository.ProvideStore[domain.Product](db)
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return r.store(db).Create(ctx, product)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Product, error) {
	return r.store(db).FindOne(ctx, &domain.Product{ID: id})
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Product, error) {
	opts := []option.QueryOption{}
	if name := strings.TrimSpace(filter.Name); name != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{
			Field:    "name",
			Operator: option.LIKE,
			Value:    strings.ToLower(name),
		}))
	}
	if filter.Active != nil {
		opts = append(opts, option.ApplyOperator(option.Condition{
			Field:    "is_active",
			Operator: option.EQ,
			Value:    *filter.Active,
		}))
	}
	opts = append(opts, option.WithSortBy(option.QuerySortBy{
		SortBy:  filter.SortBy,
		OrderBy: filter.OrderBy,
		Allow:   sortable,
		Default: "created_at",
	}))

	rows, err := r.store(db).Find(ctx, &domain.Product{}, opts...)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		items = append(items, *row)
	}
	return items, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	return r.store(db).Update(ctx, id, fields)
}
