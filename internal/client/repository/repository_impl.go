package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicecore/internal/client/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO clients (id, company_name, tax_id, billing_address, contact_person,
		                      contact_email, contact_phone, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		client.ID,
		client.CompanyName,
		client.TaxID,
		client.BillingAddress,
		client.ContactPerson,
		client.ContactEmail,
		client.ContactPhone,
		client.IsActive,
		client.CreatedAt,
		client.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	err := db.WithContext(ctx).Raw(
		`SELECT id, company_name, tax_id, billing_address, contact_person,
		        contact_email, contact_phone, is_active, created_at, updated_at
		 FROM clients WHERE id = ?`,
		id,
	).Scan(&client).Error
	if err != nil {
		return nil, err
	}
	if client.ID == 0 {
		return nil, nil
	}
	return &client, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Client, error) {
	var clients []domain.Client
	stmt := db.WithContext(ctx).Model(&domain.Client{})
	if filter.CompanyName != "" {
		stmt = stmt.Where("LOWER(company_name) LIKE ?", "%"+filter.CompanyName+"%")
	}
	if filter.Active != nil {
		stmt = stmt.Where("is_active = ?", *filter.Active)
	}
	err := stmt.Order("company_name ASC, id ASC").Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, client *domain.Client) error {
	if client == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE clients
		 SET company_name = ?, tax_id = ?, billing_address = ?, contact_person = ?,
		     contact_email = ?, contact_phone = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		client.CompanyName,
		client.TaxID,
		client.BillingAddress,
		client.ContactPerson,
		client.ContactEmail,
		client.ContactPhone,
		client.IsActive,
		client.UpdatedAt,
		client.ID,
	).Error
}
