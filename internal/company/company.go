// Package company provides the issuing company's identity used on invoices.
package company

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Profile is the read-only company record frozen into invoice snapshots.
type Profile struct {
	Name            string `validate:"required"`
	TaxID           string
	Address         string
	Email           string `validate:"omitempty,email"`
	Phone           string
	TemplateVersion string `validate:"required"`
}

// Provider returns the current company profile.
type Provider interface {
	Profile() Profile
}

type static struct {
	profile Profile
}

// NewStatic returns a Provider that always serves p.
func NewStatic(p Profile) Provider {
	return static{profile: normalize(p)}
}

func (s static) Profile() Profile {
	return s.profile
}

var validate = validator.New()

func Validate(p Profile) error {
	return validate.Struct(p)
}

func normalize(p Profile) Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.TaxID = strings.ToUpper(strings.TrimSpace(p.TaxID))
	p.Address = strings.TrimSpace(p.Address)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Phone = strings.TrimSpace(p.Phone)
	p.TemplateVersion = strings.TrimSpace(p.TemplateVersion)
	if p.TemplateVersion == "" {
		p.TemplateVersion = DefaultTemplateVersion
	}
	return p
}

const DefaultTemplateVersion = "v1"
