package company

import (
	"errors"
	"os"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/smallbiznis/invoicecore/internal/config"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Holder serves a company profile loaded by viper and swaps it atomically when
// the backing file changes. Invalid edits are ignored.
type Holder struct {
	current atomic.Value // holds Profile
	log     *zap.Logger
}

// NewHolder reads company.yml from the configured search paths. When no file is
// present the profile comes from COMPANY_* environment variables.
func NewHolder(cfg config.Config, log *zap.Logger) (*Holder, error) {
	v := viper.New()
	v.SetConfigName("company")
	v.SetConfigType("yml")
	if cfg.CompanyConfigPath != "" {
		v.AddConfigPath(cfg.CompanyConfigPath)
	}
	v.AddConfigPath("/etc/invoicecore")
	v.AddConfigPath(".")

	v.SetEnvPrefix("INVOICECORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
	}

	profile, err := decode(v)
	if err != nil {
		return nil, err
	}

	h := &Holder{log: log.Named("company.holder")}
	h.current.Store(profile)

	if fileLoaded {
		v.OnConfigChange(func(e fsnotify.Event) {
			h.reload(v, e.Name)
		})
		v.WatchConfig()
	}

	return h, nil
}

func (h *Holder) Profile() Profile {
	return h.current.Load().(Profile)
}

func (h *Holder) reload(v *viper.Viper, source string) {
	updated, err := decode(v)
	if err != nil {
		h.log.Warn("company profile reload rejected", zap.String("source", source), zap.Error(err))
		return
	}
	h.current.Store(updated)
	h.log.Info("company profile reloaded", zap.String("source", source))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("company.name", os.Getenv("COMPANY_NAME"))
	v.SetDefault("company.tax_id", os.Getenv("COMPANY_GSTIN"))
	v.SetDefault("company.address", os.Getenv("COMPANY_ADDRESS"))
	v.SetDefault("company.email", os.Getenv("COMPANY_EMAIL"))
	v.SetDefault("company.phone", os.Getenv("COMPANY_PHONE"))
	templateVersion := os.Getenv("INVOICE_TEMPLATE_VERSION")
	if templateVersion == "" {
		templateVersion = DefaultTemplateVersion
	}
	v.SetDefault("company.template_version", templateVersion)
}

func decode(v *viper.Viper) (Profile, error) {
	p := normalize(Profile{
		Name:            v.GetString("company.name"),
		TaxID:           v.GetString("company.tax_id"),
		Address:         v.GetString("company.address"),
		Email:           v.GetString("company.email"),
		Phone:           v.GetString("company.phone"),
		TemplateVersion: v.GetString("company.template_version"),
	})
	if err := Validate(p); err != nil {
		return Profile{}, err
	}
	return p, nil
}
