package company

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smallbiznis/invoicecore/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewStaticNormalizes(t *testing.T) {
	p := NewStatic(Profile{
		Name:  "  Qupr Digital ",
		TaxID: "29abcde1234f1z5",
		Email: "Billing@Qupr.Example",
	}).Profile()

	assert.Equal(t, "Qupr Digital", p.Name)
	assert.Equal(t, "29ABCDE1234F1Z5", p.TaxID)
	assert.Equal(t, "billing@qupr.example", p.Email)
	assert.Equal(t, DefaultTemplateVersion, p.TemplateVersion)
}

func TestValidateRequiresName(t *testing.T) {
	assert.Error(t, Validate(normalize(Profile{})))
	assert.Error(t, Validate(normalize(Profile{Name: "Acme", Email: "not-an-email"})))
	assert.NoError(t, Validate(normalize(Profile{Name: "Acme"})))
}

func TestHolderFallsBackToEnvironment(t *testing.T) {
	t.Setenv("COMPANY_NAME", "Env Co")
	t.Setenv("COMPANY_GSTIN", "27aaaaa0000a1z5")
	t.Setenv("INVOICE_TEMPLATE_VERSION", "v2")

	h, err := NewHolder(config.Config{CompanyConfigPath: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)

	p := h.Profile()
	assert.Equal(t, "Env Co", p.Name)
	assert.Equal(t, "27AAAAA0000A1Z5", p.TaxID)
	assert.Equal(t, "v2", p.TemplateVersion)
}

func TestHolderReadsFileAndReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "company.yml")
	require.NoError(t, os.WriteFile(path, []byte(`company:
  name: File Co
  email: accounts@file.example
  template_version: v3
`), 0o600))

	h, err := NewHolder(config.Config{CompanyConfigPath: dir}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "File Co", h.Profile().Name)
	assert.Equal(t, "v3", h.Profile().TemplateVersion)

	require.NoError(t, os.WriteFile(path, []byte(`company:
  name: Renamed Co
  template_version: v3
`), 0o600))

	assert.Eventually(t, func() bool {
		return h.Profile().Name == "Renamed Co"
	}, 5*time.Second, 50*time.Millisecond)
}
