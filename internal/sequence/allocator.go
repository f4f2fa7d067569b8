// Package sequence hands out invoice numbers, monotonic per prefix.
package sequence

import (
	"context"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/invoicecore/internal/clock"
	"github.com/smallbiznis/invoicecore/internal/config"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Allocator returns the next formatted invoice number for prefix.
type Allocator interface {
	Next(ctx context.Context, db *gorm.DB, prefix string) (string, error)
}

type counter interface {
	increment(ctx context.Context, db *gorm.DB, prefix string, now time.Time) (int64, error)
}

type Params struct {
	fx.In

	Config config.Config
	Clock  clock.Clock
	Log    *zap.Logger
	Redis  *redis.Client `optional:"true"`
}

type allocator struct {
	counter  counter
	template string
	clock    clock.Clock
	log      *zap.Logger
}

func New(p Params) Allocator {
	template := strings.TrimSpace(p.Config.InvoiceNumberTemplate)
	if template == "" {
		template = DefaultTemplate
	}

	var c counter = databaseCounter{}
	backend := config.SequenceBackendDatabase
	if p.Config.SequenceBackend == config.SequenceBackendRedis && p.Redis != nil {
		c = redisCounter{client: p.Redis}
		backend = config.SequenceBackendRedis
	}

	log := p.Log.Named("sequence")
	log.Info("invoice sequence configured", zap.String("backend", backend), zap.String("template", template))
	return &allocator{counter: c, template: template, clock: p.Clock, log: log}
}

// NewDatabase returns an allocator backed by the invoice_sequences table.
func NewDatabase(template string, clk clock.Clock) Allocator {
	if strings.TrimSpace(template) == "" {
		template = DefaultTemplate
	}
	return &allocator{counter: databaseCounter{}, template: template, clock: clk, log: zap.NewNop()}
}

func (a *allocator) Next(ctx context.Context, db *gorm.DB, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", ierr.NewError("invoice prefix is empty").Mark(ierr.ErrValidation)
	}

	now := a.clock.Now()
	seq, err := a.counter.increment(ctx, db, prefix, now)
	if err != nil {
		a.log.Error("failed to allocate invoice number", zap.String("prefix", prefix), zap.Error(err))
		return "", ierr.Storage(err)
	}
	return Format(a.template, prefix, now, seq)
}
