package txbuilder

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/chain"
)

const (
	OpTransfer       = "transfer"
	OpSimpleTransfer = "simple_transfer"
	OpDaoDeposit     = "dao_deposit"
	OpDaoWithdraw    = "dao_withdraw"
	OpDaoClaim       = "dao_claim"
	OpSudtIssue      = "sudt_issue"
	OpAdjustAccount  = "adjust_account"
)

// Builder builds transactions against a record store. It holds no per-request
// state and is safe for concurrent use.
type Builder struct {
	store   RecordStore
	scripts *chain.ScriptRegistry
	metrics Metrics
	cfg     Config
	logger  *zap.Logger
}

func NewBuilder(store RecordStore, scripts *chain.ScriptRegistry, metrics Metrics, cfg Config, logger *zap.Logger) (*Builder, error) {
	if store == nil {
		return nil, errors.New("record store is required")
	}
	if scripts == nil {
		return nil, errors.New("script registry is required")
	}
	if metrics == nil {
		return nil, errors.New("txbuilder metrics is required")
	}
	if cfg.Network == "" {
		return nil, errors.New("network is required")
	}
	return &Builder{
		store:   store,
		scripts: scripts,
		metrics: metrics,
		cfg:     cfg.withDefaults(),
		logger:  logger.Named("txBuilder").With(zap.String("network", string(cfg.Network))),
	}, nil
}

func (b *Builder) observe(operation string, err error, started time.Time) {
	b.metrics.ObserveBuild(operation, err, started)
	if err != nil {
		b.logger.Warn("build failed",
			zap.String("operation", operation),
			zap.String("kind", KindOf(err).String()),
			zap.Error(err),
		)
	}
}
