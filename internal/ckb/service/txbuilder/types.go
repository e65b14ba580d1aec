// Package txbuilder constructs balanced, signable CKB transactions: it selects input
// cells, builds outputs and change, converges on a fee and emits the signature
// obligations an external signer has to fulfil.
package txbuilder

import (
	"context"
	"math/big"
	"time"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// RecordStore is the subset of the ledger store a build reads from.
	RecordStore interface {
		LiveCells(ctx context.Context, q model.CellQuery) (model.CellPage, error)
		TransactionWithCells(ctx context.Context, txHash model.Hash) (*model.TransactionWithCells, error)
		BlockHeader(ctx context.Context, q model.HeaderQuery) (model.Header, error)
		ScriptByHash160(ctx context.Context, hash160 [20]byte) (*model.Script, error)
		Scripts(ctx context.Context, q model.ScriptQuery) ([]model.Script, error)
	}
	Metrics interface {
		ObserveBuild(operation string, err error, started time.Time)
		ObserveFeeIterations(operation string, iterations int)
	}
)

const (
	// MaxItemNum bounds the number of from or to items in one request.
	MaxItemNum = 1000

	// InitEstimateFee is the fee the first build iteration reserves.
	InitEstimateFee uint64 = 100_000
	// FeeEstimateStep is added to the estimate whenever a build turns out too large.
	FeeEstimateStep = model.ByteShannons

	DefaultFeeRate          uint64 = 1000
	DefaultChequeTimeout    uint64 = 6
	DefaultCellbaseMaturity uint64 = 4
)

// Config holds the chain parameters shared by every build.
type Config struct {
	Network model.Network
	// FeeRate is in shannons per 1000 bytes and applies when a request sets none.
	FeeRate uint64
	// ChequeTimeout is the number of epochs after which a cheque sender may reclaim.
	ChequeTimeout uint64
	// CellbaseMaturity is the number of epochs before a cellbase output is spendable.
	CellbaseMaturity uint64
}

func (c Config) withDefaults() Config {
	if c.FeeRate == 0 {
		c.FeeRate = DefaultFeeRate
	}
	if c.ChequeTimeout == 0 {
		c.ChequeTimeout = DefaultChequeTimeout
	}
	if c.CellbaseMaturity == 0 {
		c.CellbaseMaturity = DefaultCellbaseMaturity
	}
	return c
}

// CapacityProvider selects which side supplies the capacity of the receiving outputs.
type CapacityProvider string

var (
	// ProvidedByFrom creates fresh outputs for receivers paid for by the senders.
	ProvidedByFrom CapacityProvider = "From"
	// ProvidedByTo tops up an existing anyone-can-pay cell of each receiver.
	ProvidedByTo CapacityProvider = "To"
)

// PayFee selects which side pays the transaction fee.
type PayFee string

var (
	PayFeeFrom PayFee = "From"
	PayFeeTo   PayFee = "To"
)

type ToInfo struct {
	Address string   `json:"address"`
	Amount  *big.Int `json:"amount"`
}

type TransferPayload struct {
	AssetInfo              model.AssetInfo    `json:"asset_info"`
	From                   []model.Item       `json:"from"`
	To                     []ToInfo           `json:"to"`
	OutputCapacityProvider CapacityProvider   `json:"output_capacity_provider,omitempty"`
	PayFee                 PayFee             `json:"pay_fee,omitempty"`
	// Change is an optional address receiving the surplus instead of the first sender.
	Change  string             `json:"change,omitempty"`
	Source  model.Source       `json:"source,omitempty"`
	FeeRate *uint64            `json:"fee_rate,omitempty"`
	Since   *model.SinceConfig `json:"since,omitempty"`
}

type SimpleTransferPayload struct {
	AssetInfo model.AssetInfo    `json:"asset_info"`
	From      []string           `json:"from"`
	To        []ToInfo           `json:"to"`
	FeeRate   *uint64            `json:"fee_rate,omitempty"`
	Since     *model.SinceConfig `json:"since,omitempty"`
}

type DaoDepositPayload struct {
	From    []model.Item `json:"from"`
	To      string       `json:"to,omitempty"`
	Amount  uint64       `json:"amount"`
	FeeRate *uint64      `json:"fee_rate,omitempty"`
}

type DaoWithdrawPayload struct {
	From    []model.Item `json:"from"`
	FeeRate *uint64      `json:"fee_rate,omitempty"`
}

type DaoClaimPayload struct {
	From    []model.Item `json:"from"`
	To      string       `json:"to,omitempty"`
	FeeRate *uint64      `json:"fee_rate,omitempty"`
}

type SudtIssuePayload struct {
	Owner                  string             `json:"owner"`
	From                   []model.Item       `json:"from"`
	To                     []ToInfo           `json:"to"`
	OutputCapacityProvider CapacityProvider   `json:"output_capacity_provider,omitempty"`
	FeeRate                *uint64            `json:"fee_rate,omitempty"`
	Since                  *model.SinceConfig `json:"since,omitempty"`
}

type AdjustAccountPayload struct {
	Item          model.Item      `json:"item"`
	From          []model.Item    `json:"from"`
	AssetInfo     model.AssetInfo `json:"asset_info"`
	AccountNumber *uint32         `json:"account_number,omitempty"`
	ExtraCKB      *uint64         `json:"extra_ckb,omitempty"`
	FeeRate       *uint64         `json:"fee_rate,omitempty"`
}

// TransactionCompletion is a finished transaction with placeholder witnesses and
// the obligations the signer has to fulfil.
type TransactionCompletion struct {
	Tx               model.Transaction       `json:"tx"`
	ScriptGroups     []model.ScriptGroup     `json:"script_groups"`
	SignatureActions []model.SignatureAction `json:"signature_actions"`
	Fee              uint64                  `json:"fee"`
}
