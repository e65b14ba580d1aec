package txbuilder

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/chain"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/codec"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
	"github.com/nervosnetwork/mercury-sub000/pkg/safe"
)

const (
	DefaultAccountNumber uint32 = 1
	DefaultExtraCKB             = model.ByteShannons
)

// BuildAdjustAccount brings the item's anyone-can-pay cells of one udt to the requested
// count. It returns nil when the count already matches.
func (b *Builder) BuildAdjustAccount(ctx context.Context, snapshot chain.Snapshot, p AdjustAccountPayload) (completion *TransactionCompletion, err error) {
	started := time.Now()
	defer func() { b.observe(OpAdjustAccount, err, started) }()

	if p.AssetInfo.IsCKB() {
		return nil, ErrAdjustAccountWithoutUDTInfo
	}
	if len(p.From) > MaxItemNum {
		return nil, ErrExceedMaxItemNum.with("%d from items", len(p.From))
	}
	if len(p.From) > 0 {
		if err := validateSameKind(p.From); err != nil {
			return nil, err
		}
	}
	want := DefaultAccountNumber
	if p.AccountNumber != nil {
		want = *p.AccountNumber
	}
	extra := DefaultExtraCKB
	if p.ExtraCKB != nil {
		extra = *p.ExtraCKB
	}

	owner, err := b.resolveItem(ctx, p.Item)
	if err != nil {
		return nil, err
	}
	acpLocks := owner.acp
	if len(acpLocks) == 0 && owner.payoutKind == lockSecp {
		if acpLocks, err = b.acpScripts(ctx, owner.pubkeyHash); err != nil {
			return nil, err
		}
	}
	if len(acpLocks) == 0 {
		return nil, ErrUnsupportedLockScript.with("item %s has no anyone-can-pay lock", p.Item)
	}

	udtType, err := b.udtTypeScript(ctx, p.AssetInfo)
	if err != nil {
		return nil, err
	}
	accounts, err := b.collectCells(ctx, snapshot, model.CellQuery{
		LockHashes: lockHashes(acpLocks),
		TypeFilter: model.TypeHashes,
		TypeHashes: []model.Hash{p.AssetInfo.UDTHash},
	}, nil)
	if err != nil {
		return nil, err
	}

	have := uint32(len(accounts))
	b.logger.Debug("adjusting accounts",
		zap.Stringer("item", p.Item),
		zap.Uint32("have", have),
		zap.Uint32("want", want),
	)
	switch {
	case have == want:
		return nil, nil
	case have < want:
		return b.createAccounts(ctx, snapshot, p, owner, acpLocks[0], udtType, int(want-have), extra)
	default:
		return b.mergeAccounts(p, owner, accounts, int(have-want), want == 0)
	}
}

// createAccounts adds count empty anyone-can-pay cells, paid by from or by the owner.
func (b *Builder) createAccounts(ctx context.Context, snapshot chain.Snapshot, p AdjustAccountPayload, owner *account, acpLock model.Script, udtType model.Script, count int, extra uint64) (*TransactionCompletion, error) {
	payers := []*account{owner}
	if len(p.From) > 0 {
		var err error
		if payers, err = b.resolveItems(ctx, p.From); err != nil {
			return nil, err
		}
	}
	capacity, err := safe.AddUint64(model.StandardSUDTCapacity, extra)
	if err != nil {
		return nil, ErrOverflow.with("extra ckb %d", extra)
	}
	data, err := model.EncodeUDTAmount(new(big.Int))
	if err != nil {
		return nil, err
	}

	return b.buildWithFee(ctx, OpAdjustAccount, b.feeRate(p.FeeRate), func(ctx context.Context, d *draft) error {
		b.addScriptDepsFor(d, &acpLock)
		b.addScriptDepsFor(d, &udtType)
		for i := 0; i < count; i++ {
			typ := udtType
			d.addOutput(model.CellOutput{Capacity: capacity, Lock: acpLock, Type: &typ}, data, false)
		}
		return b.balanceCapacity(ctx, snapshot, d, capacityBalance{payers: payers, feeChange: true})
	})
}

// mergeAccounts spends surplus+1 cells into one. With toSecp the cells collapse into a
// plain secp256k1 cell, which requires a zero udt balance.
func (b *Builder) mergeAccounts(p AdjustAccountPayload, owner *account, cells []model.Cell, surplus int, toSecp bool) (*TransactionCompletion, error) {
	if toSecp && owner.payoutKind == lockPW {
		return nil, ErrInvalidAdjustAccountNumber.with("pw-lock accounts cannot be closed")
	}
	take := surplus + 1
	if toSecp {
		take = surplus
	}
	if take > len(cells) {
		return nil, ErrInvalidAdjustAccountNumber
	}
	cells = cells[:take]

	d := newDraft(0)
	var capacity uint64
	amount := new(big.Int)
	for _, cell := range cells {
		if _, err := b.spend(d, cell, owner, 0); err != nil {
			return nil, err
		}
		var err error
		if capacity, err = safe.AddUint64(capacity, cell.Output.Capacity); err != nil {
			return nil, fmt.Errorf("merged capacity: %w", err)
		}
		amount.Add(amount, model.UDTAmount(cell.Data))
	}

	out := cells[0].Output
	out.Capacity = capacity
	var data model.Bytes
	if toSecp {
		if amount.Sign() != 0 {
			return nil, ErrNotZeroInputUDTAmount.with("%s", amount)
		}
		lock, err := b.builtinScript(model.ScriptSecp256k1, out.Lock.Args[:20])
		if err != nil {
			return nil, err
		}
		out = model.CellOutput{Capacity: capacity, Lock: lock}
		d.addScriptDeps(model.ScriptSecp256k1)
	} else {
		var err error
		if data, err = model.EncodeUDTAmount(amount); err != nil {
			return nil, err
		}
	}
	d.setFeeChange(d.addOutput(out, data, false))

	completion, err := b.complete(d)
	if err != nil {
		return nil, err
	}
	size := codec.TransactionSize(completion.Tx)
	product, err := safe.MulUint64(size, b.feeRate(p.FeeRate))
	if err != nil {
		return nil, fmt.Errorf("fee for %d bytes: %w", size, err)
	}
	fee := product / 1000

	merged := &completion.Tx.Outputs[0]
	occupied, err := merged.OccupiedCapacity(len(completion.Tx.OutputsData[0]))
	if err != nil {
		return nil, err
	}
	if merged.Capacity < occupied || merged.Capacity-occupied < fee {
		return nil, &InsufficientError{
			Asset:     model.NewCKBAsset(),
			Shortfall: shortfall(occupied, fee, merged.Capacity),
			Items:     []model.Item{p.Item},
		}
	}
	merged.Capacity -= fee
	completion.Fee = fee

	b.metrics.ObserveFeeIterations(OpAdjustAccount, 1)
	b.logger.Info("transaction built",
		zap.String("operation", OpAdjustAccount),
		zap.Int("inputs", len(completion.Tx.Inputs)),
		zap.Uint64("fee", fee),
		zap.Uint64("size", size),
	)
	return completion, nil
}
