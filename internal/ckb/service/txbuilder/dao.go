package txbuilder

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/chain"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/codec"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/dao"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
	"github.com/nervosnetwork/mercury-sub000/pkg/safe"
)

// BuildDaoDeposit locks amount into a new deposit cell.
func (b *Builder) BuildDaoDeposit(ctx context.Context, snapshot chain.Snapshot, p DaoDepositPayload) (completion *TransactionCompletion, err error) {
	started := time.Now()
	defer func() { b.observe(OpDaoDeposit, err, started) }()

	if err := validateFrom(p.From); err != nil {
		return nil, err
	}
	if p.Amount < model.MinDAOCapacity {
		return nil, ErrInvalidDAOCapacity.with("%d < %d", p.Amount, model.MinDAOCapacity)
	}
	from, err := b.resolveItems(ctx, p.From)
	if err != nil {
		return nil, err
	}
	lock, err := b.daoOwnerLock(from[0], p.To)
	if err != nil {
		return nil, err
	}
	daoType, err := b.builtinScript(model.ScriptDAO, nil)
	if err != nil {
		return nil, err
	}

	return b.buildWithFee(ctx, OpDaoDeposit, b.feeRate(p.FeeRate), func(ctx context.Context, d *draft) error {
		d.addScriptDeps(model.ScriptDAO)
		d.addOutput(model.CellOutput{Capacity: p.Amount, Lock: lock, Type: &daoType}, dao.DepositData(), false)
		return b.balanceCapacity(ctx, snapshot, d, capacityBalance{payers: from, feeChange: true})
	})
}

// BuildDaoWithdraw turns every mature deposit of the from items into a withdrawing cell.
func (b *Builder) BuildDaoWithdraw(ctx context.Context, snapshot chain.Snapshot, p DaoWithdrawPayload) (completion *TransactionCompletion, err error) {
	started := time.Now()
	defer func() { b.observe(OpDaoWithdraw, err, started) }()

	if err := validateFrom(p.From); err != nil {
		return nil, err
	}
	from, err := b.resolveItems(ctx, p.From)
	if err != nil {
		return nil, err
	}

	type deposit struct {
		cell  model.Cell
		owner *account
	}
	var deposits []deposit
	for _, a := range from {
		cells, err := b.daoCells(ctx, snapshot, a, func(cell model.Cell) bool {
			return dao.IsDepositData(cell.Data) && dao.IsMature(cell.Epoch, snapshot.TipEpoch)
		})
		if err != nil {
			return nil, err
		}
		for _, cell := range cells {
			deposits = append(deposits, deposit{cell: cell, owner: a})
		}
	}
	if len(deposits) == 0 {
		return nil, ErrCannotFindDepositCell
	}

	return b.buildWithFee(ctx, OpDaoWithdraw, b.feeRate(p.FeeRate), func(ctx context.Context, d *draft) error {
		d.addScriptDeps(model.ScriptSecp256k1, model.ScriptDAO)
		for _, dep := range deposits {
			if _, err := b.spend(d, dep.cell, dep.owner, 0); err != nil {
				return err
			}
			d.addHeaderDep(dep.cell.BlockHash)
			d.addOutput(model.CellOutput{
				Capacity: dep.cell.Output.Capacity,
				Lock:     dep.cell.Output.Lock,
				Type:     dep.cell.Output.Type,
			}, dao.WithdrawingData(dep.cell.BlockNumber), false)
		}
		return b.balanceCapacity(ctx, snapshot, d, capacityBalance{payers: from, feeChange: true})
	})
}

// BuildDaoClaim spends every unlocked withdrawing cell of the from items into one output.
func (b *Builder) BuildDaoClaim(ctx context.Context, snapshot chain.Snapshot, p DaoClaimPayload) (completion *TransactionCompletion, err error) {
	started := time.Now()
	defer func() { b.observe(OpDaoClaim, err, started) }()

	if err := validateFrom(p.From); err != nil {
		return nil, err
	}
	from, err := b.resolveItems(ctx, p.From)
	if err != nil {
		return nil, err
	}
	lock, err := b.daoOwnerLock(from[0], p.To)
	if err != nil {
		return nil, err
	}

	var withdrawals []candidate
	for _, a := range from {
		cells, err := b.daoCells(ctx, snapshot, a, nil)
		if err != nil {
			return nil, err
		}
		for _, cell := range cells {
			deposit, ok, err := b.unlockedWithdrawal(ctx, snapshot, cell)
			if err != nil {
				return nil, err
			}
			if ok {
				withdrawals = append(withdrawals, candidate{cell: cell, category: categoryDaoClaim, owner: a, deposit: deposit})
			}
		}
	}
	if len(withdrawals) == 0 {
		return nil, ErrCannotFindUnlockedWithdrawingCell
	}

	return b.buildWithFee(ctx, OpDaoClaim, b.feeRate(p.FeeRate), func(ctx context.Context, d *draft) error {
		d.addScriptDeps(model.ScriptSecp256k1, model.ScriptDAO)
		var total uint64
		for _, w := range withdrawals {
			maximum, err := b.spendWithdrawing(ctx, d, w.cell, *w.deposit, w.owner)
			if err != nil {
				return err
			}
			if total, err = safe.AddUint64(total, maximum); err != nil {
				return fmt.Errorf("claim total: %w", err)
			}
		}

		out := model.CellOutput{Lock: lock}
		minimum, err := out.OccupiedCapacity(0)
		if err != nil {
			return err
		}
		capacity, err := safe.SubUint64(total, d.fee)
		if err != nil || capacity < minimum {
			return &InsufficientError{
				Asset:     model.NewCKBAsset(),
				Shortfall: shortfall(minimum, d.fee, total),
				Items:     accountItems(from),
			}
		}
		out.Capacity = capacity
		d.setFeeChange(d.addOutput(out, nil, false))
		return nil
	})
}

// daoCells returns the live dao cells locked by a's plain locks that pass keep.
func (b *Builder) daoCells(ctx context.Context, snapshot chain.Snapshot, a *account, keep func(model.Cell) bool) ([]model.Cell, error) {
	info, ok := b.scripts.Get(model.ScriptDAO)
	if !ok {
		return nil, ErrMissingScriptInfo.with("%s", model.ScriptDAO)
	}
	if len(a.normal) == 0 {
		return nil, nil
	}
	q := model.CellQuery{
		LockHashes: lockHashes(a.normal),
		TypeFilter: model.TypeHashes,
		TypeHashes: []model.Hash{codec.ScriptHash(info.Script)},
		OutPoint:   a.outPoint,
	}
	return b.collectCells(ctx, snapshot, q, keep)
}

// daoOwnerLock is the lock of the to address, or the first from item's own lock.
func (b *Builder) daoOwnerLock(first *account, to string) (model.Script, error) {
	if to == "" {
		return first.payout, nil
	}
	return b.parseAddress(to)
}

// shortfall is minimum + fee - total.
func shortfall(minimum, fee, total uint64) *big.Int {
	v := new(big.Int).SetUint64(minimum)
	v.Add(v, new(big.Int).SetUint64(fee))
	return v.Sub(v, new(big.Int).SetUint64(total))
}
