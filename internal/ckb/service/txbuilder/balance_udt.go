package txbuilder

import (
	"context"
	"fmt"
	"math/big"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/chain"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

// udtBalance closes the udt gap of a draft from the payers' cells.
type udtBalance struct {
	payers  []*account
	change  *account
	asset   model.AssetInfo
	udtType model.Script
	source  model.Source
}

// balanceUDT mirrors balanceCapacity for a udt amount. Capacity of the cells it
// adds is left for a later balanceCapacity call.
func (b *Builder) balanceUDT(ctx context.Context, snapshot chain.Snapshot, d *draft, ub udtBalance) error {
	if len(ub.payers) == 0 {
		return ErrNeedAtLeastOneFrom
	}
	required := d.udtRequirement(ub.udtType)
	if required.Sign() > 0 {
		if err := shrinkUDT(d, ub, required); err != nil {
			return err
		}
	}

	pool := b.newCellPool(snapshot, ub.payers, ub.asset, ub.source)
	for required.Sign() > 0 {
		c, ok, err := pool.next(ctx, d)
		if err != nil {
			return err
		}
		if !ok {
			return &InsufficientError{Asset: ub.asset, Shortfall: new(big.Int).Set(required), Items: pool.items}
		}
		contributed, err := b.consumeForUDT(ctx, d, c)
		if err != nil {
			return err
		}
		required.Sub(required, contributed)
	}

	if required.Sign() == 0 {
		return nil
	}
	return b.settleUDT(d, ub, new(big.Int).Neg(required))
}

// consumeForUDT spends a pooled candidate and returns the udt amount it frees.
func (b *Builder) consumeForUDT(ctx context.Context, d *draft, c candidate) (*big.Int, error) {
	amount := model.UDTAmount(c.cell.Data)
	switch c.category {
	case categoryChequeInTime:
		// A claimed cheque returns its capacity to the sender.
		sender, err := b.chequeSender(ctx, c.cell.Output.Lock)
		if err != nil {
			return nil, err
		}
		if _, err := b.spend(d, c.cell, c.owner, d.since); err != nil {
			return nil, err
		}
		d.addOutput(model.CellOutput{Capacity: c.cell.Output.Capacity, Lock: sender}, nil, false)
		b.addScriptDepsFor(d, &sender)
		return amount, nil

	case categoryACP:
		if _, err := b.spend(d, c.cell, c.owner, d.since); err != nil {
			return nil, err
		}
		data, err := model.ReplaceUDTAmount(c.cell.Data, new(big.Int))
		if err != nil {
			return nil, err
		}
		// The account cell survives with an empty balance.
		d.addOutput(model.CellOutput{
			Capacity: c.cell.Output.Capacity,
			Lock:     c.cell.Output.Lock,
			Type:     c.cell.Output.Type,
		}, data, true)
		return amount, nil

	case categoryChequeOutTime, categorySecpUDT:
		if _, err := b.spend(d, c.cell, c.owner, d.since); err != nil {
			return nil, err
		}
		return amount, nil

	default:
		return nil, fmt.Errorf("category %s cannot fund udt", c.category)
	}
}

// chequeSender resolves the sender lock named by the last 20 bytes of cheque args.
func (b *Builder) chequeSender(ctx context.Context, cheque model.Script) (model.Script, error) {
	if len(cheque.Args) != 40 {
		return model.Script{}, ErrUnsupportedLockScript.with("cheque args length %d", len(cheque.Args))
	}
	var hash160 [20]byte
	copy(hash160[:], cheque.Args[20:40])
	sender, err := b.store.ScriptByHash160(ctx, hash160)
	if err != nil {
		return model.Script{}, storeError("script_by_hash160", err)
	}
	if sender == nil {
		return model.Script{}, ErrCannotGetScriptByHash.with("cheque sender %x", hash160)
	}
	return *sender, nil
}

func shrinkUDT(d *draft, ub udtBalance, required *big.Int) error {
	for _, idx := range changeIndices(d) {
		if required.Sign() <= 0 {
			return nil
		}
		out := d.outputs[idx]
		if out.Type == nil || !out.Type.Equal(ub.udtType) || !ownedByAny(ub.payers, out.Lock) {
			continue
		}
		amount := model.UDTAmount(d.outputsData[idx])
		if amount.Sign() <= 0 {
			continue
		}
		take := new(big.Int).Set(amount)
		if take.Cmp(required) > 0 {
			take.Set(required)
		}
		data, err := model.ReplaceUDTAmount(d.outputsData[idx], amount.Sub(amount, take))
		if err != nil {
			return err
		}
		d.outputsData[idx] = data
		required.Sub(required, take)
	}
	return nil
}

// settleUDT writes surplus to the explicit change account, a claimed output of
// the receiving payer, a payer change output, or a fresh udt cell in that order.
func (b *Builder) settleUDT(d *draft, ub udtBalance, surplus *big.Int) error {
	target := ub.payers[0]
	idx, ok := -1, false
	switch {
	case ub.change != nil:
		target = ub.change
		idx, ok = changeOutput(d, []*account{ub.change}, &ub.udtType)
	case ub.source == model.SourceClaimable:
		idx, ok = udtOutput(d, ub.payers, ub.udtType)
	}
	if !ok && ub.change == nil {
		idx, ok = changeOutput(d, ub.payers, &ub.udtType)
	}

	if ok {
		amount := model.UDTAmount(d.outputsData[idx])
		data, err := model.ReplaceUDTAmount(d.outputsData[idx], amount.Add(amount, surplus))
		if err != nil {
			return err
		}
		d.outputsData[idx] = data
		return nil
	}

	data, err := model.EncodeUDTAmount(surplus)
	if err != nil {
		return err
	}
	udtType := ub.udtType
	out := model.CellOutput{Lock: target.payout, Type: &udtType}
	if out.Capacity, err = out.OccupiedCapacity(len(data)); err != nil {
		return err
	}
	d.addOutput(out, data, true)
	b.addScriptDepsFor(d, &udtType)
	return nil
}

// udtOutput returns the first output of udtType owned by one of owners, change-eligible or not.
func udtOutput(d *draft, owners []*account, udtType model.Script) (int, bool) {
	for idx, out := range d.outputs {
		if out.Type != nil && out.Type.Equal(udtType) && ownedByAny(owners, out.Lock) {
			return idx, true
		}
	}
	return 0, false
}
