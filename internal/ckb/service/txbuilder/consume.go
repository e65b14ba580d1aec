package txbuilder

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/codec"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/dao"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
	"github.com/nervosnetwork/mercury-sub000/pkg/safe"
)

// addScriptDepsFor records the cell deps needed to run script.
func (b *Builder) addScriptDepsFor(d *draft, script *model.Script) {
	if script == nil {
		return
	}
	name, ok := b.scripts.NameOf(*script)
	if !ok {
		return
	}
	d.addScriptDeps(name)
	if name == model.ScriptPWLock {
		d.addScriptDeps(model.ScriptSecp256k1)
	}
}

// spend adds cell as a signed input owned by owner.
func (b *Builder) spend(d *draft, cell model.Cell, owner *account, since uint64) (int, error) {
	s, err := b.signerFor(cell.Output.Lock, owner)
	if err != nil {
		return 0, err
	}
	idx := d.addInput(cell, since)
	d.addSignature(codec.ScriptHash(cell.Output.Lock), s, idx)
	b.addScriptDepsFor(d, &cell.Output.Lock)
	b.addScriptDepsFor(d, cell.Output.Type)
	return idx, nil
}

// spendUnsigned adds a receiver's cell that is topped up without its owner's signature.
// It carries the draft's since like every other input.
func (b *Builder) spendUnsigned(d *draft, cell model.Cell) int {
	idx := d.addInput(cell, d.since)
	d.markNoSignature(idx)
	b.addScriptDepsFor(d, &cell.Output.Lock)
	b.addScriptDepsFor(d, cell.Output.Type)
	return idx
}

// spendWithdrawing adds an unlocked withdrawing cell, accrues its reward and returns
// the capacity it yields.
func (b *Builder) spendWithdrawing(ctx context.Context, d *draft, cell, deposit model.Cell, owner *account) (uint64, error) {
	depositHeader, err := b.store.BlockHeader(ctx, model.HeaderByHash(deposit.BlockHash))
	if err != nil {
		return 0, storeError("block_header", err)
	}
	withdrawHeader, err := b.store.BlockHeader(ctx, model.HeaderByHash(cell.BlockHash))
	if err != nil {
		return 0, storeError("block_header", err)
	}

	maximum, err := dao.MaximumWithdraw(cell.Output.Capacity, depositHeader, withdrawHeader)
	if err != nil {
		return 0, fmt.Errorf("withdraw %s: %w", cell.OutPoint, err)
	}
	reward, err := safe.SubUint64(maximum, cell.Output.Capacity)
	if err != nil {
		return 0, fmt.Errorf("reward of %s: %w", cell.OutPoint, err)
	}
	if d.daoReward, err = safe.AddUint64(d.daoReward, reward); err != nil {
		return 0, fmt.Errorf("accrue reward: %w", err)
	}

	unlock := dao.UnlockEpochNumber(deposit.Epoch, cell.Epoch)
	since, err := model.ToSince(model.SinceConfig{
		Flag:  model.SinceAbsolute,
		Type:  model.SinceEpochNumber,
		Value: unlock.FullValue(),
	})
	if err != nil {
		return 0, err
	}

	idx, err := b.spend(d, cell, owner, since)
	if err != nil {
		return 0, err
	}
	depositIdx := d.addHeaderDep(depositHeader.Hash)
	d.addHeaderDep(withdrawHeader.Hash)

	inputType := make(model.Bytes, 8)
	binary.LittleEndian.PutUint64(inputType, uint64(depositIdx))
	d.typeWitnessArgs[idx] = model.WitnessArgs{InputType: inputType}
	d.addScriptDeps(model.ScriptDAO)
	return maximum, nil
}
