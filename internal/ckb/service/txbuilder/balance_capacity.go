package txbuilder

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/chain"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
	"github.com/nervosnetwork/mercury-sub000/pkg/safe"
)

// capacityBalance closes the capacity gap of a draft from the payers' cells.
type capacityBalance struct {
	payers []*account
	// change receives the surplus instead of the payers when set.
	change *account
	// feeChange makes the settled change output absorb the fee correction.
	feeChange bool
}

// balanceCapacity shrinks payer-owned change outputs, pools payer cells until the
// draft's inputs cover outputs and fee, then settles any surplus as change.
func (b *Builder) balanceCapacity(ctx context.Context, snapshot chain.Snapshot, d *draft, cb capacityBalance) error {
	if len(cb.payers) == 0 {
		return ErrNeedAtLeastOneFrom
	}
	required, err := d.capacityRequirement()
	if err != nil {
		return err
	}

	absorbing := -1
	if required.Sign() > 0 {
		if absorbing, err = b.shrinkCapacity(d, cb.payers, required); err != nil {
			return err
		}
	}

	changeMin, err := changeMinimum(cb)
	if err != nil {
		return err
	}
	pool := b.newCellPool(snapshot, cb.payers, model.NewCKBAsset(), "")
	for {
		for required.Sign() > 0 {
			if err := b.pullCapacity(ctx, pool, d, required, changeMin); err != nil {
				return err
			}
			absorbing = -1
		}

		if required.Sign() == 0 {
			if !cb.feeChange {
				return nil
			}
			idx, ok := exactChange(d, cb, absorbing)
			if ok {
				deficit, err := capacityDeficit(d, idx)
				if err != nil {
					return err
				}
				if deficit == 0 {
					d.setFeeChange(idx)
					return nil
				}
				// Lift the change output to its minimum and pool the difference.
				d.outputs[idx].Capacity += deficit
				required.SetUint64(deficit)
				absorbing = -1
				continue
			}
		}

		surplus := new(big.Int).Neg(required)
		idx, settled, err := b.settleCapacity(d, cb, surplus)
		if err != nil {
			return err
		}
		if settled {
			if cb.feeChange {
				d.setFeeChange(idx)
			}
			return nil
		}
		// The surplus is below the minimum of a fresh change cell.
		if err := b.pullCapacity(ctx, pool, d, required, changeMin); err != nil {
			return err
		}
	}
}

// exactChange picks the output that absorbs the fee correction of an exactly
// balanced draft. The output shrunk last wins over the first change output.
func exactChange(d *draft, cb capacityBalance, absorbing int) (int, bool) {
	if absorbing >= 0 {
		return absorbing, true
	}
	if cb.change != nil {
		if idx, ok := changeOutput(d, []*account{cb.change}, nil); ok {
			return idx, true
		}
	}
	return changeOutput(d, cb.payers, nil)
}

// capacityDeficit is how far output idx sits below its occupied capacity.
func capacityDeficit(d *draft, idx int) (uint64, error) {
	out := d.outputs[idx]
	occupied, err := out.OccupiedCapacity(len(d.outputsData[idx]))
	if err != nil {
		return 0, err
	}
	if out.Capacity >= occupied {
		return 0, nil
	}
	return occupied - out.Capacity, nil
}

// changeMinimum is the occupied capacity of a fresh change cell for cb.
func changeMinimum(cb capacityBalance) (uint64, error) {
	target := cb.payers[0]
	if cb.change != nil {
		target = cb.change
	}
	return model.CellOutput{Lock: target.payout}.OccupiedCapacity(0)
}

// pullCapacity consumes the next pooled cell and lowers required by its contribution.
// changeMin is reported as missing when only the change cell cannot be funded.
func (b *Builder) pullCapacity(ctx context.Context, pool *cellPool, d *draft, required *big.Int, changeMin uint64) error {
	c, ok, err := pool.next(ctx, d)
	if err != nil {
		return err
	}
	if !ok {
		shortfall := new(big.Int).Set(required)
		if shortfall.Sign() <= 0 {
			shortfall.SetUint64(changeMin)
			shortfall.Add(shortfall, required)
		}
		return &InsufficientError{Asset: model.NewCKBAsset(), Shortfall: shortfall, Items: pool.items}
	}

	contributed, err := b.consumeForCapacity(ctx, d, c)
	if err != nil {
		return err
	}
	required.Sub(required, new(big.Int).SetUint64(contributed))
	return nil
}

// consumeForCapacity spends a pooled candidate and returns the capacity it frees.
func (b *Builder) consumeForCapacity(ctx context.Context, d *draft, c candidate) (uint64, error) {
	switch c.category {
	case categoryDaoClaim:
		if c.deposit == nil {
			return 0, fmt.Errorf("withdrawing cell %s without deposit", c.cell.OutPoint)
		}
		return b.spendWithdrawing(ctx, d, c.cell, *c.deposit, c.owner)

	case categorySecpUDT, categoryACP:
		occupied, err := c.cell.OccupiedCapacity()
		if err != nil {
			return 0, err
		}
		surplus, err := safe.SubUint64(c.cell.Output.Capacity, occupied)
		if err != nil {
			return 0, err
		}
		if _, err := b.spend(d, c.cell, c.owner, d.since); err != nil {
			return 0, err
		}
		// The cell is recreated at its occupied capacity so it keeps its asset.
		d.addOutput(model.CellOutput{
			Capacity: occupied,
			Lock:     c.cell.Output.Lock,
			Type:     c.cell.Output.Type,
		}, append(model.Bytes(nil), c.cell.Data...), true)
		return surplus, nil

	default:
		if _, err := b.spend(d, c.cell, c.owner, d.since); err != nil {
			return 0, err
		}
		return c.cell.Output.Capacity, nil
	}
}

// shrinkCapacity lowers payer-owned change outputs towards their occupied capacity.
// It returns the last output shrunk, or -1.
func (b *Builder) shrinkCapacity(d *draft, payers []*account, required *big.Int) (int, error) {
	absorbing := -1
	for _, idx := range changeIndices(d) {
		if required.Sign() <= 0 {
			break
		}
		out := &d.outputs[idx]
		if !ownedByAny(payers, out.Lock) {
			continue
		}
		occupied, err := out.OccupiedCapacity(len(d.outputsData[idx]))
		if err != nil {
			return -1, err
		}
		if out.Capacity <= occupied {
			continue
		}
		room := new(big.Int).SetUint64(out.Capacity - occupied)
		if room.Cmp(required) > 0 {
			room.Set(required)
		}
		out.Capacity -= room.Uint64()
		required.Sub(required, room)
		absorbing = idx
	}
	return absorbing, nil
}

// settleCapacity places surplus into a change output. settled is false when a new
// change cell would fall below its minimum capacity.
func (b *Builder) settleCapacity(d *draft, cb capacityBalance, surplus *big.Int) (int, bool, error) {
	amount, err := safe.BigUint64(surplus)
	if err != nil {
		return 0, false, fmt.Errorf("change capacity: %w", err)
	}

	target := cb.payers[0]
	owners := cb.payers
	if cb.change != nil {
		target = cb.change
		owners = []*account{cb.change}
	}
	if idx, ok := changeOutput(d, owners, nil); ok {
		deficit, err := capacityDeficit(d, idx)
		if err != nil {
			return 0, false, err
		}
		if amount < deficit {
			return 0, false, nil
		}
		return idx, true, addCapacity(&d.outputs[idx], amount)
	}

	out := model.CellOutput{Capacity: amount, Lock: target.payout}
	minimum, err := out.OccupiedCapacity(0)
	if err != nil {
		return 0, false, err
	}
	if amount < minimum {
		return 0, false, nil
	}
	return d.addOutput(out, nil, true), true, nil
}

func addCapacity(out *model.CellOutput, amount uint64) error {
	sum, err := safe.AddUint64(out.Capacity, amount)
	if err != nil {
		return fmt.Errorf("change capacity: %w", err)
	}
	out.Capacity = sum
	return nil
}

// changeOutput returns the first change-eligible output owned by one of owners.
// A non-nil udtType also requires the output to carry that type.
func changeOutput(d *draft, owners []*account, udtType *model.Script) (int, bool) {
	for _, idx := range changeIndices(d) {
		out := d.outputs[idx]
		if udtType != nil && (out.Type == nil || !out.Type.Equal(*udtType)) {
			continue
		}
		if ownedByAny(owners, out.Lock) {
			return idx, true
		}
	}
	return 0, false
}

func changeIndices(d *draft) []int {
	out := make([]int, 0, len(d.changeEligible))
	for idx := range d.changeEligible {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

func ownedByAny(accounts []*account, lock model.Script) bool {
	for _, a := range accounts {
		if a.owns(lock) {
			return true
		}
	}
	return false
}
