package txbuilder

import (
	"context"
	"math/big"
	"time"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/chain"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/codec"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
	"github.com/nervosnetwork/mercury-sub000/pkg/safe"
)

type receiver struct {
	lock   model.Script
	amount *big.Int
	// cell is the receiver's account cell topped up in place.
	cell *model.Cell
}

type transferPlan struct {
	asset    model.AssetInfo
	udtType  model.Script
	from     []*account
	change   *account
	to       []receiver
	provider CapacityProvider
	payFee   PayFee
	source   model.Source
	since    uint64
	// chequeSender turns new udt outputs into cheques sent by this lock.
	chequeSender *model.Script
}

// BuildTransfer moves ckb or a udt from the from items to the receivers.
func (b *Builder) BuildTransfer(ctx context.Context, snapshot chain.Snapshot, p TransferPayload) (completion *TransactionCompletion, err error) {
	started := time.Now()
	defer func() { b.observe(OpTransfer, err, started) }()

	plan, err := b.planTransfer(ctx, snapshot, p)
	if err != nil {
		return nil, err
	}
	return b.buildWithFee(ctx, OpTransfer, b.feeRate(p.FeeRate), b.transferBuild(snapshot, plan))
}

// planTransfer validates the payload and does every lookup that does not depend on the fee.
func (b *Builder) planTransfer(ctx context.Context, snapshot chain.Snapshot, p TransferPayload) (*transferPlan, error) {
	if len(p.From) == 0 || len(p.To) == 0 {
		return nil, ErrNeedAtLeastOneFromAndOneTo
	}
	if err := validateFrom(p.From); err != nil {
		return nil, err
	}
	if err := validateSameKind(p.From); err != nil {
		return nil, err
	}
	if err := validateTo(p.To); err != nil {
		return nil, err
	}
	since, err := payloadSince(p.Since)
	if err != nil {
		return nil, err
	}

	plan := &transferPlan{
		asset:    p.AssetInfo,
		provider: p.OutputCapacityProvider,
		payFee:   p.PayFee,
		source:   p.Source,
		since:    since,
	}
	if plan.provider == "" {
		plan.provider = ProvidedByTo
	}
	if plan.payFee == "" {
		plan.payFee = PayFeeFrom
	}
	if plan.provider != ProvidedByFrom && plan.provider != ProvidedByTo {
		return nil, ErrInvalidRPCParams.with("output capacity provider %q", plan.provider)
	}
	if plan.payFee != PayFeeFrom && plan.payFee != PayFeeTo {
		return nil, ErrInvalidRPCParams.with("pay fee %q", plan.payFee)
	}

	if plan.from, err = b.resolveItems(ctx, p.From); err != nil {
		return nil, err
	}
	if p.Change != "" {
		lock, err := b.parseAddress(p.Change)
		if err != nil {
			return nil, err
		}
		if plan.change, err = b.lockAccount(ctx, model.ItemFromAddress(p.Change), lock); err != nil {
			return nil, err
		}
	}
	if !plan.asset.IsCKB() {
		if plan.udtType, err = b.udtTypeScript(ctx, plan.asset); err != nil {
			return nil, err
		}
	}

	locks := make([]model.Script, 0, len(p.To))
	seen := map[string]struct{}{}
	for _, info := range p.To {
		lock, err := b.parseAddress(info.Address)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[lock.Key()]; dup && plan.provider == ProvidedByTo {
			return nil, ErrInvalidRPCParams.with("duplicate receiver %s", info.Address)
		}
		seen[lock.Key()] = struct{}{}
		locks = append(locks, lock)
		plan.to = append(plan.to, receiver{lock: lock, amount: new(big.Int).Set(info.Amount)})
	}
	if err := checkFromNotContainTo(plan.from, locks); err != nil {
		return nil, err
	}

	for i := range plan.to {
		if err := b.prepareReceiver(ctx, snapshot, plan, &plan.to[i]); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

func (b *Builder) prepareReceiver(ctx context.Context, snapshot chain.Snapshot, plan *transferPlan, r *receiver) error {
	if plan.provider == ProvidedByFrom {
		if !plan.asset.IsCKB() {
			return nil
		}
		amount, err := safe.BigUint64(r.amount)
		if err != nil {
			return ErrOverflow.with("amount %s", r.amount)
		}
		minimum, err := model.CellOutput{Lock: r.lock}.OccupiedCapacity(0)
		if err != nil {
			return err
		}
		if amount < minimum {
			return ErrRequiredCKBLessThanMin.with("%d < %d", amount, minimum)
		}
		return nil
	}

	cell, err := b.receiverCell(ctx, snapshot, r.lock, plan.asset)
	if err != nil {
		return err
	}
	r.cell = cell
	return nil
}

// receiverCell finds the anyone-can-pay cell of lock's owner that can receive asset.
func (b *Builder) receiverCell(ctx context.Context, snapshot chain.Snapshot, lock model.Script, asset model.AssetInfo) (*model.Cell, error) {
	acpLock, err := b.receiverACPLock(lock)
	if err != nil {
		return nil, err
	}
	q := model.CellQuery{LockHashes: []model.Hash{codec.ScriptHash(acpLock)}}
	keep := func(cell model.Cell) bool {
		return cell.Output.Type == nil || !b.scripts.Is(*cell.Output.Type, model.ScriptDAO)
	}
	if !asset.IsCKB() {
		q.TypeFilter = model.TypeHashes
		q.TypeHashes = []model.Hash{asset.UDTHash}
		keep = nil
	}
	cell, err := b.firstCell(ctx, snapshot, q, keep)
	if err != nil {
		return nil, err
	}
	if cell == nil {
		return nil, ErrCannotFindACPCell.with("receiver %s", acpLock.Args)
	}
	return cell, nil
}

func (b *Builder) transferBuild(snapshot chain.Snapshot, plan *transferPlan) buildFunc {
	return func(ctx context.Context, d *draft) error {
		d.since = plan.since

		receiverOutputs := make([]int, 0, len(plan.to))
		for _, r := range plan.to {
			idx, err := b.addReceiverOutput(d, plan, r)
			if err != nil {
				return err
			}
			receiverOutputs = append(receiverOutputs, idx)
		}

		if !plan.asset.IsCKB() {
			if err := b.balanceUDT(ctx, snapshot, d, udtBalance{
				payers:  plan.from,
				change:  plan.change,
				asset:   plan.asset,
				udtType: plan.udtType,
				source:  plan.source,
			}); err != nil {
				return err
			}
		}

		feeChange := true
		if plan.payFee == PayFeeTo {
			if err := payFeeByReceivers(d, receiverOutputs); err != nil {
				return err
			}
			feeChange = false
		}
		return b.balanceCapacity(ctx, snapshot, d, capacityBalance{
			payers:    plan.from,
			change:    plan.change,
			feeChange: feeChange,
		})
	}
}

func (b *Builder) addReceiverOutput(d *draft, plan *transferPlan, r receiver) (int, error) {
	if r.cell != nil {
		b.spendUnsigned(d, *r.cell)
		out := r.cell.Output
		data := append(model.Bytes(nil), r.cell.Data...)
		if plan.asset.IsCKB() {
			amount, err := safe.BigUint64(r.amount)
			if err != nil {
				return 0, ErrOverflow.with("amount %s", r.amount)
			}
			if err := addCapacity(&out, amount); err != nil {
				return 0, err
			}
		} else {
			total := model.UDTAmount(data)
			total.Add(total, r.amount)
			var err error
			if data, err = model.ReplaceUDTAmount(data, total); err != nil {
				return 0, err
			}
		}
		return d.addOutput(out, data, false), nil
	}

	if plan.asset.IsCKB() {
		amount, err := safe.BigUint64(r.amount)
		if err != nil {
			return 0, ErrOverflow.with("amount %s", r.amount)
		}
		return d.addOutput(model.CellOutput{Capacity: amount, Lock: r.lock}, nil, false), nil
	}

	data, err := model.EncodeUDTAmount(r.amount)
	if err != nil {
		return 0, err
	}
	udtType := plan.udtType
	out := model.CellOutput{Lock: r.lock, Type: &udtType}
	if plan.chequeSender != nil {
		if out.Lock, err = b.chequeLock(r.lock, *plan.chequeSender); err != nil {
			return 0, err
		}
		out.Capacity = model.ChequeCellCapacity
	} else if out.Capacity, err = out.OccupiedCapacity(len(data)); err != nil {
		return 0, err
	}
	b.addScriptDepsFor(d, &udtType)
	return d.addOutput(out, data, false), nil
}

// payFeeByReceivers takes the fee from the first receiver output that stays above
// its occupied capacity, which then absorbs the fee correction.
func payFeeByReceivers(d *draft, outputs []int) error {
	for _, idx := range outputs {
		out := &d.outputs[idx]
		occupied, err := out.OccupiedCapacity(len(d.outputsData[idx]))
		if err != nil {
			return err
		}
		if out.Capacity >= occupied && out.Capacity-occupied >= d.fee {
			out.Capacity -= d.fee
			d.setFeeChange(idx)
			return nil
		}
	}
	return ErrCannotFindChangeCell.with("no receiver output can pay fee %d", d.fee)
}
