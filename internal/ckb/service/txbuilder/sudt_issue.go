package txbuilder

import (
	"context"
	"math/big"
	"time"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/chain"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/codec"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

// BuildSudtIssue mints the owner's sUDT to the receivers. The owner's cells pay first
// so an owner-locked input unlocks the minting.
func (b *Builder) BuildSudtIssue(ctx context.Context, snapshot chain.Snapshot, p SudtIssuePayload) (completion *TransactionCompletion, err error) {
	started := time.Now()
	defer func() { b.observe(OpSudtIssue, err, started) }()

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
	ownerLock, err := b.parseAddress(p.Owner)
	if err != nil {
		return nil, err
	}
	from, err := b.resolveItems(ctx, p.From)
	if err != nil {
		return nil, err
	}
	if from, err = ownerFirst(from, ownerLock); err != nil {
		return nil, err
	}

	ownerHash := codec.ScriptHash(ownerLock)
	udtType, err := b.builtinScript(model.ScriptSUDT, ownerHash[:])
	if err != nil {
		return nil, err
	}

	plan := &transferPlan{
		asset:    model.NewUDTAsset(codec.ScriptHash(udtType)),
		udtType:  udtType,
		from:     from,
		provider: p.OutputCapacityProvider,
		payFee:   PayFeeFrom,
		since:    since,
	}
	if plan.provider == "" {
		plan.provider = ProvidedByFrom
	}
	if plan.provider != ProvidedByFrom && plan.provider != ProvidedByTo {
		return nil, ErrInvalidRPCParams.with("output capacity provider %q", plan.provider)
	}
	for _, info := range p.To {
		lock, err := b.parseAddress(info.Address)
		if err != nil {
			return nil, err
		}
		r := receiver{lock: lock, amount: new(big.Int).Set(info.Amount)}
		if err := b.prepareReceiver(ctx, snapshot, plan, &r); err != nil {
			return nil, err
		}
		plan.to = append(plan.to, r)
	}

	return b.buildWithFee(ctx, OpSudtIssue, b.feeRate(p.FeeRate), func(ctx context.Context, d *draft) error {
		d.since = plan.since
		for _, r := range plan.to {
			if _, err := b.addReceiverOutput(d, plan, r); err != nil {
				return err
			}
		}
		if err := b.balanceCapacity(ctx, snapshot, d, capacityBalance{payers: plan.from, feeChange: true}); err != nil {
			return err
		}
		for _, in := range d.inputs {
			if in.Output.Lock.Equal(ownerLock) {
				return nil
			}
		}
		return ErrFromNotContainOwner.with("no input locked by the owner")
	})
}

// ownerFirst moves the account owning lock to the front of from.
func ownerFirst(from []*account, lock model.Script) ([]*account, error) {
	for i, a := range from {
		if a.payout.Equal(lock) || containsScript(a.normal, lock) {
			out := make([]*account, 0, len(from))
			out = append(out, a)
			out = append(out, from[:i]...)
			return append(out, from[i+1:]...), nil
		}
	}
	return nil, ErrFromNotContainOwner
}
