package txbuilder

import (
	"context"
	"errors"
	"time"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/chain"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

// BuildSimpleTransfer transfers from plain addresses. A udt goes into the receivers'
// anyone-can-pay cells when all of them have one, and into cheques otherwise.
func (b *Builder) BuildSimpleTransfer(ctx context.Context, snapshot chain.Snapshot, p SimpleTransferPayload) (completion *TransactionCompletion, err error) {
	started := time.Now()
	defer func() { b.observe(OpSimpleTransfer, err, started) }()

	if len(p.From) == 0 {
		return nil, ErrNeedAtLeastOneFrom
	}
	if len(p.From) > MaxItemNum {
		return nil, ErrExceedMaxItemNum.with("%d from addresses", len(p.From))
	}
	if err := validateTo(p.To); err != nil {
		return nil, err
	}

	items := make([]model.Item, 0, len(p.From))
	var sender *model.Script
	for _, addr := range p.From {
		lock, err := b.parseAddress(addr)
		if err != nil {
			return nil, err
		}
		kind := b.kindOf(lock)
		if (kind != lockSecp && kind != lockACP) || len(lock.Args) < 20 {
			return nil, ErrUnsupportedLockScript.with("from address %s", addr)
		}
		var pubkeyHash [20]byte
		copy(pubkeyHash[:], lock.Args[:20])
		items = append(items, model.ItemFromIdentity(model.NewIdentity(model.IdentityCkb, pubkeyHash)))
		if sender == nil {
			secp, err := b.builtinScript(model.ScriptSecp256k1, pubkeyHash[:])
			if err != nil {
				return nil, err
			}
			sender = &secp
		}
	}

	tp := TransferPayload{
		AssetInfo:              p.AssetInfo,
		From:                   items,
		To:                     p.To,
		OutputCapacityProvider: ProvidedByFrom,
		PayFee:                 PayFeeFrom,
		FeeRate:                p.FeeRate,
		Since:                  p.Since,
	}

	cheque := false
	if !p.AssetInfo.IsCKB() {
		allHaveACP, err := b.receiversHaveACP(ctx, snapshot, p.To, p.AssetInfo)
		if err != nil {
			return nil, err
		}
		if allHaveACP {
			tp.OutputCapacityProvider = ProvidedByTo
		} else {
			cheque = true
		}
	}

	plan, err := b.planTransfer(ctx, snapshot, tp)
	if err != nil {
		return nil, err
	}
	if cheque {
		for _, r := range plan.to {
			if b.kindOf(r.lock) != lockSecp {
				return nil, ErrInvalidRPCParams.with("cheque receiver must use a secp256k1 address")
			}
		}
		plan.chequeSender = sender
	}
	return b.buildWithFee(ctx, OpSimpleTransfer, b.feeRate(p.FeeRate), b.transferBuild(snapshot, plan))
}

func (b *Builder) receiversHaveACP(ctx context.Context, snapshot chain.Snapshot, to []ToInfo, asset model.AssetInfo) (bool, error) {
	for _, info := range to {
		lock, err := b.parseAddress(info.Address)
		if err != nil {
			return false, err
		}
		if _, err := b.receiverCell(ctx, snapshot, lock, asset); err != nil {
			if errors.Is(err, ErrCannotFindACPCell) || errors.Is(err, ErrUnsupportedLockScript) {
				return false, nil
			}
			return false, err
		}
	}
	return true, nil
}
