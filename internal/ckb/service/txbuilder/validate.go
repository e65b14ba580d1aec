package txbuilder

import (
	"context"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/codec"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

func validateFrom(from []model.Item) error {
	if len(from) == 0 {
		return ErrNeedAtLeastOneFrom
	}
	if len(from) > MaxItemNum {
		return ErrExceedMaxItemNum.with("%d from items", len(from))
	}
	return nil
}

func validateTo(to []ToInfo) error {
	if len(to) == 0 {
		return ErrNeedAtLeastOneTo
	}
	if len(to) > MaxItemNum {
		return ErrExceedMaxItemNum.with("%d to items", len(to))
	}
	for _, info := range to {
		if info.Address == "" {
			return ErrInvalidRPCParams.with("empty to address")
		}
		if info.Amount == nil || info.Amount.Sign() <= 0 {
			return ErrTransferAmountMustPositive.with("to %s", info.Address)
		}
	}
	return nil
}

// validateSameKind rejects item lists mixing identities, addresses and records.
func validateSameKind(items []model.Item) error {
	for _, item := range items[1:] {
		if item.Kind() != items[0].Kind() {
			return ErrItemsNotSameEnumValue.with("%s and %s", items[0].Kind(), item.Kind())
		}
	}
	return nil
}

func payloadSince(cfg *model.SinceConfig) (uint64, error) {
	if cfg == nil {
		return 0, nil
	}
	since, err := model.ToSince(*cfg)
	if err != nil {
		return 0, ErrInvalidRPCParams.with("%v", err)
	}
	return since, nil
}

// checkFromNotContainTo rejects transfers whose receiver is one of the senders.
func checkFromNotContainTo(from []*account, to []model.Script) error {
	for _, lock := range to {
		for _, a := range from {
			if a.owns(lock) || containsScript(a.normal, lock) {
				return ErrFromContainTo.with("item %s", a.item)
			}
		}
	}
	return nil
}

func containsScript(scripts []model.Script, s model.Script) bool {
	for _, existing := range scripts {
		if existing.Equal(s) {
			return true
		}
	}
	return false
}

// udtTypeScript resolves the type script of a udt asset from its hash.
func (b *Builder) udtTypeScript(ctx context.Context, asset model.AssetInfo) (model.Script, error) {
	found, err := b.store.ScriptByHash160(ctx, asset.UDTHash.Hash160())
	if err != nil {
		return model.Script{}, storeError("script_by_hash160", err)
	}
	if found == nil || codec.ScriptHash(*found) != asset.UDTHash {
		return model.Script{}, ErrCannotGetScriptByHash.with("udt %s", asset.UDTHash)
	}
	return *found, nil
}
