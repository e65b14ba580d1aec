package txbuilder

import (
	"context"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/address"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/codec"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

type lockKind int

const (
	lockUnknown lockKind = iota
	lockSecp
	lockACP
	lockCheque
	lockPW
	lockOmni
)

// account is an item resolved to the locks it may spend from.
type account struct {
	item model.Item
	// payout receives change and default outputs.
	payout     model.Script
	payoutKind lockKind
	signer     signer
	pubkeyHash [20]byte

	normal    []model.Script
	acp       []model.Script
	chequeIn  []model.Script
	chequeOut []model.Script
	// outPoint restricts a record item to a single cell.
	outPoint *model.OutPoint
}

// owns reports whether change may be written to an output with lock.
func (a *account) owns(lock model.Script) bool {
	if a.payout.Equal(lock) {
		return true
	}
	for _, s := range a.acp {
		if s.Equal(lock) {
			return true
		}
	}
	return false
}

func accountItems(accounts []*account) []model.Item {
	items := make([]model.Item, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, a.item)
	}
	return items
}

func (b *Builder) kindOf(lock model.Script) lockKind {
	name, ok := b.scripts.NameOf(lock)
	if !ok {
		return lockUnknown
	}
	switch name {
	case model.ScriptSecp256k1:
		return lockSecp
	case model.ScriptACP:
		return lockACP
	case model.ScriptCheque:
		return lockCheque
	case model.ScriptPWLock:
		return lockPW
	case model.ScriptOmniLock:
		return lockOmni
	default:
		return lockUnknown
	}
}

func (b *Builder) builtinScript(name string, args []byte) (model.Script, error) {
	s, ok := b.scripts.Script(name, args)
	if !ok {
		return model.Script{}, ErrMissingScriptInfo.with("%s", name)
	}
	return s, nil
}

func (b *Builder) encodeAddress(lock model.Script) (string, error) {
	addr, err := address.Encode(b.cfg.Network, lock)
	if err != nil {
		return "", ErrInvalidRPCParams.with("encode address: %v", err)
	}
	return addr, nil
}

func (b *Builder) parseAddress(s string) (model.Script, error) {
	lock, err := address.ParseScript(s)
	if err != nil {
		return model.Script{}, ErrInvalidRPCParams.with("%v", err)
	}
	return lock, nil
}

// signerFor describes who signs for an input locked by lock. Cheque inputs are
// signed by the account that pooled them, which is the receiver or the sender.
func (b *Builder) signerFor(lock model.Script, owner *account) (signer, error) {
	switch b.kindOf(lock) {
	case lockSecp:
		addr, err := b.encodeAddress(lock)
		if err != nil {
			return signer{}, err
		}
		return signer{address: addr, algorithm: model.SignSecp256k1, hash: model.HashBlake2b}, nil
	case lockACP:
		if len(lock.Args) < 20 {
			return signer{}, ErrUnsupportedLockScript.with("acp args length %d", len(lock.Args))
		}
		secp, err := b.builtinScript(model.ScriptSecp256k1, lock.Args[:20])
		if err != nil {
			return signer{}, err
		}
		return b.signerFor(secp, owner)
	case lockCheque:
		if owner == nil {
			return signer{}, ErrUnsupportedLockScript.with("cheque input without owner")
		}
		return owner.signer, nil
	case lockPW:
		addr, err := b.encodeAddress(lock)
		if err != nil {
			return signer{}, err
		}
		return signer{address: addr, algorithm: model.SignEthereumPersonal, hash: model.HashKeccak256}, nil
	case lockOmni:
		addr, err := b.encodeAddress(lock)
		if err != nil {
			return signer{}, err
		}
		return signer{address: addr, algorithm: model.SignSecp256k1, hash: model.HashBlake2b, omni: true}, nil
	default:
		return signer{}, ErrUnsupportedLockScript.with("lock code hash %s", lock.CodeHash)
	}
}

// resolveItems resolves items in order, dropping duplicates.
func (b *Builder) resolveItems(ctx context.Context, items []model.Item) ([]*account, error) {
	seen := make(map[model.Item]struct{}, len(items))
	out := make([]*account, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		a, err := b.resolveItem(ctx, item)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (b *Builder) resolveItem(ctx context.Context, item model.Item) (*account, error) {
	switch item.Kind() {
	case model.ItemIdentity:
		return b.identityAccount(ctx, item, item.Identity())
	case model.ItemAddress:
		lock, err := b.parseAddress(item.Address())
		if err != nil {
			return nil, err
		}
		return b.lockAccount(ctx, item, lock)
	case model.ItemRecord:
		rec := item.Record()
		var lock model.Script
		if rec.Address != "" {
			parsed, err := b.parseAddress(rec.Address)
			if err != nil {
				return nil, err
			}
			lock = parsed
		} else {
			found, err := b.store.ScriptByHash160(ctx, rec.LockHash160)
			if err != nil {
				return nil, storeError("script_by_hash160", err)
			}
			if found == nil {
				return nil, ErrCannotGetScriptByHash.with("record owner %x", rec.LockHash160)
			}
			lock = *found
		}
		a, err := b.lockAccount(ctx, item, lock)
		if err != nil {
			return nil, err
		}
		op := rec.OutPoint
		a.outPoint = &op
		return a, nil
	default:
		return nil, ErrInvalidRPCParams.with("item kind %s", item.Kind())
	}
}

// identityAccount covers every lock derived from the identity's key.
func (b *Builder) identityAccount(ctx context.Context, item model.Item, id model.Identity) (*account, error) {
	pubkeyHash := id.PubkeyHash()
	switch id.Flag() {
	case model.IdentityCkb:
		secp, err := b.builtinScript(model.ScriptSecp256k1, pubkeyHash[:])
		if err != nil {
			return nil, err
		}
		a, err := b.secpAccount(ctx, item, secp)
		if err != nil {
			return nil, err
		}
		acp, err := b.acpScripts(ctx, a.pubkeyHash)
		if err != nil {
			return nil, err
		}
		a.acp = acp
		return a, nil
	case model.IdentityEthereum:
		pw, err := b.builtinScript(model.ScriptPWLock, pubkeyHash[:])
		if err != nil {
			return nil, err
		}
		return b.lockAccount(ctx, item, pw)
	default:
		return nil, ErrUnsupportedLockScript.with("identity flag %#x", byte(id.Flag()))
	}
}

// lockAccount covers a single lock, plus the cheques of a secp lock.
func (b *Builder) lockAccount(ctx context.Context, item model.Item, lock model.Script) (*account, error) {
	kind := b.kindOf(lock)
	if kind != lockCheque && kind != lockUnknown && len(lock.Args) < 20 {
		return nil, ErrUnsupportedLockScript.with("lock args length %d", len(lock.Args))
	}
	switch kind {
	case lockSecp:
		return b.secpAccount(ctx, item, lock)
	case lockACP:
		s, err := b.signerFor(lock, nil)
		if err != nil {
			return nil, err
		}
		a := &account{item: item, payout: lock, payoutKind: lockACP, signer: s, acp: []model.Script{lock}}
		copy(a.pubkeyHash[:], lock.Args[:20])
		return a, nil
	case lockPW, lockOmni:
		s, err := b.signerFor(lock, nil)
		if err != nil {
			return nil, err
		}
		a := &account{item: item, payout: lock, payoutKind: kind, signer: s, normal: []model.Script{lock}}
		if kind == lockOmni && len(lock.Args) >= 21 {
			// omni-lock args start with a flag byte.
			copy(a.pubkeyHash[:], lock.Args[1:21])
		} else {
			copy(a.pubkeyHash[:], lock.Args[:20])
		}
		if kind == lockPW {
			// pw-lock cells accept deposits without a signature, like anyone-can-pay.
			a.acp = []model.Script{lock}
		}
		return a, nil
	default:
		return nil, ErrUnsupportedLockScript.with("lock code hash %s", lock.CodeHash)
	}
}

func (b *Builder) secpAccount(ctx context.Context, item model.Item, secp model.Script) (*account, error) {
	s, err := b.signerFor(secp, nil)
	if err != nil {
		return nil, err
	}
	a := &account{item: item, payout: secp, payoutKind: lockSecp, signer: s, normal: []model.Script{secp}}
	copy(a.pubkeyHash[:], secp.Args[:20])

	lockHash160 := codec.ScriptHash(secp).Hash160()
	if a.chequeIn, err = b.chequeScripts(ctx, lockHash160, 0); err != nil {
		return nil, err
	}
	if a.chequeOut, err = b.chequeScripts(ctx, lockHash160, 20); err != nil {
		return nil, err
	}
	return a, nil
}

// acpScripts returns every known anyone-can-pay lock owned by pubkeyHash, the
// canonical one first.
func (b *Builder) acpScripts(ctx context.Context, pubkeyHash [20]byte) ([]model.Script, error) {
	canonical, err := b.builtinScript(model.ScriptACP, pubkeyHash[:])
	if err != nil {
		return nil, err
	}
	found, err := b.store.Scripts(ctx, model.ScriptQuery{
		CodeHash:   canonical.CodeHash,
		Args:       pubkeyHash[:],
		ArgsOffset: 0,
	})
	if err != nil {
		return nil, storeError("scripts", err)
	}
	return appendUnique([]model.Script{canonical}, found...), nil
}

// chequeScripts returns the cheque locks naming lockHash160 at offset: 0 for the
// receiver and 20 for the sender.
func (b *Builder) chequeScripts(ctx context.Context, lockHash160 [20]byte, offset int) ([]model.Script, error) {
	info, ok := b.scripts.Get(model.ScriptCheque)
	if !ok {
		return nil, nil
	}
	found, err := b.store.Scripts(ctx, model.ScriptQuery{
		CodeHash:   info.Script.CodeHash,
		Args:       lockHash160[:],
		ArgsOffset: offset,
	})
	if err != nil {
		return nil, storeError("scripts", err)
	}
	return appendUnique(nil, found...), nil
}

// receiverACPLock is the lock a receiver's anyone-can-pay cell carries.
func (b *Builder) receiverACPLock(lock model.Script) (model.Script, error) {
	switch b.kindOf(lock) {
	case lockSecp:
		return b.builtinScript(model.ScriptACP, lock.Args)
	case lockACP, lockPW:
		return lock, nil
	default:
		return model.Script{}, ErrUnsupportedLockScript.with("receiver lock code hash %s", lock.CodeHash)
	}
}

// chequeLock builds the cheque lock whose args are the receiver and sender lock hash prefixes.
func (b *Builder) chequeLock(receiver, sender model.Script) (model.Script, error) {
	r := codec.ScriptHash(receiver).Hash160()
	s := codec.ScriptHash(sender).Hash160()
	args := make([]byte, 0, 40)
	args = append(args, r[:]...)
	args = append(args, s[:]...)
	return b.builtinScript(model.ScriptCheque, args)
}

func appendUnique(dst []model.Script, scripts ...model.Script) []model.Script {
	for _, s := range scripts {
		dup := false
		for _, existing := range dst {
			if existing.Equal(s) {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, s)
		}
	}
	return dst
}

func lockHashes(scripts []model.Script) []model.Hash {
	out := make([]model.Hash, 0, len(scripts))
	for _, s := range scripts {
		out = append(out, codec.ScriptHash(s))
	}
	return out
}
