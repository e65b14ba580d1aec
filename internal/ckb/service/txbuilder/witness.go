package txbuilder

import (
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/codec"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

type groupKey struct {
	script    string
	groupType model.ScriptGroupType
}

// scriptGroups groups inputs by lock and by type, and outputs by type. Groups
// are ordered by first input, lock before type; output-only type groups follow
// in order of their first output.
func scriptGroups(inputs []model.Cell, outputs []model.CellOutput) []model.ScriptGroup {
	var groups []*model.ScriptGroup
	index := map[groupKey]*model.ScriptGroup{}

	group := func(script model.Script, groupType model.ScriptGroupType) *model.ScriptGroup {
		key := groupKey{script: script.Key(), groupType: groupType}
		if g, ok := index[key]; ok {
			return g
		}
		g := &model.ScriptGroup{
			Script:        script,
			GroupType:     groupType,
			InputIndices:  []uint32{},
			OutputIndices: []uint32{},
		}
		index[key] = g
		groups = append(groups, g)
		return g
	}

	for i, in := range inputs {
		g := group(in.Output.Lock, model.LockGroup)
		g.InputIndices = append(g.InputIndices, uint32(i))
		if in.Output.Type != nil {
			g := group(*in.Output.Type, model.TypeGroup)
			g.InputIndices = append(g.InputIndices, uint32(i))
		}
	}
	for i, out := range outputs {
		if out.Type != nil {
			g := group(*out.Type, model.TypeGroup)
			g.OutputIndices = append(g.OutputIndices, uint32(i))
		}
	}

	out := make([]model.ScriptGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	return out
}

// complete renders the draft with placeholder witnesses. The first signing input
// of each lock group carries the lock placeholder; inputs with recorded type
// witness fields carry them; every other witness is empty.
func (b *Builder) complete(d *draft) (*TransactionCompletion, error) {
	tx, err := d.transaction(b.scripts)
	if err != nil {
		return nil, err
	}
	groups := scriptGroups(d.inputs, d.outputs)

	witnesses := make(map[int]model.WitnessArgs, len(d.typeWitnessArgs))
	for idx, w := range d.typeWitnessArgs {
		witnesses[idx] = model.WitnessArgs{InputType: w.InputType, OutputType: w.OutputType}
	}

	for _, g := range groups {
		if g.GroupType != model.LockGroup {
			continue
		}
		for _, i := range g.InputIndices {
			idx := int(i)
			if !d.requiresSignature(idx) {
				continue
			}
			w := witnesses[idx]
			if b.kindOf(g.Script) == lockOmni {
				w.Lock = codec.OmniLockPlaceholder()
			} else {
				w.Lock = codec.SecpPlaceholder()
			}
			witnesses[idx] = w
			break
		}
	}

	for idx, w := range witnesses {
		tx.Witnesses[idx] = codec.SerializeWitnessArgs(w)
	}

	return &TransactionCompletion{
		Tx:               tx,
		ScriptGroups:     groups,
		SignatureActions: d.orderedSignatureActions(),
		Fee:              d.fee,
	}, nil
}
