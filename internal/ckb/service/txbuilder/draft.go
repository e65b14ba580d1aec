package txbuilder

import (
	"math/big"
	"sort"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/chain"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/codec"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
	"github.com/nervosnetwork/mercury-sub000/pkg/safe"
)

// signer describes how the owner of an input lock signs.
type signer struct {
	address   string
	algorithm model.SignAlgorithm
	hash      model.HashAlgorithm
	omni      bool
}

// draft accumulates one build iteration. It is owned by a single goroutine.
type draft struct {
	inputs     []model.Cell
	sinceMap   map[int]uint64
	inputIndex map[model.OutPoint]int

	outputs     []model.CellOutput
	outputsData []model.Bytes
	// changeEligible outputs may absorb surplus or be shrunk for their owner.
	changeEligible map[int]struct{}

	scriptDeps     map[string]struct{}
	headerDeps     []model.Hash
	headerDepIndex map[model.Hash]int

	typeWitnessArgs  map[int]model.WitnessArgs
	signatureActions map[model.Hash]*model.SignatureAction
	noSignature      map[int]struct{}

	feeChangeIndex *int
	daoReward      uint64
	fee            uint64
	// since applies to pooled inputs that carry no time lock of their own.
	since uint64
}

func newDraft(fee uint64) *draft {
	return &draft{
		sinceMap:         map[int]uint64{},
		inputIndex:       map[model.OutPoint]int{},
		changeEligible:   map[int]struct{}{},
		scriptDeps:       map[string]struct{}{},
		headerDepIndex:   map[model.Hash]int{},
		typeWitnessArgs:  map[int]model.WitnessArgs{},
		signatureActions: map[model.Hash]*model.SignatureAction{},
		noSignature:      map[int]struct{}{},
		fee:              fee,
	}
}

func (d *draft) hasInput(op model.OutPoint) bool {
	_, ok := d.inputIndex[op]
	return ok
}

// addInput appends cell as an input. Adding an out-point twice returns the existing index.
func (d *draft) addInput(cell model.Cell, since uint64) int {
	if idx, ok := d.inputIndex[cell.OutPoint]; ok {
		return idx
	}
	idx := len(d.inputs)
	d.inputs = append(d.inputs, cell)
	d.inputIndex[cell.OutPoint] = idx
	if since != 0 {
		d.sinceMap[idx] = since
	}
	return idx
}

func (d *draft) addOutput(output model.CellOutput, data model.Bytes, changeEligible bool) int {
	if data == nil {
		data = model.Bytes{}
	}
	idx := len(d.outputs)
	d.outputs = append(d.outputs, output)
	d.outputsData = append(d.outputsData, data)
	if changeEligible {
		d.changeEligible[idx] = struct{}{}
	}
	return idx
}

func (d *draft) isChangeEligible(idx int) bool {
	_, ok := d.changeEligible[idx]
	return ok
}

func (d *draft) addScriptDeps(names ...string) {
	for _, name := range names {
		d.scriptDeps[name] = struct{}{}
	}
}

// addHeaderDep returns the position of hash among the header deps, appending it once.
func (d *draft) addHeaderDep(hash model.Hash) int {
	if idx, ok := d.headerDepIndex[hash]; ok {
		return idx
	}
	idx := len(d.headerDeps)
	d.headerDeps = append(d.headerDeps, hash)
	d.headerDepIndex[hash] = idx
	return idx
}

func (d *draft) markNoSignature(inputIdx int) {
	d.noSignature[inputIdx] = struct{}{}
}

func (d *draft) requiresSignature(inputIdx int) bool {
	_, skip := d.noSignature[inputIdx]
	return !skip
}

// addSignature registers the input under its lock hash. The first input of a lock
// locates the signature, later ones join its group.
func (d *draft) addSignature(lockHash model.Hash, s signer, inputIdx int) {
	if action, ok := d.signatureActions[lockHash]; ok {
		action.OtherIndexesInGroup = append(action.OtherIndexesInGroup, inputIdx)
		return
	}
	d.signatureActions[lockHash] = &model.SignatureAction{
		SignatureLocation: model.SignatureLocation{
			Index:  inputIdx,
			Offset: codec.SignatureOffset(s.omni),
		},
		SignatureInfo: model.SignatureInfo{
			Algorithm: s.algorithm,
			Address:   s.address,
		},
		HashAlgorithm:       s.hash,
		OtherIndexesInGroup: []int{},
	}
}

func (d *draft) setFeeChange(idx int) {
	d.feeChangeIndex = &idx
}

func (d *draft) inputCapacity() (uint64, error) {
	values := make([]uint64, 0, len(d.inputs)+1)
	for _, in := range d.inputs {
		values = append(values, in.Output.Capacity)
	}
	values = append(values, d.daoReward)
	return safe.SumUint64(values...)
}

func (d *draft) outputCapacity() (uint64, error) {
	values := make([]uint64, 0, len(d.outputs))
	for _, out := range d.outputs {
		values = append(values, out.Capacity)
	}
	return safe.SumUint64(values...)
}

// capacityRequirement is outputs + fee - inputs - reward. A negative value is surplus.
func (d *draft) capacityRequirement() (*big.Int, error) {
	in, err := d.inputCapacity()
	if err != nil {
		return nil, err
	}
	out, err := d.outputCapacity()
	if err != nil {
		return nil, err
	}
	required := new(big.Int).SetUint64(out)
	required.Add(required, new(big.Int).SetUint64(d.fee))
	return required.Sub(required, new(big.Int).SetUint64(in)), nil
}

// udtRequirement is the udt amount the outputs carry beyond what the inputs provide.
func (d *draft) udtRequirement(udtType model.Script) *big.Int {
	required := new(big.Int)
	for i, out := range d.outputs {
		if out.Type != nil && out.Type.Equal(udtType) {
			required.Add(required, model.UDTAmount(d.outputsData[i]))
		}
	}
	for _, in := range d.inputs {
		if in.Output.Type != nil && in.Output.Type.Equal(udtType) {
			required.Sub(required, model.UDTAmount(in.Data))
		}
	}
	return required
}

// transaction renders the draft with empty witnesses.
func (d *draft) transaction(scripts *chain.ScriptRegistry) (model.Transaction, error) {
	names := make([]string, 0, len(d.scriptDeps))
	for name := range d.scriptDeps {
		names = append(names, name)
	}
	sort.Strings(names)

	cellDeps := make([]model.CellDep, 0, len(names))
	for _, name := range names {
		info, ok := scripts.Get(name)
		if !ok {
			return model.Transaction{}, ErrMissingScriptInfo.with("%s", name)
		}
		cellDeps = append(cellDeps, info.CellDep)
	}

	inputs := make([]model.CellInput, 0, len(d.inputs))
	for i, in := range d.inputs {
		inputs = append(inputs, model.CellInput{Since: d.sinceMap[i], PreviousOutput: in.OutPoint})
	}

	outputs := make([]model.CellOutput, len(d.outputs))
	copy(outputs, d.outputs)
	outputsData := make([]model.Bytes, len(d.outputsData))
	copy(outputsData, d.outputsData)

	headerDeps := make([]model.Hash, len(d.headerDeps))
	copy(headerDeps, d.headerDeps)

	witnesses := make([]model.Bytes, len(d.inputs))
	for i := range witnesses {
		witnesses[i] = model.Bytes{}
	}

	return model.Transaction{
		Version:     model.TxVersion,
		CellDeps:    cellDeps,
		HeaderDeps:  headerDeps,
		Inputs:      inputs,
		Outputs:     outputs,
		OutputsData: outputsData,
		Witnesses:   witnesses,
	}, nil
}

// orderedSignatureActions returns the actions sorted by signature location.
func (d *draft) orderedSignatureActions() []model.SignatureAction {
	out := make([]model.SignatureAction, 0, len(d.signatureActions))
	for _, action := range d.signatureActions {
		out = append(out, *action)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SignatureLocation.Index < out[j].SignatureLocation.Index
	})
	return out
}
