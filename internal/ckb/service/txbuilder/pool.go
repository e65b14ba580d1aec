package txbuilder

import (
	"context"
	"fmt"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/chain"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/codec"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/dao"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

const poolPageSize = 50

// category is a class of spendable cells. Categories are drained in order.
type category int

const (
	categoryDaoClaim category = iota + 1
	categoryCellbase
	categoryNormal
	categorySecpUDT
	categoryACP
	categoryChequeInTime
	categoryChequeOutTime
)

func (c category) String() string {
	switch c {
	case categoryDaoClaim:
		return "DaoClaim"
	case categoryCellbase:
		return "CellBase"
	case categoryNormal:
		return "NormalSecp"
	case categorySecpUDT:
		return "SecpUdt"
	case categoryACP:
		return "Acp"
	case categoryChequeInTime:
		return "ChequeInTime"
	case categoryChequeOutTime:
		return "ChequeOutTime"
	default:
		return "Unknown"
	}
}

var ckbCategories = []category{categoryDaoClaim, categoryCellbase, categoryNormal, categorySecpUDT, categoryACP}

func udtCategories(source model.Source) []category {
	switch source {
	case model.SourceClaimable:
		return []category{categoryChequeInTime}
	case model.SourceFree:
		return []category{categoryChequeOutTime, categorySecpUDT, categoryACP}
	default:
		return []category{categoryChequeInTime, categoryChequeOutTime, categorySecpUDT, categoryACP}
	}
}

// candidate is a pooled cell waiting to be consumed.
type candidate struct {
	cell     model.Cell
	category category
	owner    *account
	// deposit is the cell a withdrawing candidate was created from.
	deposit *model.Cell
}

type poolStep struct {
	owner    *account
	category category
}

// cellPool lazily walks (account, category) steps. A step is queried page by
// page and left once its cursor is drained, so it is never queried again.
type cellPool struct {
	builder  *Builder
	snapshot chain.Snapshot
	asset    model.AssetInfo
	items    []model.Item

	steps   []poolStep
	index   int
	cursor  *uint64
	queried bool
	queue   []candidate
}

func (b *Builder) newCellPool(snapshot chain.Snapshot, owners []*account, asset model.AssetInfo, source model.Source) *cellPool {
	categories := ckbCategories
	if !asset.IsCKB() {
		categories = udtCategories(source)
	}
	steps := make([]poolStep, 0, len(owners)*len(categories))
	for _, owner := range owners {
		for _, c := range categories {
			steps = append(steps, poolStep{owner: owner, category: c})
		}
	}
	return &cellPool{
		builder:  b,
		snapshot: snapshot,
		asset:    asset,
		items:    accountItems(owners),
		steps:    steps,
	}
}

// next returns the next candidate not excluded by the snapshot or already in d.
// ok is false once every step is exhausted.
func (p *cellPool) next(ctx context.Context, d *draft) (c candidate, ok bool, err error) {
	for {
		for len(p.queue) > 0 {
			c, p.queue = p.queue[0], p.queue[1:]
			if p.snapshot.IsExcluded(c.cell.OutPoint) || d.hasInput(c.cell.OutPoint) {
				continue
			}
			return c, true, nil
		}
		if p.index >= len(p.steps) {
			return candidate{}, false, nil
		}
		if p.queried && p.cursor == nil {
			p.index++
			p.queried = false
			continue
		}
		if err := p.load(ctx); err != nil {
			return candidate{}, false, err
		}
	}
}

func (p *cellPool) load(ctx context.Context) error {
	step := p.steps[p.index]
	q, ok := p.query(step)
	p.queried = true
	if !ok {
		p.cursor = nil
		return nil
	}
	q.Cursor = p.cursor
	q.Limit = poolPageSize

	page, err := p.builder.store.LiveCells(ctx, q)
	if err != nil {
		return storeError("live_cells", err)
	}
	p.cursor = page.NextCursor

	for _, cell := range page.Cells {
		c, keep, err := p.filter(ctx, step, cell)
		if err != nil {
			return err
		}
		if keep {
			p.queue = append(p.queue, c)
		}
	}
	return nil
}

// query builds the live cell query of a step. ok is false when the account has
// no lock of the category.
func (p *cellPool) query(step poolStep) (q model.CellQuery, ok bool) {
	var locks []model.Script
	switch step.category {
	case categoryDaoClaim:
		info, found := p.builder.scripts.Get(model.ScriptDAO)
		if !found {
			return q, false
		}
		locks = step.owner.normal
		q.TypeFilter = model.TypeHashes
		q.TypeHashes = []model.Hash{codec.ScriptHash(info.Script)}
	case categoryCellbase, categoryNormal:
		locks = step.owner.normal
		q.TypeFilter = model.TypeNone
	case categorySecpUDT:
		locks = step.owner.normal
	case categoryACP:
		locks = step.owner.acp
	case categoryChequeInTime:
		locks = step.owner.chequeIn
	case categoryChequeOutTime:
		locks = step.owner.chequeOut
	}
	if len(locks) == 0 {
		return q, false
	}
	q.LockHashes = lockHashes(locks)

	if !p.asset.IsCKB() && step.category != categoryDaoClaim {
		q.TypeFilter = model.TypeHashes
		q.TypeHashes = []model.Hash{p.asset.UDTHash}
	}
	if step.owner.outPoint != nil {
		op := *step.owner.outPoint
		q.OutPoint = &op
	}
	return q, true
}

func (p *cellPool) filter(ctx context.Context, step poolStep, cell model.Cell) (candidate, bool, error) {
	c := candidate{cell: cell, category: step.category, owner: step.owner}
	tip := p.snapshot.TipEpoch
	b := p.builder

	switch step.category {
	case categoryDaoClaim:
		deposit, ok, err := b.unlockedWithdrawal(ctx, p.snapshot, cell)
		if err != nil || !ok {
			return c, false, err
		}
		c.deposit = deposit
		return c, true, nil

	case categoryCellbase:
		return c, cell.TxIndex == 0 && len(cell.Data) == 0 && cell.Output.Type == nil &&
			dao.IsUnlockEpochs(cell.Epoch, tip, b.cfg.CellbaseMaturity), nil

	case categoryNormal:
		return c, cell.TxIndex != 0 && len(cell.Data) == 0 && cell.Output.Type == nil, nil

	case categorySecpUDT:
		if cell.Output.Type == nil || !b.scripts.Is(*cell.Output.Type, model.ScriptSUDT) {
			return c, false, nil
		}
		return c, p.usable(cell), nil

	case categoryACP:
		// Capacity pooling only recreates plain or sudt acp cells.
		if p.asset.IsCKB() && cell.Output.Type != nil && !b.scripts.Is(*cell.Output.Type, model.ScriptSUDT) {
			return c, false, nil
		}
		return c, p.usable(cell), nil

	case categoryChequeInTime:
		return c, !dao.IsUnlockEpochs(cell.Epoch, tip, b.cfg.ChequeTimeout) && p.usable(cell), nil

	case categoryChequeOutTime:
		return c, dao.IsUnlockEpochs(cell.Epoch, tip, b.cfg.ChequeTimeout) && p.usable(cell), nil

	default:
		return c, false, fmt.Errorf("unknown pool category %d", step.category)
	}
}

// usable reports whether a cell contributes anything to the pooled asset: spare
// capacity for ckb, a positive amount for udt.
func (p *cellPool) usable(cell model.Cell) bool {
	if !p.asset.IsCKB() {
		return model.UDTAmount(cell.Data).Sign() > 0
	}
	occupied, err := cell.OccupiedCapacity()
	return err == nil && cell.Output.Capacity > occupied
}

// unlockedWithdrawal reports whether cell is a mature withdrawing cell whose lock
// period has passed, returning the deposit it was withdrawn from.
func (b *Builder) unlockedWithdrawal(ctx context.Context, snapshot chain.Snapshot, cell model.Cell) (*model.Cell, bool, error) {
	if cell.Output.Type == nil || !b.scripts.Is(*cell.Output.Type, model.ScriptDAO) {
		return nil, false, nil
	}
	if number, ok := dao.DepositBlockNumber(cell.Data); !ok || number == 0 {
		return nil, false, nil
	}
	if !dao.IsMature(cell.Epoch, snapshot.TipEpoch) {
		return nil, false, nil
	}

	tx, err := b.store.TransactionWithCells(ctx, cell.OutPoint.TxHash)
	if err != nil {
		return nil, false, storeError("transaction_with_cells", err)
	}
	if int(cell.OutPoint.Index) >= len(tx.Inputs) {
		return nil, false, fmt.Errorf("withdrawing transaction %s has no input %d", tx.Hash, cell.OutPoint.Index)
	}
	deposit := tx.Inputs[cell.OutPoint.Index]

	if !dao.IsWithdrawUnlocked(deposit.Epoch.Rational(), cell.Epoch.Rational(), snapshot.TipEpoch.Rational()) {
		return nil, false, nil
	}
	return &deposit, true, nil
}

// collectCells drains every page of q, keeping cells that are not excluded and pass keep.
func (b *Builder) collectCells(ctx context.Context, snapshot chain.Snapshot, q model.CellQuery, keep func(model.Cell) bool) ([]model.Cell, error) {
	var out []model.Cell
	q.Limit = poolPageSize
	for {
		page, err := b.store.LiveCells(ctx, q)
		if err != nil {
			return nil, storeError("live_cells", err)
		}
		for _, cell := range page.Cells {
			if snapshot.IsExcluded(cell.OutPoint) {
				continue
			}
			if keep == nil || keep(cell) {
				out = append(out, cell)
			}
		}
		if page.NextCursor == nil {
			return out, nil
		}
		q.Cursor = page.NextCursor
	}
}

// firstCell returns the first cell of q that is not excluded and passes keep.
func (b *Builder) firstCell(ctx context.Context, snapshot chain.Snapshot, q model.CellQuery, keep func(model.Cell) bool) (*model.Cell, error) {
	q.Limit = poolPageSize
	for {
		page, err := b.store.LiveCells(ctx, q)
		if err != nil {
			return nil, storeError("live_cells", err)
		}
		for _, cell := range page.Cells {
			if snapshot.IsExcluded(cell.OutPoint) {
				continue
			}
			if keep == nil || keep(cell) {
				found := cell
				return &found, nil
			}
		}
		if page.NextCursor == nil {
			return nil, nil
		}
		q.Cursor = page.NextCursor
	}
}
