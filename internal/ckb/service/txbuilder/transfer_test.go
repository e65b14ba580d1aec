package txbuilder

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/codec"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
)

func ckbAmount(n uint64) *big.Int {
	return new(big.Int).SetUint64(n * ckb)
}

func TestBuildTransferNativeSingleRecipient(t *testing.T) {
	store := newMemStore()
	store.addCell(plainCell(secpLock(t, 1), 500_000*ckb))
	b := newTestBuilder(t, store)

	receiver := secpLock(t, 2)
	completion, err := b.BuildTransfer(context.Background(), testSnapshot(), TransferPayload{
		AssetInfo:              model.NewCKBAsset(),
		From:                   []model.Item{identityItem(1)},
		To:                     []ToInfo{{Address: testAddress(t, receiver), Amount: ckbAmount(100)}},
		OutputCapacityProvider: ProvidedByFrom,
	})
	require.NoError(t, err)

	tx := completion.Tx
	require.Len(t, tx.Inputs, 1)
	require.Len(t, tx.Outputs, 2)
	require.True(t, tx.Outputs[0].Lock.Equal(receiver))
	require.Equal(t, 100*ckb, tx.Outputs[0].Capacity)
	require.True(t, tx.Outputs[1].Lock.Equal(secpLock(t, 1)))
	require.Equal(t, 500_000*ckb-100*ckb-completion.Fee, tx.Outputs[1].Capacity)

	require.Equal(t, sumInputs(t, store, tx), sumOutputs(tx)+completion.Fee)
	assertFeeBounds(t, completion, DefaultFeeRate)
	assertMinimumCapacity(t, tx)

	require.Len(t, completion.SignatureActions, 1)
	action := completion.SignatureActions[0]
	require.Equal(t, 0, action.SignatureLocation.Index)
	require.Equal(t, 20, action.SignatureLocation.Offset)
	require.Equal(t, model.SignSecp256k1, action.SignatureInfo.Algorithm)
	require.Equal(t, testAddress(t, secpLock(t, 1)), action.SignatureInfo.Address)
}

func TestBuildTransferInsufficient(t *testing.T) {
	store := newMemStore()
	store.addCell(plainCell(secpLock(t, 1), 500*ckb))
	b := newTestBuilder(t, store)

	completion, err := b.BuildTransfer(context.Background(), testSnapshot(), TransferPayload{
		AssetInfo:              model.NewCKBAsset(),
		From:                   []model.Item{identityItem(1)},
		To:                     []ToInfo{{Address: testAddress(t, secpLock(t, 2)), Amount: ckbAmount(600)}},
		OutputCapacityProvider: ProvidedByFrom,
	})
	if completion != nil {
		t.Fatalf("expected no completion, got %+v", completion)
	}

	var insufficient *InsufficientError
	if !errors.As(err, &insufficient) {
		t.Fatalf("error = %v, want InsufficientError", err)
	}
	want := new(big.Int).SetUint64(100*ckb + InitEstimateFee)
	if insufficient.Shortfall.Cmp(want) != 0 {
		t.Fatalf("shortfall = %s, want %s", insufficient.Shortfall, want)
	}
	if KindOf(err) != KindInsufficient || CodeOf(err) != codeCKBNotEnough {
		t.Fatalf("KindOf() = %s, CodeOf() = %d", KindOf(err), CodeOf(err))
	}

	// Every ckb category of the single item is queried exactly once.
	if got := store.liveCellsCalls(); got != len(ckbCategories) {
		t.Fatalf("LiveCells called %d times, want %d", got, len(ckbCategories))
	}
}

func TestBuildTransferUDTIntoReceiverAccount(t *testing.T) {
	store := newMemStore()
	ownerHash := codec.ScriptHash(secpLock(t, 9))
	udtType := builtin(t, model.ScriptSUDT, ownerHash[:])
	store.addCell(udtCell(t, secpLock(t, 1), udtType, 200*ckb, 10_000))
	store.addCell(udtCell(t, acpLock(t, 2), udtType, 142*ckb, 0))
	b := newTestBuilder(t, store)

	completion, err := b.BuildTransfer(context.Background(), testSnapshot(), TransferPayload{
		AssetInfo: model.NewUDTAsset(codec.ScriptHash(udtType)),
		From:      []model.Item{identityItem(1)},
		To:        []ToInfo{{Address: testAddress(t, secpLock(t, 2)), Amount: big.NewInt(100)}},
	})
	require.NoError(t, err)

	tx := completion.Tx
	require.Len(t, tx.Inputs, 2)
	require.Len(t, tx.Outputs, 2)
	require.Equal(t, "100", udtAmountOf(tx, 0))
	require.Equal(t, "9900", udtAmountOf(tx, 1))
	require.True(t, tx.Outputs[0].Lock.Equal(acpLock(t, 2)))
	require.True(t, tx.Outputs[1].Lock.Equal(secpLock(t, 1)))

	require.Equal(t, sumInputs(t, store, tx), sumOutputs(tx)+completion.Fee)
	assertNoDuplicateInputs(t, tx)
	assertMinimumCapacity(t, tx)
	assertFeeBounds(t, completion, DefaultFeeRate)

	// The receiver's account cell is topped up without its owner signing.
	require.Len(t, completion.SignatureActions, 1)
	require.Equal(t, 1, completion.SignatureActions[0].SignatureLocation.Index)
}

func TestBuildTransferPayFeeByReceiver(t *testing.T) {
	store := newMemStore()
	store.addCell(plainCell(secpLock(t, 1), 1000*ckb))
	b := newTestBuilder(t, store)

	completion, err := b.BuildTransfer(context.Background(), testSnapshot(), TransferPayload{
		AssetInfo:              model.NewCKBAsset(),
		From:                   []model.Item{identityItem(1)},
		To:                     []ToInfo{{Address: testAddress(t, secpLock(t, 2)), Amount: ckbAmount(100)}},
		OutputCapacityProvider: ProvidedByFrom,
		PayFee:                 PayFeeTo,
	})
	require.NoError(t, err)

	tx := completion.Tx
	require.Len(t, tx.Outputs, 2)
	require.Equal(t, 100*ckb-completion.Fee, tx.Outputs[0].Capacity)
	require.Equal(t, 900*ckb, tx.Outputs[1].Capacity)
	require.Equal(t, sumInputs(t, store, tx), sumOutputs(tx)+completion.Fee)
}

func TestBuildTransferUDTPayFeeByReceiver(t *testing.T) {
	udtType := ownerUDT(t, secpLock(t, 9))
	asset := model.NewUDTAsset(codec.ScriptHash(udtType))

	t.Run("new output has no spare capacity", func(t *testing.T) {
		store := newMemStore()
		store.addCell(udtCell(t, secpLock(t, 1), udtType, 200*ckb, 10_000))
		store.addCell(plainCell(secpLock(t, 1), 1000*ckb))
		b := newTestBuilder(t, store)

		_, err := b.BuildTransfer(context.Background(), testSnapshot(), TransferPayload{
			AssetInfo:              asset,
			From:                   []model.Item{identityItem(1)},
			To:                     []ToInfo{{Address: testAddress(t, secpLock(t, 2)), Amount: big.NewInt(100)}},
			OutputCapacityProvider: ProvidedByFrom,
			PayFee:                 PayFeeTo,
		})
		if !errors.Is(err, ErrCannotFindChangeCell) {
			t.Fatalf("BuildTransfer() error = %v, want %v", err, ErrCannotFindChangeCell)
		}
	})

	t.Run("receiver account cell pays", func(t *testing.T) {
		store := newMemStore()
		store.addCell(udtCell(t, secpLock(t, 1), udtType, 200*ckb, 10_000))
		store.addCell(udtCell(t, acpLock(t, 2), udtType, 200*ckb, 0))
		b := newTestBuilder(t, store)

		completion, err := b.BuildTransfer(context.Background(), testSnapshot(), TransferPayload{
			AssetInfo: asset,
			From:      []model.Item{identityItem(1)},
			To:        []ToInfo{{Address: testAddress(t, secpLock(t, 2)), Amount: big.NewInt(100)}},
			PayFee:    PayFeeTo,
		})
		require.NoError(t, err)

		tx := completion.Tx
		require.True(t, tx.Outputs[0].Lock.Equal(acpLock(t, 2)))
		require.Equal(t, "100", udtAmountOf(tx, 0))
		require.Equal(t, 200*ckb-completion.Fee, tx.Outputs[0].Capacity)
		require.Equal(t, sumInputs(t, store, tx), sumOutputs(tx)+completion.Fee)
		assertMinimumCapacity(t, tx)
	})
}

func TestBuildTransferChangeAddress(t *testing.T) {
	store := newMemStore()
	store.addCell(plainCell(secpLock(t, 1), 1000*ckb))
	b := newTestBuilder(t, store)

	change := secpLock(t, 3)
	completion, err := b.BuildTransfer(context.Background(), testSnapshot(), TransferPayload{
		AssetInfo:              model.NewCKBAsset(),
		From:                   []model.Item{identityItem(1)},
		To:                     []ToInfo{{Address: testAddress(t, secpLock(t, 2)), Amount: ckbAmount(100)}},
		OutputCapacityProvider: ProvidedByFrom,
		Change:                 testAddress(t, change),
	})
	require.NoError(t, err)
	require.Len(t, completion.Tx.Outputs, 2)
	require.True(t, completion.Tx.Outputs[1].Lock.Equal(change))
	require.Equal(t, 900*ckb-completion.Fee, completion.Tx.Outputs[1].Capacity)
}

func TestBuildTransferPoolsAcrossPages(t *testing.T) {
	store := newMemStore()
	for i := 0; i < poolPageSize+10; i++ {
		store.addCell(plainCell(secpLock(t, 1), 100*ckb))
	}
	b := newTestBuilder(t, store)

	completion, err := b.BuildTransfer(context.Background(), testSnapshot(), TransferPayload{
		AssetInfo:              model.NewCKBAsset(),
		From:                   []model.Item{identityItem(1)},
		To:                     []ToInfo{{Address: testAddress(t, secpLock(t, 2)), Amount: ckbAmount(5500)}},
		OutputCapacityProvider: ProvidedByFrom,
	})
	require.NoError(t, err)

	tx := completion.Tx
	require.Len(t, tx.Inputs, 56)
	assertNoDuplicateInputs(t, tx)
	require.Equal(t, sumInputs(t, store, tx), sumOutputs(tx)+completion.Fee)
	assertFeeBounds(t, completion, DefaultFeeRate)

	// One signature action covers every input of the single lock.
	require.Len(t, completion.SignatureActions, 1)
	require.Len(t, completion.SignatureActions[0].OtherIndexesInGroup, 55)
}

func TestBuildTransferSkipsExcludedCells(t *testing.T) {
	store := newMemStore()
	excluded := store.addCell(plainCell(secpLock(t, 1), 1000*ckb))
	kept := store.addCell(plainCell(secpLock(t, 1), 1000*ckb))
	b := newTestBuilder(t, store)

	snapshot := testSnapshot()
	snapshot.Excluded = map[model.OutPoint]struct{}{excluded.OutPoint: {}}
	completion, err := b.BuildTransfer(context.Background(), snapshot, TransferPayload{
		AssetInfo:              model.NewCKBAsset(),
		From:                   []model.Item{identityItem(1)},
		To:                     []ToInfo{{Address: testAddress(t, secpLock(t, 2)), Amount: ckbAmount(100)}},
		OutputCapacityProvider: ProvidedByFrom,
	})
	require.NoError(t, err)
	require.Len(t, completion.Tx.Inputs, 1)
	require.Equal(t, kept.OutPoint, completion.Tx.Inputs[0].PreviousOutput)
}

func TestBuildTransferSince(t *testing.T) {
	store := newMemStore()
	store.addCell(plainCell(secpLock(t, 1), 1000*ckb))
	b := newTestBuilder(t, store)

	cfg := &model.SinceConfig{Flag: model.SinceAbsolute, Type: model.SinceBlockNumber, Value: 12345}
	completion, err := b.BuildTransfer(context.Background(), testSnapshot(), TransferPayload{
		AssetInfo:              model.NewCKBAsset(),
		From:                   []model.Item{identityItem(1)},
		To:                     []ToInfo{{Address: testAddress(t, secpLock(t, 2)), Amount: ckbAmount(100)}},
		OutputCapacityProvider: ProvidedByFrom,
		Since:                  cfg,
	})
	require.NoError(t, err)

	want, err := model.ToSince(*cfg)
	require.NoError(t, err)
	require.Equal(t, want, completion.Tx.Inputs[0].Since)
}

func TestBuildTransferSinceCoversReceiverAccount(t *testing.T) {
	store := newMemStore()
	store.addCell(plainCell(secpLock(t, 1), 1000*ckb))
	store.addCell(plainCell(acpLock(t, 2), 100*ckb))
	b := newTestBuilder(t, store)

	cfg := &model.SinceConfig{Flag: model.SinceAbsolute, Type: model.SinceBlockNumber, Value: 12345}
	completion, err := b.BuildTransfer(context.Background(), testSnapshot(), TransferPayload{
		AssetInfo:              model.NewCKBAsset(),
		From:                   []model.Item{identityItem(1)},
		To:                     []ToInfo{{Address: testAddress(t, secpLock(t, 2)), Amount: ckbAmount(100)}},
		OutputCapacityProvider: ProvidedByTo,
		Since:                  cfg,
	})
	require.NoError(t, err)

	want, err := model.ToSince(*cfg)
	require.NoError(t, err)
	require.Len(t, completion.Tx.Inputs, 2)
	for i, in := range completion.Tx.Inputs {
		if in.Since != want {
			t.Fatalf("input %d since = %d, want %d", i, in.Since, want)
		}
	}
	require.True(t, completion.Tx.Outputs[0].Lock.Equal(acpLock(t, 2)))
	require.Equal(t, 200*ckb, completion.Tx.Outputs[0].Capacity)
}

func TestBuildTransferValidation(t *testing.T) {
	store := newMemStore()
	store.addCell(plainCell(secpLock(t, 1), 1000*ckb))
	b := newTestBuilder(t, store)
	to := []ToInfo{{Address: testAddress(t, secpLock(t, 2)), Amount: ckbAmount(100)}}

	tests := []struct {
		name    string
		payload TransferPayload
		wantErr error
	}{
		{
			name:    "nothing",
			payload: TransferPayload{AssetInfo: model.NewCKBAsset()},
			wantErr: ErrNeedAtLeastOneFromAndOneTo,
		},
		{
			name:    "no from",
			payload: TransferPayload{AssetInfo: model.NewCKBAsset(), To: to},
			wantErr: ErrNeedAtLeastOneFromAndOneTo,
		},
		{
			name:    "no to",
			payload: TransferPayload{AssetInfo: model.NewCKBAsset(), From: []model.Item{identityItem(1)}},
			wantErr: ErrNeedAtLeastOneFromAndOneTo,
		},
		{
			name: "zero amount",
			payload: TransferPayload{
				AssetInfo: model.NewCKBAsset(),
				From:      []model.Item{identityItem(1)},
				To:        []ToInfo{{Address: to[0].Address, Amount: big.NewInt(0)}},
			},
			wantErr: ErrTransferAmountMustPositive,
		},
		{
			name: "mixed item kinds",
			payload: TransferPayload{
				AssetInfo: model.NewCKBAsset(),
				From:      []model.Item{identityItem(1), model.ItemFromAddress(testAddress(t, secpLock(t, 3)))},
				To:        to,
			},
			wantErr: ErrItemsNotSameEnumValue,
		},
		{
			name: "from contains to",
			payload: TransferPayload{
				AssetInfo:              model.NewCKBAsset(),
				From:                   []model.Item{identityItem(2)},
				To:                     to,
				OutputCapacityProvider: ProvidedByFrom,
			},
			wantErr: ErrFromContainTo,
		},
		{
			name: "below minimum output",
			payload: TransferPayload{
				AssetInfo:              model.NewCKBAsset(),
				From:                   []model.Item{identityItem(1)},
				To:                     []ToInfo{{Address: to[0].Address, Amount: ckbAmount(60)}},
				OutputCapacityProvider: ProvidedByFrom,
			},
			wantErr: ErrRequiredCKBLessThanMin,
		},
		{
			name: "receiver without account cell",
			payload: TransferPayload{
				AssetInfo:              model.NewCKBAsset(),
				From:                   []model.Item{identityItem(1)},
				To:                     to,
				OutputCapacityProvider: ProvidedByTo,
			},
			wantErr: ErrCannotFindACPCell,
		},
		{
			name: "bad provider",
			payload: TransferPayload{
				AssetInfo:              model.NewCKBAsset(),
				From:                   []model.Item{identityItem(1)},
				To:                     to,
				OutputCapacityProvider: "Both",
			},
			wantErr: ErrInvalidRPCParams,
		},
		{
			name: "unknown udt",
			payload: TransferPayload{
				AssetInfo: model.NewUDTAsset(model.Hash{1}),
				From:      []model.Item{identityItem(1)},
				To:        to,
			},
			wantErr: ErrCannotGetScriptByHash,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.BuildTransfer(context.Background(), testSnapshot(), tt.payload)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("BuildTransfer() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildTransferFeeIterations(t *testing.T) {
	store := newMemStore()
	store.addCell(plainCell(secpLock(t, 1), 1000*ckb))

	ctrl := gomock.NewController(t)
	metrics := NewMockMetrics(ctrl)
	metrics.EXPECT().ObserveFeeIterations(OpTransfer, 2)
	metrics.EXPECT().ObserveBuild(OpTransfer, gomock.Nil(), gomock.Any())

	b, err := NewBuilder(store, testRegistry, metrics, Config{Network: model.Testnet}, zap.NewNop())
	require.NoError(t, err)

	// At this rate the first estimate is far too low.
	rate := uint64(1_000_000)
	completion, err := b.BuildTransfer(context.Background(), testSnapshot(), TransferPayload{
		AssetInfo:              model.NewCKBAsset(),
		From:                   []model.Item{identityItem(1)},
		To:                     []ToInfo{{Address: testAddress(t, secpLock(t, 2)), Amount: ckbAmount(100)}},
		OutputCapacityProvider: ProvidedByFrom,
		FeeRate:                &rate,
	})
	require.NoError(t, err)
	assertFeeBounds(t, completion, rate)
	require.Equal(t, sumInputs(t, store, completion.Tx), sumOutputs(completion.Tx)+completion.Fee)
}

func TestFeeForSize(t *testing.T) {
	tests := []struct {
		size, rate, want uint64
	}{
		{size: 0, rate: 1000, want: 0},
		{size: 500, rate: 1000, want: 500},
		{size: 501, rate: 999, want: 501},
		{size: 1, rate: 1, want: 1},
		{size: 1000, rate: 1, want: 1},
		{size: 1001, rate: 1, want: 2},
	}
	for _, tt := range tests {
		got, err := feeForSize(tt.size, tt.rate)
		if err != nil || got != tt.want {
			t.Fatalf("feeForSize(%d, %d) = %d, %v, want %d", tt.size, tt.rate, got, err, tt.want)
		}
	}
	if _, err := feeForSize(1<<40, 1<<40); err == nil {
		t.Fatalf("expected overflow")
	}
}
