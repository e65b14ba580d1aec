package txbuilder

import (
	"context"
	"encoding/json"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/chain"
)

// Request is one build request as read from a request file.
type Request struct {
	ID        string          `json:"id,omitempty"`
	Operation string          `json:"operation"`
	Payload   json.RawMessage `json:"payload"`
}

// Build decodes the payload of req and runs the matching builder.
func (b *Builder) Build(ctx context.Context, snapshot chain.Snapshot, req Request) (*TransactionCompletion, error) {
	switch req.Operation {
	case OpTransfer:
		var p TransferPayload
		if err := decodePayload(req, &p); err != nil {
			return nil, err
		}
		return b.BuildTransfer(ctx, snapshot, p)
	case OpSimpleTransfer:
		var p SimpleTransferPayload
		if err := decodePayload(req, &p); err != nil {
			return nil, err
		}
		return b.BuildSimpleTransfer(ctx, snapshot, p)
	case OpDaoDeposit:
		var p DaoDepositPayload
		if err := decodePayload(req, &p); err != nil {
			return nil, err
		}
		return b.BuildDaoDeposit(ctx, snapshot, p)
	case OpDaoWithdraw:
		var p DaoWithdrawPayload
		if err := decodePayload(req, &p); err != nil {
			return nil, err
		}
		return b.BuildDaoWithdraw(ctx, snapshot, p)
	case OpDaoClaim:
		var p DaoClaimPayload
		if err := decodePayload(req, &p); err != nil {
			return nil, err
		}
		return b.BuildDaoClaim(ctx, snapshot, p)
	case OpSudtIssue:
		var p SudtIssuePayload
		if err := decodePayload(req, &p); err != nil {
			return nil, err
		}
		return b.BuildSudtIssue(ctx, snapshot, p)
	case OpAdjustAccount:
		var p AdjustAccountPayload
		if err := decodePayload(req, &p); err != nil {
			return nil, err
		}
		return b.BuildAdjustAccount(ctx, snapshot, p)
	default:
		return nil, ErrInvalidRPCParams.with("unknown operation %q", req.Operation)
	}
}

func decodePayload(req Request, v any) error {
	if len(req.Payload) == 0 {
		return ErrInvalidRPCParams.with("%s: empty payload", req.Operation)
	}
	if err := json.Unmarshal(req.Payload, v); err != nil {
		return ErrInvalidRPCParams.with("%s payload: %v", req.Operation, err)
	}
	return nil
}
