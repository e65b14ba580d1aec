package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/chain"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/service/txbuilder"
)

var errSnapshotUnavailable = errors.New("chain snapshot unavailable")

type requestBuilder interface {
	Build(ctx context.Context, snapshot chain.Snapshot, req txbuilder.Request) (*txbuilder.TransactionCompletion, error)
}

type snapshotLoader interface {
	Load() (chain.Snapshot, bool)
}

// buildRequest builds req against the latest snapshot and refuses to build without one.
func buildRequest(ctx context.Context, builder requestBuilder, snapshots snapshotLoader, req txbuilder.Request) (*txbuilder.TransactionCompletion, error) {
	snapshot, ok := snapshots.Load()
	if !ok {
		return nil, errSnapshotUnavailable
	}
	return builder.Build(ctx, snapshot, req)
}

type result struct {
	ID         string                           `json:"id,omitempty"`
	Operation  string                           `json:"operation"`
	Completion *txbuilder.TransactionCompletion `json:"completion,omitempty"`
	Error      *resultError                     `json:"error,omitempty"`
}

type resultError struct {
	Kind    string `json:"kind"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

func failed(req txbuilder.Request, err error) result {
	return result{
		ID:        req.ID,
		Operation: req.Operation,
		Error: &resultError{
			Kind:    txbuilder.KindOf(err).String(),
			Code:    txbuilder.CodeOf(err),
			Message: err.Error(),
		},
	}
}

func loadRequests(path string) ([]txbuilder.Request, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request file: %w", err)
	}
	return decodeRequests(raw)
}

// decodeRequests accepts a single request object or an array of them.
func decodeRequests(raw []byte) ([]txbuilder.Request, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("request file is empty")
	}
	if raw[0] == '[' {
		var reqs []txbuilder.Request
		if err := json.Unmarshal(raw, &reqs); err != nil {
			return nil, fmt.Errorf("decode requests: %w", err)
		}
		return reqs, nil
	}
	var req txbuilder.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return []txbuilder.Request{req}, nil
}

func writeResults(path string, results []result) error {
	var out io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return encodeResults(out, results)
}

func encodeResults(w io.Writer, results []result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}
