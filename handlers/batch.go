package handlers

import (
	"context"

	"golang.org/x/sync/errgroup"

	"krc20-indexer/model"
)

// Extraction is the outcome of inspecting one transaction of a batch.
type Extraction struct {
	Index int
	Tx    model.Tx
	Op    *model.TokenOperation
	Err   error
}

// ParseKRC20Operations returns the operations carried by txs, in input order.
// Transactions without an operation are skipped. Coinbase transactions are
// expected to be filtered out by the caller.
func ParseKRC20Operations(txs []model.Tx) []*model.TokenOperation {
	var ops []*model.TokenOperation
	for _, tx := range txs {
		if op, ok := DetectKRC20(tx); ok {
			ops = append(ops, op)
		}
	}
	return ops
}

// ParseKRC20OperationsParallel is ParseKRC20Operations spread over at most
// workers goroutines. Cancelling ctx stops issuing extractions and returns
// the context error.
func ParseKRC20OperationsParallel(ctx context.Context, txs []model.Tx, workers int) ([]*model.TokenOperation, error) {
	extractions, err := ExtractKRC20(ctx, txs, workers)
	if err != nil {
		return nil, err
	}

	var ops []*model.TokenOperation
	for _, extraction := range extractions {
		if extraction.Op != nil {
			ops = append(ops, extraction.Op)
		}
	}
	return ops, nil
}

// ExtractKRC20 inspects every transaction of txs on at most workers
// goroutines and returns one Extraction per transaction, in input order.
func ExtractKRC20(ctx context.Context, txs []model.Tx, workers int) ([]Extraction, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]Extraction, len(txs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range txs {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			op, err := Inspect(txs[i])
			results[i] = Extraction{Index: i, Tx: txs[i], Op: op, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
