package handlers

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/wealdtech/go-merkletree"

	"krc20-indexer/logger"
	"krc20-indexer/model"
	"krc20-indexer/utils"
)

// DetectedOperation is a decoded operation with the context it was found in.
type DetectedOperation struct {
	// TxIndex is the position among the block's non-coinbase transactions.
	TxIndex  uint32
	TxID     string
	Receiver string
	Op       *model.TokenOperation
}

// BlockRecord is everything the processor derived from one block.
type BlockRecord struct {
	Hash         string
	DaaScore     uint64
	Timestamp    time.Time
	Transactions int
	Operations   []*DetectedOperation
	// MerkleRoot commits to the wire encoding of Operations, in order. It is
	// empty for blocks without operations.
	MerkleRoot string
}

// FilterCoinbase drops generation transactions, which have no inputs.
func FilterCoinbase(txs []*model.RpcTransaction) []*model.RpcTransaction {
	filtered := make([]*model.RpcTransaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.IsCoinbase() {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}

// Processor turns blocks into BlockRecords. Blocks seen within the dedupe
// window are skipped.
type Processor struct {
	prefix  utils.Prefix
	workers int
	seen    *cache.Cache
	metrics *Metrics
}

func NewProcessor(prefix utils.Prefix, workers int, dedupeWindow time.Duration, metrics *Metrics) *Processor {
	return &Processor{
		prefix:  prefix,
		workers: workers,
		seen:    cache.New(dedupeWindow, 2*dedupeWindow),
		metrics: metrics,
	}
}

func (p *Processor) forget(hash string) {
	if hash != "" {
		p.seen.Delete(hash)
	}
}

// ProcessBlock extracts the operations of one block. It returns nil for a
// block that was already processed.
func (p *Processor) ProcessBlock(ctx context.Context, block *model.RpcBlock) (*BlockRecord, error) {
	var log = logger.GetLogger()

	hash := block.Hash()
	if hash != "" {
		if err := p.seen.Add(hash, struct{}{}, cache.DefaultExpiration); err != nil {
			log.Debugf("skip already processed block %s", hash)
			p.metrics.duplicate()
			return nil, nil
		}
	}

	txs := FilterCoinbase(block.Transactions)
	views := make([]model.Tx, len(txs))
	for i, tx := range txs {
		views[i] = model.NewRpcTx(tx, p.prefix)
	}

	extractions, err := ExtractKRC20(ctx, views, p.workers)
	if err != nil {
		// A block that produced no record must stay eligible for a retry.
		p.forget(hash)
		return nil, err
	}

	record := &BlockRecord{
		Hash:         hash,
		Transactions: len(txs),
	}
	if block.Header != nil {
		record.DaaScore = block.Header.DaaScore
		record.Timestamp = time.UnixMilli(block.Header.Timestamp)
	}

	var leaves [][]byte
	for _, extraction := range extractions {
		p.metrics.observe(extraction)
		if extraction.Op == nil {
			continue
		}

		tx := txs[extraction.Index]
		receiver, err := DetectKRC20Receiver(extraction.Tx)
		if err != nil {
			log.Warnf("block %s tx %s: cannot resolve receiver, %s", hash, tx.ID(), err)
		}

		leaf, err := json.Marshal(extraction.Op)
		if err != nil {
			p.forget(hash)
			return nil, err
		}
		leaves = append(leaves, leaf)

		record.Operations = append(record.Operations, &DetectedOperation{
			TxIndex:  uint32(extraction.Index),
			TxID:     tx.ID(),
			Receiver: receiver,
			Op:       extraction.Op,
		})
	}

	if len(leaves) > 0 {
		tree, err := merkletree.New(leaves)
		if err != nil {
			p.forget(hash)
			return nil, err
		}
		record.MerkleRoot = hex.EncodeToString(tree.Root())
	}

	if len(record.Operations) > 0 {
		log.Infof("block %s: %d krc-20 operations in %d transactions",
			hash, len(record.Operations), len(txs))
	}
	return record, nil
}

// ProcessBlocks runs ProcessBlock over blocks in order, dropping duplicates.
func (p *Processor) ProcessBlocks(ctx context.Context, blocks []*model.RpcBlock) ([]*BlockRecord, error) {
	var records []*BlockRecord
	for _, block := range blocks {
		record, err := p.ProcessBlock(ctx, block)
		if err != nil {
			return records, err
		}
		if record != nil {
			records = append(records, record)
		}
	}
	return records, nil
}
