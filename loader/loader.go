package loader

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"lukechampine.com/uint128"

	"krc20-indexer/connector/tidb"
	"krc20-indexer/handlers"
	"krc20-indexer/model"
)

var maxDaaScore uint64 = 0

// Blocks with full transactions easily exceed bufio's default token size.
const maxLineSize = 64 * 1024 * 1024

// LoadBlockData reads a file holding one RPC block per line as JSON. Blocks at
// or below the resume point are skipped.
func LoadBlockData(fname string) ([]*model.RpcBlock, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var blocks []*model.RpcBlock
	scanner := bufio.NewScanner(file)
	buf := make([]byte, 4*1024*1024)
	scanner.Buffer(buf, maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var block model.RpcBlock
		if err := json.Unmarshal(line, &block); err != nil {
			return nil, fmt.Errorf("invalid block at line %d: %w", lineNo, err)
		}

		if block.Header != nil && maxDaaScore > 0 && block.Header.DaaScore <= maxDaaScore {
			continue
		}

		blocks = append(blocks, &block)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return blocks, nil
}

func SetMaxDaaScore(max uint64) {
	maxDaaScore = max
}

func GetMaxDaaScore() uint64 {
	return maxDaaScore
}

// GetMaxDaaScoreFromDB sets the resume point to the highest block already
// recorded.
func GetMaxDaaScoreFromDB(db *gorm.DB) error {
	if !tidb.JudgeTableExistOrNot(db, model.BlockBatch{}.TableName()) {
		return nil
	}

	var max *uint64
	err := db.Model(&model.BlockBatch{}).Select("MAX(daa_score)").Scan(&max).Error
	if err != nil {
		return err
	}
	if max != nil && *max > maxDaaScore {
		maxDaaScore = *max
	}
	return nil
}

func toDecimal(v *uint128.Uint128) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromBigInt(v.Big(), 0)
	return &d
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ConvertBlockRecordsToTokenActivities(records []*handlers.BlockRecord) ([]*model.TokenActivity, error) {
	var tokenActivities []*model.TokenActivity
	for _, record := range records {
		for _, detected := range record.Operations {
			payload, err := json.Marshal(detected.Op)
			if err != nil {
				return nil, err
			}
			tokenActivities = append(tokenActivities, &model.TokenActivity{
				BlockTimestamp: record.Timestamp,
				DaaScore:       record.DaaScore,
				BlockHash:      record.Hash,
				TxIndex:        detected.TxIndex,
				TxID:           detected.TxID,
				Type:           detected.Op.Op.String(),
				Tick:           detected.Op.Tick,
				Amt:            toDecimal(detected.Op.Amount),
				FromAddress:    derefString(detected.Op.From),
				ToAddress:      derefString(detected.Op.To),
				Receiver:       detected.Receiver,
				Payload:        string(payload),
			})
		}
	}
	return tokenActivities, nil
}

func ConvertBlockRecordsToTokenDeploys(records []*handlers.BlockRecord) []*model.TokenDeploy {
	var tokenDeploys []*model.TokenDeploy
	for _, record := range records {
		for _, detected := range record.Operations {
			if detected.Op.Op != model.OpDeploy {
				continue
			}
			tokenDeploys = append(tokenDeploys, &model.TokenDeploy{
				BlockTimestamp: record.Timestamp,
				DaaScore:       record.DaaScore,
				BlockHash:      record.Hash,
				TxID:           detected.TxID,
				Tick:           detected.Op.Tick,
				MaxSupply:      toDecimal(detected.Op.Max),
				Lim:            toDecimal(detected.Op.Limit),
				Dec:            toDecimal(detected.Op.Dec),
				Pre:            toDecimal(detected.Op.Pre),
				Receiver:       detected.Receiver,
			})
		}
	}
	return tokenDeploys
}

func ConvertBlockRecordsToBlockBatches(records []*handlers.BlockRecord) []*model.BlockBatch {
	var blockBatches []*model.BlockBatch
	for _, record := range records {
		blockBatches = append(blockBatches, &model.BlockBatch{
			BlockHash:      record.Hash,
			DaaScore:       record.DaaScore,
			BlockTimestamp: record.Timestamp,
			Transactions:   record.Transactions,
			Operations:     len(record.Operations),
			MerkleRoot:     record.MerkleRoot,
		})
	}
	return blockBatches
}

type tickSummary struct {
	tick   string
	counts map[model.Op]int
	minted decimal.Decimal
}

// DumpTickerInfo writes a per tick summary of the detected operations
// followed by every operation, in block order.
func DumpTickerInfo(fname string, records []*handlers.BlockRecord) error {
	file, err := os.OpenFile(fname, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open report file failed, %w", err)
	}
	defer file.Close()

	summaries := make(map[string]*tickSummary)
	for _, record := range records {
		for _, detected := range record.Operations {
			summary, ok := summaries[detected.Op.Tick]
			if !ok {
				summary = &tickSummary{tick: detected.Op.Tick, counts: make(map[model.Op]int)}
				summaries[detected.Op.Tick] = summary
			}
			summary.counts[detected.Op.Op]++
			if detected.Op.Op == model.OpMint && detected.Op.Amount != nil {
				summary.minted = summary.minted.Add(*toDecimal(detected.Op.Amount))
			}
		}
	}

	var allTickers []string
	for ticker := range summaries {
		allTickers = append(allTickers, ticker)
	}
	sort.Strings(allTickers)

	w := bufio.NewWriter(file)
	for _, ticker := range allTickers {
		summary := summaries[ticker]
		fmt.Fprintf(w, "%s deploys: %d, mints: %d, transfers: %d, minted: %s\n",
			summary.tick,
			summary.counts[model.OpDeploy],
			summary.counts[model.OpMint],
			summary.counts[model.OpTransfer],
			summary.minted.String(),
		)
	}

	for _, record := range records {
		for _, detected := range record.Operations {
			payload, err := json.Marshal(detected.Op)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s %s %s %s\n", record.Hash, detected.TxID, detected.Receiver, payload)
		}
	}
	return w.Flush()
}

// DumpOperationList writes the detected operations as a TokenOperationList.
func DumpOperationList(fname string, records []*handlers.BlockRecord) error {
	list := model.TokenOperationList{Message: "successful", Result: []model.TokenOperation{}}
	for _, record := range records {
		for _, detected := range record.Operations {
			list.Result = append(list.Result, *detected.Op)
		}
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(fname, data, 0644)
}

// LoadOperationList reads a file written by DumpOperationList.
func LoadOperationList(fname string) (*model.TokenOperationList, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	var list model.TokenOperationList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return &list, nil
}
