package model

import "time"

// BlockBatch summarizes the KRC-20 operations of one processed block.
type BlockBatch struct {
	BlockHash      string    `gorm:"column:block_hash;primaryKey"`
	DaaScore       uint64    `gorm:"column:daa_score;index"`
	BlockTimestamp time.Time `gorm:"column:block_timestamp"`
	Transactions   int       `gorm:"column:transactions"`
	Operations     int       `gorm:"column:operations"`
	MerkleRoot     string    `gorm:"column:merkle_root"`
}

func (BlockBatch) TableName() string {
	return "block_batches"
}
