package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenDeploy records a deploy operation as it appeared on chain. Nothing
// here says the deploy was accepted.
type TokenDeploy struct {
	BlockTimestamp time.Time        `gorm:"column:block_timestamp"`
	DaaScore       uint64           `gorm:"column:daa_score"`
	BlockHash      string           `gorm:"column:block_hash"`
	TxID           string           `gorm:"column:tx_id;primaryKey"`
	Tick           string           `gorm:"column:tick;primaryKey"`
	MaxSupply      *decimal.Decimal `gorm:"column:max_supply;type:decimal(39,0)"`
	Lim            *decimal.Decimal `gorm:"column:lim;type:decimal(39,0)"`
	Dec            *decimal.Decimal `gorm:"column:dec;type:decimal(39,0)"`
	Pre            *decimal.Decimal `gorm:"column:pre;type:decimal(39,0)"`
	Receiver       string           `gorm:"column:receiver"`
}

func (TokenDeploy) TableName() string {
	return "token_deploys"
}
