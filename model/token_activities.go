package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TokenActivity struct {
	BlockTimestamp time.Time        `gorm:"column:block_timestamp"`
	DaaScore       uint64           `gorm:"column:daa_score"`
	BlockHash      string           `gorm:"column:block_hash;primaryKey"`
	TxIndex        uint32           `gorm:"column:tx_index;primaryKey"`
	TxID           string           `gorm:"column:tx_id"`
	Type           string           `gorm:"column:type"`
	Tick           string           `gorm:"column:tick"`
	Amt            *decimal.Decimal `gorm:"column:amt;type:decimal(39,0)"`
	FromAddress    string           `gorm:"column:from_address"`
	ToAddress      string           `gorm:"column:to_address"`
	Receiver       string           `gorm:"column:receiver"`
	Payload        string           `gorm:"column:payload"`
}

func (TokenActivity) TableName() string {
	return "token_activities"
}
