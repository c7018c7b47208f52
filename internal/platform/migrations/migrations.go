package migrations

import (
	"time"

	"gorm.io/gorm"
)

// Run applies the schema for the inventory bounded context. Intended to
// replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&operationRecord{},
	)
}

// Operation schema mirrors the inventory Postgres ledger adapter.
type operationRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:64"`
	Time      time.Time `gorm:"column:time"`
	Ok        bool      `gorm:"column:ok"`
	ProductID int64     `gorm:"column:product_id;index"`
	Action    int64     `gorm:"column:action"`
	InCache   bool      `gorm:"column:in_cache;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (operationRecord) TableName() string { return "stock_operations" }
