package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Apurer/go-stock-gateway/internal/domains/inventory/domain"
	"github.com/Apurer/go-stock-gateway/internal/domains/inventory/ports"
)

var _ ports.Ledger = (*Ledger)(nil)

// Ledger persists operations in PostgreSQL. Each mutation touches only
// the rows it targets, so concurrent appends and flag updates cannot lose
// each other the way a whole-file rewrite can.
type Ledger struct {
	db *gorm.DB
}

// NewLedger wires a PostgreSQL-backed ledger.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// ListActions returns the counted deltas for the product, oldest first.
// Query failures degrade to an empty slice so reads fall back to the raw
// snapshot value.
func (l *Ledger) ListActions(ctx context.Context, productID int64) []int64 {
	if err := l.ensureDB(); err != nil {
		return nil
	}
	var actions []int64
	err := l.db.WithContext(ctx).
		Model(&operationRecord{}).
		Where("product_id = ? AND ok AND in_cache", productID).
		Order("created_at").
		Pluck("action", &actions).Error
	if err != nil {
		return nil
	}
	return actions
}

// Append inserts a new pending operation row and returns its identifier.
func (l *Ledger) Append(ctx context.Context, at time.Time, productID, action int64) (string, error) {
	if err := l.ensureDB(); err != nil {
		return "", err
	}
	rec := operationRecord{
		ID:        uuid.NewString(),
		Time:      at,
		Ok:        true,
		ProductID: productID,
		Action:    action,
		InCache:   true,
	}
	if err := l.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return "", err
	}
	return rec.ID, nil
}

// FailByOperation clears the ok flag of a single operation. Unknown
// identifiers update zero rows and are a no-op.
func (l *Ledger) FailByOperation(ctx context.Context, operationID string) error {
	if err := l.ensureDB(); err != nil {
		return err
	}
	return l.db.WithContext(ctx).
		Model(&operationRecord{}).
		Where("id = ?", operationID).
		Update("ok", false).Error
}

// FailByProduct clears the ok flag of every operation for the product.
func (l *Ledger) FailByProduct(ctx context.Context, productID int64) error {
	if err := l.ensureDB(); err != nil {
		return err
	}
	return l.db.WithContext(ctx).
		Model(&operationRecord{}).
		Where("product_id = ?", productID).
		Update("ok", false).Error
}

// InvalidateCacheScope clears the in-cache flag on every operation.
func (l *Ledger) InvalidateCacheScope(ctx context.Context) error {
	if err := l.ensureDB(); err != nil {
		return err
	}
	return l.db.WithContext(ctx).
		Model(&operationRecord{}).
		Where("in_cache").
		Update("in_cache", false).Error
}

// List returns every operation, oldest first.
func (l *Ledger) List(ctx context.Context) ([]domain.Operation, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	var records []operationRecord
	if err := l.db.WithContext(ctx).Order("created_at").Find(&records).Error; err != nil {
		return nil, err
	}
	operations := make([]domain.Operation, 0, len(records))
	for _, rec := range records {
		operations = append(operations, toDomain(&rec))
	}
	return operations, nil
}

func (l *Ledger) ensureDB() error {
	if l == nil || l.db == nil {
		return errors.New("postgres ledger not configured")
	}
	return nil
}

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

func toDomain(rec *operationRecord) domain.Operation {
	return domain.Operation{
		ID:        rec.ID,
		Time:      rec.Time,
		ProductID: rec.ProductID,
		Action:    rec.Action,
		Ok:        rec.Ok,
		InCache:   rec.InCache,
	}
}
