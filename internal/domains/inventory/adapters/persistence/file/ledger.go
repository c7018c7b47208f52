// Package file implements the operation ledger over a single JSON file.
//
// The file holds an ordered array of objects with id, time, ok,
// productId, action, and inCache fields. An unguarded read-all/write-all
// cycle loses appends under concurrency, so every mutating call runs
// under one process-wide writer lock, and the file is replaced atomically
// via a temp file and rename so readers never observe a torn write.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/go-stock-gateway/internal/domains/inventory/domain"
	"github.com/Apurer/go-stock-gateway/internal/domains/inventory/ports"
)

var _ ports.Ledger = (*Ledger)(nil)

// Ledger persists operations in a single JSON file.
type Ledger struct {
	path string
	mu   sync.Mutex
}

// NewLedger wires a file-backed ledger at the given path. The file is
// created on first append.
func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

type operationRecord struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	Ok        bool      `json:"ok"`
	ProductID int64     `json:"productId"`
	Action    int64     `json:"action"`
	InCache   bool      `json:"inCache"`
}

// ListActions returns the counted deltas for the product. Read or decode
// failures degrade to an empty slice: the caller then sees only the raw
// snapshot value instead of a failed read.
func (l *Ledger) ListActions(_ context.Context, productID int64) []int64 {
	records, err := l.read()
	if err != nil {
		return nil
	}
	actions := make([]int64, 0, len(records))
	for _, rec := range records {
		if rec.ProductID == productID && rec.Ok && rec.InCache {
			actions = append(actions, rec.Action)
		}
	}
	return actions
}

// Append records a new pending operation and returns its identifier. The
// write is durable before Append returns.
func (l *Ledger) Append(_ context.Context, at time.Time, productID, action int64) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	records, err := l.read()
	if err != nil {
		return "", fmt.Errorf("read ledger: %w", err)
	}
	rec := operationRecord{
		ID:        uuid.NewString(),
		Time:      at,
		Ok:        true,
		ProductID: productID,
		Action:    action,
		InCache:   true,
	}
	records = append(records, rec)
	if err := l.write(records); err != nil {
		return "", fmt.Errorf("write ledger: %w", err)
	}
	return rec.ID, nil
}

// FailByOperation clears the ok flag of a single operation, idempotently.
// Unknown identifiers are a no-op.
func (l *Ledger) FailByOperation(_ context.Context, operationID string) error {
	return l.mutate(func(records []operationRecord) bool {
		for i := range records {
			if records[i].ID == operationID {
				records[i].Ok = false
				return true
			}
		}
		return false
	})
}

// FailByProduct clears the ok flag of every operation for the product.
func (l *Ledger) FailByProduct(_ context.Context, productID int64) error {
	return l.mutate(func(records []operationRecord) bool {
		changed := false
		for i := range records {
			if records[i].ProductID == productID {
				records[i].Ok = false
				changed = true
			}
		}
		return changed
	})
}

// InvalidateCacheScope retires every operation from the overlay. The
// records stay in the file for audit.
func (l *Ledger) InvalidateCacheScope(_ context.Context) error {
	return l.mutate(func(records []operationRecord) bool {
		changed := false
		for i := range records {
			if records[i].InCache {
				records[i].InCache = false
				changed = true
			}
		}
		return changed
	})
}

// List returns every operation in the ledger, oldest first.
func (l *Ledger) List(_ context.Context) ([]domain.Operation, error) {
	records, err := l.read()
	if err != nil {
		return nil, err
	}
	operations := make([]domain.Operation, 0, len(records))
	for _, rec := range records {
		operations = append(operations, domain.Operation{
			ID:        rec.ID,
			Time:      rec.Time,
			ProductID: rec.ProductID,
			Action:    rec.Action,
			Ok:        rec.Ok,
			InCache:   rec.InCache,
		})
	}
	return operations, nil
}

func (l *Ledger) mutate(apply func([]operationRecord) bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	records, err := l.read()
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}
	if !apply(records) {
		return nil
	}
	if err := l.write(records); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

func (l *Ledger) read() ([]operationRecord, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var records []operationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (l *Ledger) write(records []operationRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, ".ledger-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, l.path)
}
