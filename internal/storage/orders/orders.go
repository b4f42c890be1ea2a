// Package orders persists executed orders in a write-ahead log.
package orders

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/vutang50/binance-dca-bot/internal/domain"
)

const (
	defaultDir       = "./wal/orders"
	segmentThreshold = 1000
	maxSegments      = 100
	dirPermissions   = 0o755

	orderKeyPrefix = "order_"
)

// Store is the persistence collaborator for executed orders. Saving is
// best-effort from the caller's point of view: a write failure is logged
// by the caller and never rolls back the purchase.
type Store interface {
	Save(order domain.OrderResult) error
	Orders() ([]domain.OrderRecord, error)
	Close() error
}

// WALStore persists orders in a gowal log.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes the WAL-backed order store.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, errors.Wrapf(err, "ensure order log directory %s", dir)
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "order_log_",
		SegmentThreshold: segmentThreshold,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init order WAL")
	}
	return &WALStore{wal: wal}, nil
}

// Save appends one executed order to the log.
func (s *WALStore) Save(order domain.OrderResult) error {
	if s == nil || s.wal == nil {
		return errors.New("order store is not initialized")
	}

	payload, err := json.Marshal(order)
	if err != nil {
		return errors.Wrap(err, "marshal order")
	}

	key := fmt.Sprintf("%s%s_%d", orderKeyPrefix, order.Symbol, order.OrderID)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// Orders replays every persisted order in write order.
func (s *WALStore) Orders() ([]domain.OrderRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("order store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []domain.OrderRecord
	index := uint64(0)
	for msg := range s.wal.Iterator() {
		index++
		if !strings.HasPrefix(msg.Key, orderKeyPrefix) {
			continue
		}
		var order domain.OrderResult
		if err := json.Unmarshal(msg.Value, &order); err != nil {
			return nil, errors.Wrapf(err, "unmarshal order record %s", msg.Key)
		}
		records = append(records, domain.OrderRecord{Index: index, Order: order})
	}
	return records, nil
}

// Close flushes and closes the underlying log.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return nil
	}
	return s.wal.Close()
}

// NoopStore drops every order. It stands in when the WAL directory cannot
// be opened, keeping persistence failures non-fatal.
type NoopStore struct{}

// Save implements Store.
func (NoopStore) Save(domain.OrderResult) error { return nil }

// Orders implements Store.
func (NoopStore) Orders() ([]domain.OrderRecord, error) { return nil, nil }

// Close implements Store.
func (NoopStore) Close() error { return nil }
