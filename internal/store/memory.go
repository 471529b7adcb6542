package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/apperror"
)

// MemoryTable keeps rows in insertion order behind a read-write mutex.
type MemoryTable[R Record[R]] struct {
	entity string
	mu     sync.RWMutex
	rows   []R
	failOn map[string]error
	ackCap *int
}

// NewMemoryTable creates an empty table. entity names the row kind in errors.
func NewMemoryTable[R Record[R]](entity string) *MemoryTable[R] {
	return &MemoryTable[R]{entity: entity, failOn: make(map[string]error)}
}

// FailNext makes the next call of op ("select", "insert", "update" or
// "delete") return err. Used to exercise rollback paths.
func (t *MemoryTable[R]) FailNext(op string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failOn[op] = err
}

// AcknowledgeOnly makes the next insert store and return ids for only the
// first n rows, as a store that partially applies a batch would.
func (t *MemoryTable[R]) AcknowledgeOnly(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ackCap = &n
}

func (t *MemoryTable[R]) takeFailure(op string) error {
	err, ok := t.failOn[op]
	if ok {
		delete(t.failOn, op)
	}
	return err
}

func (t *MemoryTable[R]) SelectAll(_ context.Context) ([]R, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.takeFailure("select"); err != nil {
		return nil, &apperror.PersistenceError{Operation: "select", Entity: t.entity, Err: err}
	}
	return slices.Clone(t.rows), nil
}

func (t *MemoryTable[R]) Insert(_ context.Context, rows ...R) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.takeFailure("insert"); err != nil {
		return nil, &apperror.PersistenceError{Operation: "insert", Entity: t.entity, Err: err}
	}

	if t.ackCap != nil {
		if *t.ackCap < len(rows) {
			rows = rows[:*t.ackCap]
		}
		t.ackCap = nil
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		id := r.RowID()
		if id == "" {
			id = uuid.NewString()
		}
		t.rows = append(t.rows, r.WithID(id))
		ids[i] = id
	}
	return ids, nil
}

func (t *MemoryTable[R]) Update(_ context.Context, id string, columns map[string]any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.takeFailure("update"); err != nil {
		return &apperror.PersistenceError{Operation: "update", Entity: t.entity, ID: id, Err: err}
	}

	i := t.indexOf(id)
	if i < 0 {
		return &apperror.NotFoundError{Entity: t.entity, Key: id}
	}
	updated, err := t.rows[i].Apply(columns)
	if err != nil {
		return &apperror.PersistenceError{Operation: "update", Entity: t.entity, ID: id, Err: err}
	}
	t.rows[i] = updated
	return nil
}

func (t *MemoryTable[R]) Delete(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.takeFailure("delete"); err != nil {
		return &apperror.PersistenceError{Operation: "delete", Entity: t.entity, ID: id, Err: err}
	}

	i := t.indexOf(id)
	if i < 0 {
		return &apperror.NotFoundError{Entity: t.entity, Key: id}
	}
	t.rows = slices.Delete(t.rows, i, i+1)
	return nil
}

// Len returns the number of stored rows.
func (t *MemoryTable[R]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

func (t *MemoryTable[R]) indexOf(id string) int {
	return slices.IndexFunc(t.rows, func(r R) bool { return r.RowID() == id })
}

// MemoryBackend is a process-local backend, used by default and in tests.
type MemoryBackend struct {
	transactions *MemoryTable[TransactionRow]
	categories   *MemoryTable[CategoryRow]
	mappings     *MemoryTable[MerchantMappingRow]
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		transactions: NewMemoryTable[TransactionRow]("transaction"),
		categories:   NewMemoryTable[CategoryRow]("category"),
		mappings:     NewMemoryTable[MerchantMappingRow]("merchant_mapping"),
	}
}

func (b *MemoryBackend) Transactions() Table[TransactionRow]         { return b.transactions }
func (b *MemoryBackend) Categories() Table[CategoryRow]              { return b.categories }
func (b *MemoryBackend) MerchantMappings() Table[MerchantMappingRow] { return b.mappings }

// TransactionTable exposes the concrete table for fault injection.
func (b *MemoryBackend) TransactionTable() *MemoryTable[TransactionRow] { return b.transactions }

// CategoryTable exposes the concrete table for fault injection.
func (b *MemoryBackend) CategoryTable() *MemoryTable[CategoryRow] { return b.categories }

// MappingTable exposes the concrete table for fault injection.
func (b *MemoryBackend) MappingTable() *MemoryTable[MerchantMappingRow] { return b.mappings }

func (b *MemoryBackend) Close() error { return nil }
