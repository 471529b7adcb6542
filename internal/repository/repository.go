// Package repository holds the in-memory transaction collection. Every
// mutation is applied locally first, so readers see it at once, and is then
// written to the store exactly once. A rejected write restores the previous
// local state.
package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/apperror"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/dateutils"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/store"
)

// ErrPending is returned when a transaction that is still awaiting its
// persisted id is edited or deleted.
var ErrPending = errors.New("transaction is still being saved")

// Repository is the transaction collection.
type Repository struct {
	table    store.Table[store.TransactionRow]
	logger   logging.Logger
	mu       sync.RWMutex
	items    []models.Transaction
	onChange func()
}

// New creates an empty repository over table.
func New(table store.Table[store.TransactionRow], logger logging.Logger) *Repository {
	return &Repository{
		table:  table,
		logger: logging.OrDefault(logger).WithField(logging.FieldComponent, "repository"),
		items:  []models.Transaction{},
	}
}

// OnChange registers fn to be called after every local state change,
// including rollbacks. Callers use it to recompute derived views.
func (r *Repository) OnChange(fn func()) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// Load replaces the local collection with the store's contents.
func (r *Repository) Load(ctx context.Context) error {
	rows, err := r.table.SelectAll(ctx)
	if err != nil {
		return err
	}

	items := make([]models.Transaction, len(rows))
	for i, row := range rows {
		items[i] = store.FromRow(row)
	}

	r.mutate(func() { r.items = items })
	r.logger.WithField(logging.FieldCount, len(items)).Debug("Loaded transactions")
	return nil
}

// List returns a copy of all transactions in insertion order.
func (r *Repository) List() []models.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return models.CloneAll(r.items)
}

// Get returns the transaction with id.
func (r *Repository) Get(id string) (models.Transaction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexLocked(id)
	if i < 0 {
		return models.Transaction{}, false
	}
	return r.items[i].Clone(), true
}

// Add stores a draft. The draft is visible under a temporary id until the
// store returns the persisted id, which then replaces it in place.
func (r *Repository) Add(ctx context.Context, draft models.Transaction) (models.Transaction, error) {
	if err := Validate(draft); err != nil {
		return models.Transaction{}, err
	}

	t := draft.Clone()
	t.ID = newTemporaryID()
	r.mutate(func() { r.items = append(r.items, t) })

	ids, err := r.table.Insert(ctx, store.ToRow(t))
	if err == nil && len(ids) != 1 {
		err = &apperror.BatchError{Requested: 1, Acknowledged: len(ids)}
	}
	if err != nil {
		r.mutate(func() { r.removeLocked(t.ID) })
		r.logger.WithError(err).WithField(logging.FieldTemporaryID, t.ID).Error("Failed to add transaction, rolled back")
		return models.Transaction{}, wrapPersistence("add", "", err)
	}

	tempID := t.ID
	t.ID = ids[0]
	r.mutate(func() { r.swapIDLocked(tempID, t.ID) })

	r.logger.WithField(logging.FieldTransactionID, t.ID).Debug("Added transaction")
	return t.Clone(), nil
}

// BulkAdd inserts all drafts locally in one step and writes them to the
// store in one batch. Any failure, including a store that acknowledged only
// some rows, removes every draft of the batch again.
func (r *Repository) BulkAdd(ctx context.Context, drafts []models.Transaction) ([]models.Transaction, error) {
	if len(drafts) == 0 {
		return []models.Transaction{}, nil
	}

	batch := make([]models.Transaction, len(drafts))
	rows := make([]store.TransactionRow, len(drafts))
	for i, d := range drafts {
		if err := Validate(d); err != nil {
			return nil, fmt.Errorf("draft %d: %w", i, err)
		}
		batch[i] = d.Clone()
		batch[i].ID = newTemporaryID()
		rows[i] = store.ToRow(batch[i])
	}

	r.mutate(func() { r.items = append(r.items, models.CloneAll(batch)...) })

	ids, err := r.table.Insert(ctx, rows...)
	if err != nil || len(ids) != len(batch) {
		batchErr := &apperror.BatchError{Requested: len(batch), Acknowledged: len(ids), Err: err}
		r.mutate(func() {
			for _, t := range batch {
				r.removeLocked(t.ID)
			}
		})
		log := r.logger.WithFields(
			logging.F(logging.FieldCount, len(batch)),
			logging.F("acknowledged", len(ids)),
		)
		if batchErr.Partial() {
			log.Warn("Store partially applied a batch; local batch rolled back and stored rows left unreconciled")
		}
		log.WithError(batchErr).Error("Bulk add failed")
		return nil, batchErr
	}

	r.mutate(func() {
		for i := range batch {
			r.swapIDLocked(batch[i].ID, ids[i])
			batch[i].ID = ids[i]
		}
	})

	r.logger.WithField(logging.FieldCount, len(batch)).Info("Bulk added transactions")
	return models.CloneAll(batch), nil
}

// Update merges patch into the transaction locally and sends only the
// fields present in patch to the store.
func (r *Repository) Update(ctx context.Context, id string, patch models.TransactionPatch) (models.Transaction, error) {
	if patch.Date != nil {
		if _, err := dateutils.ParseISO(*patch.Date); err != nil {
			return models.Transaction{}, fmt.Errorf("invalid date: %w", err)
		}
	}

	var prev, next models.Transaction
	var findErr error
	r.mutate(func() {
		i := r.indexLocked(id)
		if i < 0 {
			findErr = &apperror.NotFoundError{Entity: "transaction", Key: id}
			return
		}
		if r.items[i].IsTemporary() {
			findErr = ErrPending
			return
		}
		prev = r.items[i].Clone()
		next = patch.Apply(prev)
		r.items[i] = next
	})
	if findErr != nil {
		return models.Transaction{}, findErr
	}

	columns := patch.Columns()
	if len(columns) == 0 {
		return next.Clone(), nil
	}

	if err := r.table.Update(ctx, id, columns); err != nil {
		r.mutate(func() {
			if i := r.indexLocked(id); i >= 0 {
				r.items[i] = prev
			}
		})
		r.logger.WithError(err).WithField(logging.FieldTransactionID, id).Error("Failed to update transaction, rolled back")
		return models.Transaction{}, wrapPersistence("update", id, err)
	}

	r.logger.WithFields(
		logging.F(logging.FieldTransactionID, id),
		logging.F(logging.FieldCount, len(columns)),
	).Debug("Updated transaction")
	return next.Clone(), nil
}

// Delete removes the transaction. If the store rejects the delete, the
// transaction is put back at its former position and the error returned.
func (r *Repository) Delete(ctx context.Context, id string) error {
	var (
		removed models.Transaction
		pos     int
		findErr error
	)
	r.mutate(func() {
		pos = r.indexLocked(id)
		if pos < 0 {
			findErr = &apperror.NotFoundError{Entity: "transaction", Key: id}
			return
		}
		if r.items[pos].IsTemporary() {
			findErr = ErrPending
			return
		}
		removed = r.items[pos]
		r.items = slices.Delete(r.items, pos, pos+1)
	})
	if findErr != nil {
		return findErr
	}

	if err := r.table.Delete(ctx, id); err != nil {
		r.mutate(func() {
			r.items = slices.Insert(r.items, min(pos, len(r.items)), removed)
		})
		r.logger.WithError(err).WithField(logging.FieldTransactionID, id).Error("Failed to delete transaction, restored")
		return wrapPersistence("delete", id, err)
	}

	r.logger.WithField(logging.FieldTransactionID, id).Debug("Deleted transaction")
	return nil
}

// Validate checks a draft before it enters the collection.
func Validate(t models.Transaction) error {
	if !t.Type.Valid() {
		return fmt.Errorf("invalid transaction type %q", t.Type)
	}
	if t.Amount.IsNegative() {
		return errors.New("amount must not be negative")
	}
	if t.AmountOriginal != nil && t.AmountOriginal.IsNegative() {
		return errors.New("original amount must not be negative")
	}
	if _, err := dateutils.ParseISO(t.Date); err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}
	return nil
}

// mutate runs fn under the write lock and then notifies the change hook.
func (r *Repository) mutate(fn func()) {
	r.mu.Lock()
	fn()
	hook := r.onChange
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
}

func (r *Repository) indexLocked(id string) int {
	return slices.IndexFunc(r.items, func(t models.Transaction) bool { return t.ID == id })
}

func (r *Repository) removeLocked(id string) {
	if i := r.indexLocked(id); i >= 0 {
		r.items = slices.Delete(r.items, i, i+1)
	}
}

func (r *Repository) swapIDLocked(tempID, id string) {
	if i := r.indexLocked(tempID); i >= 0 {
		r.items[i].ID = id
	}
}

func newTemporaryID() string {
	return models.TemporaryIDPrefix + uuid.NewString()
}

func wrapPersistence(op, id string, err error) error {
	var pe *apperror.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &apperror.PersistenceError{Operation: op, Entity: "transaction", ID: id, Err: err}
}
