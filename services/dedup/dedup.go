package dedup

import (
	// Go Internal Packages
	"context"
	"fmt"

	// Local Packages
	errors "sms-ledger/errors"
	models "sms-ledger/models"
)

// Store answers exact natural-key lookups for each entity type.
type Store interface {
	TransactionExists(ctx context.Context, key models.TransactionKey) (bool, error)
	BillExists(ctx context.Context, key models.BillKey) (bool, error)
	PaymentExists(ctx context.Context, key models.PaymentKey) (bool, error)
}

// Deduplicator checks candidates against already stored records. Equality is
// exact on the full natural key; there is no fuzzy matching.
type Deduplicator struct {
	store Store
}

func NewDeduplicator(store Store) *Deduplicator {
	return &Deduplicator{store: store}
}

// IsDuplicate reports whether a record with the same natural key is stored.
// candidate must be a Transaction, CreditCardBill or CreditCardPayment.
func (d *Deduplicator) IsDuplicate(ctx context.Context, candidate any) (bool, error) {
	switch c := candidate.(type) {
	case models.Transaction:
		return d.store.TransactionExists(ctx, c.Key())
	case models.CreditCardBill:
		return d.store.BillExists(ctx, c.Key())
	case models.CreditCardPayment:
		return d.store.PaymentExists(ctx, c.Key())
	}
	return false, errors.E(errors.Invalid, fmt.Sprintf("unsupported dedup candidate %T", candidate), nil)
}

// Batch remembers the natural keys accepted during one ingestion batch so two
// identical messages in the same batch cannot both pass the store lookup.
type Batch struct {
	seen map[string]struct{}
}

func NewBatch() *Batch {
	return &Batch{seen: make(map[string]struct{})}
}

// Seen reports whether key was already accepted in this batch.
func (b *Batch) Seen(key string) bool {
	_, ok := b.seen[key]
	return ok
}

// Accept records key as taken for the rest of the batch.
func (b *Batch) Accept(key string) {
	b.seen[key] = struct{}{}
}

func (b *Batch) Len() int { return len(b.seen) }
