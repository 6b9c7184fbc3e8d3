package memory

import (
	// Go Internal Packages
	"context"
	"sort"
	"sync"

	// Local Packages
	errors "sms-ledger/errors"
	models "sms-ledger/models"
)

// LedgerRepository keeps the ledger in process memory. It enforces the same
// natural-key uniqueness as the durable stores and is safe for concurrent
// use. Data is lost when the process exits.
type LedgerRepository struct {
	mu sync.RWMutex

	txs    map[string]models.Transaction
	txKeys map[string]string

	bills    map[string]models.CreditCardBill
	billKeys map[string]string

	payments    map[string]models.CreditCardPayment
	paymentKeys map[string]string
}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{
		txs:         make(map[string]models.Transaction),
		txKeys:      make(map[string]string),
		bills:       make(map[string]models.CreditCardBill),
		billKeys:    make(map[string]string),
		payments:    make(map[string]models.CreditCardPayment),
		paymentKeys: make(map[string]string),
	}
}

// InsertTransaction stores tx, failing with a Conflict when its natural key is taken
func (r *LedgerRepository) InsertTransaction(_ context.Context, tx models.Transaction) error {
	if tx.ID == "" {
		return errors.EmptyParamErr("id")
	}
	key := tx.Key().String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.txKeys[key]; taken {
		return errors.DuplicateErr("transaction", key)
	}
	r.txs[tx.ID] = tx
	r.txKeys[key] = tx.ID
	return nil
}

func (r *LedgerRepository) TransactionExists(_ context.Context, key models.TransactionKey) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.txKeys[key.String()]
	return ok, nil
}

// ListTransactions returns every transaction ordered by occurrence time.
func (r *LedgerRepository) ListTransactions(_ context.Context) ([]models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Transaction, 0, len(r.txs))
	for _, tx := range r.txs {
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpdateTransactionParties rewrites direction and counterparty. The new
// natural key must not belong to another transaction.
func (r *LedgerRepository) UpdateTransactionParties(_ context.Context, id string, direction models.Direction, counterparty string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, ok := r.txs[id]
	if !ok {
		return errors.NotFoundErr("transaction", id)
	}
	oldKey := tx.Key().String()
	tx.Direction = direction
	tx.Counterparty = counterparty
	newKey := tx.Key().String()

	if owner, taken := r.txKeys[newKey]; taken && owner != id {
		return errors.DuplicateErr("transaction", newKey)
	}
	delete(r.txKeys, oldKey)
	r.txKeys[newKey] = id
	r.txs[id] = tx
	return nil
}

func (r *LedgerRepository) InsertBill(_ context.Context, bill models.CreditCardBill) error {
	if bill.ID == "" {
		return errors.EmptyParamErr("id")
	}
	key := bill.Key().String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.billKeys[key]; taken {
		return errors.DuplicateErr("bill", key)
	}
	r.bills[bill.ID] = bill
	r.billKeys[key] = bill.ID
	return nil
}

func (r *LedgerRepository) BillExists(_ context.Context, key models.BillKey) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.billKeys[key.String()]
	return ok, nil
}

func (r *LedgerRepository) GetBill(_ context.Context, id string) (models.CreditCardBill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bill, ok := r.bills[id]
	if !ok {
		return models.CreditCardBill{}, errors.NotFoundErr("bill", id)
	}
	return bill, nil
}

// OpenBillsForCard returns the card's bills that are not fully paid, earliest due first.
func (r *LedgerRepository) OpenBillsForCard(_ context.Context, cardLast4 string) ([]models.CreditCardBill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.CreditCardBill
	for _, b := range r.bills {
		if b.CardLast4 == cardLast4 && b.Status != models.BillFullyPaid {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *LedgerRepository) InsertPayment(_ context.Context, p models.CreditCardPayment) error {
	if p.ID == "" {
		return errors.EmptyParamErr("id")
	}
	key := p.Key().String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.paymentKeys[key]; taken {
		return errors.DuplicateErr("payment", key)
	}
	r.payments[p.ID] = p
	r.paymentKeys[key] = p.ID
	return nil
}

func (r *LedgerRepository) PaymentExists(_ context.Context, key models.PaymentKey) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.paymentKeys[key.String()]
	return ok, nil
}

func (r *LedgerRepository) GetPayment(_ context.Context, id string) (models.CreditCardPayment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[id]
	if !ok {
		return models.CreditCardPayment{}, errors.NotFoundErr("payment", id)
	}
	return p, nil
}

// UnmatchedPayments returns payments without a bill, oldest first.
func (r *LedgerRepository) UnmatchedPayments(_ context.Context) ([]models.CreditCardPayment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.CreditCardPayment
	for _, p := range r.payments {
		if p.MatchedBillID == "" {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PaymentDate.Equal(out[j].PaymentDate) {
			return out[i].PaymentDate.Before(out[j].PaymentDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ApplyPayment links the payment to billID and credits its amount to the
// bill in one critical section. It reports false, changing nothing, when the
// payment is already linked.
func (r *LedgerRepository) ApplyPayment(_ context.Context, paymentID, billID string) (models.CreditCardBill, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[paymentID]
	if !ok {
		return models.CreditCardBill{}, false, errors.NotFoundErr("payment", paymentID)
	}
	if p.MatchedBillID != "" {
		return models.CreditCardBill{}, false, nil
	}
	bill, ok := r.bills[billID]
	if !ok {
		return models.CreditCardBill{}, false, errors.NotFoundErr("bill", billID)
	}

	bill = bill.Settle(p.PaymentAmount)
	p.MatchedBillID = billID
	r.bills[billID] = bill
	r.payments[paymentID] = p
	return bill, true, nil
}

// Counts returns how many records of each type are stored.
func (r *LedgerRepository) Counts() (transactions, bills, payments int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.txs), len(r.bills), len(r.payments)
}
