package memory

import (
	// Go Internal Packages
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	// Local Packages
	errors "sms-ledger/errors"
	models "sms-ledger/models"

	// External Packages
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)

func tx(id, amount, counterparty string) models.Transaction {
	return models.Transaction{
		ID:            id,
		Amount:        decimal.RequireFromString(amount),
		OccurredAt:    day,
		Direction:     models.Debit,
		PaymentMethod: models.MethodUPI,
		Counterparty:  counterparty,
	}
}

func TestTransactionUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository()

	require.NoError(t, repo.InsertTransaction(ctx, tx("a", "500.00", "SHOP")))
	err := repo.InsertTransaction(ctx, tx("b", "500", "SHOP"))
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Conflict, err))

	exists, err := repo.TransactionExists(ctx, tx("", "500", "SHOP").Key())
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.TransactionExists(ctx, tx("", "500", "OTHER").Key())
	require.NoError(t, err)
	assert.False(t, exists)

	assert.True(t, errors.Is(errors.Invalid, repo.InsertTransaction(ctx, tx("", "1", "X"))))
}

func TestUpdateTransactionPartiesRekeys(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository()
	require.NoError(t, repo.InsertTransaction(ctx, tx("a", "100", "")))
	require.NoError(t, repo.InsertTransaction(ctx, tx("b", "100", "SHOP")))

	err := repo.UpdateTransactionParties(ctx, "a", models.Debit, "SHOP")
	assert.True(t, errors.Is(errors.Conflict, err))

	require.NoError(t, repo.UpdateTransactionParties(ctx, "a", models.Credit, "RAHUL"))
	exists, _ := repo.TransactionExists(ctx, tx("", "100", "").Key())
	assert.False(t, exists)

	list, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, models.Credit, list[0].Direction)
	assert.Equal(t, "RAHUL", list[0].Counterparty)

	assert.True(t, errors.Is(errors.NotFound, repo.UpdateTransactionParties(ctx, "zzz", models.Debit, "")))
}

func TestOpenBillsAndPayments(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository()

	mk := func(id, period string, due time.Time, status models.BillStatus) models.CreditCardBill {
		return models.CreditCardBill{ID: id, CardLast4: "1234", BillPeriod: period, DueDate: due, Status: status}
	}
	require.NoError(t, repo.InsertBill(ctx, mk("jul", "JUL-25", day.AddDate(0, 2, 0), models.BillUnpaid)))
	require.NoError(t, repo.InsertBill(ctx, mk("jun", "JUN-25", day.AddDate(0, 1, 0), models.BillPartiallyPaid)))
	require.NoError(t, repo.InsertBill(ctx, mk("may", "MAY-25", day, models.BillFullyPaid)))
	assert.True(t, errors.Is(errors.Conflict, repo.InsertBill(ctx, mk("dup", "JUN-25", day, models.BillUnpaid))))

	open, err := repo.OpenBillsForCard(ctx, "1234")
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "jun", open[0].ID)
	assert.Equal(t, "jul", open[1].ID)

	p := models.CreditCardPayment{ID: "p1", CardLast4: "1234", PaymentAmount: decimal.NewFromInt(10), PaymentDate: day}
	require.NoError(t, repo.InsertPayment(ctx, p))
	assert.True(t, errors.Is(errors.Conflict, repo.InsertPayment(ctx, models.CreditCardPayment{ID: "p2", CardLast4: "1234", PaymentAmount: decimal.RequireFromString("10.0"), PaymentDate: day})))

	settled, ok, err := repo.ApplyPayment(ctx, "p1", "jun")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, settled.PaidAmount.Equal(decimal.NewFromInt(10)))
	_, ok, err = repo.ApplyPayment(ctx, "p1", "jul")
	require.NoError(t, err)
	assert.False(t, ok)

	jul, err := repo.GetBill(ctx, "jul")
	require.NoError(t, err)
	assert.True(t, jul.PaidAmount.IsZero())

	got, err := repo.GetPayment(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "jun", got.MatchedBillID)

	unmatched, err := repo.UnmatchedPayments(ctx)
	require.NoError(t, err)
	assert.Empty(t, unmatched)
}

func TestApplyPaymentLeavesPaymentUnlinkedWhenBillIsMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository()

	p := models.CreditCardPayment{ID: "p1", CardLast4: "1234", PaymentAmount: decimal.NewFromInt(10), PaymentDate: day}
	require.NoError(t, repo.InsertPayment(ctx, p))

	_, ok, err := repo.ApplyPayment(ctx, "p1", "gone")
	assert.True(t, errors.Is(errors.NotFound, err))
	assert.False(t, ok)

	unmatched, err := repo.UnmatchedPayments(ctx)
	require.NoError(t, err)
	require.Len(t, unmatched, 1)
	assert.Empty(t, unmatched[0].MatchedBillID)
}

func TestApplyPaymentConcurrentNoLostUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository()

	require.NoError(t, repo.InsertBill(ctx, models.CreditCardBill{
		ID: "b1", CardLast4: "1234", BillPeriod: "JUN-25", DueDate: day,
		TotalAmount: decimal.NewFromInt(1000), PaidAmount: decimal.Zero,
		RemainingAmount: decimal.NewFromInt(1000), Status: models.BillUnpaid,
	}))

	const n = 20
	for i := 0; i < n; i++ {
		p := models.CreditCardPayment{ID: fmt.Sprintf("p%d", i), CardLast4: "1234", PaymentAmount: decimal.NewFromInt(10), PaymentDate: day.AddDate(0, 0, i)}
		require.NoError(t, repo.InsertPayment(ctx, p))
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _, _ = repo.ApplyPayment(ctx, id, "b1")
		}(fmt.Sprintf("p%d", i))
	}
	wg.Wait()

	b, err := repo.GetBill(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, b.PaidAmount.Equal(decimal.NewFromInt(200)), b.PaidAmount.String())
	assert.True(t, b.RemainingAmount.Equal(decimal.NewFromInt(800)), b.RemainingAmount.String())
	assert.Equal(t, models.BillPartiallyPaid, b.Status)
}
