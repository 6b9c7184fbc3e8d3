package processors

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	// Local Packages
	errors "sms-ledger/errors"
	models "sms-ledger/models"
	memory "sms-ledger/repositories/memory"
	matcher "sms-ledger/services/matcher"
	scorer "sms-ledger/services/scorer"

	// External Packages
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const (
	upiDebit    = "Rs 500.00 debited via UPI on 15-May-25 to VPA shop@upi. Ref No 123"
	neftCredit  = "INR 25,000 credited to A/c XX1234 by NEFT from ACME CORP on 01-Jun-25"
	cardBill    = "Your HDFC Bank Credit Card XX1234 statement for JUN-25 is generated. Total Amt Due: Rs 4,500.00, Min Amt Due: Rs 225.00, Due Date: 05-Jul-25"
	cardPayment = "Payment of Rs 4,500.00 received towards your Credit Card XX1234 on 07-Jul-25 via UPI. Thank you"
	otp         = "Your OTP is 123456"
)

var receivedMillis = time.Date(2025, 6, 20, 9, 30, 0, 0, time.UTC).UnixMilli()

func msg(text string) models.RawMessage {
	return models.RawMessage{Text: text, TimestampMillis: receivedMillis, SourceAddress: "VM-HDFCBK"}
}

func newProcessor(t *testing.T) (*SMSProcessor, *memory.LedgerRepository) {
	t.Helper()
	repo := memory.NewLedgerRepository()
	return NewSMSProcessor(zap.NewNop(), repo), repo
}

type sliceSource []models.RawMessage

func (s sliceSource) Fetch(context.Context) ([]models.RawMessage, error) { return s, nil }

type brokenSource struct{}

func (brokenSource) Fetch(context.Context) ([]models.RawMessage, error) {
	return nil, fmt.Errorf("permission denied")
}

func TestIngestDeduplicatesWithinBatch(t *testing.T) {
	p, repo := newProcessor(t)

	stats, err := p.Ingest(context.Background(), sliceSource{msg(upiDebit), msg(upiDebit)})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalSeen)
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 0, stats.Failed)
	assert.Equal(t, 1, stats.PerCategory[models.CategoryUPIDebit])

	txs, err := repo.ListTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 1)
	tx := txs[0]
	assert.NotEmpty(t, tx.ID)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("500.00")))
	assert.Equal(t, models.Debit, tx.Direction)
	assert.Equal(t, models.MethodUPI, tx.PaymentMethod)
	assert.Equal(t, "SHOP@UPI", tx.Counterparty)
	assert.Equal(t, time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC), tx.OccurredAt)
	assert.Equal(t, upiDebit, tx.SourceText)
}

func TestIngestIsIdempotent(t *testing.T) {
	p, repo := newProcessor(t)
	src := sliceSource{msg(upiDebit), msg(neftCredit), msg(cardBill), msg(cardPayment)}

	first, err := p.Ingest(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Inserted)

	second, err := p.Ingest(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 4, second.Duplicates)

	txs, bills, payments := repo.Counts()
	assert.Equal(t, 2, txs)
	assert.Equal(t, 1, bills)
	assert.Equal(t, 1, payments)
}

func TestIngestCountsMessagesWithoutAmountAsFailed(t *testing.T) {
	p, repo := newProcessor(t)

	stats, err := p.Ingest(context.Background(), sliceSource{msg(otp), msg(upiDebit)})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalSeen)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Inserted)

	txs, _, _ := repo.Counts()
	assert.Equal(t, 1, txs)
}

func TestIngestSourceUnavailable(t *testing.T) {
	p, repo := newProcessor(t)

	stats, err := p.Ingest(context.Background(), brokenSource{})
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Unavailable, err))
	assert.Equal(t, 0, stats.TotalSeen)
	assert.Equal(t, 0, stats.Inserted)

	txs, bills, payments := repo.Counts()
	assert.Zero(t, txs+bills+payments)
}

func TestIngestRoutesCardMessages(t *testing.T) {
	p, repo := newProcessor(t)

	stats, err := p.Ingest(context.Background(), sliceSource{msg(cardBill), msg(cardPayment), msg(upiDebit)})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.InsertedBills)
	assert.Equal(t, 1, stats.InsertedPayments)
	assert.Equal(t, 1, stats.InsertedTransactions)
	assert.Equal(t, 1, stats.PerCategory[models.CategoryCreditCardBill])
	assert.Equal(t, 1, stats.PerCategory[models.CategoryCreditCardPayment])

	want := (scorer.Score(strings.ToLower(cardBill), models.CategoryCreditCardBill) +
		scorer.Score(strings.ToLower(cardPayment), models.CategoryCreditCardPayment) +
		scorer.Score(strings.ToLower(upiDebit), models.CategoryUPIDebit)) / 3
	assert.InDelta(t, want, stats.AverageConfidence, 1e-9)

	open, err := repo.OpenBillsForCard(context.Background(), "1234")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "JUN-25", open[0].BillPeriod)
	assert.Equal(t, models.BillUnpaid, open[0].Status)
}

func TestIngestUnparsableStatementFallsBackToTransaction(t *testing.T) {
	p, repo := newProcessor(t)

	// no card digits, so it cannot be stored as a bill
	text := "Your credit card statement is ready. Total Amt Due: Rs 4,500.00, Due Date: 05-Jul-25"
	stats, err := p.Ingest(context.Background(), sliceSource{msg(text)})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.InsertedTransactions)
	assert.Equal(t, 0, stats.InsertedBills)

	txs, bills, _ := repo.Counts()
	assert.Equal(t, 1, txs)
	assert.Equal(t, 0, bills)
}

type countingReconciler struct {
	runs int
	next Reconciler
}

func (c *countingReconciler) Run(ctx context.Context) (models.MatchResult, error) {
	c.runs++
	if c.next == nil {
		return models.MatchResult{}, nil
	}
	return c.next.Run(ctx)
}

func TestIngestRunsMatcherAfterCardRecords(t *testing.T) {
	p, repo := newProcessor(t)
	rec := &countingReconciler{next: matcher.NewMatcher(zap.NewNop(), repo)}
	p.Reconciler = rec

	_, err := p.Ingest(context.Background(), sliceSource{msg(upiDebit)})
	require.NoError(t, err)
	assert.Equal(t, 0, rec.runs)

	_, err = p.Ingest(context.Background(), sliceSource{msg(cardBill), msg(cardPayment)})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.runs)

	open, err := repo.OpenBillsForCard(context.Background(), "1234")
	require.NoError(t, err)
	assert.Empty(t, open)

	payments, err := repo.UnmatchedPayments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, payments)
}

// failingRepo rejects inserts of transactions with the given amount.
type failingRepo struct {
	*memory.LedgerRepository
	amount decimal.Decimal
}

func (r *failingRepo) InsertTransaction(ctx context.Context, tx models.Transaction) error {
	if tx.Amount.Equal(r.amount) {
		return errors.StoreFailedErr("insert transaction", fmt.Errorf("disk full"))
	}
	return r.LedgerRepository.InsertTransaction(ctx, tx)
}

func TestIngestContinuesAfterStoreFailure(t *testing.T) {
	repo := &failingRepo{LedgerRepository: memory.NewLedgerRepository(), amount: decimal.RequireFromString("500")}
	p := NewSMSProcessor(zap.NewNop(), repo)

	stats, err := p.Ingest(context.Background(), sliceSource{msg(upiDebit), msg(neftCredit)})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Inserted)

	txs, _, _ := repo.Counts()
	assert.Equal(t, 1, txs)
}

type stubLocker struct {
	held     bool
	err      error
	unlocked []string
}

func (l *stubLocker) Lock(context.Context, string) (bool, error) { return !l.held, l.err }

func (l *stubLocker) Unlock(_ context.Context, key string) error {
	l.unlocked = append(l.unlocked, key)
	return nil
}

func TestIngestSkipsKeysHeldElsewhere(t *testing.T) {
	p, repo := newProcessor(t)
	p.Locker = &stubLocker{held: true}

	stats, err := p.Ingest(context.Background(), sliceSource{msg(upiDebit)})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 0, stats.Inserted)

	txs, _, _ := repo.Counts()
	assert.Equal(t, 0, txs)
}

func TestIngestReleasesKeyLock(t *testing.T) {
	p, _ := newProcessor(t)
	locker := &stubLocker{}
	p.Locker = locker

	stats, err := p.Ingest(context.Background(), sliceSource{msg(upiDebit)})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Inserted)
	require.Len(t, locker.unlocked, 1)
	assert.True(t, strings.HasPrefix(locker.unlocked[0], "tx|500|"))
}

func TestIngestFallsBackToStoreWhenLockFails(t *testing.T) {
	p, _ := newProcessor(t)
	p.Locker = &stubLocker{err: fmt.Errorf("connection refused")}

	stats, err := p.Ingest(context.Background(), sliceSource{msg(upiDebit), msg(upiDebit)})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 1, stats.Duplicates)
}

type recordingArchiver struct{ texts []string }

func (a *recordingArchiver) Archive(_ context.Context, m models.RawMessage) error {
	a.texts = append(a.texts, m.Text)
	return nil
}

func TestIngestArchivesEveryMessage(t *testing.T) {
	p, _ := newProcessor(t)
	arch := &recordingArchiver{}
	p.Archiver = arch

	_, err := p.Ingest(context.Background(), sliceSource{msg(otp), msg(upiDebit), msg(upiDebit)})
	require.NoError(t, err)
	assert.Equal(t, []string{otp, upiDebit, upiDebit}, arch.texts)
}

func TestProcessRecordsSkipsUndecodable(t *testing.T) {
	p, repo := newProcessor(t)

	good, err := json.Marshal(msg(upiDebit))
	require.NoError(t, err)
	records := []models.Record{
		{Key: []byte("a"), Value: good},
		{Key: []byte("b"), Value: []byte("{not json")},
	}

	core, logs := observer.New(zap.InfoLevel)
	p.Logger = zap.New(core)

	require.NoError(t, p.ProcessRecords(context.Background(), records))
	require.NoError(t, p.ProcessRecords(context.Background(), nil))

	txs, _, _ := repo.Counts()
	assert.Equal(t, 1, txs)

	done := logs.FilterMessage("ingestion batch done").All()
	require.Len(t, done, 1)
	fields := done[0].ContextMap()
	assert.EqualValues(t, 2, fields["seen"])
	assert.EqualValues(t, 1, fields["inserted"])
	assert.EqualValues(t, 1, fields["failed"])
}

func TestRederiveCorrectsStoredParties(t *testing.T) {
	ctx := context.Background()
	p, repo := newProcessor(t)
	at := time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)

	stale := models.Transaction{
		ID:            "t1",
		Amount:        decimal.RequireFromString("500"),
		OccurredAt:    at,
		Direction:     models.Credit,
		PaymentMethod: models.MethodUPI,
		Category:      models.CategoryUPIDebit,
		SourceText:    upiDebit,
	}
	require.NoError(t, repo.InsertTransaction(ctx, stale))

	stats, err := p.Rederive(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RederiveStats{Scanned: 1, Updated: 1}, stats)

	txs, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.Debit, txs[0].Direction)
	assert.Equal(t, "SHOP@UPI", txs[0].Counterparty)
	assert.True(t, txs[0].Amount.Equal(stale.Amount))

	// nothing left to correct
	stats, err = p.Rederive(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RederiveStats{Scanned: 1}, stats)
}

func TestRederiveSkipsCorrectionsThatCollide(t *testing.T) {
	ctx := context.Background()
	p, repo := newProcessor(t)
	at := time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)

	correct := models.Transaction{
		ID:            "t1",
		Amount:        decimal.RequireFromString("500"),
		OccurredAt:    at,
		Direction:     models.Debit,
		PaymentMethod: models.MethodUPI,
		Counterparty:  "SHOP@UPI",
		Category:      models.CategoryUPIDebit,
		SourceText:    upiDebit,
	}
	stale := correct
	stale.ID = "t2"
	stale.Direction = models.Credit
	stale.Counterparty = ""
	require.NoError(t, repo.InsertTransaction(ctx, correct))
	require.NoError(t, repo.InsertTransaction(ctx, stale))

	stats, err := p.Rederive(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RederiveStats{Scanned: 2, Conflicts: 1}, stats)
}
