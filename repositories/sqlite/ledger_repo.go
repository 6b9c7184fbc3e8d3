package sqlite

import (
	// Go Internal Packages
	"context"
	"database/sql"
	"strings"
	"time"

	// Local Packages
	errors "sms-ledger/errors"
	models "sms-ledger/models"

	// External Packages
	"github.com/shopspring/decimal"
)

// Fixed-width UTC timestamps sort lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) { return time.Parse(timeLayout, s) }

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type scanner interface {
	Scan(dest ...any) error
}

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) exists(ctx context.Context, table, key string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+" WHERE nat_key = ?", key).Scan(&count)
	if err != nil {
		return false, errors.StoreFailedErr("count "+table, err)
	}
	return count > 0, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *LedgerRepository) InsertTransaction(ctx context.Context, tx models.Transaction) error {
	if tx.ID == "" {
		return errors.EmptyParamErr("id")
	}
	key := tx.Key().String()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions
		(id, nat_key, amount, occurred_at, direction, payment_method, bank_name,
		 counterparty, category, confidence, source_text)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		tx.ID, key, tx.Amount.String(), formatTime(tx.OccurredAt), string(tx.Direction),
		string(tx.PaymentMethod), tx.BankName, nullable(tx.Counterparty), string(tx.Category),
		tx.Confidence, tx.SourceText,
	)
	if isUniqueViolation(err) {
		return errors.DuplicateErr("transaction", key)
	}
	if err != nil {
		return errors.StoreFailedErr("insert transaction", err)
	}
	return nil
}

func (r *LedgerRepository) TransactionExists(ctx context.Context, key models.TransactionKey) (bool, error) {
	return r.exists(ctx, "transactions", key.String())
}

const transactionColumns = `id, amount, occurred_at, direction, payment_method, bank_name,
	counterparty, category, confidence, source_text`

func scanTransaction(s scanner) (models.Transaction, error) {
	var (
		tx                            models.Transaction
		amount, occurredAt, direction string
		method, category              string
		counterparty                  sql.NullString
	)
	err := s.Scan(&tx.ID, &amount, &occurredAt, &direction, &method, &tx.BankName,
		&counterparty, &category, &tx.Confidence, &tx.SourceText)
	if err != nil {
		return tx, err
	}
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return tx, err
	}
	if tx.OccurredAt, err = parseTime(occurredAt); err != nil {
		return tx, err
	}
	tx.Direction = models.Direction(direction)
	tx.PaymentMethod = models.PaymentMethod(method)
	tx.Counterparty = counterparty.String
	tx.Category = models.Category(category)
	return tx, nil
}

// ListTransactions returns every transaction ordered by occurrence time.
func (r *LedgerRepository) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+transactionColumns+" FROM transactions ORDER BY occurred_at, id")
	if err != nil {
		return nil, errors.StoreFailedErr("query transactions", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, errors.StoreFailedErr("scan transaction", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreFailedErr("query transactions", err)
	}
	return out, nil
}

// UpdateTransactionParties rewrites direction and counterparty together with
// the natural key they are part of.
func (r *LedgerRepository) UpdateTransactionParties(ctx context.Context, id string, direction models.Direction, counterparty string) error {
	row := r.db.QueryRowContext(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return errors.NotFoundErr("transaction", id)
	}
	if err != nil {
		return errors.StoreFailedErr("find transaction", err)
	}

	tx.Direction = direction
	tx.Counterparty = counterparty
	key := tx.Key().String()

	_, err = r.db.ExecContext(ctx,
		"UPDATE transactions SET nat_key = ?, direction = ?, counterparty = ? WHERE id = ?",
		key, string(direction), nullable(counterparty), id,
	)
	if isUniqueViolation(err) {
		return errors.DuplicateErr("transaction", key)
	}
	if err != nil {
		return errors.StoreFailedErr("update transaction", err)
	}
	return nil
}

func (r *LedgerRepository) InsertBill(ctx context.Context, b models.CreditCardBill) error {
	if b.ID == "" {
		return errors.EmptyParamErr("id")
	}
	key := b.Key().String()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO credit_card_bills
		(id, nat_key, card_last4, bank_name, bill_period, total_amount, minimum_due,
		 due_date, statement_date, status, paid_amount, remaining_amount, confidence, source_text)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.ID, key, b.CardLast4, b.BankName, b.BillPeriod, b.TotalAmount.String(), b.MinimumDue.String(),
		formatTime(b.DueDate), formatTime(b.StatementDate), string(b.Status), b.PaidAmount.String(),
		b.RemainingAmount.String(), b.Confidence, b.SourceText,
	)
	if isUniqueViolation(err) {
		return errors.DuplicateErr("bill", key)
	}
	if err != nil {
		return errors.StoreFailedErr("insert bill", err)
	}
	return nil
}

func (r *LedgerRepository) BillExists(ctx context.Context, key models.BillKey) (bool, error) {
	return r.exists(ctx, "credit_card_bills", key.String())
}

const billColumns = `id, card_last4, bank_name, bill_period, total_amount, minimum_due,
	due_date, statement_date, status, paid_amount, remaining_amount, confidence, source_text`

func scanBill(s scanner) (models.CreditCardBill, error) {
	var (
		b                               models.CreditCardBill
		total, minimum, paid, remaining string
		dueDate, statementDate, status  string
	)
	err := s.Scan(&b.ID, &b.CardLast4, &b.BankName, &b.BillPeriod, &total, &minimum,
		&dueDate, &statementDate, &status, &paid, &remaining, &b.Confidence, &b.SourceText)
	if err != nil {
		return b, err
	}

	amounts := []struct {
		src string
		dst *decimal.Decimal
	}{
		{total, &b.TotalAmount},
		{minimum, &b.MinimumDue},
		{paid, &b.PaidAmount},
		{remaining, &b.RemainingAmount},
	}
	for _, a := range amounts {
		if *a.dst, err = decimal.NewFromString(a.src); err != nil {
			return b, err
		}
	}
	if b.DueDate, err = parseTime(dueDate); err != nil {
		return b, err
	}
	if b.StatementDate, err = parseTime(statementDate); err != nil {
		return b, err
	}
	b.Status = models.BillStatus(status)
	return b, nil
}

func (r *LedgerRepository) GetBill(ctx context.Context, id string) (models.CreditCardBill, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+billColumns+" FROM credit_card_bills WHERE id = ?", id)
	b, err := scanBill(row)
	if err == sql.ErrNoRows {
		return models.CreditCardBill{}, errors.NotFoundErr("bill", id)
	}
	if err != nil {
		return models.CreditCardBill{}, errors.StoreFailedErr("find bill", err)
	}
	return b, nil
}

// OpenBillsForCard returns the card's bills that are not fully paid, earliest due first.
func (r *LedgerRepository) OpenBillsForCard(ctx context.Context, cardLast4 string) ([]models.CreditCardBill, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+billColumns+" FROM credit_card_bills WHERE card_last4 = ? AND status != ? ORDER BY due_date, id",
		cardLast4, string(models.BillFullyPaid),
	)
	if err != nil {
		return nil, errors.StoreFailedErr("query open bills", err)
	}
	defer rows.Close()

	var out []models.CreditCardBill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, errors.StoreFailedErr("scan bill", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreFailedErr("query open bills", err)
	}
	return out, nil
}

func (r *LedgerRepository) InsertPayment(ctx context.Context, p models.CreditCardPayment) error {
	if p.ID == "" {
		return errors.EmptyParamErr("id")
	}
	key := p.Key().String()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO credit_card_payments
		(id, nat_key, card_last4, bank_name, payment_amount, payment_date, payment_method,
		 matched_bill_id, confidence, source_text)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		p.ID, key, p.CardLast4, p.BankName, p.PaymentAmount.String(), formatTime(p.PaymentDate),
		p.PaymentMethod, nullable(p.MatchedBillID), p.Confidence, p.SourceText,
	)
	if isUniqueViolation(err) {
		return errors.DuplicateErr("payment", key)
	}
	if err != nil {
		return errors.StoreFailedErr("insert payment", err)
	}
	return nil
}

func (r *LedgerRepository) PaymentExists(ctx context.Context, key models.PaymentKey) (bool, error) {
	return r.exists(ctx, "credit_card_payments", key.String())
}

const paymentColumns = `id, card_last4, bank_name, payment_amount, payment_date, payment_method,
	matched_bill_id, confidence, source_text`

func scanPayment(s scanner) (models.CreditCardPayment, error) {
	var (
		p             models.CreditCardPayment
		amount, date  string
		matchedBillID sql.NullString
	)
	err := s.Scan(&p.ID, &p.CardLast4, &p.BankName, &amount, &date, &p.PaymentMethod,
		&matchedBillID, &p.Confidence, &p.SourceText)
	if err != nil {
		return p, err
	}
	if p.PaymentAmount, err = decimal.NewFromString(amount); err != nil {
		return p, err
	}
	if p.PaymentDate, err = parseTime(date); err != nil {
		return p, err
	}
	p.MatchedBillID = matchedBillID.String
	return p, nil
}

func (r *LedgerRepository) GetPayment(ctx context.Context, id string) (models.CreditCardPayment, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM credit_card_payments WHERE id = ?", id)
	p, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return models.CreditCardPayment{}, errors.NotFoundErr("payment", id)
	}
	if err != nil {
		return models.CreditCardPayment{}, errors.StoreFailedErr("find payment", err)
	}
	return p, nil
}

// UnmatchedPayments returns payments without a bill, oldest first.
func (r *LedgerRepository) UnmatchedPayments(ctx context.Context) ([]models.CreditCardPayment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+paymentColumns+" FROM credit_card_payments WHERE matched_bill_id IS NULL ORDER BY payment_date, id",
	)
	if err != nil {
		return nil, errors.StoreFailedErr("query unmatched payments", err)
	}
	defer rows.Close()

	var out []models.CreditCardPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, errors.StoreFailedErr("scan payment", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreFailedErr("query unmatched payments", err)
	}
	return out, nil
}

// ApplyPayment links the payment to billID and credits its amount to the
// bill in one transaction. It reports false, changing nothing, when the
// payment is already linked.
func (r *LedgerRepository) ApplyPayment(ctx context.Context, paymentID, billID string) (models.CreditCardBill, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.CreditCardBill{}, false, errors.StoreFailedErr("begin apply payment", err)
	}
	defer tx.Rollback()

	p, err := scanPayment(tx.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM credit_card_payments WHERE id = ?", paymentID))
	if err == sql.ErrNoRows {
		return models.CreditCardBill{}, false, errors.NotFoundErr("payment", paymentID)
	}
	if err != nil {
		return models.CreditCardBill{}, false, errors.StoreFailedErr("find payment", err)
	}
	if p.MatchedBillID != "" {
		return models.CreditCardBill{}, false, nil
	}

	bill, err := scanBill(tx.QueryRowContext(ctx, "SELECT "+billColumns+" FROM credit_card_bills WHERE id = ?", billID))
	if err == sql.ErrNoRows {
		return models.CreditCardBill{}, false, errors.NotFoundErr("bill", billID)
	}
	if err != nil {
		return models.CreditCardBill{}, false, errors.StoreFailedErr("find bill", err)
	}
	bill = bill.Settle(p.PaymentAmount)

	res, err := tx.ExecContext(ctx,
		"UPDATE credit_card_payments SET matched_bill_id = ? WHERE id = ? AND matched_bill_id IS NULL",
		billID, paymentID,
	)
	if err != nil {
		return models.CreditCardBill{}, false, errors.StoreFailedErr("match payment", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.CreditCardBill{}, false, errors.StoreFailedErr("match payment", err)
	} else if n == 0 {
		return models.CreditCardBill{}, false, nil
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE credit_card_bills SET paid_amount = ?, remaining_amount = ?, status = ? WHERE id = ?",
		bill.PaidAmount.String(), bill.RemainingAmount.String(), string(bill.Status), billID,
	)
	if err != nil {
		return models.CreditCardBill{}, false, errors.StoreFailedErr("update bill", err)
	}

	if err := tx.Commit(); err != nil {
		return models.CreditCardBill{}, false, errors.StoreFailedErr("commit apply payment", err)
	}
	return bill, true, nil
}
