package models

import (
	// Go Internal Packages
	"strings"
	"time"

	// External Packages
	"github.com/shopspring/decimal"
)

type BillStatus string

const (
	BillUnpaid        BillStatus = "unpaid"
	BillPartiallyPaid BillStatus = "partially_paid"
	BillFullyPaid     BillStatus = "fully_paid"
)

// CreditCardBill is a statement for one card and one bill period.
// Only the matcher changes Status, PaidAmount and RemainingAmount.
type CreditCardBill struct {
	ID              string          `json:"id"`
	CardLast4       string          `json:"card_last4"`
	BankName        string          `json:"bank_name"`
	BillPeriod      string          `json:"bill_period"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	MinimumDue      decimal.Decimal `json:"minimum_due"`
	DueDate         time.Time       `json:"due_date"`
	StatementDate   time.Time       `json:"statement_date"`
	Status          BillStatus      `json:"status"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Confidence      float64         `json:"confidence"`
	SourceText      string          `json:"source_text"`
}

type BillKey struct {
	CardLast4  string
	BillPeriod string
}

func (b CreditCardBill) Key() BillKey {
	return BillKey{CardLast4: b.CardLast4, BillPeriod: b.BillPeriod}
}

func (k BillKey) String() string {
	return strings.Join([]string{"bill", k.CardLast4, k.BillPeriod}, "|")
}

// Settle returns b with amount applied: PaidAmount grows by amount,
// RemainingAmount is recomputed from TotalAmount, and the bill is fully paid
// once nothing remains.
func (b CreditCardBill) Settle(amount decimal.Decimal) CreditCardBill {
	b.PaidAmount = b.PaidAmount.Add(amount)
	b.RemainingAmount = b.TotalAmount.Sub(b.PaidAmount)
	if b.RemainingAmount.LessThanOrEqual(decimal.Zero) {
		b.Status = BillFullyPaid
	} else {
		b.Status = BillPartiallyPaid
	}
	return b
}
