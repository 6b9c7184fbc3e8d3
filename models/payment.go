package models

import (
	// Go Internal Packages
	"strings"
	"time"

	// External Packages
	"github.com/shopspring/decimal"
)

// CreditCardPayment is a payment made towards a card. MatchedBillID is set
// once by the matcher and never reassigned.
type CreditCardPayment struct {
	ID            string          `json:"id"`
	CardLast4     string          `json:"card_last4"`
	BankName      string          `json:"bank_name"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	PaymentMethod string          `json:"payment_method"`
	MatchedBillID string          `json:"matched_bill_id,omitempty"`
	Confidence    float64         `json:"confidence"`
	SourceText    string          `json:"source_text"`
}

type PaymentKey struct {
	CardLast4     string
	PaymentAmount decimal.Decimal
	PaymentDate   time.Time
}

func (p CreditCardPayment) Key() PaymentKey {
	return PaymentKey{CardLast4: p.CardLast4, PaymentAmount: p.PaymentAmount, PaymentDate: p.PaymentDate}
}

func (k PaymentKey) String() string {
	return strings.Join([]string{
		"payment",
		k.CardLast4,
		k.PaymentAmount.String(),
		k.PaymentDate.UTC().Format(time.RFC3339Nano),
	}, "|")
}
