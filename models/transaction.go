package models

import (
	// Go Internal Packages
	"strings"
	"time"

	// External Packages
	"github.com/shopspring/decimal"
)

type Direction string

const (
	Debit  Direction = "debit"
	Credit Direction = "credit"
)

type PaymentMethod string

const (
	MethodUPI        PaymentMethod = "upi"
	MethodCreditCard PaymentMethod = "credit_card"
	MethodDebitCard  PaymentMethod = "debit_card"
	MethodNetBanking PaymentMethod = "net_banking"
	MethodCash       PaymentMethod = "cash"
	MethodWallet     PaymentMethod = "wallet"
	MethodUnknown    PaymentMethod = "unknown"
)

// Transaction is a debit or credit extracted from a single SMS.
// An empty Counterparty means none could be resolved.
type Transaction struct {
	ID            string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Direction     Direction       `json:"direction"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	BankName      string          `json:"bank_name"`
	Counterparty  string          `json:"counterparty,omitempty"`
	Category      Category        `json:"category"`
	Confidence    float64         `json:"confidence"`
	SourceText    string          `json:"source_text"`
}

// TransactionKey is the natural key no two stored transactions may share.
type TransactionKey struct {
	Amount        decimal.Decimal
	OccurredAt    time.Time
	Direction     Direction
	PaymentMethod PaymentMethod
	Counterparty  string
}

func (t Transaction) Key() TransactionKey {
	return TransactionKey{
		Amount:        t.Amount,
		OccurredAt:    t.OccurredAt,
		Direction:     t.Direction,
		PaymentMethod: t.PaymentMethod,
		Counterparty:  t.Counterparty,
	}
}

func (k TransactionKey) String() string {
	return strings.Join([]string{
		"tx",
		k.Amount.String(),
		k.OccurredAt.UTC().Format(time.RFC3339Nano),
		string(k.Direction),
		string(k.PaymentMethod),
		k.Counterparty,
	}, "|")
}
