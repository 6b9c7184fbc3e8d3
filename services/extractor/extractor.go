package extractor

import (
	// Go Internal Packages
	"strings"
	"time"

	// Local Packages
	models "sms-ledger/models"

	// External Packages
	"github.com/shopspring/decimal"
)

// Fields holds everything extracted from a transaction SMS. Amount and
// OccurredAt are always set when extraction succeeds; the rest carry their
// documented defaults when unresolved.
type Fields struct {
	Amount        decimal.Decimal
	OccurredAt    time.Time
	DateFromText  bool
	BankName      string
	Direction     models.Direction
	PaymentMethod models.PaymentMethod
	Counterparty  string
}

// Extract pulls transaction fields out of text. It fails only when no
// positive amount is present.
func Extract(text string, receivedAt time.Time, category models.Category) (Fields, bool) {
	amount, ok := ExtractAmount(text)
	if !ok {
		return Fields{}, false
	}

	lower := strings.ToLower(text)
	occurredAt, fromText := ExtractDate(text, receivedAt)
	direction := ExtractDirection(lower, category)

	return Fields{
		Amount:        amount,
		OccurredAt:    occurredAt,
		DateFromText:  fromText,
		BankName:      ExtractBank(text),
		Direction:     direction,
		PaymentMethod: ExtractMethod(lower, category),
		Counterparty:  ExtractCounterparty(text, direction),
	}, true
}

// Transaction builds a record from the extracted fields.
func (f Fields) Transaction(category models.Category, confidence float64, text string) models.Transaction {
	return models.Transaction{
		Amount:        f.Amount,
		OccurredAt:    f.OccurredAt,
		Direction:     f.Direction,
		PaymentMethod: f.PaymentMethod,
		BankName:      f.BankName,
		Counterparty:  f.Counterparty,
		Category:      category,
		Confidence:    confidence,
		SourceText:    text,
	}
}
