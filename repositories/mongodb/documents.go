package mongodb

import (
	// Go Internal Packages
	"time"

	// Local Packages
	models "sms-ledger/models"

	// External Packages
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Every document carries its natural key in "key", which has a unique index.

type transactionDoc struct {
	ID            string               `bson:"_id"`
	Key           string               `bson:"key"`
	Amount        primitive.Decimal128 `bson:"amount"`
	OccurredAt    time.Time            `bson:"occurred_at"`
	Direction     string               `bson:"direction"`
	PaymentMethod string               `bson:"payment_method"`
	BankName      string               `bson:"bank_name"`
	Counterparty  string               `bson:"counterparty,omitempty"`
	Category      string               `bson:"category"`
	Confidence    float64              `bson:"confidence"`
	SourceText    string               `bson:"source_text"`
}

type billDoc struct {
	ID              string               `bson:"_id"`
	Key             string               `bson:"key"`
	CardLast4       string               `bson:"card_last4"`
	BankName        string               `bson:"bank_name"`
	BillPeriod      string               `bson:"bill_period"`
	TotalAmount     primitive.Decimal128 `bson:"total_amount"`
	MinimumDue      primitive.Decimal128 `bson:"minimum_due"`
	DueDate         time.Time            `bson:"due_date"`
	StatementDate   time.Time            `bson:"statement_date"`
	Status          string               `bson:"status"`
	PaidAmount      primitive.Decimal128 `bson:"paid_amount"`
	RemainingAmount primitive.Decimal128 `bson:"remaining_amount"`
	Confidence      float64              `bson:"confidence"`
	SourceText      string               `bson:"source_text"`
}

type paymentDoc struct {
	ID            string               `bson:"_id"`
	Key           string               `bson:"key"`
	CardLast4     string               `bson:"card_last4"`
	BankName      string               `bson:"bank_name"`
	PaymentAmount primitive.Decimal128 `bson:"payment_amount"`
	PaymentDate   time.Time            `bson:"payment_date"`
	PaymentMethod string               `bson:"payment_method"`
	MatchedBillID *string              `bson:"matched_bill_id"`
	Confidence    float64              `bson:"confidence"`
	SourceText    string               `bson:"source_text"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}

func newTransactionDoc(tx models.Transaction) (transactionDoc, error) {
	amount, err := toDecimal128(tx.Amount)
	if err != nil {
		return transactionDoc{}, err
	}
	return transactionDoc{
		ID:            tx.ID,
		Key:           tx.Key().String(),
		Amount:        amount,
		OccurredAt:    tx.OccurredAt.UTC(),
		Direction:     string(tx.Direction),
		PaymentMethod: string(tx.PaymentMethod),
		BankName:      tx.BankName,
		Counterparty:  tx.Counterparty,
		Category:      string(tx.Category),
		Confidence:    tx.Confidence,
		SourceText:    tx.SourceText,
	}, nil
}

func (d transactionDoc) model() (models.Transaction, error) {
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return models.Transaction{}, err
	}
	return models.Transaction{
		ID:            d.ID,
		Amount:        amount,
		OccurredAt:    d.OccurredAt.UTC(),
		Direction:     models.Direction(d.Direction),
		PaymentMethod: models.PaymentMethod(d.PaymentMethod),
		BankName:      d.BankName,
		Counterparty:  d.Counterparty,
		Category:      models.Category(d.Category),
		Confidence:    d.Confidence,
		SourceText:    d.SourceText,
	}, nil
}

func newBillDoc(b models.CreditCardBill) (billDoc, error) {
	var (
		doc billDoc
		err error
	)
	amounts := []struct {
		src decimal.Decimal
		dst *primitive.Decimal128
	}{
		{b.TotalAmount, &doc.TotalAmount},
		{b.MinimumDue, &doc.MinimumDue},
		{b.PaidAmount, &doc.PaidAmount},
		{b.RemainingAmount, &doc.RemainingAmount},
	}
	for _, a := range amounts {
		if *a.dst, err = toDecimal128(a.src); err != nil {
			return billDoc{}, err
		}
	}

	doc.ID = b.ID
	doc.Key = b.Key().String()
	doc.CardLast4 = b.CardLast4
	doc.BankName = b.BankName
	doc.BillPeriod = b.BillPeriod
	doc.DueDate = b.DueDate.UTC()
	doc.StatementDate = b.StatementDate.UTC()
	doc.Status = string(b.Status)
	doc.Confidence = b.Confidence
	doc.SourceText = b.SourceText
	return doc, nil
}

func (d billDoc) model() (models.CreditCardBill, error) {
	b := models.CreditCardBill{
		ID:            d.ID,
		CardLast4:     d.CardLast4,
		BankName:      d.BankName,
		BillPeriod:    d.BillPeriod,
		DueDate:       d.DueDate.UTC(),
		StatementDate: d.StatementDate.UTC(),
		Status:        models.BillStatus(d.Status),
		Confidence:    d.Confidence,
		SourceText:    d.SourceText,
	}

	var err error
	amounts := []struct {
		src primitive.Decimal128
		dst *decimal.Decimal
	}{
		{d.TotalAmount, &b.TotalAmount},
		{d.MinimumDue, &b.MinimumDue},
		{d.PaidAmount, &b.PaidAmount},
		{d.RemainingAmount, &b.RemainingAmount},
	}
	for _, a := range amounts {
		if *a.dst, err = fromDecimal128(a.src); err != nil {
			return models.CreditCardBill{}, err
		}
	}
	return b, nil
}

func newPaymentDoc(p models.CreditCardPayment) (paymentDoc, error) {
	amount, err := toDecimal128(p.PaymentAmount)
	if err != nil {
		return paymentDoc{}, err
	}
	doc := paymentDoc{
		ID:            p.ID,
		Key:           p.Key().String(),
		CardLast4:     p.CardLast4,
		BankName:      p.BankName,
		PaymentAmount: amount,
		PaymentDate:   p.PaymentDate.UTC(),
		PaymentMethod: p.PaymentMethod,
		Confidence:    p.Confidence,
		SourceText:    p.SourceText,
	}
	if p.MatchedBillID != "" {
		id := p.MatchedBillID
		doc.MatchedBillID = &id
	}
	return doc, nil
}

func (d paymentDoc) model() (models.CreditCardPayment, error) {
	amount, err := fromDecimal128(d.PaymentAmount)
	if err != nil {
		return models.CreditCardPayment{}, err
	}
	p := models.CreditCardPayment{
		ID:            d.ID,
		CardLast4:     d.CardLast4,
		BankName:      d.BankName,
		PaymentAmount: amount,
		PaymentDate:   d.PaymentDate.UTC(),
		PaymentMethod: d.PaymentMethod,
		Confidence:    d.Confidence,
		SourceText:    d.SourceText,
	}
	if d.MatchedBillID != nil {
		p.MatchedBillID = *d.MatchedBillID
	}
	return p, nil
}
