package mongodb

import (
	// Go Internal Packages
	"context"

	// Local Packages
	errors "sms-ledger/errors"
	models "sms-ledger/models"

	// External Packages
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	transactionsCollection = "transactions"
	billsCollection        = "credit_card_bills"
	paymentsCollection     = "credit_card_payments"
)

// LedgerRepository stores transactions, bills and payments in three
// collections of one database.
type LedgerRepository struct {
	DB *mongo.Database
}

func NewLedgerRepository(db *mongo.Database) *LedgerRepository {
	return &LedgerRepository{DB: db}
}

// EnsureIndexes creates the unique natural-key indexes and the lookup
// indexes used by the matcher. It is safe to call on every start.
func (r *LedgerRepository) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		transactionsCollection: {
			{Keys: bson.D{{Key: "key", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "occurred_at", Value: 1}}},
		},
		billsCollection: {
			{Keys: bson.D{{Key: "key", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "card_last4", Value: 1}, {Key: "status", Value: 1}, {Key: "due_date", Value: 1}}},
		},
		paymentsCollection: {
			{Keys: bson.D{{Key: "key", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "matched_bill_id", Value: 1}, {Key: "payment_date", Value: 1}}},
		},
	}

	for name, specs := range indexes {
		if _, err := r.DB.Collection(name).Indexes().CreateMany(ctx, specs); err != nil {
			return errors.StoreFailedErr("create indexes on "+name, err)
		}
	}
	return nil
}

func (r *LedgerRepository) insert(ctx context.Context, collection, entity, key string, doc any) error {
	_, err := r.DB.Collection(collection).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return errors.DuplicateErr(entity, key)
	}
	if err != nil {
		return errors.StoreFailedErr("insert "+entity, err)
	}
	return nil
}

func (r *LedgerRepository) exists(ctx context.Context, collection, key string) (bool, error) {
	n, err := r.DB.Collection(collection).CountDocuments(ctx, bson.M{"key": key}, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.StoreFailedErr("count "+collection, err)
	}
	return n > 0, nil
}

func (r *LedgerRepository) InsertTransaction(ctx context.Context, tx models.Transaction) error {
	if tx.ID == "" {
		return errors.EmptyParamErr("id")
	}
	doc, err := newTransactionDoc(tx)
	if err != nil {
		return errors.ValidationFailedErr(err)
	}
	return r.insert(ctx, transactionsCollection, "transaction", doc.Key, doc)
}

func (r *LedgerRepository) TransactionExists(ctx context.Context, key models.TransactionKey) (bool, error) {
	return r.exists(ctx, transactionsCollection, key.String())
}

// ListTransactions returns every transaction ordered by occurrence time.
func (r *LedgerRepository) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.DB.Collection(transactionsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.StoreFailedErr("find transactions", err)
	}

	var docs []transactionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.StoreFailedErr("decode transactions", err)
	}

	out := make([]models.Transaction, 0, len(docs))
	for _, d := range docs {
		tx, err := d.model()
		if err != nil {
			return nil, errors.StoreFailedErr("decode transaction "+d.ID, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

// UpdateTransactionParties rewrites direction and counterparty together with
// the natural key they are part of.
func (r *LedgerRepository) UpdateTransactionParties(ctx context.Context, id string, direction models.Direction, counterparty string) error {
	coll := r.DB.Collection(transactionsCollection)

	var doc transactionDoc
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return errors.NotFoundErr("transaction", id)
	}
	if err != nil {
		return errors.StoreFailedErr("find transaction", err)
	}

	tx, err := doc.model()
	if err != nil {
		return errors.StoreFailedErr("decode transaction "+id, err)
	}
	tx.Direction = direction
	tx.Counterparty = counterparty
	key := tx.Key().String()

	set := bson.M{"key": key, "direction": string(direction)}
	update := bson.M{"$set": set}
	if counterparty == "" {
		update["$unset"] = bson.M{"counterparty": ""}
	} else {
		set["counterparty"] = counterparty
	}

	_, err = coll.UpdateByID(ctx, id, update)
	if mongo.IsDuplicateKeyError(err) {
		return errors.DuplicateErr("transaction", key)
	}
	if err != nil {
		return errors.StoreFailedErr("update transaction", err)
	}
	return nil
}

func (r *LedgerRepository) InsertBill(ctx context.Context, bill models.CreditCardBill) error {
	if bill.ID == "" {
		return errors.EmptyParamErr("id")
	}
	doc, err := newBillDoc(bill)
	if err != nil {
		return errors.ValidationFailedErr(err)
	}
	return r.insert(ctx, billsCollection, "bill", doc.Key, doc)
}

func (r *LedgerRepository) BillExists(ctx context.Context, key models.BillKey) (bool, error) {
	return r.exists(ctx, billsCollection, key.String())
}

func (r *LedgerRepository) GetBill(ctx context.Context, id string) (models.CreditCardBill, error) {
	var doc billDoc
	err := r.DB.Collection(billsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return models.CreditCardBill{}, errors.NotFoundErr("bill", id)
	}
	if err != nil {
		return models.CreditCardBill{}, errors.StoreFailedErr("find bill", err)
	}
	return doc.model()
}

// OpenBillsForCard returns the card's bills that are not fully paid, earliest due first.
func (r *LedgerRepository) OpenBillsForCard(ctx context.Context, cardLast4 string) ([]models.CreditCardBill, error) {
	filter := bson.M{
		"card_last4": cardLast4,
		"status":     bson.M{"$ne": string(models.BillFullyPaid)},
	}
	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.DB.Collection(billsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.StoreFailedErr("find open bills", err)
	}

	var docs []billDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.StoreFailedErr("decode bills", err)
	}

	out := make([]models.CreditCardBill, 0, len(docs))
	for _, d := range docs {
		b, err := d.model()
		if err != nil {
			return nil, errors.StoreFailedErr("decode bill "+d.ID, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *LedgerRepository) InsertPayment(ctx context.Context, p models.CreditCardPayment) error {
	if p.ID == "" {
		return errors.EmptyParamErr("id")
	}
	doc, err := newPaymentDoc(p)
	if err != nil {
		return errors.ValidationFailedErr(err)
	}
	return r.insert(ctx, paymentsCollection, "payment", doc.Key, doc)
}

func (r *LedgerRepository) PaymentExists(ctx context.Context, key models.PaymentKey) (bool, error) {
	return r.exists(ctx, paymentsCollection, key.String())
}

func (r *LedgerRepository) GetPayment(ctx context.Context, id string) (models.CreditCardPayment, error) {
	var doc paymentDoc
	err := r.DB.Collection(paymentsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return models.CreditCardPayment{}, errors.NotFoundErr("payment", id)
	}
	if err != nil {
		return models.CreditCardPayment{}, errors.StoreFailedErr("find payment", err)
	}
	return doc.model()
}

// UnmatchedPayments returns payments without a bill, oldest first.
func (r *LedgerRepository) UnmatchedPayments(ctx context.Context) ([]models.CreditCardPayment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "payment_date", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.DB.Collection(paymentsCollection).Find(ctx, bson.M{"matched_bill_id": nil}, opts)
	if err != nil {
		return nil, errors.StoreFailedErr("find unmatched payments", err)
	}

	var docs []paymentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.StoreFailedErr("decode payments", err)
	}

	out := make([]models.CreditCardPayment, 0, len(docs))
	for _, d := range docs {
		p, err := d.model()
		if err != nil {
			return nil, errors.StoreFailedErr("decode payment "+d.ID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// ApplyPayment links the payment to billID and credits its amount to the
// bill inside one session transaction, so the deployment must be a replica set.
// It reports false, changing nothing, when the payment is already linked.
func (r *LedgerRepository) ApplyPayment(ctx context.Context, paymentID, billID string) (models.CreditCardBill, bool, error) {
	sess, err := r.DB.Client().StartSession()
	if err != nil {
		return models.CreditCardBill{}, false, errors.StoreFailedErr("start session", err)
	}
	defer sess.EndSession(ctx)

	res, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return r.applyPayment(sc, paymentID, billID)
	})
	if err != nil {
		return models.CreditCardBill{}, false, err
	}
	bill, ok := res.(*models.CreditCardBill)
	if !ok || bill == nil {
		return models.CreditCardBill{}, false, nil
	}
	return *bill, true, nil
}

// applyPayment returns a nil bill when the payment was already linked.
func (r *LedgerRepository) applyPayment(sc mongo.SessionContext, paymentID, billID string) (*models.CreditCardBill, error) {
	payments := r.DB.Collection(paymentsCollection)

	var pdoc paymentDoc
	filter := bson.M{"_id": paymentID, "matched_bill_id": nil}
	err := payments.FindOneAndUpdate(sc, filter, bson.M{"$set": bson.M{"matched_bill_id": billID}}).Decode(&pdoc)
	if err == mongo.ErrNoDocuments {
		n, err := payments.CountDocuments(sc, bson.M{"_id": paymentID}, options.Count().SetLimit(1))
		if err != nil {
			return nil, errors.StoreFailedErr("count payment", err)
		}
		if n == 0 {
			return nil, errors.NotFoundErr("payment", paymentID)
		}
		return nil, nil
	}
	if err != nil {
		return nil, errors.StoreFailedErr("match payment", err)
	}
	p, err := pdoc.model()
	if err != nil {
		return nil, errors.StoreFailedErr("decode payment "+paymentID, err)
	}

	bills := r.DB.Collection(billsCollection)
	var bdoc billDoc
	err = bills.FindOne(sc, bson.M{"_id": billID}).Decode(&bdoc)
	if err == mongo.ErrNoDocuments {
		return nil, errors.NotFoundErr("bill", billID)
	}
	if err != nil {
		return nil, errors.StoreFailedErr("find bill", err)
	}
	bill, err := bdoc.model()
	if err != nil {
		return nil, errors.StoreFailedErr("decode bill "+billID, err)
	}
	bill = bill.Settle(p.PaymentAmount)

	paid, err := toDecimal128(bill.PaidAmount)
	if err != nil {
		return nil, errors.ValidationFailedErr(err)
	}
	remaining, err := toDecimal128(bill.RemainingAmount)
	if err != nil {
		return nil, errors.ValidationFailedErr(err)
	}
	update := bson.M{"$set": bson.M{
		"paid_amount":      paid,
		"remaining_amount": remaining,
		"status":           string(bill.Status),
	}}
	if _, err := bills.UpdateByID(sc, billID, update); err != nil {
		return nil, errors.StoreFailedErr("update bill", err)
	}
	return &bill, nil
}
