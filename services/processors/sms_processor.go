package processors

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"strings"

	// Local Packages
	errors "sms-ledger/errors"
	models "sms-ledger/models"
	categorizer "sms-ledger/services/categorizer"
	dedup "sms-ledger/services/dedup"
	extractor "sms-ledger/services/extractor"
	scorer "sms-ledger/services/scorer"

	// External Packages
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LedgerRepository interface {
	dedup.Store
	InsertTransaction(ctx context.Context, tx models.Transaction) error
	InsertBill(ctx context.Context, bill models.CreditCardBill) error
	InsertPayment(ctx context.Context, payment models.CreditCardPayment) error
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	UpdateTransactionParties(ctx context.Context, id string, direction models.Direction, counterparty string) error
}

// Source yields the raw messages of one batch.
type Source interface {
	Fetch(ctx context.Context) ([]models.RawMessage, error)
}

// KeyLocker serialises check-then-insert for a natural key across processes.
// Lock reports false when another holder owns the key.
type KeyLocker interface {
	Lock(ctx context.Context, key string) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// Archiver keeps a copy of every raw message seen.
type Archiver interface {
	Archive(ctx context.Context, msg models.RawMessage) error
}

// Reconciler is run after a batch that stored new bills or payments.
type Reconciler interface {
	Run(ctx context.Context) (models.MatchResult, error)
}

type SMSProcessor struct {
	Logger     *zap.Logger
	Repo       LedgerRepository
	Locker     KeyLocker
	Archiver   Archiver
	Reconciler Reconciler

	dedup *dedup.Deduplicator
	newID func() string
}

func NewSMSProcessor(logger *zap.Logger, repo LedgerRepository) *SMSProcessor {
	return &SMSProcessor{
		Logger: logger,
		Repo:   repo,
		dedup:  dedup.NewDeduplicator(repo),
		newID:  uuid.NewString,
	}
}

type outcome int

const (
	outcomeInserted outcome = iota
	outcomeDuplicate
	outcomeFailed
)

// candidate is a record extracted from one message, ready for the dedup gate.
type candidate struct {
	entity     string
	key        string
	category   models.Category
	confidence float64
	record     any
}

// Ingest reads the whole source and processes it as one batch. When the
// source cannot be read nothing is processed and the returned stats are empty.
func (p *SMSProcessor) Ingest(ctx context.Context, src Source) (models.IngestStats, error) {
	msgs, err := src.Fetch(ctx)
	if err != nil {
		p.Logger.Error("cannot read message source", zap.Error(err))
		return models.NewIngestStats(), errors.SourceUnavailableErr(err)
	}
	return p.ProcessMessages(ctx, msgs), nil
}

// ProcessRecords decodes records polled from the raw SMS topic and processes
// them as one batch.
func (p *SMSProcessor) ProcessRecords(ctx context.Context, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	msgs := make([]models.RawMessage, 0, len(records))
	undecodable := 0
	for _, record := range records {
		var msg models.RawMessage
		if err := json.Unmarshal(record.Value, &msg); err != nil {
			p.Logger.Error("failed to unmarshal raw sms", zap.ByteString("key", record.Key), zap.Error(err))
			undecodable++
			continue
		}
		msgs = append(msgs, msg)
	}

	if undecodable > 0 {
		p.Logger.Warn("skipped undecodable records", zap.Int("count", undecodable))
	}
	p.processBatch(ctx, msgs, undecodable)
	return nil
}

// ProcessMessages runs classify, extract, score and the dedup gate over every
// message in order. Per-message failures never abort the batch.
func (p *SMSProcessor) ProcessMessages(ctx context.Context, msgs []models.RawMessage) models.IngestStats {
	return p.processBatch(ctx, msgs, 0)
}

// processBatch counts undecodable records, which never became messages, as
// seen and failed.
func (p *SMSProcessor) processBatch(ctx context.Context, msgs []models.RawMessage, undecodable int) models.IngestStats {
	stats := models.NewIngestStats()
	stats.TotalSeen = undecodable
	stats.Failed = undecodable
	batch := dedup.NewBatch()

	for _, msg := range msgs {
		stats.TotalSeen++
		p.archive(ctx, msg)

		c, ok := p.extract(msg)
		if !ok {
			p.Logger.Debug("skipping message without amount", zap.String("address", msg.SourceAddress))
			stats.Failed++
			continue
		}

		switch p.store(ctx, c, batch) {
		case outcomeInserted:
			stats.AddInserted(c.category, c.confidence)
			switch c.entity {
			case "transaction":
				stats.InsertedTransactions++
			case "bill":
				stats.InsertedBills++
			case "payment":
				stats.InsertedPayments++
			}
		case outcomeDuplicate:
			stats.Duplicates++
		case outcomeFailed:
			stats.Failed++
		}
	}

	p.Logger.Info("ingestion batch done",
		zap.Int("seen", stats.TotalSeen),
		zap.Int("inserted", stats.Inserted),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("failed", stats.Failed),
		zap.Float64("avg_confidence", stats.AverageConfidence),
	)

	p.reconcile(ctx, stats)
	return stats
}

// extract classifies the message and builds the record it describes. Card
// statements and card payments that cannot be parsed as such fall back to
// an ordinary transaction.
func (p *SMSProcessor) extract(msg models.RawMessage) (candidate, bool) {
	lower := strings.ToLower(msg.Text)
	category := categorizer.Categorize(lower)
	confidence := scorer.Score(lower, category)
	receivedAt := msg.ReceivedAt()

	switch category {
	case models.CategoryCreditCardBill:
		if bill, ok := extractor.ExtractBill(msg.Text, receivedAt); ok {
			bill.Confidence = confidence
			return candidate{entity: "bill", key: bill.Key().String(), category: category, confidence: confidence, record: bill}, true
		}
	case models.CategoryCreditCardPayment:
		if payment, ok := extractor.ExtractPayment(msg.Text, receivedAt); ok {
			payment.Confidence = confidence
			return candidate{entity: "payment", key: payment.Key().String(), category: category, confidence: confidence, record: payment}, true
		}
	}

	fields, ok := extractor.Extract(msg.Text, receivedAt, category)
	if !ok {
		return candidate{}, false
	}
	tx := fields.Transaction(category, confidence, msg.Text)
	return candidate{entity: "transaction", key: tx.Key().String(), category: category, confidence: confidence, record: tx}, true
}

// store runs the check-then-insert sequence for one candidate: batch set,
// cross-process lock, store lookup, insert. A unique-key violation from the
// store is the final duplicate check.
func (p *SMSProcessor) store(ctx context.Context, c candidate, batch *dedup.Batch) outcome {
	if batch.Seen(c.key) {
		return outcomeDuplicate
	}

	if p.Locker != nil {
		locked, err := p.Locker.Lock(ctx, c.key)
		switch {
		case err != nil:
			p.Logger.Warn("key lock unavailable, relying on store constraint", zap.String("key", c.key), zap.Error(err))
		case !locked:
			p.Logger.Debug("key held by another ingester", zap.String("key", c.key))
			return outcomeDuplicate
		default:
			defer func() {
				if err := p.Locker.Unlock(ctx, c.key); err != nil {
					p.Logger.Warn("failed to release key lock", zap.String("key", c.key), zap.Error(err))
				}
			}()
		}
	}

	dup, err := p.dedup.IsDuplicate(ctx, c.record)
	if err != nil {
		p.Logger.Error("dedup lookup failed", zap.String("entity", c.entity), zap.Error(err))
		return outcomeFailed
	}
	if dup {
		batch.Accept(c.key)
		return outcomeDuplicate
	}

	err = p.insert(ctx, c)
	if errors.Is(errors.Conflict, err) {
		batch.Accept(c.key)
		return outcomeDuplicate
	}
	if err != nil {
		p.Logger.Error("failed to insert record", zap.String("entity", c.entity), zap.String("key", c.key), zap.Error(err))
		return outcomeFailed
	}

	batch.Accept(c.key)
	return outcomeInserted
}

func (p *SMSProcessor) insert(ctx context.Context, c candidate) error {
	switch r := c.record.(type) {
	case models.Transaction:
		r.ID = p.newID()
		return p.Repo.InsertTransaction(ctx, r)
	case models.CreditCardBill:
		r.ID = p.newID()
		return p.Repo.InsertBill(ctx, r)
	case models.CreditCardPayment:
		r.ID = p.newID()
		return p.Repo.InsertPayment(ctx, r)
	}
	return errors.E(errors.Internal, "unsupported record "+c.entity, nil)
}

func (p *SMSProcessor) archive(ctx context.Context, msg models.RawMessage) {
	if p.Archiver == nil {
		return
	}
	if err := p.Archiver.Archive(ctx, msg); err != nil {
		p.Logger.Warn("failed to archive raw sms", zap.Error(err))
	}
}

func (p *SMSProcessor) reconcile(ctx context.Context, stats models.IngestStats) {
	if p.Reconciler == nil || stats.InsertedBills+stats.InsertedPayments == 0 {
		return
	}
	res, err := p.Reconciler.Run(ctx)
	if err != nil {
		p.Logger.Error("matcher run after ingestion failed", zap.Error(err))
		return
	}
	p.Logger.Info("matcher run after ingestion", zap.Int("matches_created", res.MatchesCreated))
}
