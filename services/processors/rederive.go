package processors

import (
	// Go Internal Packages
	"context"
	"strings"

	// Local Packages
	errors "sms-ledger/errors"
	models "sms-ledger/models"
	extractor "sms-ledger/services/extractor"

	// External Packages
	"go.uber.org/zap"
)

// Rederive re-runs direction and counterparty extraction over the source
// text of every stored transaction and writes back the ones that changed.
// Nothing else on a stored transaction is ever rewritten. A correction whose
// natural key already belongs to another record is skipped.
func (p *SMSProcessor) Rederive(ctx context.Context) (models.RederiveStats, error) {
	var stats models.RederiveStats

	txs, err := p.Repo.ListTransactions(ctx)
	if err != nil {
		return stats, errors.StoreFailedErr("list transactions", err)
	}

	for _, tx := range txs {
		stats.Scanned++

		direction := extractor.ExtractDirection(strings.ToLower(tx.SourceText), tx.Category)
		counterparty := extractor.ExtractCounterparty(tx.SourceText, direction)
		if direction == tx.Direction && counterparty == tx.Counterparty {
			continue
		}

		err := p.Repo.UpdateTransactionParties(ctx, tx.ID, direction, counterparty)
		switch {
		case errors.Is(errors.Conflict, err):
			stats.Conflicts++
			p.Logger.Debug("corrected key already taken", zap.String("id", tx.ID))
		case err != nil:
			stats.Failed++
			p.Logger.Error("failed to update transaction", zap.String("id", tx.ID), zap.Error(err))
		default:
			stats.Updated++
		}
	}

	p.Logger.Info("rederive done",
		zap.Int("scanned", stats.Scanned),
		zap.Int("updated", stats.Updated),
		zap.Int("conflicts", stats.Conflicts),
	)
	return stats, nil
}
