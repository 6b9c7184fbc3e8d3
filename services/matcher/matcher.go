package matcher

import (
	// Go Internal Packages
	"context"
	"time"

	// Local Packages
	errors "sms-ledger/errors"
	models "sms-ledger/models"

	// External Packages
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Scores are kept in tenths so the threshold comparison is exact.
const (
	pointsExactTotal   = 5
	pointsMinimumDue   = 3
	pointsBetweenDues  = 2
	pointsWithin3Days  = 3
	pointsWithin7Days  = 2
	pointsWithin15Days = 1

	// A candidate must score strictly above this to be matched.
	acceptThreshold = 5

	day = 24 * time.Hour
)

type BillRepository interface {
	UnmatchedPayments(ctx context.Context) ([]models.CreditCardPayment, error)
	OpenBillsForCard(ctx context.Context, cardLast4 string) ([]models.CreditCardBill, error)
	// ApplyPayment links the payment to the bill and credits the bill in one
	// atomic step. It reports false when the payment was already linked.
	ApplyPayment(ctx context.Context, paymentID, billID string) (models.CreditCardBill, bool, error)
}

// Matcher pairs unmatched credit card payments with open bills.
type Matcher struct {
	Logger *zap.Logger
	Repo   BillRepository
}

func NewMatcher(logger *zap.Logger, repo BillRepository) *Matcher {
	return &Matcher{Logger: logger, Repo: repo}
}

// Run examines every unmatched payment, oldest first, and links it to the
// best scoring open bill of the same card. Payments without a good enough
// candidate stay unmatched; that is not an error.
func (m *Matcher) Run(ctx context.Context) (models.MatchResult, error) {
	var res models.MatchResult

	payments, err := m.Repo.UnmatchedPayments(ctx)
	if err != nil {
		return res, errors.StoreFailedErr("list unmatched payments", err)
	}

	for _, p := range payments {
		res.Examined++

		bills, err := m.Repo.OpenBillsForCard(ctx, p.CardLast4)
		if err != nil {
			return res, errors.StoreFailedErr("list open bills", err)
		}

		best, ok := bestCandidate(p, bills)
		if !ok {
			res.Unmatched++
			m.Logger.Debug("no bill for payment", zap.String("payment_id", p.ID), zap.String("card", p.CardLast4))
			continue
		}

		matched, err := m.apply(ctx, p, best)
		if err != nil {
			return res, err
		}
		if matched {
			res.MatchesCreated++
		}
	}

	m.Logger.Info("matcher run done",
		zap.Int("examined", res.Examined),
		zap.Int("matches_created", res.MatchesCreated),
		zap.Int("unmatched", res.Unmatched),
	)
	return res, nil
}

func (m *Matcher) apply(ctx context.Context, p models.CreditCardPayment, bill models.CreditCardBill) (bool, error) {
	settled, applied, err := m.Repo.ApplyPayment(ctx, p.ID, bill.ID)
	if err != nil {
		return false, errors.StoreFailedErr("apply payment", err)
	}
	if !applied {
		return false, nil
	}

	m.Logger.Info("payment matched",
		zap.String("payment_id", p.ID),
		zap.String("bill_id", settled.ID),
		zap.String("bill_period", settled.BillPeriod),
		zap.String("remaining", settled.RemainingAmount.String()),
		zap.String("status", string(settled.Status)),
	)
	return true, nil
}

// bestCandidate returns the bill with the strictly highest score. Ties keep
// the earlier bill in the given order.
func bestCandidate(p models.CreditCardPayment, bills []models.CreditCardBill) (models.CreditCardBill, bool) {
	bestPoints := -1
	var best models.CreditCardBill
	for _, b := range bills {
		if pts := points(p, b); pts > bestPoints {
			bestPoints = pts
			best = b
		}
	}
	if bestPoints <= acceptThreshold {
		return models.CreditCardBill{}, false
	}
	return best, true
}

// Score returns the match score of payment p against bill b, in [0, 0.8].
func Score(p models.CreditCardPayment, b models.CreditCardBill) float64 {
	return float64(points(p, b)) / 10
}

func points(p models.CreditCardPayment, b models.CreditCardBill) int {
	return amountPoints(p.PaymentAmount, b) + datePoints(p.PaymentDate, b.DueDate)
}

func amountPoints(amount decimal.Decimal, b models.CreditCardBill) int {
	switch {
	case amount.Equal(b.TotalAmount):
		return pointsExactTotal
	case amount.Equal(b.MinimumDue):
		return pointsMinimumDue
	case amount.GreaterThan(b.MinimumDue) && amount.LessThan(b.TotalAmount):
		return pointsBetweenDues
	}
	return 0
}

func datePoints(paid, due time.Time) int {
	gap := paid.Sub(due)
	if gap < 0 {
		gap = -gap
	}
	switch {
	case gap <= 3*day:
		return pointsWithin3Days
	case gap <= 7*day:
		return pointsWithin7Days
	case gap <= 15*day:
		return pointsWithin15Days
	}
	return 0
}
