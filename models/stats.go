package models

// IngestStats summarises one ingestion batch. A fresh value is produced per
// call; it is never shared between batches.
type IngestStats struct {
	TotalSeen            int              `json:"total_seen"`
	Inserted             int              `json:"inserted"`
	Duplicates           int              `json:"duplicates"`
	Failed               int              `json:"failed"`
	InsertedTransactions int              `json:"inserted_transactions"`
	InsertedBills        int              `json:"inserted_bills"`
	InsertedPayments     int              `json:"inserted_payments"`
	PerCategory          map[Category]int `json:"per_category"`
	AverageConfidence    float64          `json:"average_confidence"`
}

func NewIngestStats() IngestStats {
	return IngestStats{PerCategory: make(map[Category]int)}
}

// AddInserted counts an inserted record and folds its confidence into the
// running mean.
func (s *IngestStats) AddInserted(category Category, confidence float64) {
	s.Inserted++
	s.PerCategory[category]++
	s.AverageConfidence += (confidence - s.AverageConfidence) / float64(s.Inserted)
}

// MatchResult is returned by a matcher run.
type MatchResult struct {
	MatchesCreated int `json:"matches_created"`
	Examined       int `json:"examined"`
	Unmatched      int `json:"unmatched"`
}

// RederiveStats is returned by a re-derivation pass over stored transactions.
type RederiveStats struct {
	Scanned   int `json:"scanned"`
	Updated   int `json:"updated"`
	Conflicts int `json:"conflicts"`
	Failed    int `json:"failed"`
}
