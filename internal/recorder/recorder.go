package recorder

import (
	"time"

	"github.com/google/uuid"

	"github.com/yorkjong/vistock-sub000/internal/model"
)

// RankingRun is one persisted price-ranking run.
type RankingRun struct {
	ID           string
	CreatedAt    time.Time
	Formula      string // "ibd" or "mansfield"
	Benchmark    string
	Interval     model.Interval
	RatingMethod model.RatingMethod
	Table        *model.RankingTable
}

// NewRankingRun assigns a fresh run ID and timestamp.
func NewRankingRun(formula, benchmark string, interval model.Interval, method model.RatingMethod, table *model.RankingTable) *RankingRun {
	return &RankingRun{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now(),
		Formula:      formula,
		Benchmark:    benchmark,
		Interval:     interval,
		RatingMethod: method,
		Table:        table,
	}
}

// FinancialRun is one persisted fundamentals-ranking run.
type FinancialRun struct {
	ID           string
	CreatedAt    time.Time
	RatingMethod model.RatingMethod
	Table        *model.FinancialTable
}

// NewFinancialRun assigns a fresh run ID and timestamp.
func NewFinancialRun(method model.RatingMethod, table *model.FinancialTable) *FinancialRun {
	return &FinancialRun{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now(),
		RatingMethod: method,
		Table:        table,
	}
}

// Recorder persists ranking runs for later analysis.
type Recorder interface {
	RecordRanking(run *RankingRun) error
	RecordFinancial(run *FinancialRun) error
	Close() error
}
