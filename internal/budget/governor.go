package budget

import (
	"log"
	"sync"
	"time"

	"billscan/internal/domain"
)

// PricingTable holds per-million-token USD rates for one model. The
// extraction and scoring stages use different tables (the scoring model is
// the cheaper of the two), so the governor takes the table per call rather
// than owning one.
type PricingTable struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// Cost computes the USD cost of a single call.
func (p PricingTable) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1e6*p.InputPerMillion +
		float64(outputTokens)/1e6*p.OutputPerMillion
}

// Admission is the outcome of an admission check.
type Admission struct {
	Allowed      bool    `json:"allowed"`
	CurrentUsage float64 `json:"current_usage"`
	Limit        float64 `json:"limit"`
}

// Governor is the process-wide admission gate with a rolling daily budget.
// Both AI-calling stages share one instance. The ledger is in-memory only:
// the spend counter restarts at zero whenever the process does, which is an
// accepted weakness of the design, not a bug.
//
// CheckAdmission and RecordUsage are individually serialized, but they are
// two separate operations: concurrent runs can all pass the check before any
// of them records, so realized daily spend may transiently exceed the limit
// by the cost of the requests in flight. The limit is a soft cap.
type Governor struct {
	mu         sync.Mutex
	day        string // UTC calendar day of the ledger, "2006-01-02"
	totalUSD   float64
	dailyLimit float64
	now        func() time.Time
}

// NewGovernor creates a Governor with the given daily USD limit.
func NewGovernor(dailyLimitUSD float64) *Governor {
	return &Governor{
		dailyLimit: dailyLimitUSD,
		now:        time.Now,
	}
}

// WithNow overrides the governor's clock. For tests.
func (g *Governor) WithNow(now func() time.Time) *Governor {
	g.now = now
	return g
}

// resetIfStale zeroes the ledger when the stored day differs from the current
// UTC calendar day. Callers must hold g.mu.
func (g *Governor) resetIfStale() {
	today := g.now().UTC().Format("2006-01-02")
	if g.day != today {
		if g.day != "" && g.totalUSD > 0 {
			log.Printf("budget.Governor: new day %s, resetting ledger (previous day %s spent $%.4f)", today, g.day, g.totalUSD)
		}
		g.day = today
		g.totalUSD = 0
	}
}

// CheckAdmission reports whether another AI call may start. Denial begins
// exactly at the limit, not only once it would be exceeded.
func (g *Governor) CheckAdmission() Admission {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.resetIfStale()

	if g.totalUSD >= g.dailyLimit {
		return Admission{Allowed: false, CurrentUsage: g.totalUSD, Limit: g.dailyLimit}
	}
	return Admission{Allowed: true, CurrentUsage: g.totalUSD, Limit: g.dailyLimit}
}

// RecordUsage adds the cost of a completed call to the ledger and returns the
// stage's usage record. Within a day the ledger total only grows.
func (g *Governor) RecordUsage(inputTokens, outputTokens int, pricing PricingTable) domain.UsageRecord {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.resetIfStale()

	cost := pricing.Cost(inputTokens, outputTokens)
	g.totalUSD += cost

	remaining := g.dailyLimit - g.totalUSD
	if remaining < 0 {
		remaining = 0
	}

	return domain.UsageRecord{
		InputTokens:     inputTokens,
		OutputTokens:    outputTokens,
		Cost:            cost,
		DailyTotal:      g.totalUSD,
		DailyLimit:      g.dailyLimit,
		RemainingBudget: remaining,
	}
}
