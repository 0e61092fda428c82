// Package usage tracks daily LLM token usage against a spending limit.
package usage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrBudgetExceeded is returned once the estimated daily cost passes the limit.
var ErrBudgetExceeded = errors.New("daily LLM budget exceeded")

// DefaultTokens is charged when a provider does not report token usage.
const DefaultTokens = 1500

const dayLayout = "2006-01-02"

// Limits configures the daily budget.
type Limits struct {
	DailyLimitUSD   float64
	CostPer1KTokens float64
}

// DefaultLimits returns a $5 daily limit at $0.03 per thousand tokens.
func DefaultLimits() Limits {
	return Limits{DailyLimitUSD: 5.0, CostPer1KTokens: 0.03}
}

// Ledger persists token counts per day in a JSON file of the form
// {"2024-06-30": 4200}. It is safe for concurrent use within one process.
type Ledger struct {
	path   string
	limits Limits
	logger *zap.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewLedger creates a ledger backed by the file at path.
func NewLedger(path string, limits Limits, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{path: path, limits: limits, logger: logger, now: time.Now}
}

// Record adds tokens to today's total and returns today's estimated cost.
// The usage is saved even when the returned error wraps ErrBudgetExceeded.
func (l *Ledger) Record(tokens int) (float64, error) {
	if tokens <= 0 {
		tokens = DefaultTokens
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	counts, err := l.load()
	if err != nil {
		return 0, err
	}
	today := l.now().Format(dayLayout)
	counts[today] += tokens
	if err := l.save(counts); err != nil {
		return 0, err
	}

	cost := l.cost(counts[today])
	l.logger.Debug("recorded LLM usage",
		zap.String("day", today),
		zap.Int("tokens", tokens),
		zap.Int("day_tokens", counts[today]),
		zap.Float64("estimated_cost_usd", cost))

	if cost > l.limits.DailyLimitUSD {
		return cost, fmt.Errorf("%w: daily limit of $%.2f reached", ErrBudgetExceeded, l.limits.DailyLimitUSD)
	}
	return cost, nil
}

// Check returns an error wrapping ErrBudgetExceeded when today's usage is
// already over the limit.
func (l *Ledger) Check() error {
	_, cost, err := l.Today()
	if err != nil {
		return err
	}
	if cost > l.limits.DailyLimitUSD {
		return fmt.Errorf("%w: daily limit of $%.2f reached", ErrBudgetExceeded, l.limits.DailyLimitUSD)
	}
	return nil
}

// Today returns today's token count and estimated cost.
func (l *Ledger) Today() (int, float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	counts, err := l.load()
	if err != nil {
		return 0, 0, err
	}
	tokens := counts[l.now().Format(dayLayout)]
	return tokens, l.cost(tokens), nil
}

func (l *Ledger) cost(tokens int) float64 {
	return float64(tokens) / 1000 * l.limits.CostPer1KTokens
}

func (l *Ledger) load() (map[string]int, error) {
	counts := make(map[string]int)
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return counts, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read usage file: %w", err)
	}
	if len(data) == 0 {
		return counts, nil
	}
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, fmt.Errorf("failed to parse usage file: %w", err)
	}
	return counts, nil
}

func (l *Ledger) save(counts map[string]int) error {
	data, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("failed to encode usage: %w", err)
	}
	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create usage directory: %w", err)
		}
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write usage file: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("failed to replace usage file: %w", err)
	}
	return nil
}
