package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/drawmate/withdrawal-engine/internal/domain"
	"github.com/drawmate/withdrawal-engine/pkg/money"
)

// BucketManager runs the three-tier liquidity structure over the investable
// balance: bucket1 holds cash for near-term spending, bucket2 intermediate
// assets, bucket3 growth assets. Spending drains 1 -> 2 -> 3; refills move
// the other way and never sell bucket3 into a down year.
type BucketManager struct {
	cfg   domain.BucketConfig
	state domain.BucketState
}

// NewBucketManager seeds the tiers from the starting investable balance:
// bucket1 and bucket2 get their year-multiple targets, bucket3 the rest.
func NewBucketManager(cfg domain.BucketConfig, investable, annualNeed decimal.Decimal) *BucketManager {
	m := &BucketManager{cfg: cfg}
	rest := money.ClampZero(investable)
	m.state.Bucket1 = money.Min(rest, m.target(cfg.Bucket1Years, annualNeed))
	rest = rest.Sub(m.state.Bucket1)
	m.state.Bucket2 = money.Min(rest, m.target(cfg.Bucket2Years, annualNeed))
	m.state.Bucket3 = rest.Sub(m.state.Bucket2)
	return m
}

// State returns the current tier balances.
func (m *BucketManager) State() domain.BucketState { return m.state }

func (m *BucketManager) target(years int, annualNeed decimal.Decimal) decimal.Decimal {
	return annualNeed.Mul(decimal.NewFromInt(int64(years)))
}

// Drain spends from the tiers in order and returns how much was actually
// taken, capped at the total held.
func (m *BucketManager) Drain(amount decimal.Decimal) decimal.Decimal {
	remaining := money.ClampZero(amount)
	drained := decimal.Zero
	for _, b := range []*decimal.Decimal{&m.state.Bucket1, &m.state.Bucket2, &m.state.Bucket3} {
		take := money.Min(remaining, *b)
		if take.GreaterThan(decimal.Zero) {
			*b = b.Sub(take)
			remaining = remaining.Sub(take)
			drained = drained.Add(take)
		}
	}
	return drained
}

// Grow applies the year's per-tier returns.
func (m *BucketManager) Grow(ret domain.YearReturn) {
	one := decimal.NewFromInt(1)
	m.state.Bucket1 = m.state.Bucket1.Mul(one.Add(ret.Cash))
	m.state.Bucket2 = m.state.Bucket2.Mul(one.Add(ret.Bond))
	m.state.Bucket3 = m.state.Bucket3.Mul(one.Add(ret.Growth))
}

// Refill tops bucket1 back up to its target, taking from bucket2 first and
// from bucket3 only when bucket3's trailing return is non-negative. It
// reports a shortfall when bucket1 ends the year under target.
func (m *BucketManager) Refill(annualNeed, bucket3Return decimal.Decimal) (shortfall bool) {
	target := m.target(m.cfg.Bucket1Years, annualNeed)
	deficit := money.ClampZero(target.Sub(m.state.Bucket1))

	take := money.Min(deficit, m.state.Bucket2)
	m.state.Bucket2 = m.state.Bucket2.Sub(take)
	m.state.Bucket1 = m.state.Bucket1.Add(take)
	deficit = deficit.Sub(take)

	if deficit.GreaterThan(decimal.Zero) && !bucket3Return.IsNegative() {
		take = money.Min(deficit, m.state.Bucket3)
		m.state.Bucket3 = m.state.Bucket3.Sub(take)
		m.state.Bucket1 = m.state.Bucket1.Add(take)
		deficit = deficit.Sub(take)
	}
	return deficit.GreaterThan(decimal.Zero)
}

// Rebalance restores bucket2 to its target from bucket3 (or back) on the
// configured cadence, and only in years where both trailing returns are
// non-negative so a depressed tier is never sold to fund the other.
func (m *BucketManager) Rebalance(year int, annualNeed, bucket2Return, bucket3Return decimal.Decimal) bool {
	if m.cfg.RebalanceInterval <= 0 || year%m.cfg.RebalanceInterval != 0 {
		return false
	}
	if bucket2Return.IsNegative() || bucket3Return.IsNegative() {
		return false
	}
	target := m.target(m.cfg.Bucket2Years, annualNeed)
	if m.state.Bucket2.LessThan(target) {
		take := money.Min(target.Sub(m.state.Bucket2), m.state.Bucket3)
		m.state.Bucket3 = m.state.Bucket3.Sub(take)
		m.state.Bucket2 = m.state.Bucket2.Add(take)
	} else {
		give := m.state.Bucket2.Sub(target)
		m.state.Bucket2 = target
		m.state.Bucket3 = m.state.Bucket3.Add(give)
	}
	return true
}
