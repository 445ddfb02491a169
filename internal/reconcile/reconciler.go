package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// HoldingsSource returns the authoritative per-buyer total: portfolio tons
// plus claimed tons.
type HoldingsSource interface {
	TotalsByBuyer(ctx context.Context) (map[string]int64, error)
}

// LedgerSource returns per-buyer tons summed over SOLD ledger entries
type LedgerSource interface {
	SoldTonsByBuyer(ctx context.Context) (map[string]float64, error)
}

// Drift is one buyer whose holdings total disagrees with the ledger
type Drift struct {
	BuyerID      string  `json:"buyer_id"`
	HoldingsTons int64   `json:"holdings_tons"`
	LedgerTons   float64 `json:"ledger_tons"`
}

// Report is the outcome of one reconciliation run
type Report struct {
	RanAt         time.Time `json:"ran_at"`
	BuyersChecked int       `json:"buyers_checked"`
	Drifts        []Drift   `json:"drifts"`
}

// Reconciler compares holdings against the trading ledger. Purchases write
// the portfolio first and mirror inventory and ledger best-effort, so the
// two sides can disagree after partial failures. The reconciler only
// reports drift; it never mutates either side.
type Reconciler struct {
	holdings HoldingsSource
	ledger   LedgerSource
	logger   *zap.Logger
}

// NewReconciler creates a new reconciler
func NewReconciler(holdings HoldingsSource, ledger LedgerSource, logger *zap.Logger) *Reconciler {
	return &Reconciler{holdings: holdings, ledger: ledger, logger: logger}
}

// Run performs one reconciliation pass
func (r *Reconciler) Run(ctx context.Context) (*Report, error) {
	holdingsTotals, err := r.holdings.TotalsByBuyer(ctx)
	if err != nil {
		return nil, err
	}
	ledgerTotals, err := r.ledger.SoldTonsByBuyer(ctx)
	if err != nil {
		return nil, err
	}

	buyers := make(map[string]struct{}, len(holdingsTotals))
	for buyer := range holdingsTotals {
		buyers[buyer] = struct{}{}
	}
	for buyer := range ledgerTotals {
		buyers[buyer] = struct{}{}
	}

	report := &Report{RanAt: time.Now().UTC(), BuyersChecked: len(buyers)}
	for buyer := range buyers {
		held := holdingsTotals[buyer]
		sold := ledgerTotals[buyer]
		if float64(held) != sold {
			report.Drifts = append(report.Drifts, Drift{
				BuyerID:      buyer,
				HoldingsTons: held,
				LedgerTons:   sold,
			})
		}
	}

	if len(report.Drifts) > 0 {
		for _, drift := range report.Drifts {
			r.logger.Warn("Holdings/ledger drift detected",
				zap.String("buyer_id", drift.BuyerID),
				zap.Int64("holdings_tons", drift.HoldingsTons),
				zap.Float64("ledger_tons", drift.LedgerTons))
		}
	} else {
		r.logger.Info("Reconciliation clean",
			zap.Int("buyers_checked", report.BuyersChecked))
	}

	return report, nil
}
