package advisor

import (
	"context"
	"fmt"
	"time"

	"CardOptimizer/internal/catalog"
	"CardOptimizer/internal/metrics"
	"CardOptimizer/internal/model"
	"CardOptimizer/internal/optimizer"
	"CardOptimizer/internal/recorder"
	"CardOptimizer/internal/report"

	"go.uber.org/zap"
)

// Card count limits accepted from users.
const (
	MinCards = 1
	MaxCards = 8
)

// Request is one user's optimization input.
type Request struct {
	Cards int `validate:"min=1,max=8"`
	// Spend holds monthly amounts for named categories. Whatever Total leaves
	// over goes to Other.
	Spend   map[model.Category]float64 `validate:"dive,finite,gte=0"`
	Total   float64                    `validate:"finite,gte=0"`
	Capital float64                    `validate:"finite,gte=0"`
	Members model.MemberAttributes
	// Source tags the run history entry, e.g. "bot" or "cli".
	Source string
}

// Advisor runs validated requests against the current catalog.
type Advisor struct {
	catalog  *catalog.Manager
	recorder recorder.Recorder
	opts     optimizer.Options
	log      *zap.Logger
}

func New(cat *catalog.Manager, rec recorder.Recorder, opts optimizer.Options, log *zap.Logger) *Advisor {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Advisor{catalog: cat, recorder: rec, opts: opts, log: log}
}

// Advise validates req, runs the optimizer and summarizes the winner.
func (a *Advisor) Advise(ctx context.Context, req Request) (*report.Report, error) {
	if err := validateRequest(&req); err != nil {
		metrics.OptimizationsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, err
	}
	spend, err := model.NewSpendVector(req.Spend, req.Total)
	if err != nil {
		metrics.OptimizationsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, &ValidationError{Problems: []string{err.Error()}}
	}

	multiplier := optimizer.MultiplierFor(req.Capital)
	cat, err := a.catalog.Catalog(multiplier)
	if err != nil {
		metrics.OptimizationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	start := time.Now()
	res, err := optimizer.Optimize(ctx, cat, req.Cards, spend, req.Members, a.opts)
	elapsed := time.Since(start)
	if err != nil {
		metrics.OptimizationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("optimize: %w", err)
	}
	metrics.OptimizeDuration.Observe(elapsed.Seconds())
	metrics.SubsetsEvaluated.Add(float64(res.Evaluated))
	metrics.OptimizationsTotal.WithLabelValues(metrics.OutcomeOK).Inc()

	rep := report.Summarize(cat, res, spend, req.Cards)
	rep.Tier = optimizer.TierLabel(req.Capital)
	annual, _ := rep.AnnualCashBack.Float64()

	a.log.Info("optimization finished",
		zap.String("source", req.Source),
		zap.Int("cards", req.Cards),
		zap.Strings("selected", rep.Cards),
		zap.Float64("multiplier", multiplier),
		zap.Int("evaluated", res.Evaluated),
		zap.Duration("elapsed", elapsed))

	if err := a.recorder.RecordRun(&recorder.Run{
		Timestamp:      start,
		Source:         req.Source,
		CardCount:      req.Cards,
		Cards:          rep.Cards,
		Memberships:    rep.Memberships,
		Score:          res.Score,
		Annual:         annual,
		Multiplier:     multiplier,
		Evaluated:      res.Evaluated,
		Duration:       elapsed,
		CatalogVersion: cat.Version,
	}); err != nil {
		a.log.Error("record run", zap.Error(err))
	}
	return rep, nil
}
