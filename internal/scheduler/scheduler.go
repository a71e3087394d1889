package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CardOptimizer/internal/advisor"
	"CardOptimizer/internal/catalog"
	"CardOptimizer/internal/notifier"
	"CardOptimizer/internal/optimizer"
	"CardOptimizer/internal/recorder"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Notifier delivers messages to the operator chat.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

const digestWindow = 7 * 24 * time.Hour

// Scheduler runs the periodic catalog refresh and digest, and answers chat commands.
type Scheduler struct {
	Cron            *cron.Cron
	Catalog         *catalog.Manager
	Cache           *catalog.Cache
	Advisor         *advisor.Advisor
	Notifier        Notifier
	Recorder        recorder.Recorder
	ExhaustiveLimit int
	Ctx             context.Context

	log *zap.Logger
	now func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, cat *catalog.Manager, cache *catalog.Cache, adv *advisor.Advisor, n Notifier, rec recorder.Recorder, exhaustiveLimit int, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		Cron:            cron.New(cron.WithSeconds()),
		Catalog:         cat,
		Cache:           cache,
		Advisor:         adv,
		Notifier:        n,
		Recorder:        rec,
		ExhaustiveLimit: exhaustiveLimit,
		Ctx:             ctx,
		log:             log,
		now:             time.Now,
	}
}

// RegisterAll registers the catalog refresh and weekly digest tasks.
func (s *Scheduler) RegisterAll(refreshCron, digestCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, func() { s.RefreshNow() }); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RefreshNow reloads the catalog and records the attempt. A failed refresh
// keeps serving the previous catalog and alerts the chat.
func (s *Scheduler) RefreshNow() error {
	before := s.Catalog.Version()
	version, err := s.Catalog.Refresh(s.Ctx)

	evt := &recorder.RefreshEvent{
		Timestamp: s.now(),
		Source:    s.Catalog.SourceName(),
		Version:   version,
		OK:        err == nil,
	}
	if err != nil {
		evt.Err = err.Error()
		reason := "Catalog refresh failed"
		if catalog.IsDataError(err) {
			reason = "Catalog data rejected"
		}
		s.trySend(fmt.Sprintf("❌ %s: %v\nStill serving v%d.", reason, err, version))
	} else {
		templates, _ := s.Catalog.Templates()
		evt.Cards = len(templates)
		if version != before && s.Cache != nil {
			s.Cache.Clear()
		}
	}
	if rerr := s.Recorder.RecordRefresh(evt); rerr != nil {
		s.log.Error("record refresh", zap.Error(rerr))
	}
	return err
}

func (s *Scheduler) digestTask() {
	s.log.Info("running digest task")
	since := s.now().Add(-digestWindow)
	runs, err := s.Recorder.RunsSince(since)
	if err != nil {
		s.log.Error("load runs for digest", zap.Error(err))
		return
	}
	s.trySend(notifier.FormatDigest(recorder.Summarize(runs, 5), since))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	name, args := splitCommand(command)
	switch name {
	case "/optimize", "/opt":
		req, err := advisor.ParseRequest(strings.Fields(args))
		if err != nil {
			return "⚠️ " + err.Error() + "\n\n" + usage
		}
		req.Source = "bot"
		rep, err := s.Advisor.Advise(ctx, req)
		if err != nil {
			if advisor.IsValidationError(err) {
				return "⚠️ " + err.Error()
			}
			s.log.Error("optimize command", zap.Error(err))
			return "❌ Optimization failed, try again later."
		}
		return notifier.FormatReport(rep)
	case "/catalog":
		return s.catalogInfo()
	case "/tiers":
		return notifier.FormatTiers()
	case "/history":
		runs, err := s.Recorder.RecentRuns(5)
		if err != nil {
			s.log.Error("load history", zap.Error(err))
			return "❌ History unavailable."
		}
		return notifier.FormatHistory(runs)
	case "/digest":
		s.digestTask()
		return ""
	case "/refresh":
		if err := s.RefreshNow(); err != nil {
			return ""
		}
		return fmt.Sprintf("✅ Catalog refreshed, now v%d.", s.Catalog.Version())
	default:
		return usage
	}
}

func (s *Scheduler) catalogInfo() string {
	templates, version := s.Catalog.Templates()
	if version == 0 {
		return "Catalog not loaded yet."
	}
	info := notifier.CatalogInfo{
		Templates: templates,
		Version:   version,
		Source:    s.Catalog.SourceName(),
		LoadedAt:  s.Catalog.LoadedAt(),
	}
	if cat, err := s.Catalog.Catalog(optimizer.DefaultMultiplier); err == nil {
		info.SearchSpace = optimizer.SearchSpace(cat, min(s.ExhaustiveLimit, len(cat.Owners)))
	}
	return notifier.FormatCatalog(info)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error("send notification", zap.Error(err))
	}
}
