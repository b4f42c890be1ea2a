// Package scheduler validates the configured trade list and drives each
// trade's execution timing.
package scheduler

import (
	"context"
	"sync/atomic"

	crondesc "github.com/lnquy/cron"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/vutang50/binance-dca-bot/internal/domain"
	"github.com/vutang50/binance-dca-bot/internal/services/notifier"
)

type executor interface {
	Execute(ctx context.Context, trade domain.TradeSpec) error
}

type broadcaster interface {
	Broadcast(ctx context.Context, subject, body string)
}

// scheduledTrade pairs a spec with its in-flight flag. Overlapping firings
// of the same trade are skipped, not queued, so a short cron interval can
// never build an unbounded backlog.
type scheduledTrade struct {
	spec     domain.TradeSpec
	inFlight atomic.Bool
}

// Scheduler owns the configured trades and their timers. Trades are
// independent: one trade failing to fire never affects the others.
type Scheduler struct {
	cron   *cron.Cron
	exec   executor
	notify broadcaster
	l      *zap.Logger
}

// New creates the scheduler. A panic inside one firing is recovered and
// logged; the other trades keep their timers.
func New(exec executor, notify broadcaster, l *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cron.PrintfLogger(zap.NewStdLog(l))))),
		exec:   exec,
		notify: notify,
		l:      l,
	}
}

// Validate applies the startup taxonomy: missing credentials, an empty
// trade list, a trade with both size fields, or an invalid weight spec
// abort startup; a trade that is merely malformed is logged and dropped,
// keeping the rest of the schedule available. The returned slice holds the
// trades that survived.
func Validate(l *zap.Logger, apiKey, apiSecret string, trades []domain.TradeSpec) ([]domain.TradeSpec, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, domain.ErrMissingCredentials
	}
	if len(trades) == 0 {
		return nil, domain.ErrEmptyTradeList
	}

	valid := make([]domain.TradeSpec, 0, len(trades))
	for _, trade := range trades {
		if err := trade.Validate(); err != nil {
			if errors.Is(err, domain.ErrConflictingSizeSpec) || errors.Is(err, domain.ErrInvalidWeightSpec) {
				return nil, err
			}
			l.Warn("skipping invalid trade", zap.String("symbol", trade.Symbol()), zap.Error(err))
			continue
		}
		valid = append(valid, trade)
	}
	return valid, nil
}

// Start executes every unscheduled trade once, synchronously, then
// registers a recurring timer for each trade with a cron expression and
// sends the startup summary. Startup is not "ready" until the immediate
// trades have completed or failed.
func (s *Scheduler) Start(ctx context.Context, trades []domain.TradeSpec) {
	// Firings keep ctx's values but not its cancellation: shutdown must
	// never abort an order submission already in flight. Stop waits for
	// running firings instead.
	fireCtx := context.WithoutCancel(ctx)

	registered := make([]domain.TradeSpec, 0, len(trades))
	for i := range trades {
		st := &scheduledTrade{spec: trades[i]}

		if st.spec.Schedule == "" {
			s.l.Info("executing one-off trade", zap.String("symbol", st.spec.Symbol()))
			s.fire(fireCtx, st)
			registered = append(registered, st.spec)
			continue
		}

		if _, err := s.cron.AddFunc(st.spec.Schedule, func() { s.fire(fireCtx, st) }); err != nil {
			s.l.Warn("skipping trade with invalid schedule",
				zap.String("symbol", st.spec.Symbol()),
				zap.String("schedule", st.spec.Schedule),
				zap.Error(err))
			continue
		}
		s.l.Info("trade scheduled",
			zap.String("symbol", st.spec.Symbol()),
			zap.String("schedule", st.spec.Schedule))
		registered = append(registered, st.spec)
	}

	s.cron.Start()
	s.notify.Broadcast(ctx, notifier.SubjectStartup,
		notifier.FormatStartupSummary(registered, DescribeSchedule))
}

// Stop halts the timers and waits for firings already running to finish,
// so the process never exits mid-order-submission.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.l.Info("scheduler stopped")
}

func (s *Scheduler) fire(ctx context.Context, st *scheduledTrade) {
	if !st.inFlight.CompareAndSwap(false, true) {
		s.l.Warn("previous firing still in flight, skipping",
			zap.String("symbol", st.spec.Symbol()))
		return
	}
	defer st.inFlight.Store(false)

	if err := s.exec.Execute(ctx, st.spec); err != nil {
		s.l.Error("trade firing failed", zap.String("symbol", st.spec.Symbol()), zap.Error(err))
	}
}

// DescribeSchedule renders a cron expression in natural language for the
// startup summary, falling back to the raw expression.
func DescribeSchedule(expr string) string {
	descriptor, err := crondesc.NewDescriptor()
	if err != nil {
		return expr
	}
	text, err := descriptor.ToDescription(expr, crondesc.Locale_en)
	if err != nil {
		return expr
	}
	return text
}
