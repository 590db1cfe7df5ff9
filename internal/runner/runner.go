package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"signal-trading-bot/internal/dedup"
	"signal-trading-bot/internal/engine"
	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/policy"
	"signal-trading-bot/internal/sizer"
	"signal-trading-bot/internal/store"
	"signal-trading-bot/internal/trace"
	"signal-trading-bot/internal/tradelog"
	"signal-trading-bot/internal/types"
)

// Runner drives the single-threaded poll cycle: fetch the newest post,
// filter duplicates, classify, decide, execute, notify, commit.
type Runner struct {
	cfg      *store.Config
	src      interfaces.Source
	cls      interfaces.Classifier
	table    *policy.Table
	eng      *engine.Engine
	ntf      interfaces.Notifier
	seen     *dedup.Store
	randWait func(min, max int) int

	// tick is the wait sub-loop resolution. Overridden in tests.
	tick time.Duration
}

func New(cfg *store.Config, src interfaces.Source, cls interfaces.Classifier,
	table *policy.Table, eng *engine.Engine, ntf interfaces.Notifier, seen *dedup.Store) *Runner {
	return &Runner{
		cfg:   cfg,
		src:   src,
		cls:   cls,
		table: table,
		eng:   eng,
		ntf:   ntf,
		seen:  seen,
		randWait: func(min, max int) int {
			return min + rand.Intn(max-min+1)
		},
		tick: time.Second,
	}
}

// Run loops until the context is cancelled. Every cycle error is
// contained here: logged, followed by an extended cooldown, and the
// loop continues. Run itself only returns on shutdown.
func (r *Runner) Run(ctx context.Context) {
	logger.Info(ctx, "Runner started",
		"mode", r.cfg.Mode,
		"wait_window", fmt.Sprintf("[%ds, %ds]", r.cfg.Poll.MinWaitSeconds, r.cfg.Poll.MaxWaitSeconds),
	)

	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return
		default:
		}

		waitSecs := r.randWait(r.cfg.Poll.MinWaitSeconds, r.cfg.Poll.MaxWaitSeconds)
		step, err := r.cycle(ctx)
		if err != nil {
			logger.ErrorWithErr(ctx, "Cycle failed, entering cooldown", err)
			waitSecs = r.cfg.Poll.ErrorCooldownSeconds
		}
		if step != nil {
			b, _ := json.Marshal(step)
			fmt.Println(string(b))
		}

		if !r.wait(ctx, time.Duration(waitSecs)*time.Second) {
			r.shutdown()
			return
		}
	}
}

// cycle processes at most one post end to end. A returned error marks
// the cycle transient: nothing was committed and the item will be seen
// again on a later poll. A nil StepResult means the cycle had nothing
// to do (no post, or an already-processed one).
func (r *Runner) cycle(ctx context.Context) (*types.StepResult, error) {
	ctx, span := trace.StartSpan(ctx, "runner.cycle")
	defer span.End()

	text, err := r.src.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch post: %w", err)
	}
	if text == "" {
		logger.Debug(ctx, "No post available")
		return nil, nil
	}

	fp := dedup.Fingerprint(text)
	if r.seen.Contains(fp) {
		logger.Debug(ctx, "Post already processed", "fingerprint", fp[:12])
		return nil, nil
	}
	logger.Info(ctx, "New post detected", "fingerprint", fp[:12], "text_len", len(text))
	step := &types.StepResult{Fingerprint: fp}

	sig, err := r.cls.Classify(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	if sig == nil {
		// Classification completed and produced nothing tradeable.
		// The post is fully processed.
		step.Reason = "no signal"
		return step, r.commit(ctx, fp)
	}
	step.Signal = sig

	logger.SignalEvent(ctx, sig.Subject, string(sig.Direction), sig.Rationale)

	decision, explanation := r.table.Decide(*sig)
	step.Decision = decision
	r.journalSignal(ctx, fp, sig, decision, explanation)

	if !decision.Actionable() {
		logger.Info(ctx, "No action for signal", "reason", explanation)
		step.Reason = explanation
		return step, r.commit(ctx, fp)
	}

	result, qty, err := r.execute(ctx, decision)
	if errors.Is(err, sizer.ErrZeroQuantity) {
		// The notional buys less than one whole share. That is a decided
		// outcome, not a fault: the post is fully processed.
		logger.Info(ctx, "Notional buys less than one share, no action",
			"instrument", decision.Instrument, "detail", err.Error())
		step.Reason = "sized quantity below one share"
		return step, r.commit(ctx, fp)
	}
	if err != nil {
		// Quote failure happened before any submission.
		return nil, fmt.Errorf("execute %s %s: %w", decision.Side, decision.Instrument, err)
	}
	step.Order = &result

	r.notifyOutcome(ctx, sig, decision, result, qty)

	if result.State == types.OrderFailed {
		// The order never happened. Leave the fingerprint uncommitted
		// so a later cycle may act on this post with a fresh request.
		logger.Warn(ctx, "Order failed, post left uncommitted", "fingerprint", fp[:12])
		step.Reason = "submission failed, not committed"
		return step, nil
	}
	return step, r.commit(ctx, fp)
}

func (r *Runner) execute(ctx context.Context, d types.Decision) (types.OrderResult, int, error) {
	switch d.Side {
	case types.SideSell:
		return r.eng.Sell(ctx, d.Instrument, 0)
	default:
		return r.eng.Buy(ctx, d.Instrument)
	}
}

func (r *Runner) commit(ctx context.Context, fp string) error {
	if err := r.seen.Commit(fp); err != nil {
		return fmt.Errorf("commit fingerprint: %w", err)
	}
	logger.Debug(ctx, "Fingerprint committed", "fingerprint", fp[:12])
	return nil
}

// notifyOutcome reports every terminal order outcome through the wired
// notifier; with alerts disabled the bootstrap wires a stdout notifier,
// so no flag check happens here. Delivery is best-effort and never
// influences the commit decision.
func (r *Runner) notifyOutcome(ctx context.Context, sig *types.Signal, d types.Decision, res types.OrderResult, qty int) {
	msg := fmt.Sprintf("%s %d %s: %s", d.Side, qty, d.Instrument, res.State)
	if res.OrderID != "" {
		msg += fmt.Sprintf(" (order %s)", res.OrderID)
	}
	title := sig.Rationale
	if title == "" {
		title = fmt.Sprintf("%s %s", sig.Subject, sig.Direction)
	}
	r.ntf.Send(ctx, msg, title, r.cfg.Notify.Priority)
}

func (r *Runner) journalSignal(ctx context.Context, fp string, sig *types.Signal, d types.Decision, reason string) {
	if err := tradelog.AppendSignal(tradelog.SignalEntry{
		Fingerprint: fp,
		Subject:     sig.Subject,
		Direction:   string(sig.Direction),
		Rationale:   sig.Rationale,
		Instrument:  d.Instrument,
		Side:        string(d.Side),
		Reason:      reason,
		Actionable:  d.Actionable(),
	}); err != nil {
		logger.Warn(ctx, "Failed to journal signal", "error", err)
	}
}

// wait sleeps for roughly d, waking once per tick to check for
// cancellation and for the source readiness indicator, and ends the
// wait the moment new content is signalled. Returns false when the
// context was cancelled during the wait.
func (r *Runner) wait(ctx context.Context, d time.Duration) bool {
	deadline := time.Now().Add(d)
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if time.Now().After(deadline) {
				return true
			}
			if r.src.Ready() {
				logger.Info(ctx, "Source signals new content, ending wait early")
				return true
			}
		}
	}
}

// shutdown releases the source session from a detached goroutine. The
// release is best-effort: the process does not wait for it.
func (r *Runner) shutdown() {
	logger.Info(context.Background(), "Shutting down, releasing source session")
	go r.src.Close()
}
