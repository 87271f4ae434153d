// Package sweep periodically promotes stale pending announcements that clear
// automated moderation.
package sweep

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"placementhub/internal/domain/update"
	"placementhub/internal/moderation"
)

type ModerationClient interface {
	Configured() bool
	ModerateContent(ctx context.Context, text string) (moderation.Verdict, error)
}

type Logger interface {
	Info(msg string)
	Error(msg string)
}

type Sweeper struct {
	updates    update.Repository
	ai         ModerationClient
	logger     Logger
	interval   time.Duration
	pendingAge time.Duration
	now        func() time.Time

	running  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
}

func New(updates update.Repository, ai ModerationClient, logger Logger, interval, pendingAge time.Duration) *Sweeper {
	return &Sweeper{
		updates:    updates,
		ai:         ai,
		logger:     logger,
		interval:   interval,
		pendingAge: pendingAge,
		now:        func() time.Time { return time.Now().UTC() },
		stop:       make(chan struct{}),
	}
}

// Start launches the ticker goroutine. Without a configured moderation client
// the sweep is never scheduled at all; there is nothing useful a credential-less
// run could do besides fail every hour.
func (s *Sweeper) Start(ctx context.Context) {
	if s.ai == nil || !s.ai.Configured() {
		s.logInfo("auto-approval sweep disabled: no moderation credential configured")
		return
	}
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.RunOnce(ctx); err != nil {
					s.logError("auto-approval sweep failed: " + err.Error())
				}
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// RunOnce processes the current candidate batch. Runs never overlap: a tick
// that arrives while the previous run is still going is skipped. Candidate
// failures are isolated; one bad record never aborts the rest of the batch.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		s.logInfo("auto-approval sweep still running, skipping tick")
		return nil
	}
	defer s.running.Store(false)

	cutoff := s.now().Add(-s.pendingAge)
	candidates, err := s.updates.ListAutoApprovalCandidates(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list auto-approval candidates: %w", err)
	}
	for _, candidate := range candidates {
		if err := s.process(ctx, candidate); err != nil {
			s.logError("sweep: update " + candidate.ID.String() + ": " + err.Error())
		}
	}
	return nil
}

// process moderates (at most once) and conditionally activates one candidate.
// Each candidate is independent and idempotent per id.
func (s *Sweeper) process(ctx context.Context, candidate update.Update) error {
	verdict := candidate.AIModeration.Verdict()

	if !candidate.AIModeration.Checked {
		fresh, err := s.ai.ModerateContent(ctx, candidate.Title+"\n\n"+candidate.Content)
		if err != nil {
			// Fail closed and leave Checked unset so the next run retries.
			return fmt.Errorf("moderate content: %w", err)
		}
		checkedAt := s.now()
		snapshot := update.AIModeration{
			Checked:    true,
			Approved:   fresh.IsApproved,
			Confidence: fresh.Confidence,
			Issues:     fresh.Issues,
			Category:   fresh.Category,
			CheckedAt:  &checkedAt,
		}
		// Persist before deciding so a crash cannot lose the verdict.
		if err := s.updates.SaveModeration(ctx, candidate.ID, snapshot); err != nil {
			return fmt.Errorf("save moderation snapshot: %w", err)
		}
		verdict = fresh
	}

	if !moderation.IsEligibleForAutoApproval(verdict) {
		s.logInfo("sweep: update " + candidate.ID.String() + " not eligible: " + ineligibilityReason(verdict))
		return nil
	}

	activated, err := s.updates.ActivateAutoApproved(ctx, candidate.ID)
	if err != nil {
		return fmt.Errorf("activate update: %w", err)
	}
	if !activated {
		s.logInfo("sweep: update " + candidate.ID.String() + " changed under us, leaving it alone")
		return nil
	}
	s.logInfo("sweep: update " + candidate.ID.String() + " auto-approved")
	return nil
}

func ineligibilityReason(v moderation.Verdict) string {
	switch {
	case !v.Success:
		return "moderation did not complete"
	case !v.IsApproved:
		return "moderation rejected the content"
	case v.Category != moderation.CategorySafe:
		return "category " + string(v.Category)
	case len(v.Issues) > 0:
		return fmt.Sprintf("%d outstanding issues", len(v.Issues))
	default:
		return fmt.Sprintf("confidence %d below %d", v.Confidence, moderation.AutoApprovalMinConfidence)
	}
}

func (s *Sweeper) logInfo(msg string) {
	if s.logger != nil {
		s.logger.Info(msg)
	}
}

func (s *Sweeper) logError(msg string) {
	if s.logger != nil {
		s.logger.Error(msg)
	}
}
