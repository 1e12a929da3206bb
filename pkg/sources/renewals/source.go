// Package renewals emits policy.renewal_due events by periodically scanning
// the CRM for policies approaching their renewal date. It is the only
// trigger the CRM does not fire itself; renewal is a calendar fact, not a
// mutation.
package renewals

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/coverly/automation/pkg/crm"
	"github.com/coverly/automation/pkg/eventbus"
	"github.com/coverly/automation/pkg/events"
)

const (
	// DefaultSchedule scans every morning.
	DefaultSchedule = "0 7 * * *"
	// DefaultWindow is how far ahead a renewal counts as due.
	DefaultWindow = 30 * 24 * time.Hour
)

// Source scans for due renewals on a cron schedule and publishes one
// policy.renewal_due event per policy per renewal cycle.
type Source struct {
	store     crm.Store
	publisher eventbus.EventPublisher
	logger    *slog.Logger
	schedule  string
	window    time.Duration

	cron *cron.Cron

	mu sync.Mutex
	// seen maps policy ID to the renewal date already announced, so a
	// daily scan does not re-fire the same cycle.
	seen map[string]time.Time
}

func NewSource(store crm.Store, publisher eventbus.EventPublisher, logger *slog.Logger, schedule string, window time.Duration) *Source {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	if window <= 0 {
		window = DefaultWindow
	}

	return &Source{
		store:     store,
		publisher: publisher,
		logger:    logger.With("module", "renewals_source"),
		schedule:  schedule,
		window:    window,
		seen:      make(map[string]time.Time),
	}
}

// Start registers the scan on the cron schedule and runs until the context
// is cancelled.
func (s *Source) Start(ctx context.Context) error {
	s.cron = cron.New()

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.Scan(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid renewal scan schedule %q: %w", s.schedule, err)
	}

	s.logger.InfoContext(ctx, "renewal source started", "schedule", s.schedule, "window", s.window)
	s.cron.Start()

	<-ctx.Done()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	s.logger.InfoContext(ctx, "renewal source stopped")

	return ctx.Err()
}

// Scan publishes a renewal-due event for every policy entering the window
// that has not been announced for this cycle yet.
func (s *Source) Scan(ctx context.Context) {
	policies, err := s.store.PoliciesDueForRenewal(ctx, s.window)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to scan for due renewals", "error", err)

		return
	}

	for _, policy := range policies {
		if !s.markSeen(policy) {
			continue
		}

		event := &events.PolicyRenewalDue{
			BaseEvent:   events.NewBaseEvent(events.PolicyRenewalDueEvent),
			PolicyID:    policy.ID,
			RenewalDate: policy.RenewalDate,
		}

		err := s.publisher.Publish(ctx, policy.ID, event)
		if err != nil {
			// Unmark so the next scan retries the publish.
			s.unmark(policy.ID)
			s.logger.ErrorContext(ctx, "failed to publish renewal event",
				"policy_id", policy.ID, "error", err)

			continue
		}

		s.logger.InfoContext(ctx, "renewal due",
			"policy_id", policy.ID, "renewal_date", policy.RenewalDate)
	}
}

// markSeen reports whether this policy's current renewal cycle still needs
// an event.
func (s *Source) markSeen(policy *crm.Policy) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	announced, ok := s.seen[policy.ID]
	if ok && announced.Equal(policy.RenewalDate) {
		return false
	}

	s.seen[policy.ID] = policy.RenewalDate

	return true
}

func (s *Source) unmark(policyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.seen, policyID)
}
