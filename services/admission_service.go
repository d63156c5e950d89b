package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/irnd04/zticket/monitoring"
	"github.com/irnd04/zticket/utils"
)

const admissionLockKey = "lock:admission"

// AdmissionService moves batches of live waiters into the active set.
// Exactly one instance runs a cycle at a time, guarded by a lease lock;
// if the holder dies mid-cycle the lock expires and the next cycle
// recovers via the activate-before-remove ordering.
type AdmissionService struct {
	queue    *QueueService
	active   *ActiveUserService
	seats    *SeatService
	locker   *utils.LeaseLock
	notifier *Notifier

	batchSize   int
	maxActive   int
	activeTTL   time.Duration
	lockMaxHold time.Duration
}

func NewAdmissionService(
	queue *QueueService,
	active *ActiveUserService,
	seats *SeatService,
	locker *utils.LeaseLock,
	notifier *Notifier,
	batchSize, maxActive int,
	activeTTL, lockMaxHold time.Duration,
) *AdmissionService {
	return &AdmissionService{
		queue:       queue,
		active:      active,
		seats:       seats,
		locker:      locker,
		notifier:    notifier,
		batchSize:   batchSize,
		maxActive:   maxActive,
		activeTTL:   activeTTL,
		lockMaxHold: lockMaxHold,
	}
}

// RunCycle executes one admission cycle. The step order is the crash
// safety argument: a crash before activation leaves candidates waiting
// (re-peeked next cycle); a crash after activation but before removal at
// worst re-activates them, which only refreshes TTLs. No candidate can
// end up neither waiting nor active.
func (s *AdmissionService) RunCycle(ctx context.Context) error {
	acquired, release, err := s.locker.Acquire(ctx, admissionLockKey, s.lockMaxHold)
	if err != nil {
		return err
	}
	if !acquired {
		return nil
	}
	defer release()

	// Ghost removal runs even when no slots exist.
	removed, err := s.queue.SweepExpired(ctx)
	if err != nil {
		return err
	}
	if len(removed) > 0 {
		slog.Info("removed stale waiters", "count", len(removed))
		monitoring.TrackQueueSweep(len(removed))
	}

	currentActive, err := s.active.CountActive(ctx)
	if err != nil {
		return err
	}
	remainingSeats, err := s.seats.AvailableCount(ctx)
	if err != nil {
		return err
	}

	// Subtracting currentActive from remainingSeats keeps us from
	// admitting more people than there are seats left for those
	// already shopping.
	admittable := s.batchSize
	if slots := s.maxActive - currentActive; slots < admittable {
		admittable = slots
	}
	if slots := remainingSeats - currentActive; slots < admittable {
		admittable = slots
	}
	if admittable <= 0 {
		return nil
	}

	tokens, err := s.queue.Peek(ctx, admittable)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	// Activation must fully complete before queue removal.
	if err := s.active.ActivateBatch(ctx, tokens, s.activeTTL); err != nil {
		return err
	}
	if err := s.queue.RemoveAll(ctx, tokens); err != nil {
		return err
	}

	for _, token := range tokens {
		s.notifier.NotifyAdmitted(token)
	}
	slog.Info("admitted batch", "count", len(tokens), "active_before", currentActive)
	monitoring.TrackAdmitted(len(tokens))
	return nil
}
