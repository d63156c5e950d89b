package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/irnd04/zticket/models"
	"github.com/irnd04/zticket/monitoring"
	"github.com/irnd04/zticket/utils"
)

const recoveryLockKey = "lock:ticket_sync"

// SettlementService reconciles the coordination store with durably
// committed purchases. It is the only component (together with its
// recovery sweep) allowed to derive seat state from ticket state.
type SettlementService struct {
	store    TicketStore
	seats    *SeatService
	active   *ActiveUserService
	locker   *utils.LeaseLock
	notifier *Notifier

	lockMaxHold time.Duration
}

func NewSettlementService(
	store TicketStore,
	seats *SeatService,
	active *ActiveUserService,
	locker *utils.LeaseLock,
	notifier *Notifier,
	lockMaxHold time.Duration,
) *SettlementService {
	return &SettlementService{
		store:       store,
		seats:       seats,
		active:      active,
		locker:      locker,
		notifier:    notifier,
		lockMaxHold: lockMaxHold,
	}
}

// Settle finalizes one ticket. Delivery is at-least-once, so every step
// is idempotent: ConfirmPaid re-asserts the same value, the SYNCED
// transition is a no-op when already terminal, outbox completion and
// marker removal are naturally repeatable. The ticket row is the source
// of truth, so overwriting the seat key is safe whether it currently
// reads HELD, PAID or nothing at all.
func (s *SettlementService) Settle(ctx context.Context, ticketID int64) error {
	ticket, err := s.store.FindByID(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("load ticket %d: %w", ticketID, err)
	}

	if err := s.seats.ConfirmPaid(ctx, ticket.SeatNumber, ticket.QueueToken); err != nil {
		return fmt.Errorf("confirm seat %d: %w", ticket.SeatNumber, err)
	}

	alreadySynced := ticket.Status == models.TicketSynced
	if err := s.store.MarkSynced(ctx, ticket.ID); err != nil {
		return fmt.Errorf("mark ticket %d synced: %w", ticket.ID, err)
	}
	if err := s.store.CompleteOutbox(ctx, ticket.ID); err != nil {
		return fmt.Errorf("complete outbox for ticket %d: %w", ticket.ID, err)
	}

	if err := s.active.Deactivate(ctx, ticket.QueueToken); err != nil {
		return fmt.Errorf("deactivate token: %w", err)
	}

	if !alreadySynced {
		s.notifier.NotifySettled(ticket.QueueToken, ticket.SeatNumber)
	}
	monitoring.TrackSettlement("success")
	return nil
}

// RecoverStuck re-drives settlement for every ticket still in PAID, the
// safety net for outbox deliveries that never arrived. One instance
// sweeps at a time.
func (s *SettlementService) RecoverStuck(ctx context.Context) (int, error) {
	acquired, release, err := s.locker.Acquire(ctx, recoveryLockKey, s.lockMaxHold)
	if err != nil {
		return 0, err
	}
	if !acquired {
		return 0, nil
	}
	defer release()

	stuck, err := s.store.FindByStatus(ctx, models.TicketPaid)
	if err != nil {
		return 0, err
	}

	recovered := 0
	for _, ticket := range stuck {
		if err := s.Settle(ctx, ticket.ID); err != nil {
			// Per-ticket failures wait for the next sweep.
			slog.Error("recovery settle failed", "ticket", ticket.ID, "error", err)
			monitoring.TrackSettlement("failed")
			continue
		}
		recovered++
	}
	if recovered > 0 {
		slog.Info("recovered stuck tickets", "count", recovered)
		monitoring.TrackRecovered(recovered)
	}
	return recovered, nil
}
