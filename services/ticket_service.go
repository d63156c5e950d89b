package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/irnd04/zticket/models"
	"github.com/irnd04/zticket/monitoring"
	"github.com/irnd04/zticket/utils"
)

// TicketStore is the durable side of a purchase: the ticket row and its
// outbox event, written in one transaction.
type TicketStore interface {
	InsertWithOutbox(ctx context.Context, ticket *models.Ticket) error
	FindByID(ctx context.Context, id int64) (*models.Ticket, error)
	FindByStatus(ctx context.Context, status models.TicketStatus) ([]models.Ticket, error)
	MarkSynced(ctx context.Context, id int64) error
	CompleteOutbox(ctx context.Context, ticketID int64) error
}

// SettlementDispatcher hands a committed purchase to the asynchronous
// settlement path. Delivery is at-least-once; a failed dispatch is only
// logged because the recovery sweep re-drives anything left in PAID.
type SettlementDispatcher interface {
	DispatchTicketPaid(ctx context.Context, ticketID int64) error
}

// TicketService orchestrates a purchase: admission check, seat hold,
// transactional ticket+outbox insert, async settlement handoff. The
// caller gets the PAID ticket back without waiting for settlement.
type TicketService struct {
	seats      *SeatService
	active     *ActiveUserService
	store      TicketStore
	dispatcher SettlementDispatcher
	ids        *utils.IDGenerator
	holdTTL    time.Duration
}

func NewTicketService(
	seats *SeatService,
	active *ActiveUserService,
	store TicketStore,
	dispatcher SettlementDispatcher,
	ids *utils.IDGenerator,
	holdTTL time.Duration,
) *TicketService {
	return &TicketService{
		seats:      seats,
		active:     active,
		store:      store,
		dispatcher: dispatcher,
		ids:        ids,
		holdTTL:    holdTTL,
	}
}

func (s *TicketService) Purchase(ctx context.Context, token string, seatNumber int) (*models.Ticket, error) {
	if !s.seats.ValidSeat(seatNumber) {
		return nil, models.ErrInvalidSeatNumber
	}

	isActive, err := s.active.IsActive(ctx, token)
	if err != nil {
		return nil, err
	}
	if !isActive {
		monitoring.TrackPurchase("rejected")
		return nil, models.ErrNotActiveUser
	}

	held, err := s.seats.HoldSeat(ctx, seatNumber, token, s.holdTTL)
	if err != nil {
		return nil, err
	}
	if !held {
		monitoring.TrackPurchase("contended")
		return nil, models.ErrSeatAlreadyHeld
	}

	ticket := models.NewTicket(s.ids.NextID(), token, seatNumber)
	if err := s.store.InsertWithOutbox(ctx, ticket); err != nil {
		slog.Error("purchase insert failed, releasing seat", "seat", seatNumber, "error", err)
		// Compensate: the seat must not stay HELD for a purchase
		// that never durably happened.
		if rerr := s.seats.ReleaseSeat(ctx, seatNumber, token); rerr != nil {
			slog.Error("compensating release failed, hold will expire by TTL", "seat", seatNumber, "error", rerr)
		}
		monitoring.TrackPurchase("failed")
		return nil, models.ErrInternal
	}
	monitoring.TrackPurchase("success")

	if err := s.dispatcher.DispatchTicketPaid(ctx, ticket.ID); err != nil {
		// Not fatal: the recovery sweep settles anything stuck in PAID.
		slog.Warn("settlement dispatch failed, leaving ticket for recovery", "ticket", ticket.ID, "error", err)
	}

	return ticket, nil
}
