package models

import (
	"fmt"
	"time"
)

type TicketStatus string

const (
	// TicketPaid means the purchase is durably committed but the
	// coordination store has not been reconciled yet.
	TicketPaid TicketStatus = "PAID"
	// TicketSynced is terminal: seat confirmed, token deactivated.
	TicketSynced TicketStatus = "SYNCED"
)

// Ticket is the durable record of a purchase. It is the source of truth
// for whether a purchase happened; the coordination store is reconciled
// to it, never the other way around.
type Ticket struct {
	ID         int64        `db:"id" json:"id,string"`
	SeatNumber int          `db:"seat_number" json:"seat_number"`
	Status     TicketStatus `db:"status" json:"status"`
	QueueToken string       `db:"queue_token" json:"queue_token"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}

// NewTicket creates a ticket in PAID state, the only legal creation state.
func NewTicket(id int64, queueToken string, seatNumber int) *Ticket {
	now := time.Now().UTC()
	return &Ticket{
		ID:         id,
		SeatNumber: seatNumber,
		Status:     TicketPaid,
		QueueToken: queueToken,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Sync transitions PAID -> SYNCED. Calling it on an already SYNCED ticket
// is a no-op, never an error, so settlement retries stay idempotent.
func (t *Ticket) Sync() error {
	if t.Status == TicketSynced {
		return nil
	}
	if t.Status != TicketPaid {
		return fmt.Errorf("cannot sync ticket %d from status %s", t.ID, t.Status)
	}
	t.Status = TicketSynced
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// OutboxEvent is the at-least-once delivery record written in the same
// transaction as its ticket. CompletedAt is set only by the settlement
// handler once every settlement step has finished.
type OutboxEvent struct {
	ID          int64      `db:"id" json:"id"`
	TicketID    int64      `db:"ticket_id" json:"ticket_id"`
	EventType   string     `db:"event_type" json:"event_type"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at"`
}

// EventTypeTicketPaid is the only event type the outbox carries today.
const EventTypeTicketPaid = "ticket.paid"
