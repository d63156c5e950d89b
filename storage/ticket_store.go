// Package storage is the durable side of zticket: the tickets table and
// its outbox, accessed through dbx. Timestamps are stored as epoch
// milliseconds so the same queries run on MySQL and SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/pocketbase/dbx"

	"github.com/irnd04/zticket/models"
)

type TicketStore struct {
	db *dbx.DB
}

func NewTicketStore(db *dbx.DB) *TicketStore {
	return &TicketStore{db: db}
}

type ticketRow struct {
	ID         int64  `db:"id"`
	SeatNumber int    `db:"seat_number"`
	Status     string `db:"status"`
	QueueToken string `db:"queue_token"`
	CreatedAt  int64  `db:"created_at"`
	UpdatedAt  int64  `db:"updated_at"`
}

func toRow(t *models.Ticket) ticketRow {
	return ticketRow{
		ID:         t.ID,
		SeatNumber: t.SeatNumber,
		Status:     string(t.Status),
		QueueToken: t.QueueToken,
		CreatedAt:  t.CreatedAt.UnixMilli(),
		UpdatedAt:  t.UpdatedAt.UnixMilli(),
	}
}

func (r ticketRow) toModel() models.Ticket {
	return models.Ticket{
		ID:         r.ID,
		SeatNumber: r.SeatNumber,
		Status:     models.TicketStatus(r.Status),
		QueueToken: r.QueueToken,
		CreatedAt:  time.UnixMilli(r.CreatedAt).UTC(),
		UpdatedAt:  time.UnixMilli(r.UpdatedAt).UTC(),
	}
}

// InsertWithOutbox writes the ticket row and its outbox event in one
// transaction. The unique index on seat_number is the relational side's
// independent guard against double-selling.
func (s *TicketStore) InsertWithOutbox(ctx context.Context, ticket *models.Ticket) error {
	row := toRow(ticket)
	return s.db.Transactional(func(tx *dbx.Tx) error {
		_, err := tx.Insert("tickets", dbx.Params{
			"id":          row.ID,
			"seat_number": row.SeatNumber,
			"status":      row.Status,
			"queue_token": row.QueueToken,
			"created_at":  row.CreatedAt,
			"updated_at":  row.UpdatedAt,
		}).Execute()
		if err != nil {
			return err
		}
		_, err = tx.Insert("ticket_outbox", dbx.Params{
			"ticket_id":  row.ID,
			"event_type": models.EventTypeTicketPaid,
			"created_at": row.CreatedAt,
		}).Execute()
		return err
	})
}

func (s *TicketStore) FindByID(ctx context.Context, id int64) (*models.Ticket, error) {
	var row ticketRow
	err := s.db.Select("*").From("tickets").Where(dbx.HashExp{"id": id}).One(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	ticket := row.toModel()
	return &ticket, nil
}

func (s *TicketStore) FindByStatus(ctx context.Context, status models.TicketStatus) ([]models.Ticket, error) {
	var rows []ticketRow
	err := s.db.Select("*").
		From("tickets").
		Where(dbx.HashExp{"status": string(status)}).
		OrderBy("id").
		All(&rows)
	if err != nil {
		return nil, err
	}
	tickets := make([]models.Ticket, len(rows))
	for i, r := range rows {
		tickets[i] = r.toModel()
	}
	return tickets, nil
}

// MarkSynced moves a PAID ticket to its terminal state. Already-SYNCED
// tickets match zero rows, which is exactly the wanted no-op.
func (s *TicketStore) MarkSynced(ctx context.Context, id int64) error {
	_, err := s.db.Update("tickets", dbx.Params{
		"status":     string(models.TicketSynced),
		"updated_at": time.Now().UTC().UnixMilli(),
	}, dbx.And(
		dbx.HashExp{"id": id},
		dbx.HashExp{"status": string(models.TicketPaid)},
	)).Execute()
	return err
}

// CompleteOutbox stamps the event done once settlement has finished.
// Repeat calls match zero rows.
func (s *TicketStore) CompleteOutbox(ctx context.Context, ticketID int64) error {
	_, err := s.db.Update("ticket_outbox", dbx.Params{
		"completed_at": time.Now().UTC().UnixMilli(),
	}, dbx.And(
		dbx.HashExp{"ticket_id": ticketID},
		dbx.HashExp{"completed_at": nil},
	)).Execute()
	return err
}

// PendingOutbox lists events whose settlement never completed, oldest
// first. Operational visibility; the recovery sweep itself keys off
// ticket status.
func (s *TicketStore) PendingOutbox(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	type outboxRow struct {
		ID          int64         `db:"id"`
		TicketID    int64         `db:"ticket_id"`
		EventType   string        `db:"event_type"`
		CreatedAt   int64         `db:"created_at"`
		CompletedAt sql.NullInt64 `db:"completed_at"`
	}
	var rows []outboxRow
	err := s.db.Select("*").
		From("ticket_outbox").
		Where(dbx.HashExp{"completed_at": nil}).
		OrderBy("created_at").
		Limit(int64(limit)).
		All(&rows)
	if err != nil {
		return nil, err
	}
	events := make([]models.OutboxEvent, len(rows))
	for i, r := range rows {
		events[i] = models.OutboxEvent{
			ID:        r.ID,
			TicketID:  r.TicketID,
			EventType: r.EventType,
			CreatedAt: time.UnixMilli(r.CreatedAt).UTC(),
		}
	}
	return events, nil
}
