package storage

import (
	"context"
	"testing"

	"github.com/pocketbase/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/irnd04/zticket/models"
)

const testSchema = `
CREATE TABLE tickets (
    id          INTEGER PRIMARY KEY,
    seat_number INTEGER NOT NULL UNIQUE,
    status      TEXT    NOT NULL,
    queue_token TEXT    NOT NULL,
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);
CREATE TABLE ticket_outbox (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    ticket_id    INTEGER NOT NULL,
    event_type   TEXT    NOT NULL,
    created_at   INTEGER NOT NULL,
    completed_at INTEGER
);
`

func setupTestStore(t *testing.T) *TicketStore {
	t.Helper()
	db, err := dbx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// One in-memory SQLite database per connection otherwise.
	db.DB().SetMaxOpenConns(1)

	_, err = db.NewQuery(testSchema).Execute()
	require.NoError(t, err)
	return NewTicketStore(db)
}

func TestTicketStore_InsertAndFind(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ticket := models.NewTicket(101, "tok-1", 7)
	require.NoError(t, store.InsertWithOutbox(ctx, ticket))

	found, err := store.FindByID(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, found.ID)
	assert.Equal(t, 7, found.SeatNumber)
	assert.Equal(t, models.TicketPaid, found.Status)
	assert.Equal(t, "tok-1", found.QueueToken)
	assert.Equal(t, ticket.CreatedAt.UnixMilli(), found.CreatedAt.UnixMilli())

	// The outbox event landed in the same transaction.
	pending, err := store.PendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(101), pending[0].TicketID)
	assert.Equal(t, models.EventTypeTicketPaid, pending[0].EventType)
}

func TestTicketStore_FindByID_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, models.ErrTicketNotFound)
}

func TestTicketStore_DuplicateSeatRejected(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertWithOutbox(ctx, models.NewTicket(1, "tok-1", 7)))

	err := store.InsertWithOutbox(ctx, models.NewTicket(2, "tok-2", 7))
	require.Error(t, err)

	// The failed transaction left no orphan outbox row behind.
	pending, perr := store.PendingOutbox(ctx, 10)
	require.NoError(t, perr)
	assert.Len(t, pending, 1)
}

func TestTicketStore_FindByStatus(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertWithOutbox(ctx, models.NewTicket(1, "tok-1", 1)))
	require.NoError(t, store.InsertWithOutbox(ctx, models.NewTicket(2, "tok-2", 2)))
	require.NoError(t, store.InsertWithOutbox(ctx, models.NewTicket(3, "tok-3", 3)))
	require.NoError(t, store.MarkSynced(ctx, 2))

	paid, err := store.FindByStatus(ctx, models.TicketPaid)
	require.NoError(t, err)
	require.Len(t, paid, 2)
	assert.Equal(t, int64(1), paid[0].ID)
	assert.Equal(t, int64(3), paid[1].ID)

	synced, err := store.FindByStatus(ctx, models.TicketSynced)
	require.NoError(t, err)
	require.Len(t, synced, 1)
	assert.Equal(t, int64(2), synced[0].ID)
}

func TestTicketStore_MarkSyncedIsIdempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertWithOutbox(ctx, models.NewTicket(1, "tok-1", 1)))

	require.NoError(t, store.MarkSynced(ctx, 1))
	require.NoError(t, store.MarkSynced(ctx, 1))

	found, err := store.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.TicketSynced, found.Status)
}

func TestTicketStore_CompleteOutbox(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertWithOutbox(ctx, models.NewTicket(1, "tok-1", 1)))
	require.NoError(t, store.InsertWithOutbox(ctx, models.NewTicket(2, "tok-2", 2)))

	require.NoError(t, store.CompleteOutbox(ctx, 1))
	require.NoError(t, store.CompleteOutbox(ctx, 1))

	pending, err := store.PendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(2), pending[0].TicketID)
}
