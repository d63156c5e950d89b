package tasks

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Dispatcher enqueues settlement work onto the asynq queue. Purchase
// treats dispatch failure as non-fatal, so retry policy lives here and
// in the recovery sweep, not in the request path.
type Dispatcher struct {
	client *asynq.Client
}

func NewDispatcher(client *asynq.Client) *Dispatcher {
	return &Dispatcher{client: client}
}

func (d *Dispatcher) DispatchTicketPaid(ctx context.Context, ticketID int64) error {
	task, err := NewTicketSettleTask(ticketID)
	if err != nil {
		return err
	}
	info, err := d.client.EnqueueContext(ctx, task, asynq.MaxRetry(5), asynq.Queue("settlement"))
	if err != nil {
		return err
	}
	slog.Debug("enqueued settlement task", "task_id", info.ID, "ticket_id", ticketID)
	return nil
}
