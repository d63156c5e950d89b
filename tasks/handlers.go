package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/irnd04/zticket/services"
)

// Handlers binds queue task types to the services that do the work.
type Handlers struct {
	settlement *services.SettlementService
	admission  *services.AdmissionService
}

func NewHandlers(settlement *services.SettlementService, admission *services.AdmissionService) *Handlers {
	return &Handlers{settlement: settlement, admission: admission}
}

// HandleTicketSettle settles a single paid ticket. Errors propagate so
// asynq retries with backoff; settlement is idempotent, so replays are
// harmless.
func (h *Handlers) HandleTicketSettle(ctx context.Context, t *asynq.Task) error {
	var p TicketSettlePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w: %w", TypeTicketSettle, err, asynq.SkipRetry)
	}
	if err := h.settlement.Settle(ctx, p.TicketID); err != nil {
		return fmt.Errorf("settle ticket %d: %w", p.TicketID, err)
	}
	return nil
}

// HandleAdmissionCycle runs one admission pass. Cycle failures are
// logged, not returned: the scheduler fires again shortly and a retry
// storm on a periodic task helps nobody.
func (h *Handlers) HandleAdmissionCycle(ctx context.Context, t *asynq.Task) error {
	if err := h.admission.RunCycle(ctx); err != nil {
		slog.Error("admission cycle failed", "error", err)
	}
	return nil
}

// HandleTicketRecover re-drives settlement for tickets stuck in PAID.
func (h *Handlers) HandleTicketRecover(ctx context.Context, t *asynq.Task) error {
	if _, err := h.settlement.RecoverStuck(ctx); err != nil {
		slog.Error("ticket recovery sweep failed", "error", err)
	}
	return nil
}

// NewServeMux wires every task type to its handler.
func NewServeMux(h *Handlers) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeTicketSettle, h.HandleTicketSettle)
	mux.HandleFunc(TypeAdmissionCycle, h.HandleAdmissionCycle)
	mux.HandleFunc(TypeTicketRecover, h.HandleTicketRecover)
	return mux
}
