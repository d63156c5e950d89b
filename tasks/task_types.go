package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TypeTicketSettle   = "ticket:settle"
	TypeAdmissionCycle = "queue:admit"
	TypeTicketRecover  = "ticket:recover"
)

type TicketSettlePayload struct {
	TicketID int64 `json:"ticket_id"`
}

func NewTicketSettleTask(ticketID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(TicketSettlePayload{TicketID: ticketID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeTicketSettle, payload), nil
}
