package services

import (
	"context"

	"github.com/irnd04/zticket/models"
	"github.com/irnd04/zticket/utils"
)

// EntryService is the client-facing side of the waiting queue: entering
// and polling. Every poll from a still-waiting client doubles as its
// heartbeat.
type EntryService struct {
	queue  *QueueService
	active *ActiveUserService
	seats  *SeatService
	ids    *utils.IDGenerator
}

func NewEntryService(queue *QueueService, active *ActiveUserService, seats *SeatService, ids *utils.IDGenerator) *EntryService {
	return &EntryService{queue: queue, active: active, seats: seats, ids: ids}
}

// Enter mints a fresh token and enqueues it. Entry is refused outright
// once nothing is left to sell.
func (s *EntryService) Enter(ctx context.Context) (models.QueueToken, error) {
	available, err := s.seats.AvailableCount(ctx)
	if err != nil {
		return models.QueueToken{}, err
	}
	if available <= 0 {
		return models.QueueToken{}, models.ErrSoldOut
	}

	token := s.ids.NextToken()
	rank, err := s.queue.Enqueue(ctx, token)
	if err != nil {
		return models.QueueToken{}, err
	}
	return models.WaitingToken(token, rank), nil
}

// Status reports where the token stands: ACTIVE once admitted, SOLD_OUT
// when nothing remains, otherwise its rank. A waiting poll refreshes the
// heartbeat so the caller keeps its place.
func (s *EntryService) Status(ctx context.Context, token string) (models.QueueToken, error) {
	isActive, err := s.active.IsActive(ctx, token)
	if err != nil {
		return models.QueueToken{}, err
	}
	if isActive {
		return models.ActiveToken(token), nil
	}

	available, err := s.seats.AvailableCount(ctx)
	if err != nil {
		return models.QueueToken{}, err
	}
	if available <= 0 {
		return models.SoldOutToken(token), nil
	}

	rank, err := s.queue.Rank(ctx, token)
	if err != nil {
		return models.QueueToken{}, err
	}
	if err := s.queue.Refresh(ctx, token); err != nil {
		return models.QueueToken{}, err
	}
	return models.WaitingToken(token, rank), nil
}
