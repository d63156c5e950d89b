package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/irnd04/zticket/models"
)

const seatKeyPrefix = "seat:"

// paySeatScript promotes held:<token> to paid:<token> in one atomic
// check-and-set. Without the guard a delayed retry could overwrite a
// different winner's PAID value.
const paySeatScript = `if redis.call('GET', KEYS[1]) == ARGV[1] then
    redis.call('SET', KEYS[1], ARGV[2])
    return 1
else
    return 0
end`

// releaseSeatScript deletes the key only while it still carries this
// token's hold. A stale rollback after the hold expired and another
// token won the seat must be a no-op.
const releaseSeatScript = `if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
else
    return 0
end`

// SeatService arbitrates exclusive seat ownership over per-seat keys.
// All contention is settled by the store's conditional writes; there are
// no in-process locks because competing holders can live in different
// processes.
type SeatService struct {
	Redis      *redis.Client
	totalSeats int
}

func NewSeatService(redisClient *redis.Client, totalSeats int) *SeatService {
	return &SeatService{Redis: redisClient, totalSeats: totalSeats}
}

func (s *SeatService) TotalSeats() int { return s.totalSeats }

// ValidSeat reports whether the number falls inside the seat universe.
func (s *SeatService) ValidSeat(seatNumber int) bool {
	return seatNumber >= 1 && seatNumber <= s.totalSeats
}

// HoldSeat takes a TTL-bounded exclusive hold. A retry by the same token
// succeeds and refreshes the TTL; any other occupant means failure.
func (s *SeatService) HoldSeat(ctx context.Context, seatNumber int, token string, ttl time.Duration) (bool, error) {
	key := seatKey(seatNumber)
	value := models.HeldValue(token)

	ok, err := s.Redis.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	existing, err := s.Redis.Get(ctx, key).Result()
	if err == redis.Nil {
		// Hold expired between SETNX and GET; the caller retries.
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if existing == value {
		if err := s.Redis.Expire(ctx, key, ttl).Err(); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// PaySeat transitions held:<token> to paid:<token> and makes it
// permanent. Returns false when the token no longer holds the seat.
func (s *SeatService) PaySeat(ctx context.Context, seatNumber int, token string) (bool, error) {
	res, err := s.Redis.Eval(ctx, paySeatScript,
		[]string{seatKey(seatNumber)},
		models.HeldValue(token), models.PaidValue(token)).Result()
	if err != nil {
		return false, err
	}
	n, ok := res.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected pay script result %v", res)
	}
	return n == 1, nil
}

// ConfirmPaid unconditionally writes paid:<token> with no expiry. Only
// settlement may call this: once the ticket row is durably committed the
// seat converges to PAID no matter what the key held before.
func (s *SeatService) ConfirmPaid(ctx context.Context, seatNumber int, token string) error {
	return s.Redis.Set(ctx, seatKey(seatNumber), models.PaidValue(token), 0).Err()
}

// ReleaseSeat removes the hold iff it is still this token's. It never
// touches a PAID value or another token's hold.
func (s *SeatService) ReleaseSeat(ctx context.Context, seatNumber int, token string) error {
	return s.Redis.Eval(ctx, releaseSeatScript,
		[]string{seatKey(seatNumber)},
		models.HeldValue(token)).Err()
}

// Statuses bulk-reads the given seats. Absent keys are AVAILABLE;
// unparsable values surface as UNKNOWN with a warning and are treated as
// not purchasable.
func (s *SeatService) Statuses(ctx context.Context, seatNumbers []int) ([]models.Seat, error) {
	if len(seatNumbers) == 0 {
		return nil, nil
	}
	keys := make([]string, len(seatNumbers))
	for i, n := range seatNumbers {
		keys[i] = seatKey(n)
	}

	values, err := s.Redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	seats := make([]models.Seat, len(seatNumbers))
	for i, n := range seatNumbers {
		value := ""
		if values[i] != nil {
			value, _ = values[i].(string)
		}
		seat := models.ParseSeat(n, value)
		if seat.Status == models.SeatUnknown {
			slog.Warn("unparsable seat value", "seat", n, "value", value)
		}
		seats[i] = seat
	}
	return seats, nil
}

// AllSeats reads the whole 1..N universe.
func (s *SeatService) AllSeats(ctx context.Context) ([]models.Seat, error) {
	numbers := make([]int, s.totalSeats)
	for i := range numbers {
		numbers[i] = i + 1
	}
	return s.Statuses(ctx, numbers)
}

// AvailableCount counts AVAILABLE seats across the universe. Like the
// active-user count this is a batch-sizing read, not an invariant.
func (s *SeatService) AvailableCount(ctx context.Context) (int, error) {
	seats, err := s.AllSeats(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, seat := range seats {
		if seat.Status == models.SeatAvailable {
			count++
		}
	}
	return count, nil
}

func seatKey(seatNumber int) string {
	return fmt.Sprintf("%s%d", seatKeyPrefix, seatNumber)
}
