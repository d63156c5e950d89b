package models

type QueueStatus string

const (
	QueueWaiting QueueStatus = "WAITING"
	QueueActive  QueueStatus = "ACTIVE"
	QueueSoldOut QueueStatus = "SOLD_OUT"
)

// QueueToken is the opaque admission identity handed out on queue entry.
// Rank is 1-based and only meaningful while Status is WAITING.
type QueueToken struct {
	Token  string      `json:"token"`
	Rank   int64       `json:"rank"`
	Status QueueStatus `json:"status"`
}

func WaitingToken(token string, rank int64) QueueToken {
	return QueueToken{Token: token, Rank: rank, Status: QueueWaiting}
}

func ActiveToken(token string) QueueToken {
	return QueueToken{Token: token, Status: QueueActive}
}

func SoldOutToken(token string) QueueToken {
	return QueueToken{Token: token, Status: QueueSoldOut}
}
