package services

import (
	"fmt"

	pubnub "github.com/pubnub/go"
)

// Notifier pushes best-effort status updates to per-token channels.
// Losing a notification is harmless: clients also poll the status
// endpoint, which is the source of truth.
type Notifier struct {
	pubnub *pubnub.PubNub
}

// NewNotifier wraps a PubNub client; pn may be nil, which turns every
// notification into a no-op (tests, local development).
func NewNotifier(pn *pubnub.PubNub) *Notifier {
	return &Notifier{pubnub: pn}
}

func (n *Notifier) NotifyAdmitted(token string) {
	n.publish(token, map[string]any{
		"type":    "queue_status",
		"status":  "active",
		"message": "You can now purchase your seat",
	})
}

func (n *Notifier) NotifySettled(token string, seatNumber int) {
	n.publish(token, map[string]any{
		"type":        "purchase_settled",
		"seat_number": seatNumber,
	})
}

func (n *Notifier) publish(token string, message map[string]any) {
	if n == nil || n.pubnub == nil {
		return
	}
	channel := fmt.Sprintf("user-%s", token)
	n.pubnub.Publish().
		Channel(channel).
		Message(message).
		Execute()
}
