package models

import "net/http"

// BusinessError is an expected, caller-visible rejection. It carries a
// stable machine-readable code so clients can branch on it; it is not an
// operational failure.
type BusinessError struct {
	Code    string `json:"code"`
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *BusinessError) Error() string {
	return e.Code + ": " + e.Message
}

var (
	ErrQueueTokenNotFound = &BusinessError{Code: "QUEUE_TOKEN_NOT_FOUND", Status: http.StatusNotFound, Message: "queue token not found"}
	ErrNotActiveUser      = &BusinessError{Code: "NOT_ACTIVE_USER", Status: http.StatusForbidden, Message: "user is not admitted for purchase"}
	ErrSeatAlreadyHeld    = &BusinessError{Code: "SEAT_ALREADY_HELD", Status: http.StatusConflict, Message: "seat is already held or paid"}
	ErrSoldOut            = &BusinessError{Code: "SOLD_OUT", Status: http.StatusConflict, Message: "no seats remaining"}
	ErrTicketNotFound     = &BusinessError{Code: "TICKET_NOT_FOUND", Status: http.StatusNotFound, Message: "ticket not found"}
	ErrInvalidSeatNumber  = &BusinessError{Code: "INVALID_SEAT_NUMBER", Status: http.StatusBadRequest, Message: "seat number out of range"}
	ErrInternal           = &BusinessError{Code: "INTERNAL_ERROR", Status: http.StatusInternalServerError, Message: "internal server error"}
)
