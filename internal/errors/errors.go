package errors

import "errors"

var (
	ErrSessionAlreadyStarted = errors.New("intake session already started")
	ErrSessionNotStarted     = errors.New("intake session not started")
	ErrSessionEnded          = errors.New("intake session already ended")

	ErrSubscriptionClosed   = errors.New("subscription closed")
	ErrSupervisorClosed     = errors.New("connection supervisor closed")
	ErrChannelClosed        = errors.New("transport channel closed")
	ErrSubscriptionRejected = errors.New("subscription rejected by transport")

	ErrLocationNotFound = errors.New("location content not found")
)
