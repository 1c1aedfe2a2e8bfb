package domain

import "errors"

var (
	ErrMalformedFrame      = errors.New("malformed chat frame")
	ErrNotConnected        = errors.New("channel not connected")
	ErrAlreadyOpen         = errors.New("channel already opened")
	ErrClosed              = errors.New("channel closed")
	ErrEmptyDraft          = errors.New("draft is empty")
	ErrRateLimited         = errors.New("sending too fast")
	ErrIdentityUnavailable = errors.New("identity unavailable")
	ErrAlreadyMounted      = errors.New("chat already mounted")
)
