package redis

import "errors"

var (
	ErrEmptyURL   = errors.New("redis: REDIS_URL is empty")
	ErrInvalidURL = errors.New("redis: invalid connection URL")
	ErrNotReady   = errors.New("redis: server did not answer before the connect timeout")
	ErrPingFailed = errors.New("redis: ping failed")
)
