package constants

import "errors"

// Configuration errors.
var (
	ErrUnknownConfigKey   = errors.New("unknown configuration key")
	ErrInvalidOutput      = errors.New("invalid output format, use table, json or yaml")
	ErrUnknownStorageType = errors.New("unknown storage type")
	ErrRedisAddrRequired  = errors.New("redis address is required for redis storage")
	ErrNATSURLRequired    = errors.New("NATS URL is required for nats storage")
	ErrFilePathRequired   = errors.New("file path is required for file storage")
)
