// Package storage provides the key-value storage capability the theme
// preference is persisted in, with memory, YAML file, Redis and NATS
// JetStream backends.
package storage

import (
	"context"
	"fmt"

	"github.com/dendrite-io/dendrite-echo/internal/constants"
)

// Storage is a string key-value store.
type Storage interface {
	// GetItem returns the value of key and whether it was present.
	GetItem(ctx context.Context, key string) (string, bool, error)
	// SetItem stores value under key.
	SetItem(ctx context.Context, key, value string) error
	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error
	// Close releases the resources of the backend.
	Close() error
}

// Type represents the type of storage backend.
type Type string

const (
	// TypeMemory keeps values for the lifetime of the process.
	TypeMemory Type = "memory"

	// TypeFile persists values in a YAML file.
	TypeFile Type = "file"

	// TypeRedis persists values in Redis.
	TypeRedis Type = "redis"

	// TypeNATS persists values in a NATS JetStream key-value bucket.
	TypeNATS Type = "nats"

	// TypeNone disables storage (headless mode).
	TypeNone Type = "none"
)

// Config configures the storage backend.
type Config struct {
	Type  Type        `json:"type" mapstructure:"type" yaml:"type"`
	File  FileConfig  `json:"file" mapstructure:"file" yaml:"file"`
	Redis RedisConfig `json:"redis" mapstructure:"redis" yaml:"redis"`
	NATS  NATSConfig  `json:"nats" mapstructure:"nats" yaml:"nats"`
}

// NewFromConfig creates a storage backend from configuration. TypeNone
// yields a nil Storage and a nil error.
func NewFromConfig(ctx context.Context, config *Config) (Storage, error) {
	if config == nil {
		return NewMemory(), nil
	}

	switch config.Type {
	case TypeMemory, "":
		return NewMemory(), nil

	case TypeFile:
		if config.File.Path == "" {
			return nil, constants.ErrFilePathRequired
		}

		return NewFile(config.File.Path), nil

	case TypeRedis:
		if config.Redis.Addr == "" {
			return nil, constants.ErrRedisAddrRequired
		}

		return NewRedis(ctx, config.Redis)

	case TypeNATS:
		if config.NATS.URL == "" {
			return nil, constants.ErrNATSURLRequired
		}

		return NewNATS(ctx, config.NATS)

	case TypeNone:
		return nil, nil //nolint:nilnil // no storage capability

	default:
		return nil, fmt.Errorf("%w: %s", constants.ErrUnknownStorageType, config.Type)
	}
}
