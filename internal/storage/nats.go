package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dendrite-io/dendrite-echo/internal/constants"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSConfig configures the NATS JetStream key-value backend.
type NATSConfig struct {
	URL string `json:"url" mapstructure:"url" yaml:"url"`
	// Bucket defaults to "dendrite_echo".
	Bucket string `json:"bucket" mapstructure:"bucket" yaml:"bucket"`
}

// KeyValue is the subset of jetstream.KeyValue used by the NATS backend.
type KeyValue interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Delete(ctx context.Context, key string, opts ...jetstream.KVDeleteOpt) error
}

// NATS stores values in a JetStream key-value bucket.
type NATS struct {
	conn *nats.Conn
	kv   KeyValue
}

// NewNATS connects to NATS and creates the bucket if needed.
func NewNATS(ctx context.Context, config NATSConfig) (*NATS, error) {
	bucket := config.Bucket
	if bucket == "" {
		bucket = constants.DefaultNATSBucket
	}

	conn, err := nats.Connect(config.URL,
		nats.Name(constants.AppName),
		nats.Timeout(constants.DefaultStorageTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	kvCtx, cancel := context.WithTimeout(ctx, constants.DefaultStorageTimeout)
	defer cancel()

	kv, err := js.CreateOrUpdateKeyValue(kvCtx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "dendrite-echo preferences",
		History:     1,
	})
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("creating key-value bucket %s: %w", bucket, err)
	}

	return &NATS{conn: conn, kv: kv}, nil
}

// NewNATSFromKeyValue wraps an existing bucket. Close leaves the connection
// owned by the caller.
func NewNATSFromKeyValue(kv KeyValue) *NATS {
	return &NATS{kv: kv}
}

// GetItem implements Storage.
func (n *NATS) GetItem(ctx context.Context, key string) (string, bool, error) {
	entry, err := n.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("getting %s from NATS: %w", key, err)
	}

	return string(entry.Value()), true, nil
}

// SetItem implements Storage.
func (n *NATS) SetItem(ctx context.Context, key, value string) error {
	_, err := n.kv.Put(ctx, key, []byte(value))
	if err != nil {
		return fmt.Errorf("setting %s in NATS: %w", key, err)
	}

	return nil
}

// RemoveItem implements Storage.
func (n *NATS) RemoveItem(ctx context.Context, key string) error {
	err := n.kv.Delete(ctx, key)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("removing %s from NATS: %w", key, err)
	}

	return nil
}

// Close implements Storage.
func (n *NATS) Close() error {
	if n.conn != nil {
		n.conn.Close()
	}

	return nil
}
