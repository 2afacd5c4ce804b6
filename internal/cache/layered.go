package cache

import (
	"context"
	"time"

	"mediaarchive/internal/domain/ports"
)

// Layered reads through its layers in order and backfills the faster ones
// on a hit. Writes go to every layer. Errors from a layer count as misses
// on read and are returned from Set only when every layer failed.
type Layered struct {
	layers []ports.Cache
}

func NewLayered(layers ...ports.Cache) *Layered {
	clean := make([]ports.Cache, 0, len(layers))
	for _, l := range layers {
		if l != nil {
			clean = append(clean, l)
		}
	}
	return &Layered{layers: clean}
}

func (c *Layered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	for i, layer := range c.layers {
		value, ok, err := layer.Get(ctx, key)
		if err != nil || !ok {
			continue
		}
		for _, faster := range c.layers[:i] {
			_ = faster.Set(ctx, key, value, 0)
		}
		return value, true, nil
	}
	return nil, false, nil
}

func (c *Layered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var firstErr error
	failed := 0
	for _, layer := range c.layers {
		if err := layer.Set(ctx, key, value, ttl); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if failed > 0 && failed == len(c.layers) {
		return firstErr
	}
	return nil
}
