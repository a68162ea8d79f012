// Package draft caches working copies of inspection reports so an
// interrupted session can be resumed.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"inspectroom/internal/inspection"
)

const keyPrefix = "inspection_draft_"

var ErrMalformedDraft = errors.New("saved draft is corrupted")

// KV is the byte store drafts are written to.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, val []byte) error
	Delete(ctx context.Context, key string) error
}

func Key(reportID string) string {
	return keyPrefix + reportID
}

type Cache struct {
	kv KV
}

func NewCache(kv KV) *Cache {
	return &Cache{kv: kv}
}

// Save writes the whole report under its draft key, replacing any earlier draft.
func (c *Cache) Save(ctx context.Context, r inspection.Report) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", r.ID, err)
	}
	return c.kv.Put(ctx, Key(r.ID), b)
}

// Exists reports whether a draft is cached for reportID without parsing it.
func (c *Cache) Exists(ctx context.Context, reportID string) (bool, error) {
	_, ok, err := c.kv.Get(ctx, Key(reportID))
	return ok, err
}

// Load returns the cached draft for reportID. A draft that cannot be decoded,
// or that belongs to a different report, yields ErrMalformedDraft.
func (c *Cache) Load(ctx context.Context, reportID string) (inspection.Report, bool, error) {
	b, ok, err := c.kv.Get(ctx, Key(reportID))
	if err != nil || !ok {
		return inspection.Report{}, false, err
	}
	var r inspection.Report
	if err := json.Unmarshal(b, &r); err != nil {
		return inspection.Report{}, true, fmt.Errorf("%w: %v", ErrMalformedDraft, err)
	}
	if r.ID != reportID {
		return inspection.Report{}, true, fmt.Errorf("%w: draft is for report %q", ErrMalformedDraft, r.ID)
	}
	return r, true, nil
}

func (c *Cache) Discard(ctx context.Context, reportID string) error {
	return c.kv.Delete(ctx, Key(reportID))
}
