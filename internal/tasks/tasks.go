// Package tasks keeps each inspector's personal to-do list in the local cache.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const keyPrefix = "inspector_tasks_"

var (
	ErrEmptyTask    = errors.New("task text required")
	ErrTaskNotFound = errors.New("task not found")
)

type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, val []byte) error
}

type Task struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type List struct {
	kv  KV
	now func() time.Time
}

func NewList(kv KV) *List {
	return &List{kv: kv, now: time.Now}
}

func Key(userID string) string {
	return keyPrefix + userID
}

// All returns the user's tasks in insertion order. A corrupted entry reads as empty.
func (l *List) All(ctx context.Context, userID string) ([]Task, error) {
	b, ok, err := l.kv.Get(ctx, Key(userID))
	if err != nil {
		return nil, err
	}
	out := []Task{}
	if !ok {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return []Task{}, nil
	}
	return out, nil
}

func (l *List) Add(ctx context.Context, userID, text string) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, ErrEmptyTask
	}
	all, err := l.All(ctx, userID)
	if err != nil {
		return Task{}, err
	}
	id := l.now().UnixMilli()
	for _, t := range all {
		if t.ID >= id {
			id = t.ID + 1
		}
	}
	t := Task{ID: id, Text: text}
	return t, l.save(ctx, userID, append(all, t))
}

func (l *List) Toggle(ctx context.Context, userID string, id int64) (Task, error) {
	all, err := l.All(ctx, userID)
	if err != nil {
		return Task{}, err
	}
	for i := range all {
		if all[i].ID == id {
			all[i].Completed = !all[i].Completed
			return all[i], l.save(ctx, userID, all)
		}
	}
	return Task{}, ErrTaskNotFound
}

func (l *List) Delete(ctx context.Context, userID string, id int64) error {
	all, err := l.All(ctx, userID)
	if err != nil {
		return err
	}
	kept := make([]Task, 0, len(all))
	for _, t := range all {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	return l.save(ctx, userID, kept)
}

func (l *List) save(ctx context.Context, userID string, all []Task) error {
	b, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	return l.kv.Put(ctx, Key(userID), b)
}
