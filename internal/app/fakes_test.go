package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"hotel_reputation/internal/domain"
)

// ---- fakes ----

type fakeFetcher struct {
	pages map[string]string // url -> payload
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) FetchFirst(ctx context.Context, reqs []domain.FetchRequest) (string, error) {
	var last error = domain.ErrNotFound
	for _, r := range reqs {
		f.calls = append(f.calls, r.URL)
		if err, ok := f.errs[r.URL]; ok {
			return "", err
		}
		if p, ok := f.pages[r.URL]; ok {
			return p, nil
		}
	}
	return "", last
}

type fakeHistory struct {
	mu     sync.Mutex
	runs   []domain.RunRecord
	misses []domain.Miss
	fail   bool
}

func (h *fakeHistory) RecordRun(ctx context.Context, r domain.RunRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fail {
		return errors.New("history down")
	}
	h.runs = append(h.runs, r)
	return nil
}

func (h *fakeHistory) LogMiss(ctx context.Context, m domain.Miss) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses = append(h.misses, m)
	return nil
}

func (h *fakeHistory) ListRuns(ctx context.Context, source string, limit int) ([]domain.RunRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []domain.RunRecord
	for _, r := range h.runs {
		if r.Source == source && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (h *fakeHistory) ListMisses(ctx context.Context, source string, date domain.DateColumn) ([]domain.Miss, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := []domain.Miss{}
	for _, m := range h.misses {
		if m.Source == source && m.Date == date {
			out = append(out, m)
		}
	}
	return out, nil
}

// fakeCache keeps JSON bytes like the Redis adapter does.
type fakeCache struct {
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

func pfloat(f float64) *float64 { return &f }
