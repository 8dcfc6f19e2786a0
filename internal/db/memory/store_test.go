package memory

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/crimedex/crimedex/internal/db"
)

type fakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.cur = c.cur.Add(d)
	c.mu.Unlock()
}

func newTestStore() (*Store, *fakeClock) {
	clock := &fakeClock{cur: time.Unix(1700000000, 0)}
	return NewStore().WithClock(clock.now), clock
}

func TestSetGet(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	if err := s.SetWithTTL(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, []byte("v")) {
		t.Fatalf("Get = %q, want %q", got, "v")
	}
}

func TestGet_Missing(t *testing.T) {
	s, _ := newTestStore()
	if _, err := s.Get(context.Background(), "absent"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestGet_LazyExpiry(t *testing.T) {
	s, clock := newTestStore()
	ctx := context.Background()

	_ = s.SetWithTTL(ctx, "k", []byte("v"), time.Minute)
	clock.advance(61 * time.Second)

	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected expired key to read as missing, got %v", err)
	}
	if s.Len() != 0 {
		t.Error("expired entry should be collected on read")
	}
}

func TestSet_Overwrites(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_ = s.SetWithTTL(ctx, "k", []byte("old"), time.Minute)
	_ = s.SetWithTTL(ctx, "k", []byte("new"), time.Minute)

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "new" {
		t.Fatalf("Get = %q, want last write to win", got)
	}
}

func TestDel_And_FlushAll(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_ = s.SetWithTTL(ctx, "a", []byte("1"), time.Minute)
	_ = s.SetWithTTL(ctx, "b", []byte("2"), time.Minute)

	if err := s.Del(ctx, "a"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatal("deleted key still readable")
	}
	if err := s.Del(ctx, "a"); err != nil {
		t.Fatalf("deleting missing key should not fail: %v", err)
	}

	if err := s.FlushAll(ctx); err != nil {
		t.Fatalf("FlushAll: %v", err)
	}
	if s.Len() != 0 {
		t.Error("FlushAll left entries behind")
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_ = s.SetWithTTL(ctx, "k", []byte("value"), time.Minute)
	got, _ := s.Get(ctx, "k")
	got[0] = 'X'

	again, _ := s.Get(ctx, "k")
	if string(again) != "value" {
		t.Error("caller mutation leaked into the store")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.SetWithTTL(ctx, "shared", []byte("v"), time.Minute)
				_, _ = s.Get(ctx, "shared")
				_ = s.Del(ctx, "other")
			}
		}()
	}
	wg.Wait()
}
